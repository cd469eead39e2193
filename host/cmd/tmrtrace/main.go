// Command tmrtrace prints the timer channel trace a target streams over
// its serial port, and optionally forwards it to an MQTT broker.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"timertool/core"
	"timertool/host/mqtt"
	"timertool/host/serial"
	"timertool/host/trace"
	"timertool/protocol"
)

var (
	device   = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud     = flag.Int("baud", serial.DefaultBaud, "Baud rate (ignored for USB CDC)")
	count    = flag.Int("count", 0, "Exit after this many events (0 = run until interrupted)")
	only     = flag.Int("channel", -1, "Show only this channel id (-1 = all)")
	broker   = flag.String("mqtt", "", "MQTT broker URL to forward records to (e.g. tcp://localhost:1883)")
	topic    = flag.String("topic", mqtt.DefaultTopic, "MQTT topic")
	logLevel = flag.String("log-level", "info", "Diagnostics level (debug, info, warn, error)")
	logFile  = flag.String("log-file", "", "Also write diagnostics to this rotated file")
	verbose  = flag.Bool("verbose", false, "Print link statistics on exit")
	version  = flag.Bool("version", false, "Print the trace protocol version and exit")
)

// versionLine names the trace frame format this build decodes
func versionLine() string {
	return "tmrtrace (trace protocol " + protocol.Version + ")"
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println(versionLine())
		return
	}

	logger, err := newLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("trace failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", *device, err)
	}

	var pub mqtt.Publisher
	if *broker != "" {
		rp, err := mqtt.NewRealPublisher(*broker, *topic)
		if err != nil {
			return fmt.Errorf("mqtt %s: %w", *broker, err)
		}
		pub = rp
		defer pub.Close()
		logger.Info("forwarding to broker", zap.String("broker", *broker), zap.String("topic", *topic))
	}

	reader := trace.NewReader(port, logger)
	defer reader.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	logger.Info("tracing", zap.String("device", *device), zap.Int("baud", cfg.Baud))

	seen := 0
	var perType [core.EvtOverflow + 1]int
	for {
		select {
		case rec, ok := <-reader.Records():
			if !ok {
				printStats(reader, perType[:])
				return reader.Err()
			}
			if rec.Dropped == 0 && *only >= 0 && int(rec.Event.OID) != *only {
				continue
			}
			fmt.Println(trace.Format(rec))
			if pub != nil {
				if err := pub.Publish(rec); err != nil {
					logger.Warn("publish failed", zap.Error(err))
				}
			}
			if rec.Dropped > 0 {
				continue
			}
			seen++
			if int(rec.Event.EventType) < len(perType) {
				perType[rec.Event.EventType]++
			}
			if *count > 0 && seen >= *count {
				printStats(reader, perType[:])
				return nil
			}

		case sig := <-sigs:
			logger.Debug("stopping", zap.Stringer("signal", sig))
			printStats(reader, perType[:])
			return nil
		}
	}
}

func printStats(reader *trace.Reader, perType []int) {
	if !*verbose {
		return
	}
	st := reader.Stats()
	fmt.Printf("frames=%d corrupt=%d lost=%d dropped=%d\n", st.Frames, st.Corrupt, st.Lost, st.Dropped)
	for code, n := range perType {
		if n > 0 {
			fmt.Printf("  %-9s %d\n", core.EventName(uint8(code)), n)
		}
	}
}
