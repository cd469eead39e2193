package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"timertool/host/trace"
)

// RealPublisher publishes to an actual MQTT broker
type RealPublisher struct {
	client paho.Client
	topic  string
	now    func() time.Time
}

// NewRealPublisher creates a publisher connected to the given broker
func NewRealPublisher(broker, topic string) (*RealPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("tmrtrace").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	if err := connect(client, connectTimeout); err != nil {
		return nil, err
	}

	return &RealPublisher{
		client: client,
		topic:  topic,
		now:    time.Now,
	}, nil
}

const connectTimeout = 10 * time.Second

// connect waits for the first connection. On timeout the client is shut
// down so its retry loop does not outlive the failed call.
func connect(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// Publish sends a record to the broker
func (p *RealPublisher) Publish(rec trace.Record) error {
	payload, err := FormatPayload(rec, p.now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0, not retained: a trace is only interesting live
	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
