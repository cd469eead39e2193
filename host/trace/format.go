package trace

import (
	"fmt"

	"timertool/core"
)

// Format renders a record as one line of text
func Format(rec Record) string {
	if rec.Dropped > 0 {
		return fmt.Sprintf("-- %d events dropped --", rec.Dropped)
	}
	evt := rec.Event
	return fmt.Sprintf("%10d  ch%-3d %-9s v1=%d v2=%d",
		evt.Clock, evt.OID, core.EventName(evt.EventType), evt.Value1, evt.Value2)
}
