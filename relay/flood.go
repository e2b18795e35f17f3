package relay

import (
	"time"

	"github.com/mickamy/weechat-relay/detect"
	"github.com/mickamy/weechat-relay/wire"
)

// floodAlert reports that a server-push event identifier crossed the burst
// threshold within the tracking window, e.g. a "_nicklist_diff" storm during
// a large netsplit.
type floodAlert struct {
	EventID string
	Count   int
}

// floodDetector wraps a detect.Detector, tuned for relay event streams: 50
// occurrences of the same identifier within one second triggers an alert,
// with a ten-second cooldown before the same identifier alerts again.
type floodDetector struct {
	d *detect.Detector
}

// newFloodDetector returns a detector tuned for relay event streams.
func newFloodDetector() *floodDetector {
	return &floodDetector{d: detect.New(50, time.Second, 10*time.Second)}
}

// record registers one occurrence of msg and returns a non-nil alert only
// the first time the threshold is crossed within a cooldown period.
func (d *floodDetector) record(msg *wire.Message) *floodAlert {
	return d.recordAt(msg, time.Now())
}

func (d *floodDetector) recordAt(msg *wire.Message, t time.Time) *floodAlert {
	res := d.d.Record(msg, t)
	if res.Alert == nil {
		return nil
	}
	return &floodAlert{EventID: res.Alert.EventID, Count: res.Alert.Count}
}
