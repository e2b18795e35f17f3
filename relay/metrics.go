package relay

import (
	"time"

	"github.com/mickamy/weechat-relay/metrics"
)

// SetMetrics attaches a metrics.Collector to this connection. It must be
// called before Init to capture the handshake itself; calling it more than
// once replaces the previous collector. A connection with no collector
// attached incurs no metrics overhead.
func (c *Connection) SetMetrics(m *metrics.Collector) {
	c.metrics = m
	c.disp.onFlood = func(eventID string, _ int) {
		if c.metrics != nil {
			c.metrics.RecordFloodAlert(c.ID, eventID)
		}
	}
}

func (c *Connection) recordFrame(payloadBytes int) {
	if c.metrics != nil {
		c.metrics.RecordFrame(c.ID, payloadBytes)
	}
}

func (c *Connection) recordLatency(d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordLatency(c.ID, d)
	}
}

func (c *Connection) updatePending() {
	if c.metrics != nil {
		c.metrics.SetPending(c.ID, c.registry.size())
	}
}

func (c *Connection) removeMetrics() {
	if c.metrics != nil {
		c.metrics.Remove(c.ID)
	}
}
