// Package metrics exposes relay connection activity as Prometheus metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// connStats is the mutable counter/gauge state tracked for one connection.
type connStats struct {
	framesDecoded uint64
	bytesRead     uint64
	pending       int
	latencies     []time.Duration
	floodAlerts   map[string]uint64
}

// Collector is a custom prometheus.Collector over a mutex-guarded map of
// per-connection stats, the same Describe/Collect shape used elsewhere in
// this codebase's ancestry for per-socket TCP info.
type Collector struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*connStats

	framesDesc  *prometheus.Desc
	bytesDesc   *prometheus.Desc
	pendingDesc *prometheus.Desc
	latencyDesc *prometheus.Desc
	floodDesc   *prometheus.Desc
}

// New returns an empty Collector. Register it with a prometheus.Registry
// (or prometheus.MustRegister) before scraping.
func New() *Collector {
	constLabels := []string{"connection_id"}
	return &Collector{
		conns: make(map[uuid.UUID]*connStats),
		framesDesc: prometheus.NewDesc(
			"weechat_relay_frames_decoded_total",
			"Total number of frames successfully decoded.",
			constLabels, nil,
		),
		bytesDesc: prometheus.NewDesc(
			"weechat_relay_bytes_read_total",
			"Total number of decoded payload bytes (after decompression, excluding frame headers).",
			constLabels, nil,
		),
		pendingDesc: prometheus.NewDesc(
			"weechat_relay_pending_commands",
			"Number of commands currently awaiting a reply.",
			constLabels, nil,
		),
		latencyDesc: prometheus.NewDesc(
			"weechat_relay_command_latency_seconds",
			"Observed command round-trip latency.",
			constLabels, nil,
		),
		floodDesc: prometheus.NewDesc(
			"weechat_relay_event_flood_total",
			"Number of times an event identifier crossed the burst-detection threshold.",
			append(append([]string{}, constLabels...), "event_id"), nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.framesDesc
	descs <- c.bytesDesc
	descs <- c.pendingDesc
	descs <- c.latencyDesc
	descs <- c.floodDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, s := range c.conns {
		label := id.String()
		ch <- prometheus.MustNewConstMetric(c.framesDesc, prometheus.CounterValue, float64(s.framesDecoded), label)
		ch <- prometheus.MustNewConstMetric(c.bytesDesc, prometheus.CounterValue, float64(s.bytesRead), label)
		ch <- prometheus.MustNewConstMetric(c.pendingDesc, prometheus.GaugeValue, float64(s.pending), label)
		if len(s.latencies) > 0 {
			buckets := make(map[float64]uint64, len(prometheus.DefBuckets))
			var sum float64
			for _, d := range s.latencies {
				sec := d.Seconds()
				sum += sec
				for _, upper := range prometheus.DefBuckets {
					if sec <= upper {
						buckets[upper]++
					}
				}
			}
			ch <- prometheus.MustNewConstHistogram(c.latencyDesc, uint64(len(s.latencies)), sum, buckets, label)
		}
		for eventID, count := range s.floodAlerts {
			ch <- prometheus.MustNewConstMetric(c.floodDesc, prometheus.CounterValue, float64(count), label, eventID)
		}
	}
}

// stats returns (creating if necessary) the stats entry for id. Caller must
// hold c.mu.
func (c *Collector) stats(id uuid.UUID) *connStats {
	s, ok := c.conns[id]
	if !ok {
		s = &connStats{floodAlerts: make(map[string]uint64)}
		c.conns[id] = s
	}
	return s
}

// RecordFrame records one decoded frame of n payload bytes for connection id.
func (c *Collector) RecordFrame(id uuid.UUID, payloadBytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats(id)
	s.framesDecoded++
	s.bytesRead += uint64(payloadBytes) //nolint:gosec // payload sizes are bounded well under 2^63
}

// SetPending updates the current in-flight command count for id.
func (c *Collector) SetPending(id uuid.UUID, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats(id).pending = n
}

// RecordLatency records one completed command's round-trip time.
func (c *Collector) RecordLatency(id uuid.UUID, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats(id)
	s.latencies = append(s.latencies, d)
	if len(s.latencies) > 1024 {
		s.latencies = s.latencies[len(s.latencies)-1024:]
	}
}

// RecordFloodAlert increments the burst counter for eventID on connection id.
func (c *Collector) RecordFloodAlert(id uuid.UUID, eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats(id).floodAlerts[eventID]++
}

// Remove drops all tracked state for id, e.g. after the connection
// terminates.
func (c *Collector) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, id)
}
