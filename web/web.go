// Package web serves a small HTTP UI and API for watching decoded relay
// messages remotely: a static page, an SSE stream of messages, and a
// Prometheus scrape endpoint.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mickamy/weechat-relay/broker"
	"github.com/mickamy/weechat-relay/inspect"
	"github.com/mickamy/weechat-relay/metrics"
	"github.com/mickamy/weechat-relay/wire"
)

//go:embed static
var staticFS embed.FS

// Server serves the weechat-tap web UI and API endpoints.
type Server struct {
	httpServer *http.Server
	broker     *broker.Broker
}

// New creates a new web Server backed by the given Broker. If collector is
// non-nil it is registered against its own registry and exposed at
// GET /metrics.
func New(b *broker.Broker, collector *metrics.Collector) *Server {
	s := &Server{broker: b}

	mux := http.NewServeMux()

	sub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(sub)))
	mux.HandleFunc("GET /api/events", s.handleSSE)

	if collector != nil {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collector)
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve starts the HTTP server on the given listener.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush() // send headers immediately

	id, ch := s.broker.Subscribe(64)
	defer s.broker.Unsubscribe(id)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(messageJSON(msg))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

type eventJSON struct {
	ID         string `json:"id,omitempty"`
	HasID      bool   `json:"has_identifier"`
	ValueCount int    `json:"value_count"`
	Dump       string `json:"dump"`
}

func messageJSON(msg *wire.Message) eventJSON {
	return eventJSON{
		ID:         msg.Identifier,
		HasID:      msg.HasIdentifier,
		ValueCount: len(msg.Values),
		Dump:       inspect.JSON(msg),
	}
}
