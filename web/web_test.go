package web

import (
	"bufio"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mickamy/weechat-relay/broker"
	"github.com/mickamy/weechat-relay/metrics"
	"github.com/mickamy/weechat-relay/wire"
)

func TestHandleSSEStreamsPublishedMessages(t *testing.T) {
	t.Parallel()
	b := broker.New()
	s := New(b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.Handler().ServeHTTP(rec, req)
		close(done)
	}()

	for b.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	b.Publish(&wire.Message{HasIdentifier: true, Identifier: "_buffer_opened"})

	deadline := time.After(2 * time.Second)
	var body string
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for SSE payload, body so far: %q", rec.Body.String())
		default:
		}
		body = rec.Body.String()
		if strings.Contains(body, "_buffer_opened") {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	scanner := bufio.NewScanner(strings.NewReader(body))
	var found bool
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "data: ") && strings.Contains(scanner.Text(), "_buffer_opened") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a data: line containing the identifier, got %q", body)
	}
}

func TestNewWithoutCollectorOmitsMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := New(broker.New(), nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code == 200 {
		t.Fatalf("expected /metrics to be unregistered, got status 200")
	}
}

func TestNewWithCollectorExposesMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := New(broker.New(), metrics.New())

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}
