package detect_test

import (
	"testing"
	"time"

	"github.com/mickamy/weechat-relay/detect"
	"github.com/mickamy/weechat-relay/wire"
)

func msg(id string) *wire.Message {
	return &wire.Message{HasIdentifier: true, Identifier: id}
}

func TestBelowThreshold(t *testing.T) {
	t.Parallel()
	d := detect.New(5, time.Second, 10*time.Second)
	now := time.Now()
	m := msg("_nicklist_diff")

	for i := range 4 {
		r := d.Record(m, now.Add(time.Duration(i)*100*time.Millisecond))
		if r.Matched {
			t.Fatal("unexpected match before threshold")
		}
		if r.Alert != nil {
			t.Fatal("unexpected alert before threshold")
		}
	}
}

func TestAtThreshold(t *testing.T) {
	t.Parallel()
	d := detect.New(5, time.Second, 10*time.Second)
	now := time.Now()
	m := msg("_nicklist_diff")

	for i := range 4 {
		d.Record(m, now.Add(time.Duration(i)*100*time.Millisecond))
	}

	r := d.Record(m, now.Add(400*time.Millisecond))
	if !r.Matched {
		t.Fatal("expected matched at threshold")
	}
	if r.Alert == nil {
		t.Fatal("expected alert at threshold")
	}
	if r.Alert.Count != 5 {
		t.Fatalf("got count %d, want 5", r.Alert.Count)
	}
	if r.Alert.EventID != m.Identifier {
		t.Fatalf("got event id %q, want %q", r.Alert.EventID, m.Identifier)
	}
}

func TestMatchedAfterThreshold(t *testing.T) {
	t.Parallel()
	d := detect.New(5, time.Second, 10*time.Second)
	now := time.Now()
	m := msg("_nicklist_diff")

	// Cross threshold.
	for i := range 5 {
		d.Record(m, now.Add(time.Duration(i)*100*time.Millisecond))
	}

	// Subsequent events within window should be matched but no alert (cooldown).
	for i := range 5 {
		r := d.Record(m, now.Add(time.Duration(500+i*100)*time.Millisecond))
		if !r.Matched {
			t.Fatalf("event %d: expected matched after threshold", i)
		}
		if r.Alert != nil {
			t.Fatalf("event %d: expected cooldown to suppress alert", i)
		}
	}
}

func TestWindowExpiry(t *testing.T) {
	t.Parallel()
	d := detect.New(5, time.Second, 10*time.Second)
	now := time.Now()
	m := msg("_nicklist_diff")

	// 3 occurrences in first batch.
	for i := range 3 {
		d.Record(m, now.Add(time.Duration(i)*100*time.Millisecond))
	}

	// 3 occurrences after window expires. Total 6, but only 3 in window.
	after := now.Add(2 * time.Second)
	for i := range 3 {
		r := d.Record(m, after.Add(time.Duration(i)*100*time.Millisecond))
		if r.Matched {
			t.Fatal("unexpected match: only 3 in window")
		}
	}
}

func TestCooldownExpiry(t *testing.T) {
	t.Parallel()
	d := detect.New(5, 2*time.Second, time.Second)
	now := time.Now()
	m := msg("_nicklist_diff")

	// Trigger first alert.
	for i := range 5 {
		d.Record(m, now.Add(time.Duration(i)*100*time.Millisecond))
	}

	// After cooldown expires, should alert again.
	after := now.Add(1500 * time.Millisecond)
	r := d.Record(m, after)
	if !r.Matched {
		t.Fatal("expected matched after cooldown expired")
	}
	if r.Alert == nil {
		t.Fatal("expected alert after cooldown expired")
	}
}

func TestDifferentEventIDs(t *testing.T) {
	t.Parallel()
	d := detect.New(3, time.Second, 10*time.Second)
	now := time.Now()
	m1 := msg("_nicklist_diff")
	m2 := msg("_buffer_line_added")

	// Interleave: 2 of each, below threshold for both.
	d.Record(m1, now)
	d.Record(m2, now.Add(100*time.Millisecond))
	d.Record(m1, now.Add(200*time.Millisecond))
	d.Record(m2, now.Add(300*time.Millisecond))

	// m1's identifier hits threshold.
	r := d.Record(m1, now.Add(400*time.Millisecond))
	if r.Alert == nil {
		t.Fatal("expected alert for m1")
	}
	if r.Alert.EventID != m1.Identifier {
		t.Fatalf("got event id %q, want %q", r.Alert.EventID, m1.Identifier)
	}

	// m2's identifier also hits threshold (3 occurrences).
	r = d.Record(m2, now.Add(500*time.Millisecond))
	if r.Alert == nil {
		t.Fatal("expected alert for m2")
	}
	if r.Alert.EventID != m2.Identifier {
		t.Fatalf("got event id %q, want %q", r.Alert.EventID, m2.Identifier)
	}
}

func TestMessageWithoutIdentifier(t *testing.T) {
	t.Parallel()
	d := detect.New(1, time.Second, 10*time.Second)
	r := d.Record(&wire.Message{HasIdentifier: false}, time.Now())
	if r.Matched {
		t.Fatal("expected no match for a message with no identifier")
	}
}

func TestNilMessage(t *testing.T) {
	t.Parallel()
	d := detect.New(1, time.Second, 10*time.Second)
	r := d.Record(nil, time.Now())
	if r.Matched {
		t.Fatal("expected no match for a nil message")
	}
}
