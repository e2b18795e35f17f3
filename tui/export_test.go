package tui

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mickamy/weechat-relay/wire"
)

func testEvents() ([]*wire.Message, []time.Time) {
	base := time.Date(2026, 2, 20, 15, 4, 5, 123000000, time.UTC)
	events := []*wire.Message{
		{HasIdentifier: true, Identifier: "_buffer_opened", Values: []wire.Value{wire.Int(1)}},
		{HasIdentifier: true, Identifier: "_buffer_line_added", Values: []wire.Value{wire.String{Data: []byte("hi")}}},
		{HasIdentifier: true, Identifier: "_buffer_opened", Values: []wire.Value{wire.Int(2)}},
		{HasIdentifier: false, Values: nil},
	}
	arrivedAt := []time.Time{
		base,
		base.Add(10 * time.Millisecond),
		base.Add(20 * time.Millisecond),
		base.Add(30 * time.Millisecond),
	}
	return events, arrivedAt
}

func TestBuildExportDataCountsAndPeriod(t *testing.T) {
	t.Parallel()
	events, arrivedAt := testEvents()

	d := buildExportData(events, arrivedAt, "", "")

	if d.Captured != 4 {
		t.Fatalf("got Captured %d, want 4", d.Captured)
	}
	if d.Exported != 4 {
		t.Fatalf("got Exported %d, want 4", d.Exported)
	}
	if len(d.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(d.Messages))
	}
	if d.Period.Start == "" || d.Period.End == "" {
		t.Fatalf("expected a non-empty period")
	}
}

func TestBuildExportDataAppliesFilter(t *testing.T) {
	t.Parallel()
	events, arrivedAt := testEvents()

	d := buildExportData(events, arrivedAt, "id:_buffer_opened", "")
	if d.Exported != 2 {
		t.Fatalf("got Exported %d, want 2", d.Exported)
	}
	for _, m := range d.Messages {
		if m.Identifier != "_buffer_opened" {
			t.Fatalf("unexpected identifier %q in filtered export", m.Identifier)
		}
	}
}

func TestBuildExportAnalyticsAggregatesByIdentifier(t *testing.T) {
	t.Parallel()
	events, arrivedAt := testEvents()
	indices := filteredIndices(events, "", "")

	rows := buildExportAnalytics(events, arrivedAt, indices)

	var openedCount int
	for _, r := range rows {
		if r.Identifier == "_buffer_opened" {
			openedCount = r.Count
		}
	}
	if openedCount != 2 {
		t.Fatalf("got count %d for _buffer_opened, want 2", openedCount)
	}
}

func TestRenderJSONProducesValidJSON(t *testing.T) {
	t.Parallel()
	events, arrivedAt := testEvents()

	out, err := renderJSON(events, arrivedAt, "", "")
	if err != nil {
		t.Fatalf("renderJSON: %v", err)
	}

	var d exportData
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if d.Captured != 4 {
		t.Fatalf("got Captured %d, want 4", d.Captured)
	}
}

func TestWriteExportCreatesFile(t *testing.T) {
	t.Parallel()
	events, arrivedAt := testEvents()
	dir := t.TempDir()

	path, err := writeExport(events, arrivedAt, "", "", exportJSON, dir)
	if err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Fatalf("got path %q, want prefix %q", path, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "_buffer_opened") {
		t.Fatalf("exported file missing expected content")
	}
}

func TestFilteredIndicesEmptyFilterReturnsAll(t *testing.T) {
	t.Parallel()
	events, _ := testEvents()
	got := filteredIndices(events, "", "")
	if len(got) != len(events) {
		t.Fatalf("got %d indices, want %d", len(got), len(events))
	}
}
