package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mickamy/weechat-relay/wire"
)

type exportFormat int

const (
	exportJSON exportFormat = iota
)

func (f exportFormat) ext() string {
	return "json"
}

type exportAnalyticsRow struct {
	Identifier string  `json:"identifier"`
	Count      int     `json:"count"`
	RatePerSec float64 `json:"rate_per_sec"`
}

type exportMessage struct {
	Time       string `json:"time"`
	Identifier string `json:"identifier"`
	HasID      bool   `json:"has_identifier"`
	ValueCount int    `json:"value_count"`
	Dump       string `json:"dump"`
}

type exportData struct {
	Captured int    `json:"captured"`
	Exported int    `json:"exported"`
	Filter   string `json:"filter"`
	Search   string `json:"search"`
	Period   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
	Messages  []exportMessage      `json:"messages"`
	Analytics []exportAnalyticsRow `json:"analytics"`
}

// filteredIndices returns the subset of event indices matching filter and search.
func filteredIndices(events []*wire.Message, filterQuery, searchQuery string) []int {
	var conds []filterCondition
	if filterQuery != "" {
		conds = parseFilter(filterQuery)
	}
	searchLower := strings.ToLower(searchQuery)
	var result []int
	for i, msg := range events {
		if len(conds) > 0 && !matchAllConditions(msg, conds) {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(messageText(msg)), searchLower) {
			continue
		}
		result = append(result, i)
	}
	return result
}

func buildExportAnalytics(events []*wire.Message, arrivedAt []time.Time, indices []int) []exportAnalyticsRow {
	type agg struct {
		count     int
		firstSeen time.Time
		lastSeen  time.Time
	}
	groups := make(map[string]*agg)
	var order []string

	for _, i := range indices {
		msg := events[i]
		if !msg.HasIdentifier {
			continue
		}
		g, ok := groups[msg.Identifier]
		if !ok {
			g = &agg{firstSeen: arrivedAt[i]}
			groups[msg.Identifier] = g
			order = append(order, msg.Identifier)
		}
		g.count++
		g.lastSeen = arrivedAt[i]
	}

	rows := make([]exportAnalyticsRow, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		row := analyticsRow{identifier: id, count: g.count, firstSeen: g.firstSeen, lastSeen: g.lastSeen}
		rows = append(rows, exportAnalyticsRow{
			Identifier: id,
			Count:      g.count,
			RatePerSec: row.ratePerSecond(),
		})
	}
	return rows
}

func buildExportData(
	allEvents []*wire.Message, arrivedAt []time.Time, filterQuery, searchQuery string,
) exportData {
	indices := filteredIndices(allEvents, filterQuery, searchQuery)

	var d exportData
	d.Captured = len(allEvents)
	d.Exported = len(indices)
	d.Filter = filterQuery
	d.Search = searchQuery

	if len(indices) > 0 {
		d.Period.Start = formatTimeFull(arrivedAt[indices[0]])
		d.Period.End = formatTimeFull(arrivedAt[indices[len(indices)-1]])
	}

	d.Messages = make([]exportMessage, 0, len(indices))
	for _, i := range indices {
		msg := allEvents[i]
		d.Messages = append(d.Messages, exportMessage{
			Time:       formatTime(arrivedAt[i]),
			Identifier: msg.Identifier,
			HasID:      msg.HasIdentifier,
			ValueCount: len(msg.Values),
			Dump:       wire.Dump(msg),
		})
	}

	d.Analytics = buildExportAnalytics(allEvents, arrivedAt, indices)
	return d
}

func renderJSON(allEvents []*wire.Message, arrivedAt []time.Time, filterQuery, searchQuery string) (string, error) {
	d := buildExportData(allEvents, arrivedAt, filterQuery, searchQuery)
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(b) + "\n", nil
}

// writeExport writes filtered messages to a file and returns the path.
// dir specifies the output directory; if empty, the current directory is used.
func writeExport(
	allEvents []*wire.Message,
	arrivedAt []time.Time,
	filterQuery, searchQuery string,
	format exportFormat,
	dir string,
) (string, error) {
	content, err := renderJSON(allEvents, arrivedAt, filterQuery, searchQuery)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("weechat-tap-%s.%s", time.Now().Format("20060102-150405"), format.ext())
	if dir != "" {
		filename = filepath.Join(dir, filename)
	}

	if err := os.WriteFile(filename, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return filename, nil
}
