package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mickamy/weechat-relay/clipboard"
)

type analyticsSortMode int

const (
	analyticsSortCount analyticsSortMode = iota
	analyticsSortRate
	analyticsSortLast
)

func (s analyticsSortMode) String() string {
	switch s {
	case analyticsSortCount:
		return "count"
	case analyticsSortRate:
		return "rate"
	case analyticsSortLast:
		return "last seen"
	}
	return "count"
}

func (s analyticsSortMode) next() analyticsSortMode {
	switch s {
	case analyticsSortCount:
		return analyticsSortRate
	case analyticsSortRate:
		return analyticsSortLast
	case analyticsSortLast:
		return analyticsSortCount
	}
	return analyticsSortCount
}

type analyticsRow struct {
	identifier string
	count      int
	firstSeen  time.Time
	lastSeen   time.Time
}

func (r analyticsRow) ratePerSecond() float64 {
	span := r.lastSeen.Sub(r.firstSeen).Seconds()
	if span <= 0 {
		return float64(r.count)
	}
	return float64(r.count) / span
}

// buildAnalyticsRows aggregates per-identifier counts and arrival rate from
// every event captured so far, the same one-row-per-distinct-key shape the
// teacher used for per-normalized-query stats.
func (m Model) buildAnalyticsRows() []analyticsRow {
	type agg struct {
		count     int
		firstSeen time.Time
		lastSeen  time.Time
	}
	groups := make(map[string]*agg)
	var order []string

	for i, msg := range m.events {
		if !msg.HasIdentifier {
			continue
		}
		id := msg.Identifier
		g, ok := groups[id]
		if !ok {
			g = &agg{firstSeen: m.arrivedAt[i]}
			groups[id] = g
			order = append(order, id)
		}
		g.count++
		g.lastSeen = m.arrivedAt[i]
	}

	rows := make([]analyticsRow, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		rows = append(rows, analyticsRow{
			identifier: id,
			count:      g.count,
			firstSeen:  g.firstSeen,
			lastSeen:   g.lastSeen,
		})
	}
	return rows
}

func sortAnalyticsRows(rows []analyticsRow, mode analyticsSortMode) {
	sort.Slice(rows, func(i, j int) bool {
		switch mode {
		case analyticsSortCount:
			return rows[i].count > rows[j].count
		case analyticsSortRate:
			return rows[i].ratePerSecond() > rows[j].ratePerSecond()
		case analyticsSortLast:
			return rows[i].lastSeen.After(rows[j].lastSeen)
		}
		return rows[i].count > rows[j].count
	})
}

func (m Model) updateAnalytics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		m.view = viewList
		m.displayRows = m.rebuildDisplayRows()
		if m.follow {
			m.cursor = max(len(m.displayRows)-1, 0)
		}
		return m, nil
	case "j", "down":
		if len(m.analyticsRows) > 0 && m.analyticsCursor < len(m.analyticsRows)-1 {
			m.analyticsCursor++
		}
		return m, nil
	case "k", "up":
		if m.analyticsCursor > 0 {
			m.analyticsCursor--
		}
		return m, nil
	case "ctrl+d":
		half := m.analyticsVisibleRows() / 2
		m.analyticsCursor = min(m.analyticsCursor+half, max(len(m.analyticsRows)-1, 0))
		return m, nil
	case "ctrl+u":
		half := m.analyticsVisibleRows() / 2
		m.analyticsCursor = max(m.analyticsCursor-half, 0)
		return m, nil
	case "s":
		m.analyticsSortMode = m.analyticsSortMode.next()
		sortAnalyticsRows(m.analyticsRows, m.analyticsSortMode)
		m.analyticsCursor = 0
		return m, nil
	case "c":
		if m.analyticsCursor >= 0 && m.analyticsCursor < len(m.analyticsRows) {
			_ = clipboard.Copy(context.Background(), m.analyticsRows[m.analyticsCursor].identifier)
			return m.showAlert("copied!"), nil
		}
		return m, nil
	}
	return m, nil
}

const (
	analyticsColMarker = 2  // "▶ " or "  "
	analyticsColCount  = 7  // "  Count" right-aligned
	analyticsColRate   = 10 // "      Rate" right-aligned
	analyticsColLast   = 14 // "          Last" right-aligned
)

func (m Model) analyticsVisibleRows() int {
	return max(m.height-4, 3)
}

func (m Model) renderAnalytics() string {
	innerWidth := max(m.width-4, 20)
	visibleRows := m.analyticsVisibleRows()

	title := fmt.Sprintf(" Analytics (%d identifiers) [sort: %s] ", len(m.analyticsRows), m.analyticsSortMode)

	fixedWidth := analyticsColMarker + analyticsColCount + analyticsColRate + analyticsColLast + 3
	colID := max(innerWidth-fixedWidth, 10)

	header := fmt.Sprintf("  %*s %*s %*s  %s",
		analyticsColCount, "Count",
		analyticsColRate, "Rate/s",
		analyticsColLast, "Last seen",
		"Identifier",
	)

	dataRows := max(visibleRows-1, 1)

	start := 0
	if len(m.analyticsRows) > dataRows {
		start = max(m.analyticsCursor-dataRows/2, 0)
		if start+dataRows > len(m.analyticsRows) {
			start = len(m.analyticsRows) - dataRows
		}
	}
	end := min(start+dataRows, len(m.analyticsRows))

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(header))
	for i := start; i < end; i++ {
		r := m.analyticsRows[i]
		marker := "  "
		if i == m.analyticsCursor {
			marker = "▶ "
		}

		id := truncate(r.identifier, colID)

		row := fmt.Sprintf("%s%*d %*.2f %*s  %s",
			marker,
			analyticsColCount, r.count,
			analyticsColRate, r.ratePerSecond(),
			analyticsColLast, formatTime(r.lastSeen),
			id,
		)
		rows = append(rows, row)
	}

	content := strings.Join(rows, "\n")

	borderColor := lipgloss.Color("240")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(borderColor).
		Render(content)

	boxLines := strings.Split(box, "\n")
	if len(boxLines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		titleStyle := lipgloss.NewStyle().Bold(true)
		dashes := max(innerWidth-len([]rune(title)), 0)
		boxLines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
	}

	if n := len(boxLines); n > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		help := " q: back  j/k: scroll  s: sort  c: copy "
		dashes := max(innerWidth-len([]rune(help)), 0)
		boxLines[n-1] = borderFg.Render("╰") +
			lipgloss.NewStyle().Faint(true).Render(help) +
			borderFg.Render(strings.Repeat("─", dashes)+"╯")
	}

	return strings.Join(boxLines, "\n")
}
