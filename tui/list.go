package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mickamy/weechat-relay/wire"
)

func messageStatus(msg *wire.Message) string {
	if !msg.HasIdentifier {
		return ""
	}
	if strings.HasPrefix(msg.Identifier, "_") {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("EVT")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("CMD")
}

// Column widths.
const (
	colMarker = 2 // "▶ " or "  "
	colID     = 24
	colValues = 8
	colTime   = 12
	colStatus = 4
)

func (m Model) renderList(maxRows int) string {
	innerWidth := max(m.width-4, 20)
	colSummary := max(innerWidth-colMarker-colID-colValues-colTime-colStatus-5, 10)

	var title string
	if m.searchQuery != "" || m.filterQuery != "" {
		title = fmt.Sprintf(" weechat-tap (%d/%d messages) ", len(m.displayRows), len(m.events))
	} else {
		title = fmt.Sprintf(" weechat-tap (%d messages) ", len(m.events))
	}
	if m.sortMode == sortIdentifier {
		title += "[by id] "
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth)

	dataRows := max(maxRows-1, 1) // -1 for header row

	start := 0
	if len(m.displayRows) > dataRows {
		start = max(m.cursor-dataRows/2, 0)
		if start+dataRows > len(m.displayRows) {
			start = len(m.displayRows) - dataRows
		}
	}
	end := min(start+dataRows, len(m.displayRows))

	header := fmt.Sprintf("  %-*s %-*s %*s %*s %-*s",
		colID, "Identifier",
		colSummary, "Summary",
		colValues, "Values",
		colTime, "Time",
		colStatus, "",
	)

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(header))
	for i := start; i < end; i++ {
		rows = append(rows, m.renderMessageRow(i, colSummary))
	}

	borderColor := lipgloss.Color("240")
	border = border.BorderForeground(borderColor)
	content := strings.Join(rows, "\n")

	box := border.Render(content)
	lines := strings.Split(box, "\n")
	if len(lines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(borderColor)
		titleStyle := lipgloss.NewStyle().Bold(true)
		dashes := max(innerWidth-len([]rune(title)), 0)
		lines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
		box = strings.Join(lines, "\n")
	}

	return box
}

func (m Model) renderMessageRow(drIdx int, colSummary int) string {
	eventIdx := m.displayRows[drIdx]
	msg := m.events[eventIdx]
	isCursor := drIdx == m.cursor

	marker := "  "
	if isCursor {
		marker = "▶ "
	}

	id := "(none)"
	if msg.HasIdentifier {
		id = msg.Identifier
	}
	id = truncate(id, colID)

	summary := truncate(summarizeValues(msg), colSummary)
	t := formatTime(m.arrivedAt[eventIdx])
	status := messageStatus(msg)

	row := fmt.Sprintf("%s%-*s %-*s %*d %*s %-*s",
		marker,
		colID, id,
		colSummary, summary,
		colValues, len(msg.Values),
		colTime, t,
		colStatus, status,
	)
	if isCursor {
		row = lipgloss.NewStyle().Bold(true).Render(row)
	}
	return row
}

// summarizeValues renders a one-line preview of msg's top-level values, for
// the list row. It never descends into nested arrays/hdata/hashtables.
func summarizeValues(msg *wire.Message) string {
	if len(msg.Values) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(msg.Values))
	for _, v := range msg.Values {
		parts = append(parts, v.Tag().String())
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderPreview() string {
	innerWidth := max(m.width-4, 20)

	if m.cursor < 0 || m.cursor >= len(m.displayRows) {
		return ""
	}

	msg := m.events[m.displayRows[m.cursor]]

	var lines []string
	if msg.HasIdentifier {
		lines = append(lines, "ID:     "+msg.Identifier)
	} else {
		lines = append(lines, "ID:     (none)")
	}
	lines = append(lines, fmt.Sprintf("Values: %d", len(msg.Values)))
	lines = append(lines, "Time:   "+formatTimeFull(m.arrivedAt[m.displayRows[m.cursor]]))

	content := strings.Join(lines, "\n")

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(lipgloss.Color("240"))

	return border.Render(content)
}
