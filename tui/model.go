// Package tui is a live terminal viewer of decoded WeeChat relay messages:
// a scrolling list, a per-message inspector, a filter/search bar, and an
// identifier-frequency analytics tab, built with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/weechat-relay/clipboard"
	"github.com/mickamy/weechat-relay/wire"
)

type viewMode int

const (
	viewList viewMode = iota
	viewInspect
	viewAnalytics
)

type sortMode int

const (
	sortChronological sortMode = iota
	sortIdentifier
)

// Model is the Bubble Tea model for the relay message viewer.
type Model struct {
	source <-chan *wire.Message

	events     []*wire.Message
	arrivedAt  []time.Time
	cursor     int // index into displayRows
	follow     bool
	width      int
	height     int
	err        error
	view       viewMode
	displayRows []int // indices into events, after filter/search/sort
	sortMode    sortMode

	searchMode   bool
	searchQuery  string
	searchCursor int
	filterMode   bool
	filterQuery  string
	filterCursor int

	inspectScroll int

	analyticsRows     []analyticsRow
	analyticsCursor   int
	analyticsHScroll  int
	analyticsSortMode analyticsSortMode

	alert      string
	alertUntil time.Time
}

// eventMsg carries one message received from source.
type eventMsg struct{ Msg *wire.Message }

// closedMsg signals source was closed (the connection terminated).
type closedMsg struct{}

// New creates a Model that reads decoded messages from source (typically a
// broker.Broker subscription channel) until it is closed.
func New(source <-chan *wire.Message) Model {
	return Model{
		source: source,
		follow: true,
	}
}

// Init starts the receive loop.
func (m Model) Init() tea.Cmd {
	return recvEvent(m.source)
}

func recvEvent(source <-chan *wire.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-source
		if !ok {
			return closedMsg{}
		}
		return eventMsg{Msg: msg}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.events = append(m.events, msg.Msg)
		m.arrivedAt = append(m.arrivedAt, time.Now())
		if m.view != viewList {
			return m, recvEvent(m.source)
		}
		m.displayRows = m.rebuildDisplayRows()
		if m.follow {
			m.cursor = max(len(m.displayRows)-1, 0)
		}
		return m, recvEvent(m.source)

	case closedMsg:
		m.err = errConnectionClosed
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewInspect:
			return m.updateInspect(msg)
		case viewAnalytics:
			return m.updateAnalytics(msg)
		case viewList:
			return m.updateList(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	if m.err != nil {
		return friendlyError(m.err, m.width)
	}

	if len(m.events) == 0 {
		return "Waiting for events..."
	}

	switch m.view {
	case viewInspect:
		return m.renderInspector()
	case viewAnalytics:
		return m.renderAnalytics()
	case viewList:
	}

	var footer string
	switch {
	case m.searchMode:
		footer = "  / " + renderInputWithCursor(m.searchQuery, m.searchCursor)
	case m.filterMode:
		footer = "  filter: " + renderInputWithCursor(m.filterQuery, m.filterCursor)
	default:
		items := []string{
			"q: quit", "j/k: navigate",
			"enter: inspect", "a: analytics",
			"c: copy", "x: export",
			"/: search", "f: filter", "s: sort",
		}
		footer = wrapFooterItems(items, m.width)
		if m.filterQuery != "" {
			footer += "\n  " + fmt.Sprintf("[filter: %s]", describeFilter(m.filterQuery))
		}
		if m.searchQuery != "" || m.filterQuery != "" {
			footer += "  esc: clear"
		}
		if m.sortMode == sortIdentifier {
			footer += "  [sorted: identifier]"
		}
		if m.alert != "" && time.Now().Before(m.alertUntil) {
			footer += "  " + m.alert
		}
	}

	footerLines := strings.Count(footer, "\n") + 1
	listHeight := m.listHeight(footerLines)

	return strings.Join([]string{
		m.renderList(listHeight),
		m.renderPreview(),
		footer,
	}, "\n")
}

func (m Model) listHeight(footerLines int) int {
	extra := max(footerLines-1, 0)
	return max(m.height-12-extra, 3)
}

func (m Model) rebuildDisplayRows() []int {
	var conds []filterCondition
	if m.filterQuery != "" {
		conds = parseFilter(m.filterQuery)
	}
	searchLower := strings.ToLower(m.searchQuery)

	var rows []int
	for i, msg := range m.events {
		if len(conds) > 0 && !matchAllConditions(msg, conds) {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(messageText(msg)), searchLower) {
			continue
		}
		rows = append(rows, i)
	}

	if m.sortMode == sortIdentifier {
		sortRowsByIdentifier(rows, m.events)
	}
	return rows
}

func messageText(msg *wire.Message) string {
	if msg.HasIdentifier {
		return msg.Identifier
	}
	return ""
}

func (m Model) cursorMessage() *wire.Message {
	if m.cursor < 0 || m.cursor >= len(m.displayRows) {
		return nil
	}
	return m.events[m.displayRows[m.cursor]]
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		return m.updateSearch(msg)
	}
	if m.filterMode {
		return m.updateFilter(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if len(m.displayRows) > 0 {
			m.view = viewInspect
			m.inspectScroll = 0
		}
		return m, nil
	case "c":
		return m.copyMessage(), nil
	case "x":
		return m.exportAll(), nil
	case "/":
		m.searchMode = true
		m.searchQuery = ""
		m.searchCursor = 0
		return m, nil
	case "f":
		m.filterMode = true
		m.filterQuery = ""
		m.filterCursor = 0
		return m, nil
	case "s":
		return m.toggleSort(), nil
	case "a":
		return m.enterAnalytics(), nil
	case "esc":
		return m.clearFilter(), nil
	case "j", "down", "k", "up":
		return m.navigateCursor(msg.String()), nil
	case "ctrl+d", "pgdown", "ctrl+u", "pgup":
		return m.pageScroll(msg.String()), nil
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchQuery = ""
		m.displayRows = m.rebuildDisplayRows()
		m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
		return m, nil
	case "backspace":
		if m.searchCursor > 0 {
			runes := []rune(m.searchQuery)
			m.searchQuery = string(runes[:m.searchCursor-1]) + string(runes[m.searchCursor:])
			m.searchCursor--
			m.displayRows = m.rebuildDisplayRows()
			m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "left":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "right":
		if m.searchCursor < len([]rune(m.searchQuery)) {
			m.searchCursor++
		}
		return m, nil
	case "up", "down":
		return m.navigateCursor(msg.String()), nil
	}

	r := msg.Runes
	if len(r) == 0 {
		return m, nil
	}

	runes := []rune(m.searchQuery)
	m.searchQuery = string(runes[:m.searchCursor]) + string(r) + string(runes[m.searchCursor:])
	m.searchCursor += len(r)
	m.displayRows = m.rebuildDisplayRows()
	m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		return m, nil
	case "esc":
		m.filterMode = false
		m.filterQuery = ""
		m.displayRows = m.rebuildDisplayRows()
		m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
		return m, nil
	case "backspace":
		if m.filterCursor > 0 {
			runes := []rune(m.filterQuery)
			m.filterQuery = string(runes[:m.filterCursor-1]) + string(runes[m.filterCursor:])
			m.filterCursor--
			m.displayRows = m.rebuildDisplayRows()
			m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "left":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
		return m, nil
	case "right":
		if m.filterCursor < len([]rune(m.filterQuery)) {
			m.filterCursor++
		}
		return m, nil
	case "up", "down":
		return m.navigateCursor(msg.String()), nil
	}

	r := msg.Runes
	if len(r) == 0 {
		return m, nil
	}

	runes := []rune(m.filterQuery)
	m.filterQuery = string(runes[:m.filterCursor]) + string(r) + string(runes[m.filterCursor:])
	m.filterCursor += len(r)
	m.displayRows = m.rebuildDisplayRows()
	m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
	return m, nil
}

func (m Model) pageScroll(key string) Model {
	half := max(m.listHeight(1)/2, 1)
	switch key {
	case "ctrl+d", "pgdown":
		m.cursor = min(m.cursor+half, max(len(m.displayRows)-1, 0))
		if len(m.displayRows) > 0 && m.cursor == len(m.displayRows)-1 {
			m.follow = true
		}
	case "ctrl+u", "pgup":
		m.cursor = max(m.cursor-half, 0)
		m.follow = false
	}
	return m
}

func (m Model) navigateCursor(key string) Model {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.follow = false
		}
	case "down", "j":
		if len(m.displayRows) > 0 && m.cursor < len(m.displayRows)-1 {
			m.cursor++
		}
		if len(m.displayRows) > 0 && m.cursor == len(m.displayRows)-1 {
			m.follow = true
		}
	}
	return m
}

func (m Model) copyMessage() Model {
	msg := m.cursorMessage()
	if msg == nil {
		return m
	}
	_ = clipboard.Copy(context.Background(), wire.Dump(msg))
	return m.showAlert("copied!")
}

func (m Model) exportAll() Model {
	path, err := writeExport(m.events, m.arrivedAt, m.filterQuery, m.searchQuery, exportJSON, "")
	if err != nil {
		return m.showAlert("export failed: " + err.Error())
	}
	return m.showAlert("exported to " + path)
}

func (m Model) showAlert(text string) Model {
	m.alert = text
	m.alertUntil = time.Now().Add(3 * time.Second)
	return m
}

func (m Model) toggleSort() Model {
	switch m.sortMode {
	case sortChronological:
		m.sortMode = sortIdentifier
	case sortIdentifier:
		m.sortMode = sortChronological
	}
	m.displayRows = m.rebuildDisplayRows()
	m.cursor = 0
	return m
}

func (m Model) enterAnalytics() Model {
	m.analyticsRows = m.buildAnalyticsRows()
	sortAnalyticsRows(m.analyticsRows, m.analyticsSortMode)
	m.analyticsCursor = 0
	m.analyticsHScroll = 0
	m.view = viewAnalytics
	return m
}

func (m Model) clearFilter() Model {
	changed := false
	if m.searchQuery != "" {
		m.searchQuery = ""
		changed = true
	}
	if m.filterQuery != "" {
		m.filterQuery = ""
		changed = true
	}
	if changed {
		m.displayRows = m.rebuildDisplayRows()
		m.cursor = min(m.cursor, max(len(m.displayRows)-1, 0))
	}
	return m
}
