package tui

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mickamy/weechat-relay/wire"
)

type filterKind int

const (
	filterText filterKind = iota // plain text substring match on identifier
	filterID                     // id:_buffer_opened — exact identifier match
	filterKindValue              // kind:str, kind:hda, etc. — any top-level value of that tag
	filterNone                   // none — messages with no identifier
)

type filterCondition struct {
	kind filterKind
	text string
}

func parseFilter(input string) []filterCondition {
	tokens := strings.Fields(input)
	conds := make([]filterCondition, 0, len(tokens))

	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch {
		case lower == "none":
			conds = append(conds, filterCondition{kind: filterNone})
		case strings.HasPrefix(lower, "id:"):
			conds = append(conds, filterCondition{kind: filterID, text: lower[3:]})
		case strings.HasPrefix(lower, "kind:"):
			conds = append(conds, filterCondition{kind: filterKindValue, text: lower[5:]})
		default:
			conds = append(conds, filterCondition{kind: filterText, text: lower})
		}
	}
	return conds
}

func (c filterCondition) matches(msg *wire.Message) bool {
	switch c.kind {
	case filterText:
		return strings.Contains(strings.ToLower(messageText(msg)), c.text)
	case filterID:
		return msg.HasIdentifier && strings.ToLower(msg.Identifier) == c.text
	case filterKindValue:
		for _, v := range msg.Values {
			if strings.EqualFold(v.Tag().String(), c.text) {
				return true
			}
		}
		return false
	case filterNone:
		return !msg.HasIdentifier
	}
	return false
}

func matchAllConditions(msg *wire.Message, conds []filterCondition) bool {
	for _, c := range conds {
		if !c.matches(msg) {
			return false
		}
	}
	return true
}

func describeFilter(input string) string {
	conds := parseFilter(input)
	if len(conds) == 0 {
		return input
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		switch c.kind {
		case filterText:
			parts = append(parts, "text:"+c.text)
		case filterID:
			parts = append(parts, "id:"+c.text)
		case filterKindValue:
			parts = append(parts, "kind:"+c.text)
		case filterNone:
			parts = append(parts, "none")
		}
	}
	return strings.Join(parts, " ")
}

func sortRowsByIdentifier(rows []int, events []*wire.Message) {
	slices.SortFunc(rows, func(a, b int) int {
		return cmp.Compare(messageText(events[a]), messageText(events[b]))
	})
}

// wrapFooterItems arranges items into lines that fit within the given width.
func wrapFooterItems(items []string, width int) string {
	if width <= 0 {
		return "  " + strings.Join(items, "  ")
	}

	const prefix = "  "
	const sep = "  "

	var lines []string
	line := prefix

	for _, item := range items {
		switch {
		case line == prefix:
			line += item
		case len(line)+len(sep)+len(item) <= width:
			line += sep + item
		default:
			lines = append(lines, line)
			line = prefix + item
		}
	}
	if line != prefix {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
