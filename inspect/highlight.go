package inspect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/mickamy/weechat-relay/wire"
)

var (
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	lexer = lexers.Get("json")
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

// Highlight returns s (expected to be JSON output) with ANSI terminal
// syntax highlighting applied. On error or empty input, s is returned
// unchanged.
func Highlight(s string) string {
	if s == "" {
		return s
	}

	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return s
	}

	return strings.TrimRight(buf.String(), "\n")
}

// Render decodes and formats msg in one step: JSON-shape it and apply
// terminal highlighting.
func Render(msg *wire.Message) string {
	return Highlight(JSON(msg))
}

var (
	hdataHeaderRe = regexp.MustCompile(`"type":\s*"hda"`)
	hpathRe       = regexp.MustCompile(`"hpath":\s*"[^"]*"`)
	pointerRe     = regexp.MustCompile(`"0x[0-9a-f]+"`)

	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// HighlightHdata applies the same bold-node/dim-metric treatment the
// teacher used for EXPLAIN plan nodes, retargeted at hdata headers: hpath
// declarations are bold, pointer addresses are dim.
func HighlightHdata(s string) string {
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if hdataHeaderRe.MatchString(line) || hpathRe.MatchString(line) {
			line = hpathRe.ReplaceAllStringFunc(line, func(m string) string {
				return boldStyle.Render(m)
			})
		}
		line = pointerRe.ReplaceAllStringFunc(line, func(m string) string {
			return dimStyle.Render(m)
		})
		lines[i] = line
	}

	return strings.Join(lines, "\n")
}
