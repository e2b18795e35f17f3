package inspect_test

import (
	"strings"
	"testing"

	"github.com/mickamy/weechat-relay/inspect"
	"github.com/mickamy/weechat-relay/wire"
)

func TestJSONRendersIdentifierAndValues(t *testing.T) {
	t.Parallel()
	msg := &wire.Message{
		HasIdentifier: true,
		Identifier:    "_buffer_opened",
		Values: []wire.Value{
			wire.Int(42),
			wire.String{Data: []byte("hello")},
		},
	}

	out := inspect.JSON(msg)
	for _, want := range []string{`"id": "_buffer_opened"`, `"type": "int", "value": 42`, `"type": "str", "value": "hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWithNoIdentifierEmitsNull(t *testing.T) {
	t.Parallel()
	out := inspect.JSON(&wire.Message{HasIdentifier: false})
	if !strings.Contains(out, `"id": null`) {
		t.Fatalf("output missing null id:\n%s", out)
	}
}

func TestJSONRendersHdataWithPointersAndFields(t *testing.T) {
	t.Parallel()
	msg := &wire.Message{
		Values: []wire.Value{
			&wire.Hdata{
				HPath: []string{"buffer"},
				Keys:  []wire.HdataKey{{Name: "number", Type: wire.TagInt}},
				Items: []wire.HdataItem{
					{
						Pointers: []wire.Pointer{0x1234},
						Values:   map[string]wire.Value{"number": wire.Int(1)},
					},
				},
			},
		},
	}

	out := inspect.JSON(msg)
	for _, want := range []string{`"hpath": "buffer"`, `"0x1234"`, `"number"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHighlightReturnsInputUnchangedWhenEmpty(t *testing.T) {
	t.Parallel()
	if got := inspect.Highlight(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestHighlightAppliesANSICodes(t *testing.T) {
	t.Parallel()
	out := inspect.Highlight(`{"id": "x"}`)
	if out == `{"id": "x"}` {
		t.Fatalf("expected highlighting to change the output")
	}
}

func TestRenderCombinesJSONAndHighlight(t *testing.T) {
	t.Parallel()
	msg := &wire.Message{HasIdentifier: true, Identifier: "_pong"}
	out := inspect.Render(msg)
	if out == "" {
		t.Fatalf("expected non-empty rendered output")
	}
}

func TestHighlightHdataBoldsHpathAndDimsPointers(t *testing.T) {
	t.Parallel()
	in := `"type": "hda", "hpath": "buffer", "items": [{"pointers": ["0x1234"]}]`
	out := inspect.HighlightHdata(in)
	if out == in {
		t.Fatalf("expected hdata highlighting to change the output")
	}
}

func TestHighlightHdataEmptyInput(t *testing.T) {
	t.Parallel()
	if got := inspect.HighlightHdata(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
