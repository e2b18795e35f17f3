// Package inspect renders a decoded wire.Message as syntax-highlighted text
// for terminal display.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mickamy/weechat-relay/wire"
)

// JSON renders msg as a JSON-shaped object tree: not wire.Dump's indented
// plain-text tree, but nested braces and quoted keys, which is what the chroma
// "json" lexer expects to tokenize meaningfully.
func JSON(msg *wire.Message) string {
	var b strings.Builder
	b.WriteString("{\n")
	if msg.HasIdentifier {
		fmt.Fprintf(&b, "  \"id\": %s,\n", strconv.Quote(msg.Identifier))
	} else {
		b.WriteString("  \"id\": null,\n")
	}
	b.WriteString("  \"values\": [\n")
	for i, v := range msg.Values {
		b.WriteString("    ")
		jsonValue(&b, v, 2)
		if i < len(msg.Values)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}")
	return b.String()
}

func jsonValue(b *strings.Builder, v wire.Value, depth int) {
	switch t := v.(type) {
	case wire.Char:
		fmt.Fprintf(b, `{"type": "chr", "value": %d}`, byte(t))
	case wire.Int:
		fmt.Fprintf(b, `{"type": "int", "value": %d}`, int32(t))
	case wire.Long:
		fmt.Fprintf(b, `{"type": "lon", "value": %d}`, int64(t))
	case wire.String:
		fmt.Fprintf(b, `{"type": "str", "value": %s}`, jsonStrLike(t.Data, t.Null))
	case wire.Buffer:
		fmt.Fprintf(b, `{"type": "buf", "value": %s, "bytes": %d}`, jsonStrLike(t.Data, t.Null), len(t.Data))
	case wire.Pointer:
		fmt.Fprintf(b, `{"type": "ptr", "value": "0x%x"}`, uint64(t))
	case wire.Time:
		fmt.Fprintf(b, `{"type": "tim", "value": %d}`, uint64(t))
	case *wire.Array:
		fmt.Fprintf(b, "{\"type\": \"arr\", \"elemType\": %q, \"elems\": [", t.ElemTag.String())
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			jsonValue(b, e, depth+1)
		}
		b.WriteString("]}")
	case *wire.Hashtable:
		fmt.Fprintf(b, "{\"type\": \"htb\", \"keyType\": %q, \"valueType\": %q, \"pairs\": [",
			t.KeyTag.String(), t.ValueTag.String())
		for i, p := range t.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(`{"key": `)
			jsonValue(b, p.Key, depth+1)
			b.WriteString(`, "value": `)
			jsonValue(b, p.Value, depth+1)
			b.WriteString("}")
		}
		b.WriteString("]}")
	case *wire.Hdata:
		fmt.Fprintf(b, "{\"type\": \"hda\", \"hpath\": %q, \"items\": [", strings.Join(t.HPath, "/"))
		for i, item := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(`{"pointers": [`)
			for j, p := range item.Pointers {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, `"0x%x"`, uint64(p))
			}
			b.WriteString(`], "fields": {`)
			for k, key := range t.Keys {
				if k > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, "%q: ", key.Name)
				jsonValue(b, item.Values[key.Name], depth+1)
			}
			b.WriteString("}}")
		}
		b.WriteString("]}")
	case *wire.Info:
		fmt.Fprintf(b, `{"type": "inf", "name": %s, "value": %s}`,
			jsonStrLike(t.Name.Data, t.Name.Null), jsonStrLike(t.Value.Data, t.Value.Null))
	case *wire.Infolist:
		fmt.Fprintf(b, "{\"type\": \"inl\", \"name\": %s, \"items\": [", jsonStrLike(t.Name.Data, t.Name.Null))
		for i, item := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("{")
			for j, va := range item.Vars {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, "%q: ", va.Name)
				jsonValue(b, va.Value, depth+1)
			}
			b.WriteString("}")
		}
		b.WriteString("]}")
	default:
		fmt.Fprintf(b, `{"type": "unknown"}`)
	}
}

func jsonStrLike(data []byte, null bool) string {
	if null {
		return "null"
	}
	return strconv.Quote(string(data))
}
