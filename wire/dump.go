package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a decoded Message as an indented, human-readable tree, one
// object per line. It exists for logging and for the tui package's copy and
// export actions; it is not a wire format.
func Dump(msg *Message) string {
	var b strings.Builder
	if msg.HasIdentifier {
		fmt.Fprintf(&b, "id: %s\n", msg.Identifier)
	} else {
		b.WriteString("id: (none)\n")
	}
	for i, v := range msg.Values {
		fmt.Fprintf(&b, "[%d] ", i)
		dumpValue(&b, v, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpValue(b *strings.Builder, v Value, depth int) {
	switch t := v.(type) {
	case Char:
		fmt.Fprintf(b, "chr %d\n", byte(t))
	case Int:
		fmt.Fprintf(b, "int %d\n", int32(t))
	case Long:
		fmt.Fprintf(b, "lon %d\n", int64(t))
	case String:
		fmt.Fprintf(b, "str %s\n", dumpStrLike(t.Data, t.Null))
	case Buffer:
		fmt.Fprintf(b, "buf %s (%d bytes)\n", dumpStrLike(t.Data, t.Null), len(t.Data))
	case Pointer:
		fmt.Fprintf(b, "ptr 0x%x\n", uint64(t))
	case Time:
		fmt.Fprintf(b, "tim %d\n", uint64(t))
	case *Array:
		fmt.Fprintf(b, "arr[%s] (%d)\n", t.ElemTag, len(t.Elems))
		for i, e := range t.Elems {
			indent(b, depth+1)
			fmt.Fprintf(b, "[%d] ", i)
			dumpValue(b, e, depth+1)
		}
	case *Hashtable:
		fmt.Fprintf(b, "htb[%s->%s] (%d)\n", t.KeyTag, t.ValueTag, len(t.Pairs))
		for i, p := range t.Pairs {
			indent(b, depth+1)
			fmt.Fprintf(b, "[%d] key=", i)
			dumpValue(b, p.Key, depth+1)
			indent(b, depth+1)
			b.WriteString("    value=")
			dumpValue(b, p.Value, depth+1)
		}
	case *Hdata:
		fmt.Fprintf(b, "hda %s keys=%s (%d items)\n", strings.Join(t.HPath, "/"), dumpKeys(t.Keys), len(t.Items))
		for i, item := range t.Items {
			indent(b, depth+1)
			fmt.Fprintf(b, "item %d: ptrs=%s\n", i, dumpPointers(item.Pointers))
			for _, k := range t.Keys {
				indent(b, depth+2)
				fmt.Fprintf(b, "%s: ", k.Name)
				dumpValue(b, item.Values[k.Name], depth+2)
			}
		}
	case *Info:
		fmt.Fprintf(b, "inf %s=%s\n", dumpStrLike(t.Name.Data, t.Name.Null), dumpStrLike(t.Value.Data, t.Value.Null))
	case *Infolist:
		fmt.Fprintf(b, "inl %s (%d items)\n", dumpStrLike(t.Name.Data, t.Name.Null), len(t.Items))
		for i, item := range t.Items {
			indent(b, depth+1)
			fmt.Fprintf(b, "item %d:\n", i)
			for _, va := range item.Vars {
				indent(b, depth+2)
				fmt.Fprintf(b, "%s (%s): ", va.Name, va.Type)
				dumpValue(b, va.Value, depth+2)
			}
		}
	default:
		fmt.Fprintf(b, "<unknown %T>\n", v)
	}
}

func dumpStrLike(data []byte, null bool) string {
	if null {
		return "(null)"
	}
	return strconv.Quote(string(data))
}

func dumpPointers(ptrs []Pointer) string {
	parts := make([]string, len(ptrs))
	for i, p := range ptrs {
		parts[i] = fmt.Sprintf("0x%x", uint64(p))
	}
	return strings.Join(parts, ",")
}

func dumpKeys(keys []HdataKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Name + ":" + k.Type.String()
	}
	return strings.Join(parts, ",")
}
