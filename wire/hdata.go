package wire

import (
	"fmt"
	"strings"

	"github.com/mickamy/weechat-relay/relayerr"
)

// parseHPath splits a slash-separated hpath string into its segment names.
// An empty string yields a nil (zero-segment) path.
func parseHPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// parseKeys parses a comma-separated "name:type3" token list into the
// hdata key schema. A token missing the ':' separator, or whose type is
// not one of the seven primitive tags, is relayerr.ErrInvalidData.
func parseKeys(s string) ([]HdataKey, error) {
	if s == "" {
		return nil, nil
	}
	tokens := strings.Split(s, ",")
	keys := make([]HdataKey, 0, len(tokens))
	for _, tok := range tokens {
		name, typ3, ok := strings.Cut(tok, ":")
		if !ok {
			return nil, fmt.Errorf("wire: hdata key %q missing ':': %w", tok, relayerr.ErrInvalidData)
		}
		tag, known := tagFromBytes([]byte(typ3))
		if !known || !tag.IsPrimitive() {
			return nil, fmt.Errorf("wire: hdata key %q has non-primitive type %q: %w", tok, typ3, relayerr.ErrInvalidData)
		}
		keys = append(keys, HdataKey{Name: name, Type: tag})
	}
	return keys, nil
}

// Hdata decodes an "hda" payload.
func (d *Decoder) Hdata() (*Hdata, error) {
	hpathStr, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode hda hpath: %w", err)
	}
	keysStr, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode hda keys: %w", err)
	}
	n, err := d.count()
	if err != nil {
		return nil, fmt.Errorf("wire: decode hda count: %w", err)
	}

	hpath := parseHPath(string(hpathStr.Data))
	keys, err := parseKeys(string(keysStr.Data))
	if err != nil {
		return nil, err
	}

	items := make([]HdataItem, 0, n)
	for i := 0; i < n; i++ {
		pointers := make([]Pointer, len(hpath))
		for j := range hpath {
			p, err := d.Pointer()
			if err != nil {
				return nil, fmt.Errorf("wire: decode hda item %d pointer %d: %w", i, j, err)
			}
			pointers[j] = p
		}
		values := make(map[string]Value, len(keys))
		for _, k := range keys {
			v, err := d.Primitive(k.Type)
			if err != nil {
				return nil, fmt.Errorf("wire: decode hda item %d key %q: %w", i, k.Name, err)
			}
			values[k.Name] = v
		}
		items = append(items, HdataItem{Pointers: pointers, Values: values})
	}

	return &Hdata{HPath: hpath, Keys: keys, Items: items}, nil
}

// Info decodes an "inf" payload: two String values, either may be null.
func (d *Decoder) Info() (*Info, error) {
	name, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode inf name: %w", err)
	}
	value, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode inf value: %w", err)
	}
	return &Info{Name: name, Value: value}, nil
}

// Infolist decodes an "inl" payload.
func (d *Decoder) Infolist() (*Infolist, error) {
	name, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode inl name: %w", err)
	}
	n, err := d.count()
	if err != nil {
		return nil, fmt.Errorf("wire: decode inl count: %w", err)
	}

	items := make([]InfolistItem, 0, n)
	for i := 0; i < n; i++ {
		varCount, err := d.count()
		if err != nil {
			return nil, fmt.Errorf("wire: decode inl item %d var count: %w", i, err)
		}
		vars := make([]InfolistVar, 0, varCount)
		for j := 0; j < varCount; j++ {
			vname, err := d.String()
			if err != nil {
				return nil, fmt.Errorf("wire: decode inl item %d var %d name: %w", i, j, err)
			}
			vtag, err := d.Tag()
			if err != nil {
				return nil, fmt.Errorf("wire: decode inl item %d var %d type: %w", i, j, err)
			}
			if !vtag.IsPrimitive() {
				return nil, fmt.Errorf("wire: inl item %d var %d type %s is not primitive: %w", i, j, vtag, relayerr.ErrInvalidData)
			}
			vval, err := d.Primitive(vtag)
			if err != nil {
				return nil, fmt.Errorf("wire: decode inl item %d var %d value: %w", i, j, err)
			}
			vars = append(vars, InfolistVar{Name: string(vname.Data), Type: vtag, Value: vval})
		}
		items = append(items, InfolistItem{Vars: vars})
	}

	return &Infolist{Name: name, Items: items}, nil
}

// Any decodes the value for an already-read tag, dispatching to the
// primitive or composite decoder as appropriate.
func (d *Decoder) Any(tag Tag) (Value, error) {
	switch tag {
	case TagChar, TagInt, TagLong, TagString, TagBuffer, TagPointer, TagTime:
		return d.Primitive(tag)
	case TagArray:
		return d.Array()
	case TagHashtable:
		return d.Hashtable()
	case TagHdata:
		return d.Hdata()
	case TagInfo:
		return d.Info()
	case TagInfolist:
		return d.Infolist()
	default:
		return nil, fmt.Errorf("wire: unknown tag %s: %w", tag, relayerr.ErrInvalidData)
	}
}

// Object reads one tagged object: a 3-byte type identifier followed by its
// value.
func (d *Decoder) Object() (Value, error) {
	tag, err := d.Tag()
	if err != nil {
		return nil, fmt.Errorf("wire: decode object tag: %w", err)
	}
	return d.Any(tag)
}

// Decode parses a complete framed payload into a Message: an optional
// leading identifier string followed by zero or more tagged objects,
// decoded until the end of the buffer is reached.
func Decode(payload []byte) (*Message, error) {
	d := NewDecoder(payload)

	idStr, err := d.String()
	if err != nil {
		return nil, fmt.Errorf("wire: decode identifier: %w", err)
	}

	msg := &Message{}
	if !idStr.Null {
		msg.HasIdentifier = true
		msg.Identifier = string(idStr.Data)
	}

	for !d.AtEnd() {
		v, err := d.Object()
		if err != nil {
			return nil, err
		}
		msg.Values = append(msg.Values, v)
	}

	return msg, nil
}
