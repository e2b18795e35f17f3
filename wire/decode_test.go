package wire_test

import (
	"errors"
	"testing"

	"github.com/mickamy/weechat-relay/relayerr"
	"github.com/mickamy/weechat-relay/wire"
)

func TestDecodePrimitivesRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*wire.Encoder)
		check func(t *testing.T, v wire.Value)
	}{
		{
			name:  "chr",
			build: func(e *wire.Encoder) { e.Char(0xAB) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Char); got != 0xAB {
					t.Fatalf("chr = %v, want 0xAB", got)
				}
			},
		},
		{
			name:  "int",
			build: func(e *wire.Encoder) { e.Int(-12345) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Int); got != -12345 {
					t.Fatalf("int = %v, want -12345", got)
				}
			},
		},
		{
			name:  "lon",
			build: func(e *wire.Encoder) { e.Long(-9223372036854775808) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Long); got != -9223372036854775808 {
					t.Fatalf("lon = %v, want min int64", got)
				}
			},
		},
		{
			name:  "str present",
			build: func(e *wire.Encoder) { e.Str("hello") },
			check: func(t *testing.T, v wire.Value) {
				s := v.(wire.String)
				if s.Null || string(s.Data) != "hello" {
					t.Fatalf("str = %+v, want hello", s)
				}
			},
		},
		{
			name:  "str empty",
			build: func(e *wire.Encoder) { e.Str("") },
			check: func(t *testing.T, v wire.Value) {
				s := v.(wire.String)
				if s.Null || len(s.Data) != 0 {
					t.Fatalf("str = %+v, want empty non-null", s)
				}
			},
		},
		{
			name:  "str null",
			build: func(e *wire.Encoder) { e.NullStr() },
			check: func(t *testing.T, v wire.Value) {
				s := v.(wire.String)
				if !s.Null {
					t.Fatalf("str = %+v, want null", s)
				}
			},
		},
		{
			name:  "ptr null sentinel",
			build: func(e *wire.Encoder) { e.Pointer(0) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Pointer); got != 0 {
					t.Fatalf("ptr = %v, want 0", got)
				}
			},
		},
		{
			name:  "ptr nonzero",
			build: func(e *wire.Encoder) { e.Pointer(0xdeadbeef) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Pointer); got != 0xdeadbeef {
					t.Fatalf("ptr = %v, want 0xdeadbeef", got)
				}
			},
		},
		{
			name:  "tim",
			build: func(e *wire.Encoder) { e.Time(1700000000) },
			check: func(t *testing.T, v wire.Value) {
				if got := v.(wire.Time); got != 1700000000 {
					t.Fatalf("tim = %v, want 1700000000", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := wire.NewEncoder()
			tt.build(e)
			d := wire.NewDecoder(e.Bytes())

			var v wire.Value
			var err error
			switch tt.name[:3] {
			case "chr":
				v, err = d.Char()
			case "int":
				v, err = d.Int()
			case "lon":
				v, err = d.Long()
			case "str":
				v, err = d.String()
			case "ptr":
				v, err = d.Pointer()
			case "tim":
				v, err = d.Time()
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !d.AtEnd() {
				t.Fatalf("cursor not at end: pos=%d len=%d", d.Pos(), d.Len())
			}
			tt.check(t, v)
		})
	}
}

func TestDecodeArray(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Tag(wire.TagInt).Count(3).Int(1).Int(2).Int(3)

	d := wire.NewDecoder(e.Bytes())
	arr, err := d.Array()
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	if !d.AtEnd() {
		t.Fatalf("cursor not at end")
	}
	if arr.ElemTag != wire.TagInt || len(arr.Elems) != 3 {
		t.Fatalf("arr = %+v", arr)
	}
	for i, want := range []int32{1, 2, 3} {
		if got := arr.Elems[i].(wire.Int); int32(got) != want {
			t.Fatalf("elem %d = %v, want %d", i, got, want)
		}
	}
}

func TestDecodeArrayEmptyCount(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Tag(wire.TagString).Count(0)

	d := wire.NewDecoder(e.Bytes())
	arr, err := d.Array()
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	if len(arr.Elems) != 0 {
		t.Fatalf("want empty array, got %d elems", len(arr.Elems))
	}
}

func TestDecodeArrayRejectsNonPrimitiveElementType(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Tag(wire.TagArray).Count(0)

	d := wire.NewDecoder(e.Bytes())
	if _, err := d.Array(); !errors.Is(err, relayerr.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestDecodeHashtable(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Tag(wire.TagString).Tag(wire.TagInt).Count(2).
		Str("a").Int(1).
		Str("b").Int(2)

	d := wire.NewDecoder(e.Bytes())
	htb, err := d.Hashtable()
	if err != nil {
		t.Fatalf("Hashtable: %v", err)
	}
	if len(htb.Pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(htb.Pairs))
	}
	if k := htb.Pairs[0].Key.(wire.String); string(k.Data) != "a" {
		t.Fatalf("key 0 = %q", k.Data)
	}
	if v := htb.Pairs[1].Value.(wire.Int); v != 2 {
		t.Fatalf("value 1 = %v", v)
	}
}

func TestDecodeHdata(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Str("buffer").Str("number:int,name:str").Count(2).
		Pointer(0x1111).Int(1).Str("weechat").
		Pointer(0x2222).Int(2).Str("#go-nuts")

	d := wire.NewDecoder(e.Bytes())
	hda, err := d.Hdata()
	if err != nil {
		t.Fatalf("Hdata: %v", err)
	}
	if len(hda.HPath) != 1 || hda.HPath[0] != "buffer" {
		t.Fatalf("hpath = %v", hda.HPath)
	}
	if len(hda.Keys) != 2 {
		t.Fatalf("keys = %v", hda.Keys)
	}
	if len(hda.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(hda.Items))
	}
	item0 := hda.Items[0]
	if item0.Pointers[0] != 0x1111 {
		t.Fatalf("item0 ptr = %v", item0.Pointers)
	}
	if name := item0.Values["name"].(wire.String); string(name.Data) != "weechat" {
		t.Fatalf("item0 name = %q", name.Data)
	}
}

func TestDecodeHdataMultiSegmentHPath(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Str("buffer/lines/line").Str("").Count(1).
		Pointer(1).Pointer(2).Pointer(3)

	d := wire.NewDecoder(e.Bytes())
	hda, err := d.Hdata()
	if err != nil {
		t.Fatalf("Hdata: %v", err)
	}
	if len(hda.HPath) != 3 {
		t.Fatalf("hpath = %v", hda.HPath)
	}
	if len(hda.Items[0].Pointers) != 3 {
		t.Fatalf("pointers = %v", hda.Items[0].Pointers)
	}
}

func TestDecodeHdataBadKeyToken(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Str("buffer").Str("badtoken").Count(0)

	d := wire.NewDecoder(e.Bytes())
	if _, err := d.Hdata(); !errors.Is(err, relayerr.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestDecodeInfo(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Str("version").Str("4.1.0")

	d := wire.NewDecoder(e.Bytes())
	inf, err := d.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if string(inf.Name.Data) != "version" || string(inf.Value.Data) != "4.1.0" {
		t.Fatalf("inf = %+v", inf)
	}
}

func TestDecodeInfolist(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Str("buffer").Count(1).
		Count(2).
		Str("number").Tag(wire.TagInt).Int(1).
		Str("name").Tag(wire.TagString).Str("weechat")

	d := wire.NewDecoder(e.Bytes())
	inl, err := d.Infolist()
	if err != nil {
		t.Fatalf("Infolist: %v", err)
	}
	if len(inl.Items) != 1 || len(inl.Items[0].Vars) != 2 {
		t.Fatalf("inl = %+v", inl)
	}
	if inl.Items[0].Vars[0].Name != "number" {
		t.Fatalf("var 0 name = %q", inl.Items[0].Vars[0].Name)
	}
}

func TestDecodeMessageNoIdentifier(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Identifier("", false)
	e.Tag(wire.TagInt).Int(42)

	msg, err := wire.Decode(e.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.HasIdentifier {
		t.Fatalf("HasIdentifier = true, want false")
	}
	if len(msg.Values) != 1 {
		t.Fatalf("values = %d, want 1", len(msg.Values))
	}
}

func TestDecodeMessageWithEventIdentifier(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Identifier("_buffer_opened", true)
	e.Tag(wire.TagString).Str("ignored")

	msg, err := wire.Decode(e.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !msg.HasIdentifier || msg.Identifier != "_buffer_opened" {
		t.Fatalf("identifier = %+v", msg)
	}
}

func TestDecodeMessageWithCorrelationIdentifier(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Identifier("1a", true) // not a known event name -> correlation id, dispatcher's job to parse

	msg, err := wire.Decode(e.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Identifier != "1a" {
		t.Fatalf("identifier = %q, want 1a", msg.Identifier)
	}
}

func TestDecodeTruncatedArrayIsUnexpectedEndOfMessage(t *testing.T) {
	t.Parallel()

	e := wire.NewEncoder()
	e.Tag(wire.TagInt).Count(3).Int(1).Int(2) // declares 3, only 2 present

	d := wire.NewDecoder(e.Bytes())
	_, err := d.Array()
	if !errors.Is(err, relayerr.ErrUnexpectedEndOfMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedEndOfMessage", err)
	}
}

func TestDecodeUnknownTypeTagIsInvalidData(t *testing.T) {
	t.Parallel()

	d := wire.NewDecoder([]byte("xyz"))
	if _, err := d.Tag(); !errors.Is(err, relayerr.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestDecodeLongParseFailureIsInvalidData(t *testing.T) {
	t.Parallel()

	buf := append([]byte{byte(3)}, "abc"...)
	d := wire.NewDecoder(buf)
	if _, err := d.Long(); !errors.Is(err, relayerr.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}
