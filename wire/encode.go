package wire

import (
	"encoding/binary"
	"strconv"
)

// Encoder builds a raw wire payload. It is deliberately small: this
// library never needs to encode arbitrary values onto the wire (the only
// commands it emits, init and ping, are plain ASCII lines built in
// relay/command.go), so this type exists to construct fixtures in tests and
// to round-trip the decoder's output.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated payload.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) putUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// Tag writes a 3-byte type identifier.
func (e *Encoder) Tag(t Tag) *Encoder {
	e.buf = append(e.buf, t.String()...)
	return e
}

// Char writes a "chr" payload (tag not included).
func (e *Encoder) Char(v byte) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

// Int writes an "int" payload (tag not included).
func (e *Encoder) Int(v int32) *Encoder {
	e.putUint32(uint32(v))
	return e
}

// Long writes a "lon" payload (tag not included).
func (e *Encoder) Long(v int64) *Encoder {
	s := strconv.FormatInt(v, 10)
	e.buf = append(e.buf, byte(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// strLike writes the common str/buf shape: a 4-byte signed length, then
// the data. null writes the -1 sentinel regardless of data.
func (e *Encoder) strLike(data []byte, null bool) *Encoder {
	if null {
		e.putUint32(^uint32(0))
		return e
	}
	e.putUint32(uint32(int32(len(data))))
	e.buf = append(e.buf, data...)
	return e
}

// String writes a "str" payload (tag not included).
func (e *Encoder) String(s String) *Encoder { return e.strLike(s.Data, s.Null) }

// Str is a convenience for a non-null "str" payload.
func (e *Encoder) Str(s string) *Encoder { return e.strLike([]byte(s), false) }

// NullStr writes the null "str" sentinel.
func (e *Encoder) NullStr() *Encoder { return e.strLike(nil, true) }

// Buffer writes a "buf" payload (tag not included).
func (e *Encoder) Buffer(b Buffer) *Encoder { return e.strLike(b.Data, b.Null) }

// Pointer writes a "ptr" payload (tag not included).
func (e *Encoder) Pointer(v uint64) *Encoder {
	s := strconv.FormatUint(v, 16)
	e.buf = append(e.buf, byte(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// Time writes a "tim" payload (tag not included).
func (e *Encoder) Time(v uint64) *Encoder {
	s := strconv.FormatUint(v, 10)
	e.buf = append(e.buf, byte(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// Count writes a 4-byte element/item count.
func (e *Encoder) Count(n int) *Encoder {
	e.putUint32(uint32(int32(n))) //nolint:gosec // n is always a small, non-negative count in tests
	return e
}

// Identifier writes the leading message identifier: a non-null "str" for
// id, or the null sentinel when id is empty and hasID is false.
func (e *Encoder) Identifier(id string, hasID bool) *Encoder {
	if !hasID {
		return e.NullStr()
	}
	return e.Str(id)
}
