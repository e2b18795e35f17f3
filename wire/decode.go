package wire

import (
	"fmt"
	"strconv"

	"github.com/mickamy/weechat-relay/relayerr"
)

// Decoder is a bounds-checked cursor over an owned input buffer. All
// advances are checked against the end of the buffer before the read is
// performed; a short read never panics, it returns
// relayerr.ErrUnexpectedEndOfMessage.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for decoding. buf is not copied; the caller must not
// mutate it while decoding is in progress.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Pos returns the current cursor offset.
func (d *Decoder) Pos() int { return d.pos }

// Len returns the total buffer length (the cursor's end pointer).
func (d *Decoder) Len() int { return len(d.buf) }

// AtEnd reports whether the cursor has reached the end of the buffer.
func (d *Decoder) AtEnd() bool { return d.pos >= len(d.buf) }

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("wire: negative read length %d: %w", n, relayerr.ErrInvalidData)
	}
	if d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("wire: read %d bytes at offset %d (len %d): %w", n, d.pos, len(d.buf), relayerr.ErrUnexpectedEndOfMessage)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) byte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (d *Decoder) int32() (int32, error) {
	v, err := d.uint32()
	return int32(v), err
}

// Tag reads the next 3-byte textual type identifier.
func (d *Decoder) Tag() (Tag, error) {
	b, err := d.take(3)
	if err != nil {
		return 0, err
	}
	tag, ok := tagFromBytes(b)
	if !ok {
		return 0, fmt.Errorf("wire: unknown type identifier %q: %w", b, relayerr.ErrInvalidData)
	}
	return tag, nil
}

// Char decodes a "chr" payload.
func (d *Decoder) Char() (Char, error) {
	b, err := d.byte()
	if err != nil {
		return 0, fmt.Errorf("wire: decode chr: %w", err)
	}
	return Char(b), nil
}

// Int decodes an "int" payload.
func (d *Decoder) Int() (Int, error) {
	v, err := d.int32()
	if err != nil {
		return 0, fmt.Errorf("wire: decode int: %w", err)
	}
	return Int(v), nil
}

// Long decodes a "lon" payload: a 1-byte length then that many ASCII
// decimal bytes, parsed as a signed 64-bit integer.
func (d *Decoder) Long() (Long, error) {
	n, err := d.byte()
	if err != nil {
		return 0, fmt.Errorf("wire: decode lon length: %w", err)
	}
	raw, err := d.take(int(n))
	if err != nil {
		return 0, fmt.Errorf("wire: decode lon literal: %w", err)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: decode lon literal %q: %w", raw, relayerr.ErrInvalidData)
	}
	return Long(v), nil
}

// readLengthPrefixed decodes the common "str"/"buf" shape: a 4-byte signed
// length L, then L bytes of data if L > 0, empty if L == 0, absent if
// L == -1. Any other negative L is invalid.
func (d *Decoder) readLengthPrefixed() (data []byte, null bool, err error) {
	l, err := d.int32()
	if err != nil {
		return nil, false, err
	}
	switch {
	case l == -1:
		return nil, true, nil
	case l == 0:
		return []byte{}, false, nil
	case l > 0:
		b, err := d.take(int(l))
		if err != nil {
			return nil, false, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return cp, false, nil
	default:
		return nil, false, fmt.Errorf("wire: negative length %d: %w", l, relayerr.ErrInvalidData)
	}
}

// String decodes a "str" payload.
func (d *Decoder) String() (String, error) {
	data, null, err := d.readLengthPrefixed()
	if err != nil {
		return String{}, fmt.Errorf("wire: decode str: %w", err)
	}
	return String{Data: data, Null: null}, nil
}

// Buffer decodes a "buf" payload.
func (d *Decoder) Buffer() (Buffer, error) {
	data, null, err := d.readLengthPrefixed()
	if err != nil {
		return Buffer{}, fmt.Errorf("wire: decode buf: %w", err)
	}
	return Buffer{Data: data, Null: null}, nil
}

// Pointer decodes a "ptr" payload: a 1-byte length then that many ASCII hex
// bytes. The sentinel "length 1, byte '0'" is the null pointer and decodes
// to 0, like any other hex literal that happens to parse to zero.
func (d *Decoder) Pointer() (Pointer, error) {
	n, err := d.byte()
	if err != nil {
		return 0, fmt.Errorf("wire: decode ptr length: %w", err)
	}
	raw, err := d.take(int(n))
	if err != nil {
		return 0, fmt.Errorf("wire: decode ptr literal: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseUint(string(raw), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: decode ptr literal %q: %w", raw, relayerr.ErrInvalidData)
	}
	return Pointer(v), nil
}

// Time decodes a "tim" payload: a 1-byte length then that many ASCII
// decimal bytes, parsed as an unsigned 64-bit integer.
func (d *Decoder) Time() (Time, error) {
	n, err := d.byte()
	if err != nil {
		return 0, fmt.Errorf("wire: decode tim length: %w", err)
	}
	raw, err := d.take(int(n))
	if err != nil {
		return 0, fmt.Errorf("wire: decode tim literal: %w", err)
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: decode tim literal %q: %w", raw, relayerr.ErrInvalidData)
	}
	return Time(v), nil
}

// Primitive decodes the value for one of the seven primitive tags. It is
// the only decode entry point legal for Array elements, Hashtable
// keys/values, and hdata key values.
func (d *Decoder) Primitive(tag Tag) (Value, error) {
	switch tag {
	case TagChar:
		return d.Char()
	case TagInt:
		return d.Int()
	case TagLong:
		return d.Long()
	case TagString:
		return d.String()
	case TagBuffer:
		return d.Buffer()
	case TagPointer:
		return d.Pointer()
	case TagTime:
		return d.Time()
	default:
		return nil, fmt.Errorf("wire: %s is not a primitive type: %w", tag, relayerr.ErrInvalidData)
	}
}

func (d *Decoder) count() (int, error) {
	n, err := d.int32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("wire: negative count %d: %w", n, relayerr.ErrInvalidData)
	}
	return int(n), nil
}

// Array decodes an "arr" payload.
//
// If any element fails to decode, the already-decoded siblings are simply
// not retained: Go's garbage collector reclaims them, so there is nothing
// for this method to free explicitly (see DESIGN.md on the original's
// array-cleanup loop).
func (d *Decoder) Array() (*Array, error) {
	elemTag, err := d.Tag()
	if err != nil {
		return nil, fmt.Errorf("wire: decode arr element type: %w", err)
	}
	if !elemTag.IsPrimitive() {
		return nil, fmt.Errorf("wire: arr element type %s is not primitive: %w", elemTag, relayerr.ErrInvalidData)
	}
	n, err := d.count()
	if err != nil {
		return nil, fmt.Errorf("wire: decode arr count: %w", err)
	}
	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.Primitive(elemTag)
		if err != nil {
			return nil, fmt.Errorf("wire: decode arr element %d: %w", i, err)
		}
		elems = append(elems, v)
	}
	return &Array{ElemTag: elemTag, Elems: elems}, nil
}

// Hashtable decodes an "htb" payload.
func (d *Decoder) Hashtable() (*Hashtable, error) {
	keyTag, err := d.Tag()
	if err != nil {
		return nil, fmt.Errorf("wire: decode htb key type: %w", err)
	}
	if !keyTag.IsPrimitive() {
		return nil, fmt.Errorf("wire: htb key type %s is not primitive: %w", keyTag, relayerr.ErrInvalidData)
	}
	valTag, err := d.Tag()
	if err != nil {
		return nil, fmt.Errorf("wire: decode htb value type: %w", err)
	}
	if !valTag.IsPrimitive() {
		return nil, fmt.Errorf("wire: htb value type %s is not primitive: %w", valTag, relayerr.ErrInvalidData)
	}
	n, err := d.count()
	if err != nil {
		return nil, fmt.Errorf("wire: decode htb count: %w", err)
	}
	pairs := make([]HashPair, 0, n)
	for i := 0; i < n; i++ {
		k, err := d.Primitive(keyTag)
		if err != nil {
			return nil, fmt.Errorf("wire: decode htb key %d: %w", i, err)
		}
		v, err := d.Primitive(valTag)
		if err != nil {
			return nil, fmt.Errorf("wire: decode htb value %d: %w", i, err)
		}
		pairs = append(pairs, HashPair{Key: k, Value: v})
	}
	return &Hashtable{KeyTag: keyTag, ValueTag: valTag, Pairs: pairs}, nil
}
