package wire

import "fmt"

// Tag identifies the kind of a decoded Value. It corresponds to one of the
// twelve three-byte textual type identifiers used on the wire.
type Tag uint8

const (
	TagChar Tag = iota
	TagInt
	TagLong
	TagString
	TagBuffer
	TagPointer
	TagTime
	TagArray
	TagHashtable
	TagHdata
	TagInfo
	TagInfolist
)

var tagNames = map[Tag]string{
	TagChar:      "chr",
	TagInt:       "int",
	TagLong:      "lon",
	TagString:    "str",
	TagBuffer:    "buf",
	TagPointer:   "ptr",
	TagTime:      "tim",
	TagArray:     "arr",
	TagHashtable: "htb",
	TagHdata:     "hda",
	TagInfo:      "inf",
	TagInfolist:  "inl",
}

var tagByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		m[name] = tag
	}
	return m
}()

// String returns the three-byte wire identifier for the tag, e.g. "str".
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// IsPrimitive reports whether t is one of the seven primitive tags, the
// only tags legal as Array/Hashtable element types or hdata key types.
func (t Tag) IsPrimitive() bool {
	switch t {
	case TagChar, TagInt, TagLong, TagString, TagBuffer, TagPointer, TagTime:
		return true
	}
	return false
}

// tagFromBytes maps a raw 3-byte wire identifier to a Tag.
func tagFromBytes(b []byte) (Tag, bool) {
	tag, ok := tagByName[string(b)]
	return tag, ok
}
