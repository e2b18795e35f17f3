package wire

// Value is the sum type decoded from a single wire object: one of the
// twelve concrete types below, each implementing Tag().
type Value interface {
	Tag() Tag
}

// Char is a single unsigned byte ("chr").
type Char byte

func (Char) Tag() Tag { return TagChar }

// Int is a signed 32-bit integer ("int").
type Int int32

func (Int) Tag() Tag { return TagInt }

// Long is a signed 64-bit integer ("lon"), decoded from an ASCII decimal
// literal.
type Long int64

func (Long) Tag() Tag { return TagLong }

// String is an optional byte string ("str"). Null is true when the wire
// length was -1 (absent); Data is nil but distinguished from an empty,
// present string (Null false, len(Data)==0).
type String struct {
	Data []byte
	Null bool
}

func (String) Tag() Tag { return TagString }

// Buffer is an optional opaque byte string ("buf"), with the same
// null/empty/present shape as String.
type Buffer struct {
	Data []byte
	Null bool
}

func (Buffer) Tag() Tag { return TagBuffer }

// Pointer is an unsigned 64-bit identifier ("ptr"), decoded from an ASCII
// hex literal. The null pointer is represented by the value 0.
type Pointer uint64

func (Pointer) Tag() Tag { return TagPointer }

// Time is an unsigned 64-bit seconds-since-epoch value ("tim"), decoded
// from an ASCII decimal literal.
type Time uint64

func (Time) Tag() Tag { return TagTime }

// Array is an ordered sequence of same-typed primitive elements ("arr").
type Array struct {
	ElemTag Tag
	Elems   []Value
}

func (Array) Tag() Tag { return TagArray }

// HashPair is one (key, value) entry of a Hashtable.
type HashPair struct {
	Key   Value
	Value Value
}

// Hashtable is an ordered sequence of (key, value) pairs with declared
// primitive key and value types ("htb").
type Hashtable struct {
	KeyTag   Tag
	ValueTag Tag
	Pairs    []HashPair
}

func (Hashtable) Tag() Tag { return TagHashtable }

// HdataKey is one (name, type) entry of an Hdata's key schema.
type HdataKey struct {
	Name string
	Type Tag
}

// HdataItem is one row of an Hdata table: one Pointer per hpath segment,
// plus one typed Value per declared key.
type HdataItem struct {
	Pointers []Pointer
	Values   map[string]Value
}

// Hdata is WeeChat's typed table of objects: an hpath (list of object-type
// names), a key schema (name -> primitive type), and an ordered sequence of
// items ("hda"). Pointer values are treated as opaque identifiers; no
// pointer graph is reconstructed by this library.
type Hdata struct {
	HPath []string
	Keys  []HdataKey
	Items []HdataItem
}

func (Hdata) Tag() Tag { return TagHdata }

// Info is a single (name, value) string pair ("inf"). Either String may be
// null.
type Info struct {
	Name  String
	Value String
}

func (Info) Tag() Tag { return TagInfo }

// InfolistVar is one (name, type, value) triple within an InfolistItem.
type InfolistVar struct {
	Name  string
	Type  Tag
	Value Value
}

// InfolistItem is one ordered sequence of variables within an Infolist.
type InfolistItem struct {
	Vars []InfolistVar
}

// Infolist is a named, ordered sequence of items, each an ordered sequence
// of named, typed values ("inl").
type Infolist struct {
	Name  String
	Items []InfolistItem
}

func (Infolist) Tag() Tag { return TagInfolist }

// Message is a single decoded payload: an optional echoed identifier
// (resolved by the caller against an event table or parsed as a
// correlation id) plus the ordered sequence of objects that followed it.
type Message struct {
	// HasIdentifier is false when the leading string was null (length -1),
	// the wire's "no identifier" sentinel.
	HasIdentifier bool
	// Identifier is the raw decoded leading string, valid only when
	// HasIdentifier is true. It is either a known event name (e.g.
	// "_buffer_opened") or the lowercase hex correlation id of the command
	// that originated this reply; distinguishing the two is the dispatch
	// layer's job, not the decoder's (see the relay package's dispatcher).
	Identifier string
	Values     []Value
}
