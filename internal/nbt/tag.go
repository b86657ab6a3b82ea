package nbt

import (
	"fmt"
)

// Kind identifies a tag variant.
type Kind uint8

const (
	KindEnd Kind = iota // element kind of an empty, untyped list
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindList
	KindCompound
	KindByteArray
	KindIntArray
	KindLongArray
)

func (k Kind) String() string {
	switch k {
	case KindEnd:
		return "end"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindCompound:
		return "compound"
	case KindByteArray:
		return "byte_array"
	case KindIntArray:
		return "int_array"
	case KindLongArray:
		return "long_array"
	default:
		return "unknown"
	}
}

// Tag is one node of a tag tree.
type Tag interface {
	Kind() Kind
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	String    string
	ByteArray []int8
	IntArray  []int32
	LongArray []int64
)

func (Byte) Kind() Kind      { return KindByte }
func (Short) Kind() Kind     { return KindShort }
func (Int) Kind() Kind       { return KindInt }
func (Long) Kind() Kind      { return KindLong }
func (Float) Kind() Kind     { return KindFloat }
func (Double) Kind() Kind    { return KindDouble }
func (String) Kind() Kind    { return KindString }
func (ByteArray) Kind() Kind { return KindByteArray }
func (IntArray) Kind() Kind  { return KindIntArray }
func (LongArray) Kind() Kind { return KindLongArray }

// List is a homogeneous, ordered sequence of tags.
//
// The element kind is fixed when the list is created. A list created with
// KindEnd (an empty list read from text) adopts the kind of its first element.
type List struct {
	elem  Kind
	items []Tag
}

// NewList creates a list of elem-kind tags. It panics if any item has a
// different kind.
func NewList(elem Kind, items ...Tag) *List {
	l := &List{elem: elem, items: make([]Tag, 0, len(items))}
	for _, it := range items {
		l.Append(it)
	}
	return l
}

func (*List) Kind() Kind { return KindList }

// Elem returns the element kind.
func (l *List) Elem() Kind { return l.elem }

func (l *List) Len() int { return len(l.items) }

func (l *List) At(i int) Tag { return l.items[i] }

// Items returns the backing slice; callers must not append to it.
func (l *List) Items() []Tag { return l.items }

// Append adds t to the end of the list. Appending a tag of the wrong kind is a
// programming error and panics.
func (l *List) Append(t Tag) {
	if t == nil {
		panic("nbt: append nil tag to list")
	}
	if l.elem == KindEnd && len(l.items) == 0 {
		l.elem = t.Kind()
	}
	if t.Kind() != l.elem {
		panic(fmt.Sprintf("nbt: append %s to list of %s", t.Kind(), l.elem))
	}
	l.items = append(l.items, t)
}

// Entry is one name/value pair of a compound.
type Entry struct {
	Name  string
	Value Tag
}

// Compound is an insertion-ordered map of unique names to tags.
type Compound struct {
	entries []Entry
	index   map[string]int
}

func NewCompound(entries ...Entry) *Compound {
	c := &Compound{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.Add(e.Name, e.Value)
	}
	return c
}

func (*Compound) Kind() Kind { return KindCompound }

func (c *Compound) Len() int { return len(c.entries) }

// Entries returns the entries in insertion order; callers must not modify it.
func (c *Compound) Entries() []Entry { return c.entries }

func (c *Compound) Keys() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

func (c *Compound) Get(name string) (Tag, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Value, true
}

func (c *Compound) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Set maps name to t. An existing mapping is replaced in place, keeping its
// position.
func (c *Compound) Set(name string, t Tag) {
	if t == nil {
		panic("nbt: set nil tag " + name)
	}
	if c.index == nil {
		c.index = map[string]int{}
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].Value = t
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Value: t})
}

// Add maps a new name to t. It panics if name is already present; use Set to
// overwrite on purpose.
func (c *Compound) Add(name string, t Tag) {
	if c.Has(name) {
		panic("nbt: duplicate compound key " + name)
	}
	c.Set(name, t)
}

// SetDefault inserts t only when name is absent and returns the tag now mapped
// to name.
func (c *Compound) SetDefault(name string, t Tag) Tag {
	if cur, ok := c.Get(name); ok {
		return cur
	}
	c.Set(name, t)
	return t
}

// Merge copies every entry of src that c lacks. Existing keys win; nested
// compounds present on both sides are merged the same way.
func (c *Compound) Merge(src *Compound) {
	if src == nil {
		return
	}
	for _, e := range src.entries {
		cur, ok := c.Get(e.Name)
		if !ok {
			c.Set(e.Name, Clone(e.Value))
			continue
		}
		dst, dok := cur.(*Compound)
		in, iok := e.Value.(*Compound)
		if dok && iok {
			dst.Merge(in)
		}
	}
}

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case *List:
		out := &List{elem: v.elem, items: make([]Tag, len(v.items))}
		for i, it := range v.items {
			out.items[i] = Clone(it)
		}
		return out
	case *Compound:
		out := &Compound{index: make(map[string]int, len(v.entries))}
		for _, e := range v.entries {
			out.Set(e.Name, Clone(e.Value))
		}
		return out
	case ByteArray:
		return append(ByteArray(nil), v...)
	case IntArray:
		return append(IntArray(nil), v...)
	case LongArray:
		return append(LongArray(nil), v...)
	default:
		return t
	}
}

// Equal reports whether a and b have the same kinds, values, key order and
// element order.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *List:
		bv := b.(*List)
		if len(av.items) != len(bv.items) {
			return false
		}
		if len(av.items) > 0 && av.elem != bv.elem {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bv := b.(*Compound)
		if len(av.entries) != len(bv.entries) {
			return false
		}
		for i := range av.entries {
			if av.entries[i].Name != bv.entries[i].Name {
				return false
			}
			if !Equal(av.entries[i].Value, bv.entries[i].Value) {
				return false
			}
		}
		return true
	case ByteArray:
		bv := b.(ByteArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case IntArray:
		bv := b.(IntArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case LongArray:
		bv := b.(LongArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
