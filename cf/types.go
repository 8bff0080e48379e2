// Package cf holds the in-memory tree a property list is parsed into.
package cf

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Value is one node of a parsed property list. The set of implementations
// is closed; switch over them with a type switch.
type Value interface {
	TypeName() string
	String() string

	isValue()
}

// Dictionary keeps its entries in document order.
type Dictionary struct {
	Keys   []string
	Values []Value

	index map[string]int
}

// NewDictionary returns an empty dictionary with room for n entries.
func NewDictionary(n int) *Dictionary {
	return &Dictionary{
		Keys:   make([]string, 0, n),
		Values: make([]Value, 0, n),
	}
}

func (*Dictionary) TypeName() string {
	return "dictionary"
}

func (*Dictionary) isValue() {}

func (p *Dictionary) Len() int {
	return len(p.Keys)
}

func (p *Dictionary) reindex() {
	p.index = make(map[string]int, len(p.Keys))
	for i, k := range p.Keys {
		p.index[k] = i
	}
}

// Set stores v under k. A key that is already present keeps its position
// and takes the new value.
func (p *Dictionary) Set(k string, v Value) {
	if p.index == nil || len(p.index) != len(p.Keys) {
		p.reindex()
	}
	if i, ok := p.index[k]; ok {
		p.Values[i] = v
		return
	}
	p.index[k] = len(p.Keys)
	p.Keys = append(p.Keys, k)
	p.Values = append(p.Values, v)
}

func (p *Dictionary) Get(k string) (Value, bool) {
	if p.index == nil || len(p.index) != len(p.Keys) {
		p.reindex()
	}
	i, ok := p.index[k]
	if !ok {
		return nil, false
	}
	return p.Values[i], true
}

// Range calls r for every entry in document order.
func (p *Dictionary) Range(r func(int, string, Value)) {
	for i, k := range p.Keys {
		r(i, k, p.Values[i])
	}
}

func (p *Dictionary) String() string {
	var b strings.Builder
	b.WriteString("map[")
	p.Range(func(i int, k string, v Value) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v.String())
	})
	b.WriteByte(']')
	return b.String()
}

type Array struct {
	Values []Value
}

func (*Array) TypeName() string {
	return "array"
}

func (*Array) isValue() {}

func (p *Array) Range(r func(int, Value)) {
	for i, v := range p.Values {
		r(i, v)
	}
}

func (p *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	p.Range(func(i int, v Value) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.String())
	})
	b.WriteByte(']')
	return b.String()
}

type String string

func (String) TypeName() string {
	return "string"
}

func (String) isValue() {}

func (p String) String() string {
	return string(p)
}

// Number is an integer. Signed integers are stored in two's complement.
type Number struct {
	Signed bool
	Value  uint64
}

func (*Number) TypeName() string {
	return "integer"
}

func (*Number) isValue() {}

func (p *Number) String() string {
	if p.Signed {
		return strconv.FormatInt(int64(p.Value), 10)
	}
	return strconv.FormatUint(p.Value, 10)
}

// Real is a floating point number; Wide is false for 32-bit reals.
type Real struct {
	Wide  bool
	Value float64
}

func (*Real) TypeName() string {
	return "real"
}

func (*Real) isValue() {}

func (p *Real) String() string {
	if p.Wide {
		return strconv.FormatFloat(p.Value, 'g', -1, 64)
	}
	return strconv.FormatFloat(p.Value, 'g', -1, 32)
}

type Boolean bool

func (Boolean) TypeName() string {
	return "boolean"
}

func (Boolean) isValue() {}

func (p Boolean) String() string {
	return strconv.FormatBool(bool(p))
}

// UID is a keyed-archiver object reference.
type UID uint64

func (UID) TypeName() string {
	return "UID"
}

func (UID) isValue() {}

func (p UID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

type Data []byte

func (Data) TypeName() string {
	return "data"
}

func (Data) isValue() {}

func (p Data) String() string {
	return "<" + hex.EncodeToString(p) + ">"
}

type Date time.Time

func (Date) TypeName() string {
	return "date"
}

func (Date) isValue() {}

func (p Date) String() string {
	return time.Time(p).In(time.UTC).Format(time.RFC3339)
}
