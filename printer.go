package plistentry

import (
	"io"

	"golang.org/x/text/encoding"

	"howett.net/plistentry/cf"
)

// Entry is one leaf of a document together with the key it is stored under.
type Entry struct {
	Key   string
	Value cf.Value
}

// A Printer writes the leaf entries of property lists to an output stream.
type Printer struct {
	w       io.Writer
	charset encoding.Encoding
	format  Format

	entries   []Entry
	fallbacks int
}

// NewPrinter returns a Printer that writes text lines in UTF-8 to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		charset: encoding.Nop,
		format:  TextFormat,
	}
}

// Charset sets the output character set. Output the charset cannot
// represent is written as UTF-8.
func (p *Printer) Charset(e encoding.Encoding) {
	if e == nil {
		e = encoding.Nop
	}
	p.charset = e
}

// Format sets the output format. Entries collected for a structured format
// are written by Flush.
func (p *Printer) Format(f Format) {
	p.format = f
}

// Fallbacks reports how many writes did not fit the output charset and were
// written as UTF-8 instead.
func (p *Printer) Fallbacks() int {
	return p.fallbacks
}

// Traverse emits every leaf entry below root whose key matches q, depth-first
// in document order, and reports how many it emitted. Nested dictionaries
// are descended into and never emitted themselves. A root that is not a
// dictionary has no keyed entries. The only error is a failed write.
func (p *Printer) Traverse(root cf.Value, q Query) (int, error) {
	dict, ok := root.(*cf.Dictionary)
	if !ok {
		return 0, nil
	}

	n := 0
	var err error
	var walk func(*cf.Dictionary)
	walk = func(d *cf.Dictionary) {
		d.Range(func(_ int, k string, v cf.Value) {
			if err != nil {
				return
			}
			if sub, ok := v.(*cf.Dictionary); ok {
				walk(sub)
				return
			}
			if !q.Matches(k) {
				return
			}
			if err = p.emit(Entry{Key: k, Value: v}); err == nil {
				n++
			}
		})
	}
	walk(dict)
	return n, err
}

func (p *Printer) emit(e Entry) error {
	if p.format != TextFormat {
		p.entries = append(p.entries, e)
		return nil
	}
	return p.write(e.Key + ": " + e.Value.String() + "\n")
}

// Flush writes the entries collected for a structured format. It does
// nothing for text output.
func (p *Printer) Flush() error {
	if p.format == TextFormat {
		return nil
	}
	doc, err := p.format.marshal(p.entries)
	if err != nil {
		return err
	}
	p.entries = p.entries[:0]
	return p.write(string(doc))
}

// write encodes s in the output charset, or writes its UTF-8 bytes when the
// charset cannot represent it.
func (p *Printer) write(s string) error {
	b, err := p.charset.NewEncoder().Bytes([]byte(s))
	if err != nil {
		p.fallbacks++
		b = []byte(s)
	}
	_, err = p.w.Write(b)
	return err
}
