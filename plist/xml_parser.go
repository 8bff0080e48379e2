package plist

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"

	"howett.net/plistentry/cf"
)

const (
	xmlArrayTag   = "array"
	xmlDataTag    = "data"
	xmlDateTag    = "date"
	xmlDictTag    = "dict"
	xmlFalseTag   = "false"
	xmlIntegerTag = "integer"
	xmlKeyTag     = "key"
	xmlPlistTag   = "plist"
	xmlRealTag    = "real"
	xmlStringTag  = "string"
	xmlTrueTag    = "true"
)

type xmlPlistParser struct {
	xmlDecoder *xml.Decoder
}

// xmlCharsetReader lets documents declare any IANA-registered encoding.
func xmlCharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported XML encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (p *xmlPlistParser) error(e string, args ...interface{}) {
	off := p.xmlDecoder.InputOffset()
	panic(fmt.Errorf("%s at offset %v", fmt.Sprintf(e, args...), off))
}

func (p *xmlPlistParser) unexpected(token xml.Token) {
	p.error("unexpected XML element `%v`", token)
}

func (p *xmlPlistParser) parseDocument() (pval cf.Value, parseError error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			if e, ok := r.(InvalidDocumentError); ok {
				parseError = e
			} else {
				parseError = ParseError{"XML", r.(error)}
			}
		}
	}()
	for {
		token, err := p.xmlDecoder.Token()
		if err != nil {
			// The first token could not be read: this is not an XML property list.
			panic(InvalidDocumentError{"XML", err})
		}
		if element, ok := token.(xml.StartElement); ok {
			if element.Name.Local == xmlPlistTag {
				return p.parsePlistElement(), nil
			}
			return p.parseXMLElement(element), nil
		}
	}
}

// parsePlistElement reads the single value a document-level <plist> holds.
func (p *xmlPlistParser) parsePlistElement() cf.Value {
	for {
		switch token := p.next().(type) {
		case xml.EndElement:
			panic(InvalidDocumentError{"XML", errors.New("no elements encountered")})
		case xml.StartElement:
			return p.parseXMLElement(token)
		case xml.CharData, xml.Comment:
		default:
			p.unexpected(token)
		}
	}
}

func (p *xmlPlistParser) next() xml.Token {
	token, err := p.xmlDecoder.Token()
	if err != nil {
		p.error("%v", err)
	}
	return token
}

func (p *xmlPlistParser) skip() {
	if err := p.xmlDecoder.Skip(); err != nil {
		p.error("%v", err)
	}
}

func trimSpace(s string) string {
	b, e := 0, len(s)
	for ; b < e && whitespace.ContainsByte(s[b]); b++ {
	}
	for ; e > b && whitespace.ContainsByte(s[e-1]); e-- {
	}
	return s[b:e]
}

// getNextString reads character data up to the closing tag; the opening
// tag has been consumed.
func (p *xmlPlistParser) getNextString(element xml.StartElement) string {
	var s strings.Builder
	for {
		switch token := p.next().(type) {
		case xml.EndElement:
			return s.String()
		case xml.CharData:
			s.Write(token)
		case xml.Comment:
		default:
			p.unexpected(token)
		}
	}
}

func (p *xmlPlistParser) mustGetNextString(element xml.StartElement) string {
	s := trimSpace(p.getNextString(element))
	if len(s) == 0 {
		p.error("empty <%s>", element.Name.Local)
	}
	return s
}

func (p *xmlPlistParser) parseIntegerElement(element xml.StartElement) *cf.Number {
	s := p.mustGetNextString(element)

	if s[0] == '-' {
		s, base := unsignedGetBase(s[1:])
		n := mustParseInt("-"+s, base, 64)
		return &cf.Number{Signed: true, Value: uint64(n)}
	}

	s, base := unsignedGetBase(strings.TrimPrefix(s, "+"))
	n := mustParseUint(s, base, 64)
	return &cf.Number{Signed: false, Value: n}
}

func (p *xmlPlistParser) parseRealElement(element xml.StartElement) *cf.Real {
	s := p.mustGetNextString(element)

	switch strings.ToLower(s) {
	case "nan":
		s = "NaN"
	case "inf", "+inf", "infinity", "+infinity":
		s = "+Inf"
	case "-inf", "-infinity":
		s = "-Inf"
	}
	return &cf.Real{Wide: true, Value: mustParseFloat(s, 64)}
}

func (p *xmlPlistParser) parseDateElement(element xml.StartElement) cf.Date {
	s := p.mustGetNextString(element)

	t, err := time.ParseInLocation(time.RFC3339, s, time.UTC)
	if err != nil {
		p.error("%v", err)
	}
	return cf.Date(t.In(time.UTC))
}

func (p *xmlPlistParser) parseDataElement(element xml.StartElement) cf.Data {
	s := []byte(p.getNextString(element))

	offset := 0
	for _, v := range s {
		if !whitespace.ContainsByte(v) {
			s[offset] = v
			offset++
		}
	}
	s = s[:offset]

	out := make([]byte, base64.StdEncoding.DecodedLen(len(s)))
	l, err := base64.StdEncoding.Decode(out, s)
	if err != nil {
		p.error("%v", err)
	}
	return cf.Data(out[:l])
}

func (p *xmlPlistParser) parseDictionary(element xml.StartElement) cf.Value {
	dict := cf.NewDictionary(16)
	var key *string
	for {
		switch token := p.next().(type) {
		case xml.StartElement:
			if token.Name.Local == xmlKeyTag {
				if key != nil {
					p.error("missing value in dictionary")
				}
				k := p.getNextString(token)
				key = &k
				continue
			}
			if key == nil {
				p.error("missing key in dictionary")
			}
			dict.Set(*key, p.parseXMLElement(token))
			key = nil
		case xml.EndElement:
			if key != nil {
				p.error("missing value in dictionary")
			}
			if dict.Len() == 1 && dict.Keys[0] == "CF$UID" {
				if n, ok := dict.Values[0].(*cf.Number); ok {
					return cf.UID(n.Value)
				}
			}
			return dict
		case xml.CharData, xml.Comment:
		default:
			p.unexpected(token)
		}
	}
}

func (p *xmlPlistParser) parseArray(element xml.StartElement) *cf.Array {
	values := make([]cf.Value, 0, 16)
	for {
		switch token := p.next().(type) {
		case xml.StartElement:
			values = append(values, p.parseXMLElement(token))
		case xml.EndElement:
			return &cf.Array{Values: values}
		case xml.CharData, xml.Comment:
		default:
			p.unexpected(token)
		}
	}
}

func (p *xmlPlistParser) parseXMLElement(element xml.StartElement) cf.Value {
	switch element.Name.Local {
	case xmlStringTag:
		return cf.String(p.getNextString(element))
	case xmlIntegerTag:
		return p.parseIntegerElement(element)
	case xmlRealTag:
		return p.parseRealElement(element)
	case xmlTrueTag, xmlFalseTag:
		b := element.Name.Local == xmlTrueTag
		p.skip()
		return cf.Boolean(b)
	case xmlDateTag:
		return p.parseDateElement(element)
	case xmlDataTag:
		return p.parseDataElement(element)
	case xmlDictTag:
		return p.parseDictionary(element)
	case xmlArrayTag:
		return p.parseArray(element)
	}
	p.unexpected(element)
	return nil
}

func newXMLPlistParser(r io.Reader) *xmlPlistParser {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	d := xml.NewDecoder(br)
	d.CharsetReader = xmlCharsetReader
	return &xmlPlistParser{d}
}
