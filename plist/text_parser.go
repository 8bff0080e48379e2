package plist

import (
	"bytes"
	"encoding/hex"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"howett.net/plistentry/cf"
)

const textPlistTimeLayout = "2006-01-02 15:04:05 -0700"

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
)

type textPlistParser struct {
	textBase

	reader io.Reader
	format int
}

func (p *textPlistParser) parseDocument() (pval cf.Value, parseError error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			if e, ok := r.(InvalidDocumentError); ok {
				parseError = e
			} else {
				parseError = ParseError{"text", r.(error)}
			}
		}
	}()

	buffer, err := io.ReadAll(p.reader)
	if err != nil {
		panic(err)
	}

	switch {
	case bytes.HasPrefix(buffer, utf8BOM):
		buffer = buffer[len(utf8BOM):]
	case bytes.HasPrefix(buffer, utf16BEBOM), bytes.HasPrefix(buffer, utf16LEBOM):
		buffer, err = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(buffer)
		if err != nil {
			panic(err)
		}
	}
	p.input = string(buffer)

	p.chugWhitespace()
	bodyStart := p.pos
	pval = p.parsePlistValue()

	p.chugWhitespace()
	if _, ok := pval.(cf.String); ok && p.peek() == '=' {
		// a .strings file: a dictionary without its braces
		p.pos = bodyStart
		p.ignore()
		pval = p.parseDictionary(true)
	}

	p.chugWhitespace()
	if p.peek() != eof {
		p.error("garbage after end of document")
	}
	return
}

// chugWhitespace skips whitespace and both styles of comment.
func (p *textPlistParser) chugWhitespace() {
	for {
		p.scanCharactersInSet(&whitespace)
		rest := p.input[p.pos:]
		switch {
		case strings.HasPrefix(rest, "//"):
			p.pos += 2
			p.scanUntilAny("\r\n")
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				p.pos = len(p.input)
				p.error("unexpected eof in block comment")
			}
			p.pos += 2 + end + 2
		default:
			p.ignore()
			return
		}
	}
}

func (p *textPlistParser) readDigits(n int, base int) rune {
	if p.pos+n > len(p.input) {
		p.error("unexpected eof in escape sequence")
	}
	digits := p.input[p.pos : p.pos+n]
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		p.error("invalid escape sequence %q", digits)
	}
	p.pos += n
	return rune(v)
}

func (p *textPlistParser) parseEscape() rune {
	c := p.next()
	switch c {
	case eof:
		p.error("unexpected eof in escape sequence")
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'n':
		return '\n'
	case 'x':
		return p.readDigits(2, 16)
	case 'u', 'U':
		return p.readDigits(4, 16)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := c - '0'
		for i := 0; i < 2 && p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '7'; i++ {
			v = v*8 + rune(p.input[p.pos]-'0')
			p.pos++
		}
		return v
	}
	// Everything that is not listed here passes through unharmed.
	return c
}

// parseQuotedString is called after the opening quote has been consumed.
func (p *textPlistParser) parseQuotedString() cf.String {
	p.ignore()
	var s strings.Builder
	for {
		p.scanUntilAny(`"\`)
		s.WriteString(p.emit())
		switch p.next() {
		case eof:
			p.error("unexpected eof in quoted string")
		case '"':
			p.ignore()
			return cf.String(s.String())
		case '\\':
			s.WriteRune(p.parseEscape())
			p.ignore()
		}
	}
}

func (p *textPlistParser) parseUnquotedString() cf.String {
	p.ignore()
	p.scanUnquotedCharacters(&gsQuotable)
	if p.empty() {
		p.error("invalid unquoted string (found an unquoted character that should be quoted?)")
	}
	return cf.String(p.emit())
}

// parseDictionary is called after the opening brace has been consumed, or
// at the start of a .strings file when ignoreEOF is set.
func (p *textPlistParser) parseDictionary(ignoreEOF bool) *cf.Dictionary {
	dict := cf.NewDictionary(16)
	for {
		p.chugWhitespace()

		var key cf.String
		switch p.next() {
		case eof:
			if ignoreEOF {
				return dict
			}
			p.error("unexpected eof in dictionary")
		case '}':
			if ignoreEOF {
				p.error("extraneous } in .strings file")
			}
			return dict
		case '"':
			key = p.parseQuotedString()
		default:
			p.backup()
			key = p.parseUnquotedString()
		}

		p.chugWhitespace()
		switch p.next() {
		case ';':
			// "key"; is shorthand for "key" = "key";
			dict.Set(string(key), key)
			continue
		case '=':
		default:
			p.error("missing = in dictionary")
		}

		val := p.parsePlistValue()

		p.chugWhitespace()
		if p.next() != ';' {
			p.error("missing ; in dictionary")
		}

		dict.Set(string(key), val)
	}
}

// parseArray is called after the opening parenthesis has been consumed.
func (p *textPlistParser) parseArray() *cf.Array {
	values := make([]cf.Value, 0, 16)
	for {
		p.chugWhitespace()
		switch p.peek() {
		case eof:
			p.error("unexpected eof in array")
		case ')':
			p.next()
			return &cf.Array{Values: values}
		case ',':
			// empty elements are skipped
			p.next()
			continue
		}

		values = append(values, p.parsePlistValue())

		p.chugWhitespace()
		switch p.next() {
		case ',':
		case ')':
			return &cf.Array{Values: values}
		case eof:
			p.error("unexpected eof in array")
		default:
			p.backup()
			p.error("missing , in array")
		}
	}
}

// parseHexData is called after the opening angle bracket has been consumed.
func (p *textPlistParser) parseHexData() cf.Data {
	p.ignore()
	p.scanUntil('>')
	if p.peek() == eof {
		p.error("unexpected eof in data")
	}
	raw := p.emit()
	p.next()
	p.ignore()

	s := strings.Map(func(r rune) rune {
		if whitespace.Contains(r) {
			return -1
		}
		return r
	}, raw)
	data, err := hex.DecodeString(s)
	if err != nil {
		p.error("invalid hex data: %v", err)
	}
	return cf.Data(data)
}

// parseGNUStepValue is called after <* has been consumed.
func (p *textPlistParser) parseGNUStepValue() cf.Value {
	typ := p.next()
	p.ignore()
	p.scanUntil('>')
	if p.peek() == eof {
		p.error("unexpected eof in GNUStep extended value")
	}
	v := p.emit()
	p.next()
	p.ignore()

	p.format = GNUStepFormat
	switch typ {
	case 'I':
		if len(v) > 0 && v[0] == '-' {
			n := mustParseInt(v, 10, 64)
			return &cf.Number{Signed: true, Value: uint64(n)}
		}
		n := mustParseUint(v, 10, 64)
		return &cf.Number{Signed: false, Value: n}
	case 'R':
		n := mustParseFloat(v, 64)
		return &cf.Real{Wide: true, Value: n}
	case 'B':
		switch v {
		case "Y":
			return cf.Boolean(true)
		case "N":
			return cf.Boolean(false)
		}
		p.error("invalid GNUStep boolean %q", v)
	case 'D':
		t, err := time.Parse(textPlistTimeLayout, v)
		if err != nil {
			p.error("%v", err)
		}
		return cf.Date(t.In(time.UTC))
	}
	p.error("invalid GNUStep type %q", typ)
	return nil
}

func (p *textPlistParser) parsePlistValue() cf.Value {
	p.chugWhitespace()

	switch p.next() {
	case eof:
		p.error("unexpected eof: expected a value")
	case '{':
		return p.parseDictionary(false)
	case '(':
		return p.parseArray()
	case '<':
		if p.peek() == '*' {
			p.next()
			return p.parseGNUStepValue()
		}
		return p.parseHexData()
	case '"':
		return p.parseQuotedString()
	default:
		p.backup()
		return p.parseUnquotedString()
	}
	return nil
}

func newTextPlistParser(r io.Reader) *textPlistParser {
	return &textPlistParser{
		reader: r,
		format: OpenStepFormat,
	}
}
