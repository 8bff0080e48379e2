package plist

import (
	"bytes"
	"io"
	"os"

	"howett.net/plistentry/cf"
)

type documentParser interface {
	parseDocument() (cf.Value, error)
}

// Text property lists may also start with '<' (data or a GNUStep value), so
// XML is only assumed when the document opens with one of these.
var xmlPrefixes = []string{
	"<?xml", "<!", "<" + xmlPlistTag, "<" + xmlDictTag, "<" + xmlArrayTag,
	"<" + xmlStringTag, "<" + xmlIntegerTag, "<" + xmlRealTag, "<" + xmlTrueTag,
	"<" + xmlFalseTag, "<" + xmlDateTag, "<" + xmlDataTag,
}

// sniff reports the format a document's leading bytes suggest.
func sniff(header []byte) int {
	if bytes.HasPrefix(header, []byte("bplist")) {
		return BinaryFormat
	}
	header = bytes.TrimPrefix(header, utf8BOM)
	for len(header) > 0 && whitespace.ContainsByte(header[0]) {
		header = header[1:]
	}
	for _, prefix := range xmlPrefixes {
		if bytes.HasPrefix(header, []byte(prefix)) {
			return XMLFormat
		}
	}
	return OpenStepFormat
}

// Parse reads one property list from r and reports the format it was
// written in. XML and binary documents are recognised by their leading
// bytes; anything else is read as OpenStep or GNUStep text. Failures are
// InvalidDocumentError or ParseError values.
func Parse(r io.ReadSeeker) (cf.Value, int, error) {
	header := make([]byte, 64)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, InvalidFormat, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, InvalidFormat, err
	}

	format := sniff(header[:n])

	var parser documentParser
	var text *textPlistParser
	switch format {
	case BinaryFormat:
		parser = newBplistParser(r)
	case XMLFormat:
		parser = newXMLPlistParser(r)
	default:
		text = newTextPlistParser(r)
		parser = text
	}

	pval, err := parser.parseDocument()
	if err != nil {
		return nil, InvalidFormat, err
	}
	if text != nil {
		// GNUStep is only known once a typed value has been seen
		format = text.format
	}
	return pval, format, nil
}

// ParseFile opens the named file and parses the property list it holds.
func ParseFile(path string) (cf.Value, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, InvalidFormat, err
	}
	defer f.Close()

	return Parse(f)
}
