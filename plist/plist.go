package plist

import (
	"fmt"
	"strconv"
)

// Property list formats, as reported by Parse.
const (
	InvalidFormat int = iota
	XMLFormat
	BinaryFormat
	OpenStepFormat
	GNUStepFormat
)

// FormatNames maps a format to a human-readable name.
var FormatNames = map[int]string{
	InvalidFormat:  "unknown/invalid",
	XMLFormat:      "XML",
	BinaryFormat:   "binary",
	OpenStepFormat: "OpenStep",
	GNUStepFormat:  "GNUStep",
}

// InvalidDocumentError reports input that is not a property list of the
// probed format at all.
type InvalidDocumentError struct {
	Format string
	Err    error
}

func (e InvalidDocumentError) Error() string {
	s := "plist: invalid " + e.Format + " property list"
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e InvalidDocumentError) Unwrap() error {
	return e.Err
}

// ParseError reports a property list of a known format that could not be
// parsed.
type ParseError struct {
	Format string
	Err    error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("plist: error parsing %s property list: %v", e.Format, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

func mustParseInt(str string, base, bits int) int64 {
	i, err := strconv.ParseInt(str, base, bits)
	if err != nil {
		panic(err)
	}
	return i
}

func mustParseUint(str string, base, bits int) uint64 {
	i, err := strconv.ParseUint(str, base, bits)
	if err != nil {
		panic(err)
	}
	return i
}

func mustParseFloat(str string, bits int) float64 {
	f, err := strconv.ParseFloat(str, bits)
	if err != nil {
		panic(err)
	}
	return f
}

// unsignedGetBase strips a 0x prefix and reports the base it implies.
func unsignedGetBase(s string) (string, int) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], 16
	}
	return s, 10
}
