package plistentry

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"howett.net/plistentry/cf"
)

// Format selects how a Printer lays out the entries it emits.
type Format int

const (
	// TextFormat writes one "key: value" line per entry.
	TextFormat Format = iota
	// YAMLFormat writes a sequence of single-entry mappings.
	YAMLFormat
	// JSONFormat writes an array of {"key", "value"} objects.
	JSONFormat
)

var formatNames = map[Format]string{
	TextFormat: "text",
	YAMLFormat: "yaml",
	JSONFormat: "json",
}

// FormatNames lists the accepted format names.
func FormatNames() []string {
	return []string{"text", "yaml", "json"}
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat looks a format up by name, ignoring case.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return TextFormat, fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(FormatNames(), ", "))
}

func (f Format) marshal(entries []Entry) ([]byte, error) {
	switch f {
	case YAMLFormat:
		doc := make([]yaml.MapSlice, len(entries))
		for i, e := range entries {
			doc[i] = yaml.MapSlice{{Key: e.Key, Value: yamlValue(cf.Interface(e.Value))}}
		}
		return yaml.Marshal(doc)
	case JSONFormat:
		doc := make([]jsonEntry, len(entries))
		for i, e := range entries {
			doc[i] = jsonEntry{Key: e.Key, Value: jsonValue(cf.Interface(e.Value))}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("plistentry: %v has no document form", f)
}

// yamlValue converts the result of cf.Interface into values yaml.v2 lays out
// natively; dictionaries keep their order as a MapSlice.
func yamlValue(v interface{}) interface{} {
	switch v := v.(type) {
	case cf.Pairs:
		m := make(yaml.MapSlice, len(v))
		for i, pair := range v {
			m[i] = yaml.MapItem{Key: pair.Key, Value: yamlValue(pair.Value)}
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, sub := range v {
			out[i] = yamlValue(sub)
		}
		return out
	case []byte:
		return "<" + hex.EncodeToString(v) + ">"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return v
}

type jsonEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// jsonObject is a dictionary that marshals its members in document order.
type jsonObject cf.Pairs

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(pair.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSON(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, matching the document
// encoder.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func jsonValue(v interface{}) interface{} {
	switch v := v.(type) {
	case cf.Pairs:
		o := make(jsonObject, len(v))
		for i, pair := range v {
			o[i] = cf.Pair{Key: pair.Key, Value: jsonValue(pair.Value)}
		}
		return o
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, sub := range v {
			out[i] = jsonValue(sub)
		}
		return out
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			// JSON has no numbers for these; use the text form
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case float32:
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return v
}
