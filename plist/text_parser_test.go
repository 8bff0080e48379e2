package plist

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

var InvalidTextPlists = []struct {
	Name string
	Data string
}{
	{"Truncated array", "("},
	{"Truncated dictionary", "{a=b;"},
	{"Truncated dictionary 2", "{"},
	{"Unclosed nested array", "{0=(/"},
	{"Unclosed dictionary", "{0=/"},
	{"Broken GNUStep data", "(<*I5>,<*I5>,<*I5>,<*I5>,*I16777215>,<*I268435455>,<*I4294967295>,<*I18446744073709551615>,)"},
	{"Truncated nested array", "{0=(((/"},
	{"Truncated dictionary with comment-like", "{0=//"},
	{"Truncated array with comment-like", "(/"},
	{"Truncated array with empty data", "(<>"},
	{"Bad Extended Character", "{¬=A;}"},
	{"Missing Equals in Dictionary", `{"A"A;}`},
	{"Missing Semicolon in Dictionary", `{"A"=A}`},
	{"Invalid GNUStep type", "<*F33>"},
	{"Invalid GNUStep int", "(<*I>"},
	{"Invalid GNUStep date", "<*D5>"},
	{"Invalid GNUStep boolean", "<*BQ>"},
	{"Truncated GNUStep value", "<*I3"},
	{"Invalid data", "<EQ>"},
	{"Odd-length data", "<012>"},
	{"Truncated escape", `"\`},
	{"Truncated unicode escape", `"\u12`},
	{"Truncated quoted string", `"abc`},
	{"Missing comma in array", "(a b)"},
	{"Garbage after document", "{a=b;} c"},
	{"Unterminated block comment", "{a=b;} /* c"},
	{"Extraneous brace in strings file", `a = b; }`},
	{"Empty document", ""},
	{"Only whitespace", " \n\t"},
}

func TestInvalidTextPlists(t *testing.T) {
	for _, test := range InvalidTextPlists {
		t.Run(test.Name, func(t *testing.T) {
			parser := newTextPlistParser(strings.NewReader(test.Data))
			obj, err := parser.parseDocument()
			if err == nil {
				t.Fatalf("invalid plist failed to throw error; deserialized %v", obj)
			}
			var parseErr ParseError
			if !errors.As(err, &parseErr) || parseErr.Format != "text" {
				t.Fatalf("got %T (%v), want text ParseError", err, err)
			}
			t.Log(err)
		})
	}
}

func BenchmarkOpenStepParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		d := newTextPlistParser(strings.NewReader(plistValueTreeAsOpenStep))
		d.parseDocument()
	}
}

func BenchmarkGNUStepParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		d := newTextPlistParser(strings.NewReader(plistValueTreeAsGNUStep))
		d.parseDocument()
	}
}

// OpenStep has no typed scalars; everything but data is a string.
var plistValueTreeAsOpenStepDescription = `dictionary{` +
	`intarray:array[string(1) string(8) string(16) string(32) string(64) string(2) string(9) string(17) string(33) string(65)] ` +
	`floats:array[string(32) string(64)] ` +
	`booleans:array[string(1) string(0)] ` +
	`strings:array[string(Hello, ASCII) string(Hello, 世界)] ` +
	`data:data(<01020304>) ` +
	`date:string(2013-11-27 00:34:00 +0000)}`

func TestTextParse(t *testing.T) {
	tests := []struct {
		Name   string
		Data   string
		Want   string
		Format int
	}{
		{"OpenStep", plistValueTreeAsOpenStep, plistValueTreeAsOpenStepDescription, OpenStepFormat},
		{"GNUStep", plistValueTreeAsGNUStep, plistValueTreeDescription, GNUStepFormat},
		{
			"Comments",
			"// leading\n{ /* inline */ a = b; // trailing\n c = /* before value */ d; }\n/* done */",
			`dictionary{a:string(b) c:string(d)}`,
			OpenStepFormat,
		},
		{
			"Escapes",
			`("\a\b\v\f\t\r\n", "\x41\101ü\"\\\q")`,
			"array[string(\a\b\v\f\t\r\n) string(AAü\"\\q)]",
			OpenStepFormat,
		},
		{
			"Strings file",
			"/* Localizable.strings */\n\"Hello\" = \"Bonjour\";\nGoodbye = \"Au revoir\";\n\"Thanks\";\n",
			`dictionary{Hello:string(Bonjour) Goodbye:string(Au revoir) Thanks:string(Thanks)}`,
			OpenStepFormat,
		},
		{
			"Empty strings file value",
			`a = "";`,
			`dictionary{a:string()}`,
			OpenStepFormat,
		},
		{
			"Empty array elements",
			"(a, , b,)",
			`array[string(a) string(b)]`,
			OpenStepFormat,
		},
		{
			"Empty data",
			"<>",
			`data(<>)`,
			OpenStepFormat,
		},
		{
			"Spaced data",
			"<0102 03\n04>",
			`data(<01020304>)`,
			OpenStepFormat,
		},
		{
			"Lone slash",
			"/",
			`string(/)`,
			OpenStepFormat,
		},
		{
			"Unquoted punctuation",
			"{path = /usr/local/bin; ver = 1.0-beta_2:x$y;}",
			`dictionary{path:string(/usr/local/bin) ver:string(1.0-beta_2:x$y)}`,
			OpenStepFormat,
		},
		{
			"Duplicate keys",
			"{z = 1; a = 2; z = 3;}",
			`dictionary{z:string(3) a:string(2)}`,
			OpenStepFormat,
		},
		{
			"Negative GNUStep values",
			"(<*I-5>, <*R-0.5>)",
			`array[integer(-5) real(-0.5)]`,
			GNUStepFormat,
		},
		{
			"Byte order mark",
			"\xEF\xBB\xBF{a = b;}",
			`dictionary{a:string(b)}`,
			OpenStepFormat,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			parser := newTextPlistParser(strings.NewReader(test.Data))
			pval, err := parser.parseDocument()
			if err != nil {
				t.Fatal(err)
			}
			assertTree(t, pval, test.Want)
			if parser.format != test.Format {
				t.Errorf("format = %s, want %s", FormatNames[parser.format], FormatNames[test.Format])
			}
		})
	}
}

func TestTextParseUTF16(t *testing.T) {
	for _, endian := range []unicode.Endianness{unicode.BigEndian, unicode.LittleEndian} {
		enc := unicode.UTF16(endian, unicode.UseBOM)
		doc, err := enc.NewEncoder().String(`{greeting = "Grüße";}`)
		if err != nil {
			t.Fatal(err)
		}

		parser := newTextPlistParser(strings.NewReader(doc))
		pval, err := parser.parseDocument()
		if err != nil {
			t.Fatal(err)
		}
		assertTree(t, pval, `dictionary{greeting:string(Grüße)}`)
	}
}

func TestTextErrorPosition(t *testing.T) {
	parser := newTextPlistParser(strings.NewReader("{\n\ta = b;\n\tc d;\n}"))
	_, err := parser.parseDocument()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}
