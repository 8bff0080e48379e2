package main

import (
	"strings"
	"testing"
)

func TestTables(t *testing.T) {
	tests := []struct {
		Name    string
		Charset string
		Want    string
	}{
		{
			"whitespace",
			`\x08-\x0d\x20`,
			"0x0000000100003f00,\n\t0x0000000000000000,\n\t0x0000000000000000,\n\t0x0000000000000000,",
		},
		{
			"gsQuotable",
			"\\x00-\\x20\"'(),;<=>[\\\\]`{}\\x7f-\\xff",
			"0x78001385ffffffff,\n\t0xa800000138000000,\n\t0xffffffffffffffff,\n\t0xffffffffffffffff,",
		},
		{
			"trailingDash",
			`a-`,
			"0x0000200000000000,\n\t0x0000000200000000,\n\t0x0000000000000000,\n\t0x0000000000000000,",
		},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			set, err := expand(tc.Charset)
			if err != nil {
				t.Fatal(err)
			}
			got := table(tc.Name, set)
			if !strings.Contains(got, tc.Want) {
				t.Fatalf("table %s:\n%s\nwant values:\n%s", tc.Name, got, tc.Want)
			}
		})
	}
}

func TestInvalidCharsets(t *testing.T) {
	for _, charset := range []string{`z-a`, `\xZZ`, `世`} {
		if _, err := expand(charset); err == nil {
			t.Errorf("expand(%q) succeeded", charset)
		}
	}
}
