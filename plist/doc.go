// Package plist parses Apple's "property list" format into a cf.Value tree.
// Property lists come in three sorts: plain text (OpenStep and GNUStep), XML
// and binary. All three are read; none are written.
package plist

//go:generate go run ../internal/cmd/tabler -o text_tables.go -p plist "whitespace=\\x08-\\x0d\\x20" "gsQuotable=\\x00-\\x20\"'(),;<=>[\\\\]`{}\\x7f-\\xff"
