// Package plistentry prints the leaf entries of a property list whose key
// matches a query.
//
// A Printer walks a parsed document depth-first in document order. Every
// dictionary is descended into; every other value is a leaf and is printed
// as "key: value" when the query matches its key:
//
//	root, _, err := plist.ParseFile("Info.plist")
//	...
//	p := plistentry.NewPrinter(os.Stdout)
//	n, err := p.Traverse(root, plistentry.MatchKey("CFBundleIdentifier"))
//
// Lines are written in the printer's output charset. A line that the charset
// cannot represent is written as UTF-8 instead.
package plistentry
