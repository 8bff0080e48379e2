package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
)

var usage = `[OPTIONS] <name=charset>...

Produces a text_tables.go-compatible source file containing one character
table per argument. A charset may use Go escapes (\x00, \t, \\) and ranges
(a-z, \x80-\xff); a '-' at either end is literal.`

type options struct {
	Output  string `short:"o" long:"output" description:"file to write (default stdout)"`
	Package string `short:"p" long:"package" default:"plist" description:"package clause of the generated file"`
}

const preamble = `// Code generated by tabler; DO NOT EDIT.

package %s

type characterSet [4]uint64

func (s *characterSet) Contains(ch rune) bool {
	return ch >= 0 && ch <= 255 && s.ContainsByte(byte(ch))
}

func (s *characterSet) ContainsByte(ch byte) bool {
	return (s[ch/64]&(1<<(ch%%64)) > 0)
}
`

// expand decodes escapes and ranges in a charset argument into the set of bytes it names.
func expand(charset string) ([]byte, error) {
	var chars []byte
	for len(charset) > 0 {
		v, _, tail, err := strconv.UnquoteChar(charset, 0)
		if err != nil {
			return nil, fmt.Errorf("bad charset near %q: %v", charset, err)
		}
		if v > 0xFF {
			return nil, fmt.Errorf("character %q is outside the 8-bit range", v)
		}
		chars = append(chars, byte(v))
		charset = tail
	}

	var set []byte
	for i := 0; i < len(chars); i++ {
		if i+2 < len(chars) && chars[i+1] == '-' {
			lo, hi := chars[i], chars[i+2]
			if lo > hi {
				return nil, fmt.Errorf("inverted range %q-%q", lo, hi)
			}
			for c := int(lo); c <= int(hi); c++ {
				set = append(set, byte(c))
			}
			i += 2
			continue
		}
		set = append(set, chars[i])
	}
	return set, nil
}

func table(name string, set []byte) string {
	var vals [4]uint64
	for _, v := range set {
		bucket := uint(v) / 64
		pos := uint(v) % 64
		vals[bucket] = vals[bucket] | (1 << pos)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nvar %s = characterSet{\n", name)
	for _, v := range vals {
		fmt.Fprintf(&b, "\t0x%16.016x,\n", v)
	}
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = usage
	args, err := parser.Parse()
	if err != nil {
		os.Exit(1)
	}
	if len(args) == 0 {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, preamble, opts.Package)
	for _, arg := range args {
		eq := strings.IndexByte(arg, '=')
		if eq <= 0 {
			fmt.Fprintf(os.Stderr, "tabler: argument %q is not of the form name=charset\n", arg)
			os.Exit(1)
		}
		set, err := expand(arg[eq+1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, "tabler:", err)
			os.Exit(1)
		}
		buf.WriteString(table(arg[:eq], set))
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		fmt.Fprintln(os.Stderr, "tabler:", err)
		os.Exit(1)
	}

	if opts.Output == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(opts.Output, src, 0666); err != nil {
		fmt.Fprintln(os.Stderr, "tabler:", err)
		os.Exit(1)
	}
}
