package plistentry

import (
	"fmt"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultCharset is used when output is not a terminal, and for the C and
// POSIX locales.
const DefaultCharset = "US-ASCII"

// CharsetFor looks up an output charset by IANA name or alias. UTF-8 is
// returned as a pass-through encoding.
func CharsetFor(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("plistentry: unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("plistentry: unsupported charset %q", name)
	}
	if canonical, _ := ianaindex.IANA.Name(enc); canonical == "UTF-8" {
		return encoding.Nop, nil
	}
	return enc, nil
}

// LocaleCharset returns the charset named by the first of LC_ALL, LC_CTYPE
// and LANG that is set, e.g. "UTF-8" for "de_DE.UTF-8@euro".
func LocaleCharset(getenv func(string) string) string {
	var locale string
	for _, name := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if locale = getenv(name); locale != "" {
			break
		}
	}

	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 {
		// "", "C", "POSIX" and locales without a codeset
		return DefaultCharset
	}

	switch codeset := locale[i+1:]; strings.ToLower(codeset) {
	case "utf8", "utf-8":
		return "UTF-8"
	default:
		return codeset
	}
}

// TerminalCharset picks the output charset for the file descriptor fd: the
// locale charset on a terminal, DefaultCharset otherwise.
func TerminalCharset(fd uintptr, getenv func(string) string) string {
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return LocaleCharset(getenv)
	}
	return DefaultCharset
}
