// Command plistentry prints the entries of a property list stored under a
// key, or every entry when the key is ALL.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/profile"
	"golang.org/x/text/encoding"

	"howett.net/plistentry"
	"howett.net/plistentry/plist"
)

var (
	ErrMissingPath       = errors.New("No <plist> (file) given!")
	ErrFileNotFound      = errors.New("plist (file) does not exist!")
	ErrMissingKey        = errors.New("No <key> (string) given!")
	ErrMalformedDocument = errors.New("plist is not a valid property list!")
)

type options struct {
	Format   string `short:"f" long:"format" description:"output format" choice:"text" choice:"yaml" choice:"json" default:"text" env:"PLISTENTRY_FORMAT"`
	Encoding string `short:"e" long:"encoding" description:"output charset (IANA name); defaults to the locale charset on a terminal and US-ASCII otherwise" value-name:"<charset>" env:"PLISTENTRY_ENCODING"`
	Verbose  bool   `short:"v" long:"verbose" description:"log diagnostics to stderr" env:"PLISTENTRY_VERBOSE"`
	Profile  bool   `long:"profile" description:"write a CPU profile to the working directory"`
}

func newParser(opts *options) *flags.Parser {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash|flags.PassAfterNonOption)
	parser.Name = "plistentry"
	parser.Usage = "[OPTIONS] <plist> <key>"
	parser.LongDescription = `Prints every entry of <plist> stored under <key>, at any depth.
Use the <key> "ALL" to list all entries.`
	return parser
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := newParser(&opts)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		fmt.Fprintf(stdout, "\nError: %v\n\n", err)
		return 1
	}

	logger := newLogger(stderr, opts.Verbose)
	if opts.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	if err := printEntries(rest, &opts, stdout, logger); err != nil {
		fmt.Fprintf(stdout, "\nError: %v\n", err)
		if errors.Is(err, ErrMissingPath) || errors.Is(err, ErrMissingKey) {
			parser.WriteHelp(stdout)
		}
		fmt.Fprintln(stdout)
		return 1
	}
	return 0
}

// printEntries validates the positional arguments in order (file, then key),
// parses the file and prints the matching entries.
func printEntries(args []string, opts *options, stdout io.Writer, logger *slog.Logger) error {
	if len(args) < 1 {
		return ErrMissingPath
	}
	path := args[0]
	if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
		logger.Debug("stat plist", "path", path, "err", err)
		return fmt.Errorf("%w (%s)", ErrFileNotFound, path)
	}

	if len(args) < 2 {
		return ErrMissingKey
	}
	query, err := plistentry.ParseQuery(args[1])
	if err != nil {
		return ErrMissingKey
	}
	if len(args) > 2 {
		logger.Warn("ignoring extra arguments", "args", args[2:])
	}

	root, format, err := plist.ParseFile(path)
	if err != nil {
		logger.Debug("parse plist", "path", path, "err", err)
		return ErrMalformedDocument
	}
	logger.Debug("parsed plist", "path", path, "format", plist.FormatNames[format], "root", root.TypeName())

	p := plistentry.NewPrinter(stdout)
	f, err := plistentry.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	p.Format(f)

	charset, err := outputCharset(opts.Encoding, stdout, logger)
	if err != nil {
		return err
	}
	p.Charset(charset)

	n, err := p.Traverse(root, query)
	if err != nil {
		return err
	}
	if err := p.Flush(); err != nil {
		return err
	}
	logger.Debug("printed entries", "query", query, "count", n, "utf8_fallbacks", p.Fallbacks())
	return nil
}

// outputCharset resolves -e, or the charset of the terminal behind stdout.
// An explicit charset must exist; a locale charset that cannot be found
// degrades to US-ASCII.
func outputCharset(name string, stdout io.Writer, logger *slog.Logger) (encoding.Encoding, error) {
	if name != "" {
		return plistentry.CharsetFor(name)
	}

	name = plistentry.DefaultCharset
	if f, ok := stdout.(*os.File); ok {
		name = plistentry.TerminalCharset(f.Fd(), os.Getenv)
	}
	charset, err := plistentry.CharsetFor(name)
	if err != nil {
		logger.Warn("unknown locale charset", "charset", name, "err", err)
		return plistentry.CharsetFor(plistentry.DefaultCharset)
	}
	logger.Debug("output charset", "charset", name)
	return charset, nil
}
