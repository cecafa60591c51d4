package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logFile string
}

// exportFlags override theme, options and settings for one run.
type exportFlags struct {
	output      string
	theme       string
	format      string
	mobile      bool
	print       bool
	toc         bool
	pattern     string
	dateFormat  string
	author      string
	description string
	keywords    string
	assets      string
	timeout     string
	slugTitle   bool
}

// batchFlags select files for the batch command.
type batchFlags struct {
	include    []string
	exclude    []string
	noProgress bool
}

// cmdFlags holds every flag a command may register. Only the groups the
// command registers are meaningful.
type cmdFlags struct {
	common commonFlags
	export exportFlags
	batch  batchFlags
	addr   string
	json   bool

	fs *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *cmdFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.StringVar(&f.logFile, "log-file", "", "append JSON logs to this file")
}

func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to the source)")
	fs.StringVarP(&f.theme, "theme", "t", "", "theme name from preferences")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, pdf")
	fs.BoolVar(&f.mobile, "mobile", false, "include mobile styles")
	fs.BoolVar(&f.print, "print", false, "include print styles")
	fs.BoolVar(&f.toc, "toc", false, "insert a table of contents")
	fs.StringVar(&f.pattern, "pattern", "", "output filename pattern ({name}, {date}, {title})")
	fs.StringVar(&f.dateFormat, "date-format", "", "format for {date}: tokens or a preset")
	fs.StringVar(&f.author, "author", "", "author meta tag")
	fs.StringVar(&f.description, "description", "", "description meta tag")
	fs.StringVar(&f.keywords, "keywords", "", "keywords meta tag")
	fs.StringVar(&f.assets, "assets", "", "asset directory overriding the built-in styles")
	fs.StringVar(&f.timeout, "timeout", "", "PDF page load timeout (e.g. 30s, 2m)")
	fs.BoolVar(&f.slugTitle, "slug-title", false, "slugify {title} in filenames")
}

func addBatchFlags(fs *flag.FlagSet, f *batchFlags) {
	fs.StringArrayVar(&f.include, "include", nil, "glob of files to include in directories (repeatable)")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "glob of files to skip (repeatable)")
	fs.BoolVar(&f.noProgress, "no-progress", false, "print one line per file instead of a bar")
}

// buildFlagSet registers the flags of cmd. Completion uses the same sets.
func buildFlagSet(cmd string, f *cmdFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	switch cmd {
	case cmdConvert, cmdBatch, cmdServe, cmdWatch:
		addCommonFlags(fs, &f.common)
		addExportFlags(fs, &f.export)
	case cmdThemes:
		addCommonFlags(fs, &f.common)
	case cmdDoctor:
		fs.BoolVar(&f.json, "json", false, "print results as JSON")
	}
	switch cmd {
	case cmdBatch:
		addBatchFlags(fs, &f.batch)
	case cmdServe:
		fs.StringVar(&f.addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	}
	return fs
}

// parseFlags parses args for cmd and returns the positional arguments.
// flag.ErrHelp is returned unwrapped for -h and --help.
func parseFlags(cmd string, args []string) (*cmdFlags, []string, error) {
	f := &cmdFlags{}
	f.fs = buildFlagSet(cmd, f)
	if err := f.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v\n  hint: run 'md2html help %s'", ErrUsage, err, helpTopic(cmd))
	}
	return f, f.fs.Args(), nil
}

func helpTopic(cmd string) string {
	if cmd == cmdConvert {
		return ""
	}
	return cmd
}
