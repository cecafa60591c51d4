package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html [flags] [file.md]")
	fmt.Fprintln(w, "       md2html <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a file, md2html opens the interactive shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert one Markdown file (default)")
	fmt.Fprintln(w, "  batch       Convert files and directories")
	fmt.Fprintln(w, "  serve       Live preview of a file in the browser")
	fmt.Fprintln(w, "  watch       Reconvert files when they change")
	fmt.Fprintln(w, "  themes      List, show, import, export, select and delete themes")
	fmt.Fprintln(w, "  doctor      Check the environment for PDF export")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2html help <command>' for details on a specific command.")
}

// printExportFlags prints the flags shared by convert, batch, serve and watch.
func printExportFlags(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to the source)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: html, pdf")
	fmt.Fprintln(w, "      --pattern <s>         Filename pattern: {name}, {date}, {title}")
	fmt.Fprintln(w, "      --date-format <s>     Format for {date}: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: iso, compact, european, us, long")
	fmt.Fprintln(w, "                            Use [text] to escape literals: [v]YYYY")
	fmt.Fprintln(w, "      --slug-title          Slugify {title}")
	fmt.Fprintln(w, "      --timeout <d>         PDF page load timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "  -t, --theme <name>        Theme from preferences (see 'md2html themes list')")
	fmt.Fprintln(w, "      --mobile              Include mobile styles")
	fmt.Fprintln(w, "      --print               Include print styles")
	fmt.Fprintln(w, "      --toc                 Insert a table of contents")
	fmt.Fprintln(w, "      --assets <dir>        Asset directory overriding built-in styles")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Metadata:")
	fmt.Fprintln(w, "      --author <s>          Author meta tag")
	fmt.Fprintln(w, "      --description <s>     Description meta tag")
	fmt.Fprintln(w, "      --keywords <s>        Keywords meta tag")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --log-file <path>     Append JSON logs to a file")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html [convert] [flags] <file.md>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one Markdown file to a self-contained HTML (or PDF) document.")
	fmt.Fprintln(w, "Flags override environment variables, which override the config file,")
	fmt.Fprintln(w, "which overrides saved preferences.")
	fmt.Fprintln(w)
	printExportFlags(w)
}

func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html batch [flags] <file|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert files one after another. Directories are searched recursively.")
	fmt.Fprintln(w, "Ctrl+C stops after the current file; the rest are reported as not attempted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Selection:")
	fmt.Fprintln(w, "      --include <glob>      Only convert matching files in directories (repeatable)")
	fmt.Fprintln(w, "      --exclude <glob>      Skip matching files (repeatable)")
	fmt.Fprintln(w, "      --no-progress         Print one line per file instead of a bar")
	fmt.Fprintln(w)
	printExportFlags(w)
}

func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html serve [flags] <file.md>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a live preview. Open pages reload when the file is saved.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w)
	printExportFlags(w)
}

func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html watch [flags] <file|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert the files, then convert each again whenever it is saved.")
	fmt.Fprintln(w)
	printExportFlags(w)
}

func printThemesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2html themes <subcommand> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                 List themes; * marks the current one")
	fmt.Fprintln(w, "  show [NAME]          Print a theme as YAML (default: current)")
	fmt.Fprintln(w, "  export NAME FILE     Write a theme to a YAML file")
	fmt.Fprintln(w, "  import FILE          Store the theme in a YAML file")
	fmt.Fprintln(w, "  select NAME          Make NAME the current theme")
	fmt.Fprintln(w, "  delete NAME          Delete a custom theme (not default)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	w := env.Stdout
	switch args[0] {
	case cmdConvert:
		printConvertUsage(w)
	case cmdBatch:
		printBatchUsage(w)
	case cmdServe:
		printServeUsage(w)
	case cmdWatch:
		printWatchUsage(w)
	case cmdThemes:
		printThemesUsage(w)
	case cmdDoctor:
		fmt.Fprintln(w, "Usage: md2html doctor [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Chrome for PDF export and the preferences directory.")
	case cmdCompletion:
		printCompletionUsage(w)
	case cmdVersion:
		fmt.Fprintln(w, "Usage: md2html version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(w, "Usage: md2html help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, args[0])
	}
	return nil
}
