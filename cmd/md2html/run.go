package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2html/internal/fileutil"
)

// Command names.
const (
	cmdConvert    = "convert"
	cmdBatch      = "batch"
	cmdServe      = "serve"
	cmdWatch      = "watch"
	cmdThemes     = "themes"
	cmdDoctor     = "doctor"
	cmdCompletion = "completion"
	cmdVersion    = "version"
	cmdHelp       = "help"
)

// isCommand reports whether arg names a subcommand. Anything else is taken
// as input for the default convert command.
func isCommand(arg string) bool {
	switch arg {
	case cmdConvert, cmdBatch, cmdServe, cmdWatch, cmdThemes,
		cmdDoctor, cmdCompletion, cmdVersion, cmdHelp:
		return true
	}
	return false
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args[1:], env)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, flag.ErrHelp):
		var topic []string
		if len(args) > 1 && isCommand(args[1]) {
			topic = args[1:2]
		}
		_ = runHelp(topic, env)
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "Error: %s\n", describeError(err))
	return exitCodeFor(err)
}

// run dispatches to the subcommand. Without one, args are convert flags
// and an optional file.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 || !isCommand(args[0]) {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") && !looksLikeMarkdown(args[0]) {
			return fmt.Errorf("%w: unknown command: %s\n  hint: run 'md2html help'", ErrUsage, args[0])
		}
		return runConvert(ctx, args, env)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case cmdConvert:
		return runConvert(ctx, rest, env)
	case cmdBatch:
		return runBatch(ctx, rest, env)
	case cmdServe:
		return runServe(ctx, rest, env)
	case cmdWatch:
		return runWatch(ctx, rest, env)
	case cmdThemes:
		return runThemes(rest, env)
	case cmdDoctor:
		return runDoctorCmd(rest, env)
	case cmdCompletion:
		return runCompletion(rest, env)
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "md2html %s\n", Version)
		return nil
	default: // cmdHelp
		return runHelp(rest, env)
	}
}

// looksLikeMarkdown reports whether arg is a Markdown file name or a path,
// so "md2html notes.md" converts instead of failing as an unknown command.
func looksLikeMarkdown(arg string) bool {
	return fileutil.IsMarkdownFile(arg) || strings.ContainsAny(arg, `/\`)
}
