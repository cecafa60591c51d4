package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/tui"
)

// runConvert converts one file, or starts the shell when no file is given.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseFlags(cmdConvert, args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one file, got %d\n  hint: use 'md2html batch' for several files", ErrUsage, len(positional))
	}
	if len(positional) == 1 {
		if err := checkSource(positional[0]); err != nil {
			return err
		}
	} else if !env.Interactive {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: no input file and no terminal for the interactive shell", ErrUsage)
	}

	sess, err := newSession(env, f)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	rs, err := sess.resolveSettings()
	if err != nil {
		return err
	}

	return sess.withConverter(rs, func(conv *md2html.Converter) error {
		if len(positional) == 0 {
			return runShell(ctx, sess, conv)
		}
		return convertOne(ctx, sess, conv, rs, positional[0])
	})
}

// convertOne converts source, records it as recent and reports the path.
func convertOne(ctx context.Context, sess *session, conv *md2html.Converter, rs *runSettings, source string) error {
	res, err := conv.Convert(ctx, rs.request(source))
	if err != nil {
		return err
	}

	if err := sess.store.AddRecent(source); err != nil {
		sess.logger.Warn("recent files not saved", zap.Error(err))
	}
	sess.logger.Debug("converted",
		zap.String("source", source),
		zap.String("output", res.Path),
		zap.String("title", res.Title),
		zap.Duration("duration", res.Duration.Round(time.Millisecond)),
	)
	if !sess.flags.common.quiet {
		fmt.Fprintf(sess.env.Stdout, "Successfully converted! Output saved to: %s\n", res.Path)
	}
	return nil
}

// runShell starts the interactive shell with recent files and the Markdown
// files of the working directory.
func runShell(ctx context.Context, sess *session, conv *md2html.Converter) error {
	var files []string
	if wd, err := os.Getwd(); err == nil {
		files = markdownInDir(wd)
	}
	sess.logger.Debug("starting shell", zap.Int("files", len(files)), zap.String("prefs", sess.store.Path()))

	if err := sess.env.Shell(ctx, tui.Options{
		Converter: conv,
		Store:     sess.store,
		Files:     files,
	}); err != nil {
		return fmt.Errorf("interactive shell: %w", err)
	}
	return nil
}

// absPath returns path made absolute, or path itself when that fails.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
