package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/progress"
)

// batchError reports failed files. It unwraps to the combined file errors
// so the exit code reflects their cause.
type batchError struct {
	failed int
	total  int
	err    error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.err }

// runBatch converts files and directories one after another on a single
// worker. An interrupt stops the batch after the current file.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseFlags(cmdBatch, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w\n  hint: pass Markdown files or directories, e.g. 'md2html batch docs/'", ErrNoInput)
	}

	files, err := discoverFiles(positional, f.batch.include, f.batch.exclude)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no Markdown files found in %s", ErrNoInput, strings.Join(positional, ", "))
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
		b := conv.StartBatch(ctx, md2html.BatchRequest{
			Files:     files,
			OutputDir: rs.outputDir,
			Theme:     rs.theme,
			Options:   rs.options,
			Settings:  rs.settings,
		})
		report := followBatch(sess, b, len(files))
		return summarizeBatch(sess, report)
	})
}

// followBatch drains the progress channel until the worker finishes.
func followBatch(sess *session, b *md2html.Batch, total int) md2html.BatchReport {
	quiet := sess.flags.common.quiet
	var reporter progress.Reporter
	if !quiet {
		interactive := sess.env.Interactive && !sess.flags.batch.noProgress
		reporter = progress.NewReporter(sess.env.Stderr, interactive)
		reporter.Start(total)
	}

	for p := range b.Progress() {
		r := p.Result
		sess.logger.Debug("batch file done",
			zap.Int("index", p.Index+1),
			zap.Int("total", p.Total),
			zap.String("source", r.SourcePath),
			zap.Stringer("status", r.Status),
			zap.Duration("duration", r.Duration.Round(time.Millisecond)),
		)
		if r.Status == md2html.StatusSucceeded {
			if err := sess.store.AddRecent(r.SourcePath); err != nil {
				sess.logger.Warn("recent files not saved", zap.Error(err))
			}
		}
		if reporter != nil {
			reporter.Update(p.Index+1, filepath.Base(r.SourcePath))
		}
	}

	report := b.Wait()
	if reporter != nil {
		reporter.Finish()
	}
	return report
}

// summarizeBatch prints per-file outcomes and the totals line.
func summarizeBatch(sess *session, report md2html.BatchReport) error {
	env, common := sess.env, sess.flags.common

	for _, r := range report.Results {
		switch r.Status {
		case md2html.StatusFailed:
			fmt.Fprintf(env.Stderr, "FAILED %s: %s\n", r.SourcePath, describeError(r.Err))
		case md2html.StatusSucceeded:
			if common.quiet {
				continue
			}
			if common.verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.SourcePath, r.OutputPath, r.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
			}
		}
	}

	failed := report.Failed()
	if !common.quiet {
		line := fmt.Sprintf("\n%d succeeded, %d failed", report.Succeeded(), failed)
		if n := report.NotAttempted(); n > 0 {
			line += fmt.Sprintf(", %d not attempted", n)
		}
		if report.Canceled {
			line += " (canceled)"
		}
		fmt.Fprintln(env.Stdout, line)
	}

	if failed > 0 {
		return &batchError{failed: failed, total: len(report.Results), err: report.Err()}
	}
	if report.Canceled {
		return errors.New("batch canceled")
	}
	return nil
}
