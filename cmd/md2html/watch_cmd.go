package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/watch"
)

// runWatch converts the given files once, then again whenever one changes,
// until interrupted. Conversion errors are reported and watching goes on.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseFlags(cmdWatch, args)
	if err != nil {
		return err
	}
	files, err := discoverFiles(positional, nil, nil)
	if err != nil {
		if len(positional) == 0 {
			return fmt.Errorf("%w\n  hint: pass the Markdown files or directories to watch", err)
		}
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no Markdown files to watch", ErrNoInput)
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
		convert := func(paths []string) {
			for _, path := range paths {
				if err := convertOne(ctx, sess, conv, rs, path); err != nil {
					fmt.Fprintf(env.Stderr, "Error: %s\n", describeError(err))
				}
			}
		}

		w, err := watch.New(files, convert, watch.WithLogger(sess.logger.Named("watch")))
		if err != nil {
			return err
		}

		convert(files)
		if !sess.flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Watching %d file(s) (Ctrl+C to stop)\n", len(files))
		}
		sess.logger.Debug("watching", zap.Strings("files", w.Files()))
		return w.Run(ctx)
	})
}
