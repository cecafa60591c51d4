package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/hints"
	"github.com/alnah/go-md2html/internal/server"
	"github.com/alnah/go-md2html/internal/watch"
)

// runServe serves a live preview of one file and reloads open pages when
// the file changes.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseFlags(cmdServe, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: serve takes exactly one Markdown file", ErrUsage)
	}
	if err := checkSource(positional[0]); err != nil {
		return err
	}
	source := absPath(positional[0])
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %v", md2html.ErrReadSource, err)
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
		render := func(ctx context.Context, path string) (string, error) {
			req := rs.request(path)
			req.Preview = true
			res, err := conv.Convert(ctx, req)
			if err != nil {
				return "", err
			}
			return res.HTML, nil
		}
		srv := server.New(source, render, sess.logger.Named("server"))

		ln, err := server.Listen(rs.addr)
		if err != nil {
			return fmt.Errorf("%w%s", err, hints.ForAddressInUse())
		}

		w, err := watch.New([]string{source}, func([]string) { srv.Reload() },
			watch.WithLogger(sess.logger.Named("watch")))
		if err != nil {
			_ = ln.Close()
			return err
		}

		if !sess.flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Serving %s at http://%s (Ctrl+C to stop)\n", source, ln.Addr())
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		watchDone := make(chan error, 1)
		go func() { watchDone <- w.Run(ctx) }()

		err = srv.Serve(ctx, ln)
		cancel()
		return multierr.Append(err, <-watchDone)
	})
}
