package main

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/alnah/go-md2html/internal/tui"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when stdout is a terminal. The shell and the
	// progress bar need one.
	Interactive bool

	// PrefsPath overrides the preferences file location. Empty uses the
	// per-user default.
	PrefsPath string

	// Shell runs the interactive shell.
	Shell func(ctx context.Context, opts tui.Options) error
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: term.IsTerminal(int(os.Stdout.Fd())), // #nosec G115 -- fd fits in int
		Shell:       tui.Run,
	}
}
