package main

import (
	"errors"
	"fmt"
	"os"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/fileutil"
	"github.com/alnah/go-md2html/internal/hints"
	"github.com/alnah/go-md2html/internal/prefs"
	"github.com/alnah/go-md2html/internal/yamlutil"
)

// ErrThemeFile reports an unreadable theme YAML file.
var ErrThemeFile = errors.New("invalid theme file")

const themeFilePermissions = 0o644 // #nosec G302 -- exported themes are shareable

// runThemes manages stored themes.
func runThemes(args []string, env *Environment) error {
	f, positional, err := parseFlags(cmdThemes, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		printThemesUsage(env.Stderr)
		return fmt.Errorf("%w: missing themes subcommand", ErrUsage)
	}

	sess, err := newSession(env, f)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sub, rest := positional[0], positional[1:]
	switch sub {
	case "list":
		return themesList(sess)
	case "show":
		return themesExport(sess, rest, true)
	case "export":
		return themesExport(sess, rest, false)
	case "import":
		return themesImport(sess, rest)
	case "select":
		if len(rest) != 1 {
			return fmt.Errorf("%w: usage: md2html themes select NAME", ErrUsage)
		}
		if err := sess.store.SelectTheme(rest[0]); err != nil {
			return withThemeHint(sess, err)
		}
		sess.say("Selected theme %s\n", rest[0])
		return nil
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("%w: usage: md2html themes delete NAME", ErrUsage)
		}
		if err := sess.store.DeleteTheme(rest[0]); err != nil {
			return withThemeHint(sess, err)
		}
		sess.say("Deleted theme %s\n", rest[0])
		return nil
	default:
		return fmt.Errorf("%w: unknown themes subcommand %q\n  hint: run 'md2html help themes'", ErrUsage, sub)
	}
}

func themesList(sess *session) error {
	current := sess.store.CurrentTheme().Name
	for _, name := range sess.store.ThemeNames() {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(sess.env.Stdout, "%s %s\n", marker, name)
	}
	return nil
}

// themesExport writes a theme as YAML: "show [NAME]" to stdout, "export
// NAME FILE" to a file. NAME defaults to the current theme for show.
func themesExport(sess *session, args []string, toStdout bool) error {
	var theme md2html.Theme
	switch {
	case len(args) == 0 && toStdout:
		theme = sess.store.CurrentTheme()
	case len(args) >= 1:
		t, err := sess.store.Theme(args[0])
		if err != nil {
			return withThemeHint(sess, err)
		}
		theme = t
	}
	if (toStdout && len(args) > 1) || (!toStdout && len(args) != 2) {
		if toStdout {
			return fmt.Errorf("%w: usage: md2html themes show [NAME]", ErrUsage)
		}
		return fmt.Errorf("%w: usage: md2html themes export NAME FILE", ErrUsage)
	}

	data, err := yamlutil.Marshal(theme)
	if err != nil {
		return fmt.Errorf("encoding theme: %w", err)
	}
	if toStdout {
		_, err := sess.env.Stdout.Write(data)
		return err
	}
	if err := fileutil.WriteFileAtomic(args[1], data, themeFilePermissions); err != nil {
		return fmt.Errorf("%w: %v", md2html.ErrWriteOutput, err)
	}
	sess.say("Exported theme %s to %s\n", theme.Name, args[1])
	return nil
}

// themesImport stores the theme in a YAML file. Keys absent from the file
// keep the default theme's values.
func themesImport(sess *session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: md2html themes import FILE", ErrUsage)
	}
	data, err := os.ReadFile(args[0]) // #nosec G304 -- user-provided theme file
	if err != nil {
		return fmt.Errorf("reading theme: %w", err)
	}

	theme := md2html.DefaultTheme()
	theme.Name = ""
	if err := yamlutil.Unmarshal(data, &theme); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrThemeFile, args[0], err)
	}
	if err := sess.store.SetTheme(theme); err != nil {
		return err
	}
	sess.say("Imported theme %s\n", theme.Name)
	return nil
}

// withThemeHint lists the stored themes when err is a missing theme.
func withThemeHint(sess *session, err error) error {
	if errors.Is(err, prefs.ErrThemeNotFound) {
		return fmt.Errorf("%w%s", err, hints.ForThemeNotFound(sess.store.ThemeNames()))
	}
	return err
}
