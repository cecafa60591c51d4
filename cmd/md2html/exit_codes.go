package main

import (
	"errors"
	"os"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/dateutil"
	"github.com/alnah/go-md2html/internal/logging"
	"github.com/alnah/go-md2html/internal/prefs"
	"github.com/alnah/go-md2html/internal/server"
	"github.com/alnah/go-md2html/internal/yamlutil"
)

// Exit codes follow Unix conventions: 0 success, 1 general, 2 usage, and
// custom codes below 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor maps an error to an exit code with errors.Is, so callers must
// wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, md2html.ErrBrowserConnect) ||
		errors.Is(err, md2html.ErrPageCreate) ||
		errors.Is(err, md2html.ErrPageLoad) ||
		errors.Is(err, md2html.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2html.ErrReadSource) ||
		errors.Is(err, md2html.ErrWriteOutput) ||
		errors.Is(err, prefs.ErrSave) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrNotMarkdown) ||
		errors.Is(err, ErrRemoteInput) ||
		errors.Is(err, ErrThemeFile) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, yamlutil.ErrInputTooLarge) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, md2html.ErrInvalidFormat) ||
		errors.Is(err, md2html.ErrInvalidTheme) ||
		errors.Is(err, md2html.ErrEmptySource) ||
		errors.Is(err, md2html.ErrOutputName) ||
		errors.Is(err, md2html.ErrStyleNotFound) ||
		errors.Is(err, md2html.ErrTemplateNotFound) ||
		errors.Is(err, md2html.ErrInvalidAssetPath) ||
		errors.Is(err, prefs.ErrThemeNotFound) ||
		errors.Is(err, prefs.ErrDefaultTheme) ||
		errors.Is(err, server.ErrListen) {
		return ExitUsage
	}

	return ExitGeneral
}
