package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// envConfig holds MD2HTML_* overrides. They sit between the config file and
// command-line flags: flags > env > config file > preferences.
type envConfig struct {
	ConfigPath string        // MD2HTML_CONFIG: config file name or path
	Theme      string        // MD2HTML_THEME: theme name
	Format     string        // MD2HTML_FORMAT: html or pdf
	OutputDir  string        // MD2HTML_OUTPUT_DIR: output directory
	Pattern    string        // MD2HTML_FILENAME_PATTERN: output filename pattern
	DateFormat string        // MD2HTML_DATE_FORMAT: {date} format
	Assets     string        // MD2HTML_ASSETS: asset directory
	Addr       string        // MD2HTML_ADDR: preview listen address
	Timeout    time.Duration // MD2HTML_TIMEOUT: PDF page load timeout
	LogFile    string        // MD2HTML_LOG_FILE: JSON log file
}

// knownEnvVars lists valid MD2HTML_* variables, used to flag typos.
var knownEnvVars = map[string]bool{
	"MD2HTML_CONFIG":           true,
	"MD2HTML_THEME":            true,
	"MD2HTML_FORMAT":           true,
	"MD2HTML_OUTPUT_DIR":       true,
	"MD2HTML_FILENAME_PATTERN": true,
	"MD2HTML_DATE_FORMAT":      true,
	"MD2HTML_ASSETS":           true,
	"MD2HTML_ADDR":             true,
	"MD2HTML_TIMEOUT":          true,
	"MD2HTML_LOG_FILE":         true,
	"MD2HTML_CONTAINER":        true,
}

// loadEnvConfig reads the MD2HTML_* variables. An unparsable timeout is
// ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MD2HTML_CONFIG"),
		Theme:      os.Getenv("MD2HTML_THEME"),
		Format:     os.Getenv("MD2HTML_FORMAT"),
		OutputDir:  os.Getenv("MD2HTML_OUTPUT_DIR"),
		Pattern:    os.Getenv("MD2HTML_FILENAME_PATTERN"),
		DateFormat: os.Getenv("MD2HTML_DATE_FORMAT"),
		Assets:     os.Getenv("MD2HTML_ASSETS"),
		Addr:       os.Getenv("MD2HTML_ADDR"),
		LogFile:    os.Getenv("MD2HTML_LOG_FILE"),
	}

	if timeout := os.Getenv("MD2HTML_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MD2HTML_*
// variable, e.g. MD2HTML_THEMES instead of MD2HTML_THEME.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "MD2HTML_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set variables onto the run settings. Theme is
// resolved separately because it names a stored theme.
func applyEnvConfig(env *envConfig, s *runSettings) {
	if env.Format != "" {
		s.options.Format = env.Format
	}
	if env.OutputDir != "" {
		s.outputDir = env.OutputDir
	}
	if env.Pattern != "" {
		s.settings.FilenamePattern = env.Pattern
	}
	if env.DateFormat != "" {
		s.settings.DateFormat = env.DateFormat
	}
	if env.Assets != "" {
		s.assets = env.Assets
	}
	if env.Addr != "" {
		s.addr = env.Addr
	}
	if env.Timeout > 0 {
		s.timeout = env.Timeout
	}
}
