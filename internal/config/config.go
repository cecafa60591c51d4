// Package config loads md2html YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/dateutil"
	"github.com/alnah/go-md2html/internal/yamlutil"
)

// AppDirName is the directory under os.UserConfigDir holding config files
// and preferences.
const AppDirName = "go-md2html"

// DefaultServeAddr is the preview server listen address.
const DefaultServeAddr = "127.0.0.1:8080"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxThemeNameLength   = 100
	MaxCSSValueLength    = 200   // colors, font family, font size
	MaxCustomCodeLength  = 65536 // custom_css, custom_js
	MaxPatternLength     = 200
	MaxAuthorLength      = 100
	MaxDescriptionLength = 500
	MaxKeywordsLength    = 500
	MaxChromeHTMLLength  = 10000 // header_html, footer_html
	MaxPathLength        = 4096
	MaxAddrLength        = 100
)

// Config holds all configuration for document generation.
// Theme, Export and Settings use the library types so a loaded file maps
// directly onto a conversion request.
type Config struct {
	Theme    md2html.Theme          `yaml:"theme"`
	Export   md2html.ExportOptions  `yaml:"export"`
	Settings md2html.ExportSettings `yaml:"settings"`
	Output   OutputConfig           `yaml:"output"`
	Assets   AssetsConfig           `yaml:"assets"`
	Serve    ServeConfig            `yaml:"serve"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"default_dir"` // empty = same as source
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"base_path"` // empty = embedded assets
}

// ServeConfig defines the preview server options.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Validate checks field lengths and values.
// Called by LoadConfig, but available for callers building a Config by hand.
func (c *Config) Validate() error {
	if err := c.validateTheme(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if err := c.validateSettings(); err != nil {
		return err
	}

	if err := validateFieldLength("output.default_dir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.base_path", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("serve.addr", c.Serve.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Serve.Addr != "" && !strings.Contains(c.Serve.Addr, ":") {
		return fmt.Errorf("%w: serve.addr %q must be host:port", ErrInvalidValue, c.Serve.Addr)
	}
	return nil
}

func (c *Config) validateTheme() error {
	t := c.Theme
	if err := validateFieldLength("theme.name", t.Name, MaxThemeNameLength); err != nil {
		return err
	}

	fields := []struct{ name, value string }{
		{"theme.background", t.Background},
		{"theme.text", t.Text},
		{"theme.heading_color", t.HeadingColor},
		{"theme.link_color", t.LinkColor},
		{"theme.code_background", t.CodeBackground},
		{"theme.code_text", t.CodeText},
		{"theme.font_family", t.FontFamily},
		{"theme.font_size", t.FontSize},
	}
	if t.Dark != nil {
		fields = append(fields,
			struct{ name, value string }{"theme.dark.background", t.Dark.Background},
			struct{ name, value string }{"theme.dark.text", t.Dark.Text},
			struct{ name, value string }{"theme.dark.heading_color", t.Dark.HeadingColor},
			struct{ name, value string }{"theme.dark.link_color", t.Dark.LinkColor},
			struct{ name, value string }{"theme.dark.code_background", t.Dark.CodeBackground},
			struct{ name, value string }{"theme.dark.code_text", t.Dark.CodeText},
		)
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, MaxCSSValueLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("theme.custom_css", t.CustomCSS, MaxCustomCodeLength); err != nil {
		return err
	}
	if err := validateFieldLength("theme.custom_js", t.CustomJS, MaxCustomCodeLength); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	return nil
}

func (c *Config) validateSettings() error {
	s := c.Settings
	if err := validateFieldLength("settings.filename_pattern", s.FilenamePattern, MaxPatternLength); err != nil {
		return err
	}
	if s.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(s.DateFormat); err != nil {
			return fmt.Errorf("settings.date_format: %w", err)
		}
	}
	if err := validateFieldLength("settings.metadata.author", s.Metadata.Author, MaxAuthorLength); err != nil {
		return err
	}
	if err := validateFieldLength("settings.metadata.description", s.Metadata.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if err := validateFieldLength("settings.metadata.keywords", s.Metadata.Keywords, MaxKeywordsLength); err != nil {
		return err
	}
	if err := validateFieldLength("settings.header_html", s.HeaderHTML, MaxChromeHTMLLength); err != nil {
		return err
	}
	return validateFieldLength("settings.footer_html", s.FooterHTML, MaxChromeHTMLLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the built-in theme, HTML output next to the source,
// embedded assets and the loopback preview address.
func DefaultConfig() *Config {
	return &Config{
		Theme:    md2html.DefaultTheme(),
		Export:   md2html.ExportOptions{Format: md2html.FormatHTML},
		Settings: md2html.ExportSettings{FilenamePattern: md2html.DefaultFilenamePattern},
		Serve:    ServeConfig{Addr: DefaultServeAddr},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched in standard locations.
// Keys absent from the file keep their DefaultConfig values, so a file may
// override a single theme color. Returns error if the file is not found.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UserDir returns the per-user md2html directory. It is not created.
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions .yaml then .yml, first in the current directory and then
// in UserDir.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userDir, err := UserDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
