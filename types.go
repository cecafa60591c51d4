package md2html

import (
	"fmt"
	"strings"
	"time"
)

// Output format constants.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// DefaultThemeName is the built-in theme that can never be deleted.
const DefaultThemeName = "default"

// DefaultFilenamePattern is used when ExportSettings.FilenamePattern is empty.
const DefaultFilenamePattern = "{name}"

// Palette holds the colors applied to one theme scope.
type Palette struct {
	Background     string `json:"background" yaml:"background"`
	Text           string `json:"text" yaml:"text"`
	HeadingColor   string `json:"heading_color" yaml:"heading_color"`
	LinkColor      string `json:"link_color" yaml:"link_color"`
	CodeBackground string `json:"code_background" yaml:"code_background"`
	CodeText       string `json:"code_text" yaml:"code_text"`
}

// Theme is a named bundle of colors, fonts and custom code.
// The embedded Palette styles the default (light) scope. Dark styles the
// dark-theme scope; when nil, built-in dark colors are used.
type Theme struct {
	Name       string `json:"name" yaml:"name"`
	Palette    `yaml:",inline"`
	FontFamily string   `json:"font_family" yaml:"font_family"`
	FontSize   string   `json:"font_size" yaml:"font_size"`
	CustomCSS  string   `json:"custom_css" yaml:"custom_css"`
	CustomJS   string   `json:"custom_js" yaml:"custom_js"`
	Dark       *Palette `json:"dark,omitempty" yaml:"dark,omitempty"`
}

// DefaultTheme returns the built-in light theme.
func DefaultTheme() Theme {
	return Theme{
		Name: DefaultThemeName,
		Palette: Palette{
			Background:     "#ffffff",
			Text:           "#24292f",
			HeadingColor:   "#1f2328",
			LinkColor:      "#0969da",
			CodeBackground: "#f6f8fa",
			CodeText:       "#24292f",
		},
		FontFamily: `-apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif`,
		FontSize:   "16px",
	}
}

// Validate checks that the theme has a name and that no value can escape
// its CSS declaration.
func (t *Theme) Validate() error {
	if t == nil {
		return nil
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTheme)
	}
	if err := t.Palette.validate(""); err != nil {
		return err
	}
	if err := t.Dark.validate("dark."); err != nil {
		return err
	}
	if err := validateCSSValue("font_family", t.FontFamily); err != nil {
		return err
	}
	return validateCSSValue("font_size", t.FontSize)
}

func (p *Palette) validate(prefix string) error {
	if p == nil {
		return nil
	}
	fields := []struct{ name, value string }{
		{"background", p.Background},
		{"text", p.Text},
		{"heading_color", p.HeadingColor},
		{"link_color", p.LinkColor},
		{"code_background", p.CodeBackground},
		{"code_text", p.CodeText},
	}
	for _, f := range fields {
		if err := validateCSSValue(prefix+f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// validateCSSValue rejects characters that would close the declaration or rule.
func validateCSSValue(field, value string) error {
	if strings.ContainsAny(value, ";{}<>") {
		return fmt.Errorf("%w: %s contains forbidden characters: %q", ErrInvalidTheme, field, value)
	}
	return nil
}

// ExportOptions selects the document variants produced by a conversion.
type ExportOptions struct {
	Mobile bool   `json:"mobile" yaml:"mobile"`
	Print  bool   `json:"print" yaml:"print"`
	TOC    bool   `json:"toc" yaml:"toc"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "html" (default) or "pdf"
}

// Validate checks the output format. Empty means html.
func (o ExportOptions) Validate() error {
	switch strings.ToLower(o.Format) {
	case "", FormatHTML, FormatPDF:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidFormat, o.Format, FormatHTML, FormatPDF)
	}
}

// format returns the normalized output format.
func (o ExportOptions) format() string {
	if strings.EqualFold(o.Format, FormatPDF) {
		return FormatPDF
	}
	return FormatHTML
}

// Metadata holds the document meta tags.
type Metadata struct {
	Author      string `json:"author" yaml:"author"`
	Description string `json:"description" yaml:"description"`
	Keywords    string `json:"keywords" yaml:"keywords"`
}

// ExportSettings controls output naming and document chrome.
type ExportSettings struct {
	FilenamePattern string   `json:"filename_pattern" yaml:"filename_pattern"`
	DateFormat      string   `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	Metadata        Metadata `json:"metadata" yaml:"metadata"`
	HeaderHTML      string   `json:"header_html" yaml:"header_html"`
	FooterHTML      string   `json:"footer_html" yaml:"footer_html"`
}

// Request describes one file conversion.
type Request struct {
	SourcePath string
	OutputDir  string // empty writes next to the source
	Preview    bool   // return HTML instead of writing
	Theme      Theme
	Options    ExportOptions
	Settings   ExportSettings
}

// Result is the outcome of a successful conversion.
// Path is set when a file was written; HTML is set in preview mode.
type Result struct {
	Title    string
	Path     string
	HTML     string
	Format   string
	Duration time.Duration
}
