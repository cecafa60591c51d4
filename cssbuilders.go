package md2html

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2html/internal/pipeline"
)

// darkScope is the selector prefix for rules applied when the toggle is on.
var darkScope = "body." + pipeline.DarkThemeClass

// defaultDarkPalette fills the dark scope when a theme defines no dark colors
// or leaves some of them empty.
var defaultDarkPalette = Palette{
	Background:     "#0d1117",
	Text:           "#c9d1d9",
	HeadingColor:   "#e6edf3",
	LinkColor:      "#58a6ff",
	CodeBackground: "#161b22",
	CodeText:       "#c9d1d9",
}

// styleSet holds the static stylesheets loaded once per converter.
type styleSet struct {
	base      string
	highlight string
	mobile    string
	print     string
}

// BuildThemeCSS generates the theme rules: the palette and fonts under body,
// then the dark palette under body.dark-theme.
func BuildThemeCSS(theme Theme) string {
	var buf strings.Builder

	buf.WriteString("/* Theme: " + escapeCSSComment(theme.Name) + " */\n")
	writeRule(&buf, "body", []declaration{
		{"background-color", theme.Background},
		{"color", theme.Text},
		{"font-family", theme.FontFamily},
		{"font-size", theme.FontSize},
	})
	writePalette(&buf, "", theme.Palette)

	dark := defaultDarkPalette
	if theme.Dark != nil {
		dark = mergePalette(*theme.Dark, defaultDarkPalette)
	}
	writeRule(&buf, darkScope, []declaration{
		{"background-color", dark.Background},
		{"color", dark.Text},
	})
	writePalette(&buf, darkScope+" ", dark)

	return buf.String()
}

type declaration struct {
	property string
	value    string
}

// writePalette emits heading, link and code rules with the given selector prefix.
func writePalette(buf *strings.Builder, prefix string, p Palette) {
	headings := make([]string, 0, 6)
	for level := 1; level <= 6; level++ {
		headings = append(headings, fmt.Sprintf("%sh%d", prefix, level))
	}
	writeRule(buf, strings.Join(headings, ", "), []declaration{{"color", p.HeadingColor}})
	writeRule(buf, prefix+"a", []declaration{{"color", p.LinkColor}})
	writeRule(buf, prefix+"code, "+prefix+"pre, "+prefix+".chroma", []declaration{
		{"background-color", p.CodeBackground},
		{"color", p.CodeText},
	})
}

// writeRule writes one rule, skipping empty declarations. A rule with no
// declarations is omitted.
func writeRule(buf *strings.Builder, selector string, decls []declaration) {
	var body strings.Builder
	for _, d := range decls {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		fmt.Fprintf(&body, "  %s: %s;\n", d.property, d.value)
	}
	if body.Len() == 0 {
		return
	}
	buf.WriteString(selector + " {\n")
	buf.WriteString(body.String())
	buf.WriteString("}\n")
}

// mergePalette fills empty fields of p from fallback.
func mergePalette(p, fallback Palette) Palette {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Palette{
		Background:     pick(p.Background, fallback.Background),
		Text:           pick(p.Text, fallback.Text),
		HeadingColor:   pick(p.HeadingColor, fallback.HeadingColor),
		LinkColor:      pick(p.LinkColor, fallback.LinkColor),
		CodeBackground: pick(p.CodeBackground, fallback.CodeBackground),
		CodeText:       pick(p.CodeText, fallback.CodeText),
	}
}

// escapeCSSComment keeps a user string from terminating a CSS comment.
func escapeCSSComment(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}

// buildCSSBundle concatenates stylesheets in their fixed order:
// base, highlighting, theme, mobile, print, custom.
func buildCSSBundle(styles styleSet, theme Theme, opts ExportOptions) string {
	parts := []string{styles.base, styles.highlight, BuildThemeCSS(theme)}
	if opts.Mobile {
		parts = append(parts, styles.mobile)
	}
	if opts.Print {
		parts = append(parts, styles.print)
	}
	parts = append(parts, theme.CustomCSS)

	var buf strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(part)
		buf.WriteString("\n")
	}
	return buf.String()
}
