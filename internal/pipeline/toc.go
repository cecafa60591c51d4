package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// TOCTitle is the heading placed above the generated list.
const TOCTitle = "Table of Contents"

// headingLinePattern matches a line that starts with an h1-h6 tag and
// closes it on the same line. Captures: 1=level, 2=attributes, 3=inner HTML.
var headingLinePattern = regexp.MustCompile(`^(\s*)<h([1-6])(\s[^>]*)?>(.*)</h([1-6])>\s*$`)

// existingIDPattern reads an id attribute already present on a heading.
var existingIDPattern = regexp.MustCompile(`(?i)\bid\s*=\s*"([^"]*)"`)

// TOCEntry is one heading found in the fragment.
type TOCEntry struct {
	Level  int
	Text   string
	Anchor string
}

// TOCResult holds the rewritten fragment and the generated list.
type TOCResult struct {
	Content string     // fragment with id attributes on headings
	TOC     string     // navigation block, empty when there are no headings
	Entries []TOCEntry // headings in document order
}

// BuildTOC scans the fragment line by line for headings, gives each one an
// id derived from its text and builds the table of contents.
//
// Anchors are the heading text lowercased with spaces replaced by hyphens.
// They are not de-duplicated: "Setup" and "setup" both become "setup", and
// a link to that anchor lands on the first one.
func BuildTOC(ctx context.Context, fragment string) (*TOCResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := strings.Split(fragment, "\n")
	var entries []TOCEntry

	for i, line := range lines {
		m := headingLinePattern.FindStringSubmatch(line)
		if m == nil || m[2] != m[5] {
			continue
		}

		indent, level, attrs, inner := m[1], m[2], m[3], m[4]
		text := headingText(inner)
		if text == "" {
			continue
		}

		anchor := Anchor(text)
		if id := existingIDPattern.FindStringSubmatch(attrs); id != nil {
			// Raw HTML headings that already carry an id keep it.
			anchor = html.UnescapeString(id[1])
		} else {
			attrs += ` id="` + html.EscapeString(anchor) + `"`
			lines[i] = fmt.Sprintf("%s<h%s%s>%s</h%s>", indent, level, attrs, inner, level)
		}

		entries = append(entries, TOCEntry{
			Level:  int(level[0] - '0'),
			Text:   text,
			Anchor: anchor,
		})
	}

	return &TOCResult{
		Content: strings.Join(lines, "\n"),
		TOC:     renderTOC(entries),
		Entries: entries,
	}, nil
}

// Anchor derives the fragment identifier for a heading text.
func Anchor(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "-")
}

// headingText returns the text content of a heading's inner HTML with
// entities decoded and inline tags dropped.
func headingText(inner string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(inner))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

// renderTOC builds the navigation block. Entries are flat list items; the
// toc-hN class carries the indentation.
func renderTOC(entries []TOCEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<nav class=\"toc\">\n")
	sb.WriteString("<h2>" + TOCTitle + "</h2>\n")
	sb.WriteString("<ol>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "<li class=\"toc-h%d\"><a href=\"#%s\">%s</a></li>\n",
			e.Level, html.EscapeString(e.Anchor), html.EscapeString(e.Text))
	}
	sb.WriteString("</ol>\n")
	sb.WriteString("</nav>")
	return sb.String()
}
