package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// Sentinel errors for page assembly.
var (
	ErrTemplateParse  = errors.New("document template parsing failed")
	ErrTemplateRender = errors.New("document template rendering failed")
)

// ThemeStorageKey is the localStorage key holding "light" or "dark".
const ThemeStorageKey = "theme"

// DarkThemeClass is the body class that switches to the dark palette.
const DarkThemeClass = "dark-theme"

// ThemeToggleScript restores the stored theme on load and flips it on click.
// With nothing stored the page stays light.
const ThemeToggleScript = `(function () {
  var key = '` + ThemeStorageKey + `';
  var body = document.body;
  function apply(theme) {
    if (theme === 'dark') {
      body.classList.add('` + DarkThemeClass + `');
    } else {
      body.classList.remove('` + DarkThemeClass + `');
    }
  }
  var stored = null;
  try {
    stored = window.localStorage.getItem(key);
  } catch (e) {}
  apply(stored === 'dark' ? 'dark' : 'light');
  var toggle = document.getElementById('theme-toggle');
  if (toggle) {
    toggle.addEventListener('click', function () {
      var next = body.classList.contains('` + DarkThemeClass + `') ? 'light' : 'dark';
      apply(next);
      try {
        window.localStorage.setItem(key, next);
      } catch (e) {}
    });
  }
})();`

// MetaTag is a <meta name content> pair.
type MetaTag struct {
	Name    string
	Content string
}

// Page holds everything interpolated into the document template.
// Values are inserted verbatim: the template engine does not escape, so
// header, footer, metadata and custom code must come from trusted
// configuration.
type Page struct {
	Title      string
	Content    string
	TOC        string
	CSS        string
	JS         string
	Metadata   []MetaTag
	HeaderHTML string
	FooterHTML string
	Mobile     bool
}

// templateData is what the template sees: the page plus the toggle script.
type templateData struct {
	Page
	ToggleScript string
}

// Assembler renders pages from a parsed document template.
type Assembler struct {
	tmpl *template.Template
}

// NewAssembler parses the document template. text/template is used on
// purpose so interpolated HTML is not escaped.
func NewAssembler(tmplContent string) (*Assembler, error) {
	if strings.TrimSpace(tmplContent) == "" {
		return nil, fmt.Errorf("%w: empty template", ErrTemplateParse)
	}

	tmpl, err := template.New("document").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	return &Assembler{tmpl: tmpl}, nil
}

// Assemble renders a complete HTML document. Metadata entries with an empty
// content are dropped.
func (a *Assembler) Assemble(ctx context.Context, page Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	meta := make([]MetaTag, 0, len(page.Metadata))
	for _, m := range page.Metadata {
		if strings.TrimSpace(m.Content) != "" {
			meta = append(meta, m)
		}
	}
	page.Metadata = meta

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, templateData{Page: page, ToggleScript: ThemeToggleScript}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
