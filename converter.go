package md2html

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2html/internal/assets"
	"github.com/alnah/go-md2html/internal/fileutil"
	"github.com/alnah/go-md2html/internal/pipeline"
)

// Output permissions.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ assets.AssetLoader     = AssetLoader(nil)
)

// Converter orchestrates the Markdown-to-HTML conversion pipeline.
// Create with NewConverter, use Convert or StartBatch, and Close when done.
// A Converter is safe for concurrent use.
type Converter struct {
	cfg               converterConfig
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	htmlConverter     pipeline.HTMLConverter
	images            *pipeline.ImageEmbedder
	assembler         *pipeline.Assembler
	styles            styleSet
	pdfConverter      pdfConverter
}

// NewConverter creates a Converter. The base stylesheet and the document
// template are loaded once here; a missing or unreadable base stylesheet
// fails with ErrStyleNotFound or ErrInvalidAssetPath.
func NewConverter(opts ...Option) (*Converter, error) {
	goldmark := pipeline.NewGoldmarkConverter()
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			logger:  zap.NewNop(),
			now:     time.Now,
		},
		assetLoader:   assets.NewEmbeddedLoader(),
		htmlConverter: goldmark,
	}

	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.publicAssetLoader != nil:
		c.assetLoader = c.publicAssetLoader
	case c.cfg.assetPath != "":
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, convertAssetError(err)
		}
		c.assetLoader = resolver
	}

	if err := c.loadStyles(goldmark); err != nil {
		return nil, err
	}

	tmpl, err := c.assetLoader.LoadTemplate(DocumentTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", convertAssetError(err))
	}
	c.assembler, err = pipeline.NewAssembler(tmpl)
	if err != nil {
		return nil, fmt.Errorf("initializing assembler: %w", err)
	}

	c.images = pipeline.NewImageEmbedder(c.cfg.logger)
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout)
	}
	return c, nil
}

// loadStyles loads the required base stylesheet and the optional mobile and
// print stylesheets.
func (c *Converter) loadStyles(goldmark *pipeline.GoldmarkConverter) error {
	base, err := c.assetLoader.LoadStyle(BaseStyle)
	if err != nil {
		return fmt.Errorf("loading base style: %w", convertAssetError(err))
	}
	c.styles.base = base

	c.styles.highlight, err = goldmark.HighlightCSS()
	if err != nil {
		return fmt.Errorf("generating highlight style: %w", err)
	}

	for name, dst := range map[string]*string{MobileStyle: &c.styles.mobile, PrintStyle: &c.styles.print} {
		css, err := c.assetLoader.LoadStyle(name)
		if err != nil {
			c.cfg.logger.Warn("optional style not loaded", zap.String("style", name), zap.Error(err))
			continue
		}
		*dst = css
	}
	return nil
}

// Convert runs the full pipeline for one source file. In preview mode the
// document is returned in Result.HTML and nothing is written; otherwise the
// output is written to Request.OutputDir (or next to the source) and its
// path is returned in Result.Path.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()
	if req.Theme == (Theme{}) {
		req.Theme = DefaultTheme()
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(req.SourcePath) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	markdown := pipeline.NormalizeMarkdown(string(data))
	title := ExtractTitle(markdown, req.SourcePath)

	fragment, err := c.htmlConverter.ToHTML(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	sourceDir, err := filepath.Abs(filepath.Dir(req.SourcePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	fragment, err = c.images.Embed(ctx, fragment, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("embedding images: %w", err)
	}

	var toc string
	if req.Options.TOC && !req.Preview {
		res, err := pipeline.BuildTOC(ctx, fragment)
		if err != nil {
			return nil, fmt.Errorf("building TOC: %w", err)
		}
		fragment, toc = res.Content, res.TOC
	}

	format := req.Options.format()
	filename, err := OutputFilename(FilenameParams{
		Pattern:    req.Settings.FilenamePattern,
		SourcePath: req.SourcePath,
		Title:      title,
		DateFormat: req.Settings.DateFormat,
		Now:        c.cfg.now(),
		Extension:  format,
		SlugTitle:  c.cfg.slugTitles,
	})
	if err != nil {
		return nil, err
	}

	document, err := c.assembler.Assemble(ctx, pipeline.Page{
		Title:      title,
		Content:    fragment,
		TOC:        toc,
		CSS:        buildCSSBundle(c.styles, req.Theme, req.Options),
		JS:         req.Theme.CustomJS,
		Metadata:   metaTags(req.Settings.Metadata),
		HeaderHTML: req.Settings.HeaderHTML,
		FooterHTML: req.Settings.FooterHTML,
		Mobile:     req.Options.Mobile,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	if req.Preview {
		return &Result{Title: title, HTML: document, Format: FormatHTML, Duration: time.Since(start)}, nil
	}

	content := []byte(document)
	if format == FormatPDF {
		content, err = c.pdfConverter.ToPDF(ctx, document)
		if err != nil {
			return nil, fmt.Errorf("converting to PDF: %w", err)
		}
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.SourcePath)
	}
	outPath, err := writeOutput(outDir, filename, content)
	if err != nil {
		return nil, err
	}

	c.cfg.logger.Debug("converted",
		zap.String("source", req.SourcePath),
		zap.String("output", outPath),
		zap.String("format", format),
		zap.Duration("duration", time.Since(start)),
	)
	return &Result{Title: title, Path: outPath, Format: format, Duration: time.Since(start)}, nil
}

// Close releases resources (headless Chrome browser, if one was started).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// validateRequest is the trust boundary for callers building Request manually.
func validateRequest(req Request) error {
	if req.SourcePath == "" {
		return ErrEmptySource
	}
	if err := req.Options.Validate(); err != nil {
		return err
	}
	return req.Theme.Validate()
}

// metaTags lists metadata in document order: author, description, keywords.
func metaTags(m Metadata) []pipeline.MetaTag {
	return []pipeline.MetaTag{
		{Name: "author", Content: m.Author},
		{Name: "description", Content: m.Description},
		{Name: "keywords", Content: m.Keywords},
	}
}

// writeOutput creates dir if needed and writes content to dir/filename.
// The write is atomic so a watching preview never reads a partial file.
func writeOutput(dir, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: creating directory %s: %v", ErrWriteOutput, dir, err)
	}
	outPath := filepath.Join(dir, filename)
	if err := fileutil.WriteFileAtomic(outPath, content, filePermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return outPath, nil
}
