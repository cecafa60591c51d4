package md2html

import (
	"errors"

	"github.com/alnah/go-md2html/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrReadSource    = errors.New("failed to read source file")
	ErrWriteOutput   = errors.New("failed to write output file")
	ErrEmptySource   = errors.New("source path cannot be empty")
	ErrOutputName    = errors.New("invalid output filename")
	ErrPDFGeneration = errors.New("PDF generation failed")

	// ErrHTMLConversion reports a Markdown rendering failure.
	ErrHTMLConversion = pipeline.ErrHTMLConversion

	// ErrTemplateRender reports a document assembly failure.
	ErrTemplateRender = pipeline.ErrTemplateRender

	// Browser errors (PDF output only).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Validation errors.
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidTheme  = errors.New("invalid theme")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
