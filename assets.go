package md2html

import (
	"errors"

	"github.com/alnah/go-md2html/internal/assets"
)

// Asset names the converter loads.
const (
	// BaseStyle is the required stylesheet every document starts with.
	BaseStyle = assets.BaseStyle

	// MobileStyle holds the responsive rules added for mobile output.
	MobileStyle = assets.MobileStyle

	// PrintStyle holds the print-friendly rules.
	PrintStyle = assets.PrintStyle

	// DocumentTemplate is the HTML skeleton of every document.
	DocumentTemplate = assets.DocumentTemplate
)

// AssetLoader defines the contract for loading CSS styles and HTML templates.
// Implementations may load from the filesystem, embedded assets, or any
// other backend.
//
// NewAssetLoader provides filesystem-based loading with fallback to the
// embedded defaults.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, the loader uses only embedded assets. Otherwise
// files under basePath/styles and basePath/templates take precedence.
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter maps internal asset errors to public sentinels.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrStyleNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal),
		errors.Is(err, assets.ErrAssetRead):
		return wrapError(ErrInvalidAssetPath, err)
	default:
		return err
	}
}

// wrapError keeps the original message while matching the public sentinel
// with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}
