package md2html

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout    time.Duration
	assetPath  string
	logger     *zap.Logger
	now        func() time.Time
	slugTitles bool
}

// defaultTimeout bounds page loading when rendering PDF output.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the browser page-load timeout used for PDF output.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2html: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithAssetPath loads styles and templates from dir, falling back to the
// embedded assets for anything dir does not contain.
// Ignored when WithAssetLoader is also given.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset loader.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithLogger sets the logger used for non-fatal diagnostics such as images
// that could not be embedded. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.cfg.logger = logger
		}
	}
}

// WithClock sets the clock used for the {date} filename placeholder.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}

// WithSlugTitles makes the {title} placeholder a URL-safe slug instead of
// the title with spaces replaced by hyphens.
func WithSlugTitles(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.slugTitles = enabled
	}
}
