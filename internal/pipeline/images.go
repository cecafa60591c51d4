package pipeline

import (
	"context"
	"encoding/base64"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	// imgTagPattern matches a whole <img ...> start tag.
	imgTagPattern = regexp.MustCompile(`(?is)<img\b[^>]*>`)

	// srcAttrPattern captures the src attribute prefix and its value,
	// double-quoted, single-quoted or unquoted.
	srcAttrPattern = regexp.MustCompile(`(?is)(\ssrc\s*=\s*)(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
)

// ImageEmbedder rewrites local image references to base64 data URIs so the
// page has no file dependencies.
type ImageEmbedder struct {
	Logger *zap.Logger
}

// NewImageEmbedder creates an ImageEmbedder. A nil logger discards diagnostics.
func NewImageEmbedder(logger *zap.Logger) *ImageEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageEmbedder{Logger: logger}
}

// Embed resolves the src of every <img> tag in fragment relative to
// sourceDir, reads the file and inlines it. Remote URLs, data URIs and
// anchors are left alone. A file that cannot be read keeps its original tag
// and is logged; it never fails the conversion.
func (e *ImageEmbedder) Embed(ctx context.Context, fragment, sourceDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return imgTagPattern.ReplaceAllStringFunc(fragment, func(tag string) string {
		return e.embedTag(tag, sourceDir)
	}), nil
}

// embedTag rewrites a single tag. Only the src value changes; every other
// byte of the tag is preserved.
func (e *ImageEmbedder) embedTag(tag, sourceDir string) string {
	loc := srcAttrPattern.FindStringSubmatchIndex(tag)
	if loc == nil {
		return tag
	}

	// Group 2 is the double-quoted value, group 3 the single-quoted one,
	// group 4 the unquoted one.
	quoted := true
	valueStart, valueEnd := loc[4], loc[5]
	switch {
	case loc[6] >= 0:
		valueStart, valueEnd = loc[6], loc[7]
	case loc[8] >= 0:
		valueStart, valueEnd = loc[8], loc[9]
		quoted = false
	}
	src := html.UnescapeString(tag[valueStart:valueEnd])

	if !isLocalImage(src) {
		return tag
	}

	path := resolveImagePath(src, sourceDir)
	data, err := os.ReadFile(path) // #nosec G304 -- image referenced by the document being converted
	if err != nil {
		e.logger().Warn("image not embedded",
			zap.String("src", src),
			zap.String("path", path),
			zap.Error(err),
		)
		return tag
	}

	dataURI := "data:" + detectImageMIME(data, filepath.Ext(path)) + ";base64," +
		base64.StdEncoding.EncodeToString(data)

	e.logger().Debug("image embedded", zap.String("src", src), zap.Int("bytes", len(data)))

	// Every form is replaced with a double-quoted value.
	if quoted {
		valueStart, valueEnd = valueStart-1, valueEnd+1
	}
	return tag[:valueStart] + `"` + dataURI + `"` + tag[valueEnd:]
}

func (e *ImageEmbedder) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// isLocalImage reports whether src refers to a file on disk.
func isLocalImage(src string) bool {
	if src == "" {
		return false
	}

	lower := strings.ToLower(src)
	for _, prefix := range []string{"http://", "https://", "data:", "//", "#", "file://", "mailto:"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// resolveImagePath turns a document-relative src into a file path.
// goldmark percent-encodes destinations, so the path is unescaped first.
func resolveImagePath(src, sourceDir string) string {
	if unescaped, err := url.PathUnescape(src); err == nil {
		src = unescaped
	}

	// Query strings and fragments are not part of the file name.
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}

	path := filepath.FromSlash(src)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(sourceDir, path)
}

// detectImageMIME sniffs the content first, then falls back to the
// extension table and finally to image/<ext>.
func detectImageMIME(data []byte, ext string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}

	if byExt := mime.TypeByExtension(strings.ToLower(ext)); byExt != "" {
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = strings.TrimSpace(byExt[:i])
		}
		return byExt
	}

	subtype := strings.TrimPrefix(strings.ToLower(ext), ".")
	if subtype == "" {
		return "application/octet-stream"
	}
	return "image/" + subtype
}
