// Package pipeline turns Markdown into a finished HTML page.
//
// Stages, in the order the converter runs them:
//   - source normalization (BOM, line endings)
//   - Markdown to HTML fragment via goldmark (tables, fenced code with
//     chroma highlighting, raw HTML passthrough)
//   - image embedding as base64 data URIs
//   - heading anchors and table of contents
//   - page assembly from the document template
//
// Stylesheet composition lives in the root md2html package; this package
// only works on HTML text.
package pipeline
