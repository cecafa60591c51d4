package pipeline

import (
	"regexp"
	"strings"
)

// byteOrderMark is the UTF-8 encoding of U+FEFF.
const byteOrderMark = "\uFEFF"

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// NormalizeMarkdown strips a leading byte order mark and converts CRLF and
// lone CR line endings to LF, so title extraction and heading scans see the
// same lines on every platform.
func NormalizeMarkdown(content string) string {
	content = strings.TrimPrefix(content, byteOrderMark)
	return crlfOrCR.ReplaceAllString(content, "\n")
}
