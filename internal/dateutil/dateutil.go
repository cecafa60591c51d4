// Package dateutil turns user-friendly date formats such as "DD/MM/YYYY"
// into Go layouts for the {date} filename placeholder.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when no format is configured.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens maps tokens to Go layout components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"compact":  "YYYYMMDD",
	"european": "DD-MM-YYYY",
	"us":       "MM-DD-YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a format (or preset name) to a Go layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text in brackets is kept
// literally: "[v]YYYY" gives "v2024". Other characters are kept as is.
// The format must contain at least one token.
func ParseDateFormat(format string) (string, error) {
	if preset, ok := Presets[strings.ToLower(strings.TrimSpace(format))]; ok {
		format = preset
	}
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	layout.Grow(len(format) + 8)
	tokens := 0

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			layout.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		if goFmt, n := matchToken(format[i:]); n > 0 {
			layout.WriteString(goFmt)
			tokens++
			i += n
			continue
		}

		layout.WriteByte(format[i])
		i++
	}

	if tokens == 0 {
		return "", fmt.Errorf("%w: %q has no date token", ErrInvalidDateFormat, format)
	}
	return layout.String(), nil
}

// matchToken returns the Go layout and length of the token at the start of s.
func matchToken(s string) (string, int) {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			return t.goFmt, len(t.token)
		}
	}
	return "", 0
}

// Format renders t with a user-friendly format. An empty format uses
// DefaultDateFormat.
func Format(t time.Time, format string) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
