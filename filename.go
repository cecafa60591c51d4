package md2html

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/alnah/go-md2html/internal/dateutil"
)

// Filename pattern placeholders.
const (
	placeholderName  = "{name}"
	placeholderDate  = "{date}"
	placeholderTitle = "{title}"
)

// titlePrefix marks a level-one ATX heading line.
const titlePrefix = "# "

// fallbackFilename replaces a pattern that sanitizes to nothing.
const fallbackFilename = "document"

// ExtractTitle returns the text of the first line starting with "# ", or the
// source base name without extension when there is none.
func ExtractTitle(markdown, sourcePath string) string {
	for line := range strings.SplitSeq(markdown, "\n") {
		if strings.HasPrefix(line, titlePrefix) {
			if title := strings.TrimSpace(line[len(titlePrefix):]); title != "" {
				return title
			}
		}
	}
	return baseName(sourcePath)
}

// baseName returns the file name without directory and extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// FilenameParams gathers the values substituted into a filename pattern.
type FilenameParams struct {
	Pattern    string
	SourcePath string
	Title      string
	DateFormat string
	Now        time.Time
	Extension  string // without dot
	SlugTitle  bool
}

// OutputFilename expands the pattern placeholders {name}, {date} and {title}
// and appends the extension. Characters that are invalid in file names are
// replaced with underscores.
func OutputFilename(in FilenameParams) (string, error) {
	pattern := in.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultFilenamePattern
	}

	date, err := dateutil.Format(in.Now, in.DateFormat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputName, err)
	}

	title := in.Title
	if title == "" {
		title = baseName(in.SourcePath)
	}
	if in.SlugTitle {
		title = slug.Make(title)
	} else {
		title = strings.ReplaceAll(title, " ", "-")
	}

	name := strings.NewReplacer(
		placeholderName, baseName(in.SourcePath),
		placeholderDate, date,
		placeholderTitle, title,
	).Replace(pattern)

	name = CleanFileName(name)
	if name == "" {
		name = fallbackFilename
	}
	return name + "." + in.Extension, nil
}

// CleanFileName replaces characters invalid in file names on common
// platforms and trims leading and trailing dots and spaces.
func CleanFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		default:
			return r
		}
	}, name)
	return strings.Trim(cleaned, " .")
}
