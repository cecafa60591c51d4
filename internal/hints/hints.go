// Package hints provides actionable suffixes for CLI error messages.
// Every hint is formatted as "\n  hint: <text>".
package hints

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-md2html/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv, which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless Chrome launch failures
// during PDF export. CI and container environments get the sandbox hint.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or export with --format html")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the PDF timeout.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound suggests --config and, when one of the searched paths
// is in the per-user directory, creating the file there.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-md2html/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output write failures.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable, or pass --output DIR")
}

// ForAssetPath returns hints for a bad --assets directory.
func ForAssetPath() string {
	return format("--assets must be a directory containing styles/ and templates/; omit it to use the built-in assets")
}

// ForThemeNotFound lists the available theme names, sorted.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	sorted := slices.Clone(available)
	slices.Sort(sorted)
	return format("available: " + strings.Join(sorted, ", ") + " (see md2html themes list)")
}

// ForDateFormat lists the date format presets.
func ForDateFormat(presets []string) string {
	sorted := slices.Clone(presets)
	slices.Sort(sorted)
	hint := "use tokens YYYY, MM, DD"
	if len(sorted) > 0 {
		hint += " or a preset: " + strings.Join(sorted, ", ")
	}
	return format(hint)
}

// ForAddressInUse returns a hint for preview server bind failures.
func ForAddressInUse() string {
	return format("another process holds the port; pass --addr 127.0.0.1:0 for a free one")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
