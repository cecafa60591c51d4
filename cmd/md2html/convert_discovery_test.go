package main

// Notes:
// - discoverFiles: directory walking, skipped directories, ordering,
//   deduplication and include/exclude globs on real trees in t.TempDir().
// - matchesAny: pattern semantics on relative paths and base names.
// - checkSource and markdownInDir: small helpers, table-tested.

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Expansion
// ---------------------------------------------------------------------------

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeMarkdown(t, dir, "a.md")
	b := writeMarkdown(t, filepath.Join(dir, "sub"), "b.markdown")
	writeMarkdown(t, filepath.Join(dir, ".git"), "HEAD.md")
	writeMarkdown(t, filepath.Join(dir, "vendor", "x"), "v.md")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")

	tests := []struct {
		name    string
		inputs  []string
		include []string
		exclude []string
		want    []string
	}{
		{"directory", []string{dir}, nil, nil, []string{a, b}},
		{"file then directory dedupes", []string{b, dir}, nil, nil, []string{b, a}},
		{"include", []string{dir}, []string{"sub/**"}, nil, []string{b}},
		{"exclude by base name", []string{dir}, nil, []string{"*.markdown"}, []string{a}},
		{"exclude explicit file", []string{a, b}, nil, []string{"a.md"}, []string{b}},
		{"include ignored for explicit file", []string{a}, []string{"nothing"}, nil, []string{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := discoverFiles(tt.inputs, tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("discoverFiles() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("discoverFiles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverFiles_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	tests := []struct {
		name   string
		inputs []string
		want   error
	}{
		{"no inputs", nil, ErrNoInput},
		{"missing", []string{filepath.Join(dir, "missing.md")}, os.ErrNotExist},
		{"not markdown", []string{txt}, ErrNotMarkdown},
		{"url", []string{"http://example.com/a.md"}, ErrRemoteInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := discoverFiles(tt.inputs, nil, nil); !errors.Is(err, tt.want) {
				t.Errorf("discoverFiles() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMatchesAny - Glob semantics
// ---------------------------------------------------------------------------

func TestMatchesAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"a.md", []string{"*.md"}, true},
		{"docs/a.md", []string{"*.md"}, true},
		{"docs/deep/a.md", []string{"docs/**"}, true},
		{"docs/deep/a.md", []string{"docs/*.md"}, false},
		{"drafts/a.md", []string{"docs/**", "drafts/*"}, true},
		{"a.md", []string{"[invalid"}, false},
		{"a.md", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := matchesAny(tt.path, tt.patterns); got != tt.want {
				t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckSource and TestMarkdownInDir
// ---------------------------------------------------------------------------

func TestCheckSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want error
	}{
		{"README.md", nil},
		{"notes.MARKDOWN", nil},
		{"notes.txt", ErrNotMarkdown},
		{"https://example.com/README.md", ErrRemoteInput},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if err := checkSource(tt.path); !errors.Is(err, tt.want) {
				t.Errorf("checkSource(%q) = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestMarkdownInDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeMarkdown(t, dir, "a.md")
	writeMarkdown(t, filepath.Join(dir, "sub"), "nested.md")
	writeFile(t, filepath.Join(dir, "b.txt"), "x")

	if got := markdownInDir(dir); !slices.Equal(got, []string{a}) {
		t.Errorf("markdownInDir() = %v, want [%s]", got, a)
	}
	if got := markdownInDir(filepath.Join(dir, "missing")); got != nil {
		t.Errorf("markdownInDir(missing) = %v, want nil", got)
	}
}
