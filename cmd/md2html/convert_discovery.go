package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-md2html/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrNotMarkdown = errors.New("not a Markdown file")
	ErrRemoteInput = errors.New("remote sources are not supported")
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// checkSource rejects URLs and non-Markdown paths. Existence is checked by
// the converter so a missing file maps to an I/O error.
func checkSource(path string) error {
	if fileutil.IsURL(path) {
		return fmt.Errorf("%w: %s (download it first)", ErrRemoteInput, path)
	}
	if !fileutil.IsMarkdownFile(path) {
		return fmt.Errorf("%w: %s (expected .md or .markdown)", ErrNotMarkdown, path)
	}
	return nil
}

// discoverFiles expands inputs into Markdown files. Files are kept in the
// order given; directories are walked in lexical order. Patterns are
// doublestar globs matched against the path relative to the directory and
// against the base name. Explicit files are subject to exclude only.
func discoverFiles(inputs, include, exclude []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range inputs {
		if fileutil.IsURL(input) {
			return nil, fmt.Errorf("%w: %s", ErrRemoteInput, input)
		}
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := checkSource(input); err != nil {
				return nil, err
			}
			if !matchesAny(filepath.Base(input), exclude) {
				add(input)
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if path != input && skippedDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(input, path)
			if err != nil {
				return err
			}
			if !fileutil.IsMarkdownFile(path) {
				return nil
			}
			if len(include) > 0 && !matchesAny(rel, include) {
				return nil
			}
			if matchesAny(rel, exclude) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// matchesAny reports whether relPath or its base name matches a pattern.
// Invalid patterns never match.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := normalized
	if i := strings.LastIndexByte(normalized, '/'); i >= 0 {
		base = normalized[i+1:]
	}
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// markdownInDir lists Markdown files directly inside dir, for the shell.
func markdownInDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && fileutil.IsMarkdownFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files
}
