package main

// Notes:
// - runServe and runWatch block until their context ends, so the happy
//   paths run in a goroutine and are stopped by canceling the context.
//   The listen address comes from --addr 127.0.0.1:0 and is read back from
//   the "Serving" line.
// - File change reactions are checked by polling the output, with generous
//   deadlines because fsnotify delivery time varies across platforms.

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var servingURL = regexp.MustCompile(`at (http://\S+) `)

// ---------------------------------------------------------------------------
// TestRunServe - Live preview
// ---------------------------------------------------------------------------

func TestRunServe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "README.md"), "# Live\n\nPreview body.\n")
	env, stdout, stderr := testEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, []string{"--addr", "127.0.0.1:0", src}, env) }()

	var url string
	waitFor(t, "serving line", func() bool {
		m := servingURL.FindStringSubmatch(stdout.String())
		if m != nil {
			url = m[1]
		}
		return m != nil
	})

	resp, err := http.Get(url + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Preview body.") || !strings.Contains(string(body), "WebSocket") {
		t.Errorf("preview page missing content or reload script:\n%s", body)
	}
	if _, err := os.Stat(filepath.Join(dir, "README.html")); err == nil {
		t.Error("preview should not write an output file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServe() error = %v\nstderr: %s", err, stderr)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("runServe() did not return after cancel")
	}
}

func TestRunServe_Errors(t *testing.T) {
	t.Parallel()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = busy.Close() })

	tests := []struct {
		name string
		args func(t *testing.T, dir string) []string
		want int
	}{
		{"no file", func(*testing.T, string) []string { return nil }, ExitUsage},
		{"two files", func(t *testing.T, dir string) []string {
			return []string{writeMarkdown(t, dir, "a.md"), writeMarkdown(t, dir, "b.md")}
		}, ExitUsage},
		{"missing file", func(_ *testing.T, dir string) []string {
			return []string{filepath.Join(dir, "missing.md")}
		}, ExitIO},
		{"address in use", func(t *testing.T, dir string) []string {
			return []string{"--addr", busy.Addr().String(), writeMarkdown(t, dir, "a.md")}
		}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv(t)
			args := append([]string{"md2html", "serve"}, tt.args(t, t.TempDir())...)
			if code := runMain(args, env); code != tt.want {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", code, tt.want, stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunWatch - Reconvert on change
// ---------------------------------------------------------------------------

func TestRunWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "notes.md"), "# Notes\n\nfirst draft\n")
	out := filepath.Join(dir, "notes.html")
	env, stdout, stderr := testEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, []string{dir}, env) }()

	waitFor(t, "watching line", func() bool { return strings.Contains(stdout.String(), "Watching 1 file(s)") })
	if !strings.Contains(readFile(t, out), "first draft") {
		t.Fatal("initial conversion missing")
	}

	writeFile(t, src, "# Notes\n\nsecond draft\n")
	waitFor(t, "reconversion", func() bool {
		data, err := os.ReadFile(out) // #nosec G304 -- test file
		return err == nil && strings.Contains(string(data), "second draft")
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() error = %v\nstderr: %s", err, stderr)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("runWatch() did not return after cancel")
	}
}

func TestRunWatch_NoInput(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(t)
	if code := runMain([]string{"md2html", "watch"}, env); code != ExitIO {
		t.Errorf("runMain() = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "hint: pass the Markdown files") {
		t.Errorf("stderr = %q", stderr)
	}
}
