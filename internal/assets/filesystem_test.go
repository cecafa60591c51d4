package assets

// Notes:
// - Symlink tests skip on platforms where os.Symlink is not permitted.
// - Read-permission failures are not simulated; they need root-aware setup.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeAsset creates dir/kind/name with content.
func writeAsset(t *testing.T, dir, kind, name, content string) {
	t.Helper()

	kindDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(kindDir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", kindDir, err)
	}
	if err := os.WriteFile(filepath.Join(kindDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// ---------------------------------------------------------------------------
// TestNewFilesystemLoader - Base Path Validation
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "existing directory", path: dir},
		{name: "empty path", path: "", wantErr: ErrInvalidBasePath},
		{name: "missing directory", path: filepath.Join(dir, "missing"), wantErr: ErrInvalidBasePath},
		{name: "regular file", path: file, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewFilesystemLoader(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewFilesystemLoader(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFilesystemLoader(%q) unexpected error: %v", tt.path, err)
			}
			if loader.BasePath() == "" {
				t.Error("BasePath() should not be empty")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_Load - Styles and Templates
// ---------------------------------------------------------------------------

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles", "base.css", "body { color: red; }")
	writeAsset(t, dir, "templates", "document.html", "<main>{{ .Content }}</main>")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	t.Run("style", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadStyle("base")
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if got != "body { color: red; }" {
			t.Errorf("LoadStyle() = %q", got)
		}
	})

	t.Run("template", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadTemplate("document")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != "<main>{{ .Content }}</main>" {
			t.Errorf("LoadTemplate() = %q", got)
		}
	})

	t.Run("missing style", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("print")
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle(print) error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("other")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate(other) error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"", "../base", `..\base`, "base.css"} {
			if _, err := loader.LoadStyle(name); !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("LoadStyle(%q) error = %v, want ErrInvalidAssetName", name, err)
			}
			if _, err := loader.LoadTemplate(name); !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("LoadTemplate(%q) error = %v, want ErrInvalidAssetName", name, err)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_PathContainment - Symlink Escapes
// ---------------------------------------------------------------------------

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o755); err != nil {
		t.Fatalf("creating styles dir: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "secret.css")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("writing secret: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "styles", "evil.css")); err != nil {
		t.Skipf("symlink creation not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	if _, err := loader.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(evil) error = %v, want ErrPathTraversal", err)
	}
}
