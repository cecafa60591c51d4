package prefs

// Notes:
// - Recent-file tests create real files in t.TempDir because RecentFiles
//   prunes paths that no longer exist
// - Save failures are provoked by pointing the store below a regular file,
//   which makes MkdirAll fail on every platform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	md2html "github.com/alnah/go-md2html"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), FileName), nil)
}

func touch(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		if err := os.WriteFile(paths[i], []byte("# "+n), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func ocean() md2html.Theme {
	th := md2html.DefaultTheme()
	th.Name = "ocean"
	th.Background = "#001f3f"
	th.Dark = &md2html.Palette{Background: "#000814"}
	return th
}

// ---------------------------------------------------------------------------
// TestOpen - Permissive Loading
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("missing file gives defaults without warning", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.WarnLevel)
		s := Open(filepath.Join(t.TempDir(), FileName), zap.New(core))

		got := s.Get()
		want := Defaults()
		if got.CurrentTheme != want.CurrentTheme || len(got.RecentFiles) != 0 || got.ExportSettings != want.ExportSettings {
			t.Errorf("Get() = %+v, want defaults", got)
		}
		if logs.Len() != 0 {
			t.Errorf("logged %d entries, want none", logs.Len())
		}
	})

	t.Run("malformed file gives defaults and a warning", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		core, logs := observer.New(zapcore.WarnLevel)
		s := Open(path, zap.New(core))

		if s.Get().CurrentTheme != md2html.DefaultThemeName {
			t.Error("malformed file should yield defaults")
		}
		if logs.FilterMessage("preferences malformed, using defaults").Len() != 1 {
			t.Errorf("logs = %v, want one malformed warning", logs.All())
		}
	})

	t.Run("partial file keeps defaults for absent keys", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte(`{"output_dir":"/tmp/out"}`), 0o600); err != nil {
			t.Fatal(err)
		}
		got := Open(path, nil).Get()
		if got.OutputDir != "/tmp/out" {
			t.Errorf("OutputDir = %q", got.OutputDir)
		}
		if got.CurrentTheme != md2html.DefaultThemeName || got.CustomThemes == nil {
			t.Errorf("absent keys should default: %+v", got)
		}
		if got.ExportSettings.FilenamePattern != md2html.DefaultFilenamePattern {
			t.Errorf("FilenamePattern = %q", got.ExportSettings.FilenamePattern)
		}
	})

	t.Run("oversized recent list is trimmed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), FileName)
		data := `{"recent_files":["a","b","a","c","d","e","f","g"]}`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		got := Open(path, nil).Get().RecentFiles
		want := []string{"a", "b", "c", "d", "e"}
		if !slices.Equal(got, want) {
			t.Errorf("RecentFiles = %v, want %v", got, want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestStore_File - JSON Keys and Round Trip
// ---------------------------------------------------------------------------

func TestStore_FileFormat(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if err := s.SetTheme(ocean()); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("preferences not written: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	for _, key := range []string{"recent_files", "current_theme", "custom_themes", "export_settings", "export_customization"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("file missing key %q:\n%s", key, data)
		}
	}
	if !bytes.Contains(raw["custom_themes"], []byte(`"background": "#001f3f"`)) {
		t.Errorf("custom theme not persisted flat:\n%s", raw["custom_themes"])
	}

	reopened := Open(s.Path(), nil)
	th, err := reopened.Theme("ocean")
	if err != nil {
		t.Fatalf("Theme() after reopen error = %v", err)
	}
	if th.Background != "#001f3f" || th.Dark == nil || th.Dark.Background != "#000814" {
		t.Errorf("reloaded theme = %+v", th)
	}
}

func TestStore_SaveError(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	s := Open(filepath.Join(blocker, "sub", FileName), nil)

	if err := s.SetOutputDir("/tmp"); !errors.Is(err, ErrSave) {
		t.Errorf("SetOutputDir() error = %v, want ErrSave", err)
	}
}

// ---------------------------------------------------------------------------
// TestStore_Recent - Move to Front, Cap, Prune
// ---------------------------------------------------------------------------

func TestStore_AddRecent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := touch(t, dir, "a.md", "b.md", "c.md", "d.md", "e.md", "f.md")
	s := newStore(t)

	for _, f := range files {
		if err := s.AddRecent(f); err != nil {
			t.Fatalf("AddRecent(%s) error = %v", f, err)
		}
	}

	got := s.RecentFiles()
	want := []string{files[5], files[4], files[3], files[2], files[1]}
	if !slices.Equal(got, want) {
		t.Fatalf("RecentFiles() = %v, want %v", got, want)
	}

	// Re-adding moves to the front without duplicating.
	if err := s.AddRecent(files[2]); err != nil {
		t.Fatal(err)
	}
	got = s.RecentFiles()
	want = []string{files[2], files[5], files[4], files[3], files[1]}
	if !slices.Equal(got, want) {
		t.Errorf("after re-add RecentFiles() = %v, want %v", got, want)
	}
}

func TestStore_AddRecent_NeverExceedsCap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := newStore(t)
	for i := range 3 * MaxRecentFiles {
		f := touch(t, dir, fmt.Sprintf("f%d.md", i))[0]
		if err := s.AddRecent(f); err != nil {
			t.Fatal(err)
		}
		if n := len(s.Get().RecentFiles); n > MaxRecentFiles {
			t.Fatalf("after %d adds: %d recent files, cap is %d", i+1, n, MaxRecentFiles)
		}
	}
}

func TestStore_AddRecent_StoresAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "rel.md")
	t.Chdir(dir)

	s := newStore(t)
	if err := s.AddRecent("rel.md"); err != nil {
		t.Fatal(err)
	}
	got := s.Get().RecentFiles[0]
	if !filepath.IsAbs(got) || filepath.Base(got) != "rel.md" {
		t.Errorf("recent entry = %q, want absolute path", got)
	}
}

func TestStore_RecentFiles_PrunesMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := touch(t, dir, "keep.md", "gone.md")
	s := newStore(t)
	for _, f := range files {
		if err := s.AddRecent(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Remove(files[1]); err != nil {
		t.Fatal(err)
	}

	if got := s.RecentFiles(); !slices.Equal(got, []string{files[0]}) {
		t.Errorf("RecentFiles() = %v, want only %s", got, files[0])
	}
	if got := Open(s.Path(), nil).Get().RecentFiles; !slices.Equal(got, []string{files[0]}) {
		t.Errorf("pruned list not persisted: %v", got)
	}
}

// ---------------------------------------------------------------------------
// TestStore_Themes
// ---------------------------------------------------------------------------

func TestStore_Themes(t *testing.T) {
	t.Parallel()

	t.Run("default always exists", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		th, err := s.Theme(md2html.DefaultThemeName)
		if err != nil || th != md2html.DefaultTheme() {
			t.Errorf("Theme(default) = %+v, %v", th, err)
		}
		if got := s.ThemeNames(); !slices.Equal(got, []string{md2html.DefaultThemeName}) {
			t.Errorf("ThemeNames() = %v", got)
		}
	})

	t.Run("set select and current", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		if err := s.SetTheme(ocean()); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectTheme("ocean"); err != nil {
			t.Fatalf("SelectTheme() error = %v", err)
		}
		if got := s.CurrentTheme(); got.Name != "ocean" {
			t.Errorf("CurrentTheme() = %q, want ocean", got.Name)
		}
		if got := s.ThemeNames(); !slices.Equal(got, []string{"default", "ocean"}) {
			t.Errorf("ThemeNames() = %v", got)
		}
	})

	t.Run("select unknown theme", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		if err := s.SelectTheme("missing"); !errors.Is(err, ErrThemeNotFound) {
			t.Errorf("SelectTheme() error = %v, want ErrThemeNotFound", err)
		}
		if s.Get().CurrentTheme != md2html.DefaultThemeName {
			t.Error("failed select should not change the current theme")
		}
	})

	t.Run("invalid theme rejected", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		bad := ocean()
		bad.LinkColor = "red}"
		if err := s.SetTheme(bad); !errors.Is(err, md2html.ErrInvalidTheme) {
			t.Errorf("SetTheme() error = %v, want ErrInvalidTheme", err)
		}
	})

	t.Run("default theme cannot be deleted", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		if err := s.DeleteTheme(md2html.DefaultThemeName); !errors.Is(err, ErrDefaultTheme) {
			t.Errorf("DeleteTheme(default) error = %v, want ErrDefaultTheme", err)
		}
	})

	t.Run("deleting current theme selects default", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		if err := s.SetTheme(ocean()); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectTheme("ocean"); err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteTheme("ocean"); err != nil {
			t.Fatalf("DeleteTheme() error = %v", err)
		}
		if s.Get().CurrentTheme != md2html.DefaultThemeName {
			t.Error("current theme should fall back to default")
		}
		if err := s.DeleteTheme("ocean"); !errors.Is(err, ErrThemeNotFound) {
			t.Errorf("second DeleteTheme() error = %v, want ErrThemeNotFound", err)
		}
	})

	t.Run("edited default overrides built-in", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		edited := md2html.DefaultTheme()
		edited.LinkColor = "purple"
		if err := s.SetTheme(edited); err != nil {
			t.Fatal(err)
		}
		if got := s.CurrentTheme().LinkColor; got != "purple" {
			t.Errorf("CurrentTheme().LinkColor = %q, want purple", got)
		}
		if got := s.ThemeNames(); !slices.Equal(got, []string{"default"}) {
			t.Errorf("ThemeNames() = %v, want default listed once", got)
		}
	})

	t.Run("stale current theme falls back", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte(`{"current_theme":"vanished"}`), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := Open(path, nil).CurrentTheme().Name; got != md2html.DefaultThemeName {
			t.Errorf("CurrentTheme() = %q, want default", got)
		}
	})
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if err := s.SetTheme(ocean()); err != nil {
		t.Fatal(err)
	}

	p := s.Get()
	p.CustomThemes["ocean"].Dark.Background = "mutated"
	p.RecentFiles = append(p.RecentFiles, "x")

	th, _ := s.Theme("ocean")
	if th.Dark.Background != "#000814" {
		t.Error("mutating Get() result leaked into the store")
	}
	if len(s.Get().RecentFiles) != 0 {
		t.Error("mutating Get() recent files leaked into the store")
	}
}

// ---------------------------------------------------------------------------
// TestStore_ExportDefaults
// ---------------------------------------------------------------------------

func TestStore_ExportDefaults(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	opts := md2html.ExportOptions{Mobile: true, TOC: true, Format: md2html.FormatHTML}
	if err := s.SetExportOptions(opts); err != nil {
		t.Fatalf("SetExportOptions() error = %v", err)
	}
	if err := s.SetExportOptions(md2html.ExportOptions{Format: "docx"}); !errors.Is(err, md2html.ErrInvalidFormat) {
		t.Errorf("SetExportOptions(docx) error = %v, want ErrInvalidFormat", err)
	}

	settings := md2html.ExportSettings{FilenamePattern: "{title}-{date}", Metadata: md2html.Metadata{Author: "Jane"}}
	if err := s.SetExportSettings(settings); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOutputDir("/srv/docs"); err != nil {
		t.Fatal(err)
	}

	got := Open(s.Path(), nil).Get()
	if got.ExportCustomization != opts {
		t.Errorf("ExportCustomization = %+v, want %+v", got.ExportCustomization, opts)
	}
	if got.ExportSettings != settings {
		t.Errorf("ExportSettings = %+v, want %+v", got.ExportSettings, settings)
	}
	if got.OutputDir != "/srv/docs" {
		t.Errorf("OutputDir = %q", got.OutputDir)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	path, err := DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(path) != FileName || !strings.Contains(path, "go-md2html") {
		t.Errorf("DefaultPath() = %q", path)
	}
}
