// Package prefs persists user preferences between md2html sessions: recent
// files, the selected theme, custom themes and export defaults.
//
// The file is a single JSON object. Loading is permissive: a missing or
// unreadable file yields defaults. Every mutation rewrites the whole object
// atomically; concurrent processes follow last-write-wins.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/fileutil"
)

// MaxRecentFiles caps the recent files list.
const MaxRecentFiles = 5

// FileName is the preferences file inside config.UserDir.
const FileName = "preferences.json"

// Sentinel errors.
var (
	ErrThemeNotFound = errors.New("theme not found")
	ErrDefaultTheme  = errors.New("the default theme cannot be deleted")
	ErrSave          = errors.New("failed to save preferences")
)

// Preferences is the persisted record.
type Preferences struct {
	RecentFiles         []string                 `json:"recent_files"`
	OutputDir           string                   `json:"output_dir,omitempty"`
	CurrentTheme        string                   `json:"current_theme"`
	CustomThemes        map[string]md2html.Theme `json:"custom_themes"`
	ExportSettings      md2html.ExportSettings   `json:"export_settings"`
	ExportCustomization md2html.ExportOptions    `json:"export_customization"`
}

// Defaults returns the preferences used when no file exists.
func Defaults() Preferences {
	return Preferences{
		RecentFiles:         []string{},
		CurrentTheme:        md2html.DefaultThemeName,
		CustomThemes:        map[string]md2html.Theme{},
		ExportSettings:      md2html.ExportSettings{FilenamePattern: md2html.DefaultFilenamePattern},
		ExportCustomization: md2html.ExportOptions{Format: md2html.FormatHTML},
	}
}

// Store guards the preferences and writes them to disk on every change.
// Safe for concurrent use within one process.
type Store struct {
	mu     sync.Mutex
	path   string
	prefs  Preferences
	logger *zap.Logger
	exists func(string) bool
}

// DefaultPath returns config.UserDir()/preferences.json.
func DefaultPath() (string, error) {
	dir, err := config.UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Open loads preferences from path. It never fails: a missing file gives
// defaults silently, an unreadable or malformed one gives defaults and a
// warning. A nil logger disables logging.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, prefs: Defaults(), logger: logger, exists: fileutil.FileExists}

	data, err := os.ReadFile(path) // #nosec G304 -- preferences path
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("preferences not readable, using defaults", zap.String("path", path), zap.Error(err))
		}
		return s
	}

	var loaded Preferences
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("preferences malformed, using defaults", zap.String("path", path), zap.Error(err))
		return s
	}
	s.prefs = normalize(loaded)
	return s
}

// normalize fills absent fields with defaults and enforces the recent cap.
func normalize(p Preferences) Preferences {
	def := Defaults()
	if p.RecentFiles == nil {
		p.RecentFiles = def.RecentFiles
	}
	p.RecentFiles = dedupe(p.RecentFiles)
	if len(p.RecentFiles) > MaxRecentFiles {
		p.RecentFiles = p.RecentFiles[:MaxRecentFiles]
	}
	if p.CurrentTheme == "" {
		p.CurrentTheme = def.CurrentTheme
	}
	if p.CustomThemes == nil {
		p.CustomThemes = def.CustomThemes
	}
	if p.ExportSettings.FilenamePattern == "" {
		p.ExportSettings.FilenamePattern = def.ExportSettings.FilenamePattern
	}
	return p
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Path returns the preferences file path.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePrefs(s.prefs)
}

// AddRecent moves path to the front of the recent files list, dropping
// duplicates and entries beyond MaxRecentFiles.
func (s *Store) AddRecent(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return s.update(func(p *Preferences) {
		list := make([]string, 0, MaxRecentFiles)
		list = append(list, path)
		for _, r := range p.RecentFiles {
			if r != path && len(list) < MaxRecentFiles {
				list = append(list, r)
			}
		}
		p.RecentFiles = list
	})
}

// RecentFiles returns the recent files, most recent first, after removing
// entries whose file no longer exists. Removals are persisted.
func (s *Store) RecentFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := slices.DeleteFunc(slices.Clone(s.prefs.RecentFiles), func(p string) bool {
		return !s.exists(p)
	})
	if len(kept) != len(s.prefs.RecentFiles) {
		s.prefs.RecentFiles = kept
		if err := s.save(); err != nil {
			s.logger.Warn("pruned recent files not saved", zap.Error(err))
		}
	}
	return slices.Clone(kept)
}

// ThemeNames returns the built-in default and every custom theme, sorted.
func (s *Store) ThemeNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := slices.Collect(maps.Keys(s.prefs.CustomThemes))
	if _, ok := s.prefs.CustomThemes[md2html.DefaultThemeName]; !ok {
		names = append(names, md2html.DefaultThemeName)
	}
	slices.Sort(names)
	return names
}

// Theme returns the named theme. The default theme always exists; a custom
// record named "default" overrides the built-in one.
func (s *Store) Theme(name string) (md2html.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme(name)
}

func (s *Store) theme(name string) (md2html.Theme, error) {
	if t, ok := s.prefs.CustomThemes[name]; ok {
		return cloneTheme(t), nil
	}
	if name == md2html.DefaultThemeName {
		return md2html.DefaultTheme(), nil
	}
	return md2html.Theme{}, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// CurrentTheme returns the selected theme, or the default theme when the
// selection no longer exists.
func (s *Store) CurrentTheme() md2html.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.theme(s.prefs.CurrentTheme)
	if err != nil {
		return md2html.DefaultTheme()
	}
	return t
}

// SetTheme validates and stores a theme under its name, replacing any
// theme with the same name.
func (s *Store) SetTheme(t md2html.Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t = cloneTheme(t)
	return s.update(func(p *Preferences) {
		p.CustomThemes[t.Name] = t
	})
}

// DeleteTheme removes a custom theme. Deleting the selected theme selects
// the default theme.
func (s *Store) DeleteTheme(name string) error {
	if name == md2html.DefaultThemeName {
		return ErrDefaultTheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs.CustomThemes[name]; !ok {
		return fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	delete(s.prefs.CustomThemes, name)
	if s.prefs.CurrentTheme == name {
		s.prefs.CurrentTheme = md2html.DefaultThemeName
	}
	return s.save()
}

// SelectTheme makes name the current theme.
func (s *Store) SelectTheme(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.theme(name); err != nil {
		return err
	}
	s.prefs.CurrentTheme = name
	return s.save()
}

// SetOutputDir stores the default output directory. Empty means next to
// the source.
func (s *Store) SetOutputDir(dir string) error {
	return s.update(func(p *Preferences) { p.OutputDir = dir })
}

// SetExportOptions stores the default export options.
func (s *Store) SetExportOptions(opts md2html.ExportOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return s.update(func(p *Preferences) { p.ExportCustomization = opts })
}

// SetExportSettings stores the default export settings.
func (s *Store) SetExportSettings(settings md2html.ExportSettings) error {
	return s.update(func(p *Preferences) { p.ExportSettings = settings })
}

func (s *Store) update(fn func(p *Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.prefs)
	return s.save()
}

// save writes the whole record. Caller must hold s.mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

func clonePrefs(p Preferences) Preferences {
	p.RecentFiles = slices.Clone(p.RecentFiles)
	themes := make(map[string]md2html.Theme, len(p.CustomThemes))
	for k, v := range p.CustomThemes {
		themes[k] = cloneTheme(v)
	}
	p.CustomThemes = themes
	return p
}

func cloneTheme(t md2html.Theme) md2html.Theme {
	if t.Dark != nil {
		d := *t.Dark
		t.Dark = &d
	}
	return t
}
