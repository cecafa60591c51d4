package main

// Notes:
// - resolveSettings: we test each layer (preferences, config file, flags)
//   and that a higher layer wins. The environment layer needs t.Setenv and
//   lives in env_config_test.go.
// - describeError: hint selection by sentinel.

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/dateutil"
	"github.com/alnah/go-md2html/internal/prefs"
)

// newTestSession parses args as convert flags and opens a session on env.
func newTestSession(t *testing.T, env *Environment, args ...string) *session {
	t.Helper()
	f, _, err := parseFlags(cmdConvert, args)
	if err != nil {
		t.Fatalf("parseFlags(%v) error = %v", args, err)
	}
	sess, err := newSession(env, f)
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

// writeConfig writes a YAML config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "md2html.yaml"), content)
}

// ---------------------------------------------------------------------------
// TestResolveSettings - Layering
// ---------------------------------------------------------------------------

func TestResolveSettings_Defaults(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(t)
	rs, err := newTestSession(t, env).resolveSettings()
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}

	if rs.theme.Name != md2html.DefaultThemeName {
		t.Errorf("theme = %q, want default", rs.theme.Name)
	}
	if rs.addr != config.DefaultServeAddr {
		t.Errorf("addr = %q, want %q", rs.addr, config.DefaultServeAddr)
	}
	if rs.outputDir != "" || rs.assets != "" || rs.timeout != 0 {
		t.Errorf("unexpected overrides: %+v", rs)
	}
}

func TestResolveSettings_Preferences(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(t)
	store := openPrefs(t, env)
	custom := md2html.DefaultTheme()
	custom.Name = "paper"
	custom.Background = "#fdf6e3"
	mustNoErr(t, store.SetTheme(custom))
	mustNoErr(t, store.SelectTheme("paper"))
	mustNoErr(t, store.SetExportOptions(md2html.ExportOptions{Mobile: true, Format: md2html.FormatHTML}))
	mustNoErr(t, store.SetOutputDir("/srv/site"))

	rs, err := newTestSession(t, env).resolveSettings()
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if rs.theme.Name != "paper" || rs.theme.Background != "#fdf6e3" {
		t.Errorf("theme = %+v, want stored paper theme", rs.theme)
	}
	if !rs.options.Mobile || rs.outputDir != "/srv/site" {
		t.Errorf("options = %+v, outputDir = %q", rs.options, rs.outputDir)
	}
}

func TestResolveSettings_ConfigOverridesPreferences(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(t)
	mustNoErr(t, openPrefs(t, env).SetOutputDir("/from/prefs"))
	cfg := writeConfig(t, `
theme:
  name: corporate
  background: "#fafafa"
export:
  toc: true
settings:
  filename_pattern: "{title}"
output:
  default_dir: /from/config
serve:
  addr: 127.0.0.1:9000
`)

	rs, err := newTestSession(t, env, "--config", cfg).resolveSettings()
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if rs.theme.Name != "corporate" || rs.theme.Background != "#fafafa" {
		t.Errorf("theme = %+v", rs.theme)
	}
	if rs.theme.Text == "" {
		t.Error("keys absent from the config should keep default values")
	}
	if !rs.options.TOC || rs.settings.FilenamePattern != "{title}" {
		t.Errorf("options = %+v, settings = %+v", rs.options, rs.settings)
	}
	if rs.outputDir != "/from/config" || rs.addr != "127.0.0.1:9000" {
		t.Errorf("outputDir = %q, addr = %q", rs.outputDir, rs.addr)
	}
}

func TestResolveSettings_FlagsOverrideEverything(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(t)
	store := openPrefs(t, env)
	mustNoErr(t, store.SetExportOptions(md2html.ExportOptions{Mobile: true, Print: true}))
	cfg := writeConfig(t, "export:\n  mobile: true\n  print: true\noutput:\n  default_dir: /from/config\n")

	rs, err := newTestSession(t, env,
		"--config", cfg,
		"--mobile=false",
		"-o", "/from/flag",
		"--format", "PDF",
		"--timeout", "45s",
		"--pattern", "{name}-{date}",
		"--date-format", "european",
		"--author", "Grace",
	).resolveSettings()
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}

	if rs.options.Mobile {
		t.Error("--mobile=false should turn off a configured option")
	}
	if !rs.options.Print {
		t.Error("unset --print should keep the configured value")
	}
	if rs.outputDir != "/from/flag" || rs.options.Format != "PDF" || rs.timeout != 45*time.Second {
		t.Errorf("outputDir = %q, format = %q, timeout = %v", rs.outputDir, rs.options.Format, rs.timeout)
	}
	if rs.settings.DateFormat != "european" || rs.settings.Metadata.Author != "Grace" {
		t.Errorf("settings = %+v", rs.settings)
	}
}

func TestResolveSettings_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid timeout",
			args:    func(*testing.T) []string { return []string{"--timeout", "soon"} },
			wantErr: ErrUsage,
		},
		{
			name:    "negative timeout",
			args:    func(*testing.T) []string { return []string{"--timeout", "-5s"} },
			wantErr: ErrUsage,
		},
		{
			name:    "invalid date format",
			args:    func(*testing.T) []string { return []string{"--date-format", "[oops"} },
			wantErr: dateutil.ErrInvalidDateFormat,
			wantMsg: "iso",
		},
		{
			name:    "invalid format",
			args:    func(*testing.T) []string { return []string{"--format", "epub"} },
			wantErr: md2html.ErrInvalidFormat,
		},
		{
			name:    "unknown theme",
			args:    func(*testing.T) []string { return []string{"--theme", "neon"} },
			wantErr: prefs.ErrThemeNotFound,
			wantMsg: "available: default",
		},
		{
			name:    "missing config",
			args:    func(*testing.T) []string { return []string{"--config", "no-such-config-name"} },
			wantErr: config.ErrConfigNotFound,
		},
		{
			name: "invalid config",
			args: func(t *testing.T) []string {
				return []string{"--config", writeConfig(t, "serve:\n  addr: nocolon\n")}
			},
			wantErr: config.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := testEnv(t)
			_, err := newTestSession(t, env, tt.args(t)...).resolveSettings()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("resolveSettings() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRequest - Request building
// ---------------------------------------------------------------------------

func TestRunSettings_Request(t *testing.T) {
	t.Parallel()

	rs := &runSettings{
		theme:     md2html.DefaultTheme(),
		options:   md2html.ExportOptions{TOC: true},
		settings:  md2html.ExportSettings{FilenamePattern: "{title}"},
		outputDir: "/out",
	}
	req := rs.request("/docs/a.md")

	if req.SourcePath != "/docs/a.md" || req.OutputDir != "/out" || req.Preview {
		t.Errorf("request = %+v", req)
	}
	if !req.Options.TOC || req.Settings.FilenamePattern != "{title}" || req.Theme.Name != md2html.DefaultThemeName {
		t.Errorf("request did not carry settings: %+v", req)
	}
}

// ---------------------------------------------------------------------------
// TestDescribeError - Hints
// ---------------------------------------------------------------------------

func TestDescribeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"browser", fmt.Errorf("%w: no chrome", md2html.ErrBrowserConnect), true},
		{"page load", fmt.Errorf("%w: timeout", md2html.ErrPageLoad), true},
		{"write", fmt.Errorf("%w: read-only", md2html.ErrWriteOutput), true},
		{"other", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := describeError(tt.err)
			if !strings.HasPrefix(got, tt.err.Error()) {
				t.Errorf("describeError() = %q, should start with the error", got)
			}
			if hasHint := got != tt.err.Error(); hasHint != tt.wantHint {
				t.Errorf("describeError() = %q, hint present = %v, want %v", got, hasHint, tt.wantHint)
			}
		})
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
