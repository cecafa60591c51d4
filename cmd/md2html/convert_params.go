package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/dateutil"
	"github.com/alnah/go-md2html/internal/hints"
	"github.com/alnah/go-md2html/internal/logging"
	"github.com/alnah/go-md2html/internal/prefs"
)

// runSettings is everything one run needs after preferences, the config
// file, the environment and flags have been merged.
type runSettings struct {
	theme     md2html.Theme
	options   md2html.ExportOptions
	settings  md2html.ExportSettings
	outputDir string
	assets    string
	addr      string
	timeout   time.Duration
	slugTitle bool
}

// session bundles the per-run logger and preferences store.
type session struct {
	env      *Environment
	flags    *cmdFlags
	envCfg   *envConfig
	logger   *zap.Logger
	closeLog func() error
	store    *prefs.Store
}

// newSession builds the logger and opens the preferences store.
func newSession(env *Environment, f *cmdFlags) (*session, error) {
	envCfg := loadEnvConfig()
	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	level := logging.LevelWarn
	switch {
	case f.common.verbose:
		level = logging.LevelDebug
	case f.common.quiet:
		level = logging.LevelError
	}
	logFile := f.common.logFile
	if logFile == "" {
		logFile = envCfg.LogFile
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:   level,
		Console: env.Stderr,
		File:    logFile,
	})
	if err != nil {
		return nil, err
	}

	path := env.PrefsPath
	if path == "" {
		if path, err = prefs.DefaultPath(); err != nil {
			_ = closeLog()
			return nil, err
		}
	}

	return &session{
		env:      env,
		flags:    f,
		envCfg:   envCfg,
		logger:   logger,
		closeLog: closeLog,
		store:    prefs.Open(path, logger.Named("prefs")),
	}, nil
}

// Close flushes the logger.
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.closeLog()
}

// resolveSettings merges, lowest first: preferences, config file,
// environment, flags.
func (s *session) resolveSettings() (*runSettings, error) {
	f, envCfg := s.flags, s.envCfg
	p := s.store.Get()
	rs := &runSettings{
		theme:     s.store.CurrentTheme(),
		options:   p.ExportCustomization,
		settings:  p.ExportSettings,
		outputDir: p.OutputDir,
		addr:      config.DefaultServeAddr,
	}

	cfgName := f.common.config
	if cfgName == "" {
		cfgName = envCfg.ConfigPath
	}
	if cfgName != "" {
		cfg, err := loadConfig(cfgName)
		if err != nil {
			return nil, err
		}
		rs.theme = cfg.Theme
		rs.options = cfg.Export
		rs.settings = cfg.Settings
		if cfg.Output.DefaultDir != "" {
			rs.outputDir = cfg.Output.DefaultDir
		}
		rs.assets = cfg.Assets.BasePath
		if cfg.Serve.Addr != "" {
			rs.addr = cfg.Serve.Addr
		}
	}

	applyEnvConfig(envCfg, rs)
	if envCfg.Theme != "" {
		t, err := s.lookupTheme(envCfg.Theme)
		if err != nil {
			return nil, err
		}
		rs.theme = t
	}

	if err := s.mergeFlags(rs); err != nil {
		return nil, err
	}
	if err := validateSettings(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// mergeFlags applies flags that were set. Booleans only override when
// given explicitly, so --mobile=false can turn off a stored option.
func (s *session) mergeFlags(rs *runSettings) error {
	f := s.flags
	e := f.export

	if e.theme != "" {
		t, err := s.lookupTheme(e.theme)
		if err != nil {
			return err
		}
		rs.theme = t
	}
	if e.output != "" {
		rs.outputDir = e.output
	}
	if e.format != "" {
		rs.options.Format = e.format
	}
	if f.changed("mobile") {
		rs.options.Mobile = e.mobile
	}
	if f.changed("print") {
		rs.options.Print = e.print
	}
	if f.changed("toc") {
		rs.options.TOC = e.toc
	}
	if e.pattern != "" {
		rs.settings.FilenamePattern = e.pattern
	}
	if e.dateFormat != "" {
		rs.settings.DateFormat = e.dateFormat
	}
	if e.author != "" {
		rs.settings.Metadata.Author = e.author
	}
	if e.description != "" {
		rs.settings.Metadata.Description = e.description
	}
	if e.keywords != "" {
		rs.settings.Metadata.Keywords = e.keywords
	}
	if e.assets != "" {
		rs.assets = e.assets
	}
	if e.timeout != "" {
		d, err := time.ParseDuration(e.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q must be a positive duration like 30s", ErrUsage, e.timeout)
		}
		rs.timeout = d
	}
	if e.slugTitle {
		rs.slugTitle = true
	}
	if f.addr != "" {
		rs.addr = f.addr
	}
	return nil
}

func validateSettings(rs *runSettings) error {
	if err := rs.options.Validate(); err != nil {
		return err
	}
	if rs.settings.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(rs.settings.DateFormat); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForDateFormat(presetNames()))
		}
	}
	return nil
}

func presetNames() []string {
	names := make([]string, 0, len(dateutil.Presets))
	for name := range dateutil.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// lookupTheme finds a stored theme and lists the available ones when the
// name is unknown.
func (s *session) lookupTheme(name string) (md2html.Theme, error) {
	t, err := s.store.Theme(name)
	if err != nil {
		return md2html.Theme{}, withThemeHint(s, err)
	}
	return t, nil
}

// say prints a status line unless --quiet is set.
func (s *session) say(format string, args ...any) {
	if !s.flags.common.quiet {
		fmt.Fprintf(s.env.Stdout, format, args...)
	}
}

// loadConfig wraps config.LoadConfig with a hint naming the per-user path.
func loadConfig(name string) (*config.Config, error) {
	cfg, err := config.LoadConfig(name)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		var searched []string
		if dir, dirErr := config.UserDir(); dirErr == nil {
			searched = append(searched, filepath.Join(dir, name+".yaml"))
		}
		return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(searched))
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// newConverter builds a converter for rs.
func (s *session) newConverter(rs *runSettings) (*md2html.Converter, error) {
	opts := []md2html.Option{
		md2html.WithLogger(s.logger),
		md2html.WithClock(s.env.Now),
		md2html.WithSlugTitles(rs.slugTitle),
	}
	if rs.assets != "" {
		opts = append(opts, md2html.WithAssetPath(rs.assets))
	}
	if rs.timeout > 0 {
		opts = append(opts, md2html.WithTimeout(rs.timeout))
	}

	conv, err := md2html.NewConverter(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForAssetPath())
	}
	return conv, nil
}

// withConverter runs fn with a converter and closes it afterwards.
func (s *session) withConverter(rs *runSettings, fn func(conv *md2html.Converter) error) (err error) {
	conv, err := s.newConverter(rs)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conv.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("closing converter: %w", closeErr))
		}
	}()
	return fn(conv)
}

// request builds a single-file request.
func (rs *runSettings) request(source string) md2html.Request {
	return md2html.Request{
		SourcePath: source,
		OutputDir:  rs.outputDir,
		Theme:      rs.theme,
		Options:    rs.options,
		Settings:   rs.settings,
	}
}

// describeError appends the hint matching err.
func describeError(err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, md2html.ErrBrowserConnect):
		msg += hints.ForBrowserConnect()
	case errors.Is(err, md2html.ErrPageLoad):
		msg += hints.ForTimeout()
	case errors.Is(err, md2html.ErrWriteOutput):
		msg += hints.ForOutputDirectory()
	}
	return msg
}
