// Package tui is the interactive shell started when md2html runs without
// arguments. It lists recent and nearby Markdown files, toggles export
// options, cycles themes and runs single or batch conversions. Every
// option change is written back to the preferences store.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"

	md2html "github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/prefs"
)

const (
	minListHeight = 5
	chromeHeight  = 9 // title, options, progress, status, help and borders
)

// Converter is the subset of *md2html.Converter the shell needs.
type Converter interface {
	Convert(ctx context.Context, req md2html.Request) (*md2html.Result, error)
	StartBatch(ctx context.Context, req md2html.BatchRequest) *md2html.Batch
}

// Options configures New.
type Options struct {
	Converter Converter
	Store     *prefs.Store
	// Files are discovered Markdown files shown after the recent ones.
	Files []string
}

type fileItem struct {
	path   string
	recent bool
}

func (f fileItem) Title() string       { return filepath.Base(f.path) }
func (f fileItem) FilterValue() string { return f.path }

func (f fileItem) Description() string {
	if f.recent {
		return "recent  " + filepath.Dir(f.path)
	}
	return filepath.Dir(f.path)
}

// Messages.
type (
	convertedMsg struct {
		path   string
		result *md2html.Result
		err    error
	}
	batchProgressMsg struct{ progress md2html.Progress }
	batchDoneMsg     struct{ report md2html.BatchReport }
)

// Model is the bubbletea model.
type Model struct {
	ctx   context.Context
	conv  Converter
	store *prefs.Store

	list     list.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	opts  md2html.ExportOptions
	theme string

	converting bool
	batch      *md2html.Batch
	canceling  bool
	done       int
	total      int
	saveErr    error // first recent-files save failure of the running batch

	status string
	err    error
	width  int
}

// New builds the model. Recent files from the store come first; discovered
// files that are already recent are not listed twice.
func New(ctx context.Context, o Options) *Model {
	items := buildItems(o.Store.RecentFiles(), o.Files)

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Markdown files"
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("file", "files")

	p := o.Store.Get()
	return &Model{
		ctx:      ctx,
		conv:     o.Converter,
		store:    o.Store,
		list:     l,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     defaultKeyMap(),
		opts:     p.ExportCustomization,
		theme:    o.Store.CurrentTheme().Name,
	}
}

func buildItems(recent, found []string) []list.Item {
	seen := make(map[string]bool, len(recent)+len(found))
	items := make([]list.Item, 0, len(recent)+len(found))
	for _, p := range recent {
		if !seen[p] {
			seen[p] = true
			items = append(items, fileItem{path: p, recent: true})
		}
	}
	for _, p := range found {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			items = append(items, fileItem{path: p})
		}
	}
	return items
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		m.list.SetSize(msg.Width-4, max(msg.Height-chromeHeight, minListHeight))
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case convertedMsg:
		m.converting = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if err := m.store.AddRecent(msg.path); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Saved to " + msg.result.Path)
		return m, nil

	case batchProgressMsg:
		m.done = msg.progress.Index + 1
		m.total = msg.progress.Total
		r := msg.progress.Result
		m.setStatus(fmt.Sprintf("%s: %s", filepath.Base(r.SourcePath), r.Status))
		if r.Status == md2html.StatusSucceeded {
			if err := m.store.AddRecent(r.SourcePath); err != nil {
				if m.saveErr == nil {
					m.saveErr = err
				}
				m.setError(err)
			}
		}
		return m, waitForProgress(m.batch)

	case batchDoneMsg:
		m.batch = nil
		m.canceling = false
		m.setStatus(summarize(msg.report))
		if err := multierr.Append(msg.report.Err(), m.saveErr); err != nil {
			m.err = err
		}
		m.saveErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.batch != nil {
			m.batch.Cancel()
		}
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil, true

	case key.Matches(msg, m.keys.Convert):
		return m, m.convertSelected(), true

	case key.Matches(msg, m.keys.ConvertAll):
		return m, m.startBatch(), true

	case key.Matches(msg, m.keys.Cancel):
		if m.batch != nil && !m.canceling {
			m.batch.Cancel()
			m.canceling = true
			m.setStatus("Canceling after the current file...")
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Mobile):
		m.opts.Mobile = !m.opts.Mobile
		m.saveOptions()
		return m, nil, true

	case key.Matches(msg, m.keys.Print):
		m.opts.Print = !m.opts.Print
		m.saveOptions()
		return m, nil, true

	case key.Matches(msg, m.keys.TOC):
		m.opts.TOC = !m.opts.TOC
		m.saveOptions()
		return m, nil, true

	case key.Matches(msg, m.keys.Format):
		if strings.EqualFold(m.opts.Format, md2html.FormatPDF) {
			m.opts.Format = md2html.FormatHTML
		} else {
			m.opts.Format = md2html.FormatPDF
		}
		m.saveOptions()
		return m, nil, true

	case key.Matches(msg, m.keys.NextTheme):
		m.nextTheme()
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) busy() bool { return m.converting || m.batch != nil }

func (m *Model) convertSelected() tea.Cmd {
	if m.busy() {
		return nil
	}
	item, ok := m.list.SelectedItem().(fileItem)
	if !ok {
		m.setStatus("No file selected")
		return nil
	}
	m.converting = true
	m.setStatus("Converting " + filepath.Base(item.path) + "...")

	p := m.store.Get()
	req := md2html.Request{
		SourcePath: item.path,
		OutputDir:  p.OutputDir,
		Theme:      m.store.CurrentTheme(),
		Options:    m.opts,
		Settings:   p.ExportSettings,
	}
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		res, err := conv.Convert(ctx, req)
		return convertedMsg{path: req.SourcePath, result: res, err: err}
	}
}

func (m *Model) startBatch() tea.Cmd {
	if m.busy() {
		return nil
	}
	items := m.list.Items()
	if len(items) == 0 {
		m.setStatus("Nothing to convert")
		return nil
	}
	files := make([]string, 0, len(items))
	for _, it := range items {
		files = append(files, it.(fileItem).path)
	}

	p := m.store.Get()
	m.batch = m.conv.StartBatch(m.ctx, md2html.BatchRequest{
		Files:     files,
		OutputDir: p.OutputDir,
		Theme:     m.store.CurrentTheme(),
		Options:   m.opts,
		Settings:  p.ExportSettings,
	})
	m.done, m.total = 0, len(files)
	m.saveErr = nil
	m.setStatus(fmt.Sprintf("Converting %d files...", len(files)))
	return waitForProgress(m.batch)
}

// waitForProgress reads one event from the batch. The closed channel means
// the worker has finished, so Wait returns without blocking for long.
func waitForProgress(b *md2html.Batch) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-b.Progress()
		if !ok {
			return batchDoneMsg{report: b.Wait()}
		}
		return batchProgressMsg{progress: p}
	}
}

func (m *Model) saveOptions() {
	if err := m.store.SetExportOptions(m.opts); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("Options saved")
}

func (m *Model) nextTheme() {
	names := m.store.ThemeNames()
	next := names[0]
	for i, n := range names {
		if n == m.theme {
			next = names[(i+1)%len(names)]
			break
		}
	}
	if err := m.store.SelectTheme(next); err != nil {
		m.setError(err)
		return
	}
	m.theme = next
	m.setStatus("Theme: " + next)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *Model) setError(err error) {
	m.status = ""
	m.err = err
}

func summarize(r md2html.BatchReport) string {
	s := fmt.Sprintf("Done: %d succeeded, %d failed", r.Succeeded(), r.Failed())
	if n := r.NotAttempted(); n > 0 {
		s += fmt.Sprintf(", %d not attempted", n)
	}
	if r.Canceled {
		s += " (canceled)"
	}
	return s
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("md2html"))
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(m.list.View()))
	b.WriteString("\n")
	b.WriteString(m.optionsView())
	b.WriteString("\n")

	if m.batch != nil && m.total > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.done) / float64(m.total)))
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d/%d", m.done, m.total)))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(successStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) optionsView() string {
	toggle := func(label string, on bool) string {
		if on {
			return optionOnStyle.Render("[x] " + label)
		}
		return optionOffStyle.Render("[ ] " + label)
	}
	format := md2html.FormatHTML
	if strings.EqualFold(m.opts.Format, md2html.FormatPDF) {
		format = md2html.FormatPDF
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		toggle("mobile", m.opts.Mobile), "  ",
		toggle("print", m.opts.Print), "  ",
		toggle("toc", m.opts.TOC), "  ",
		mutedStyle.Render("format: "+format), "  ",
		mutedStyle.Render("theme: "+m.theme),
	)
}

// Run starts the shell and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, o Options) error {
	_, err := tea.NewProgram(New(ctx, o), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
