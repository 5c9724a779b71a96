// Package tui is the interactive history browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/masmgr/histwalk/config"
	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/render"
	"github.com/masmgr/histwalk/internal/state"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// Options configures a Model.
type Options struct {
	Service   *navigation.Service
	Renderer  *render.Renderer
	Selection urlstate.Selection
	State     state.State
	UI        config.UIConfig
	Logger    *slog.Logger
}

type viewLoadedMsg struct {
	id      uint64
	view    navigation.View
	outputs *navigation.OutputView // set in output mode
	content render.Content
	err     error // the selection could not be resolved
	// renderErr means the position resolved but its content could not be read.
	renderErr error
}

type movedMsg struct {
	id  uint64
	sel urlstate.Selection
	err error
}

type branchesLoadedMsg struct {
	branches []string
	err      error
}

// RefsChangedMsg reports that branch refs moved on disk.
type RefsChangedMsg struct{}

// Model represents the browser state
type Model struct {
	svc      *navigation.Service
	renderer *render.Renderer
	logger   *slog.Logger
	keys     KeyMap
	styles   *Styles
	viewport viewport.Model

	width  int
	height int
	ready  bool

	sel      urlstate.Selection
	view     navigation.View
	outputs  *navigation.OutputView
	// history is the selection to return to when leaving output mode.
	history urlstate.Selection
	content  render.Content
	branches []string
	state    state.State

	// seq is the id of the latest issued request; replies with another id are stale.
	seq       uint64
	loading   bool
	helpOpen  bool
	statusMsg string
	err       error
}

// NewModel creates a browser positioned at opts.Selection.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(opts.Service.Provider())
	}
	sel := opts.Selection
	if sel.Mode == "" {
		sel.Mode = urlstate.ModeHistory
	}

	m := Model{
		svc:      opts.Service,
		renderer: renderer,
		logger:   logger,
		keys:     defaultKeyMap(),
		styles:   createStyles(opts.UI),
		viewport: viewport.New(80, 20),
		sel:      sel,
		state:    opts.State,
		seq:      1,
		loading:  true,
	}
	m.viewport.SetContent("Loading...")
	return m
}

// Init loads the branch list and the initial position.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBranchesCmd(), m.locateCmd(m.seq, m.sel))
}

// Selection returns the displayed position.
func (m Model) Selection() urlstate.Selection { return m.sel }

// State returns the browser state to persist, with the current selection.
func (m Model) State() state.State {
	st := m.state
	st.Selection = m.sel.Encode()
	return st
}

// Err returns the last load error, if any.
func (m Model) Err() error { return m.err }

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case branchesLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("branches: %v", msg.err)
			return m, nil
		}
		m.branches = msg.branches
		return m, nil

	case viewLoadedMsg:
		if msg.id != m.seq {
			m.logger.Debug("dropping stale view", "id", msg.id, "latest", m.seq)
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.viewport.SetContent(m.styles.errorText.Render(fmt.Sprintf("Error: %v", msg.err)))
			return m, nil
		}
		m.err = nil
		m.outputs = msg.outputs
		if msg.outputs != nil {
			m.sel = msg.outputs.Selection
		} else {
			m.view = msg.view
			m.sel = msg.view.Selection
			if it, ok := m.view.Cursor.Item(); ok {
				m.state.Open(it.Path, m.sel.Commit)
			}
		}
		m.content = msg.content
		if msg.renderErr != nil {
			m.logger.Debug("render failed", "selection", m.sel.Encode(), "error", msg.renderErr)
			title := m.sel.File
			if m.outputs != nil {
				if e, ok := m.outputs.Entry(); ok {
					title = e.Path
				}
			}
			m.content = render.Content{Kind: render.KindNotice, Title: title, Text: fmt.Sprintf("Error: %v", msg.renderErr)}
			m.viewport.SetContent(m.styles.errorText.Render(m.content.Text))
		} else {
			m.viewport.SetContent(m.renderContent())
		}
		m.viewport.GotoTop()
		return m, nil

	case movedMsg:
		if msg.id != m.seq || errors.Is(msg.err, navigation.ErrStale) {
			return m, nil
		}
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			m.statusMsg = fmt.Sprintf("navigation failed: %v", msg.err)
			return m, nil
		}
		if msg.sel.Equal(m.sel) {
			m.loading = false
			return m, nil
		}
		m.sel = msg.sel
		id := m.request()
		return m, m.locateCmd(id, m.sel)

	case RefsChangedMsg:
		m.svc.Invalidate()
		m.statusMsg = "refs changed, reloaded"
		id := m.request()
		return m, tea.Batch(m.loadBranchesCmd(), m.locateCmd(id, m.sel))

	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.helpOpen = !m.helpOpen
		m.resize()
		return m, nil, true
	case key.Matches(msg, m.keys.Back):
		model, cmd := m.move(navigation.Back)
		return model, cmd, true
	case key.Matches(msg, m.keys.Forward):
		model, cmd := m.move(navigation.Forward)
		return model, cmd, true
	case key.Matches(msg, m.keys.FastBack):
		model, cmd := m.move(navigation.FastBack)
		return model, cmd, true
	case key.Matches(msg, m.keys.FastForward):
		model, cmd := m.move(navigation.FastForward)
		return model, cmd, true
	case key.Matches(msg, m.keys.First):
		if m.outputs != nil {
			return m.jumpOutput(0)
		}
		id := m.request()
		return m, m.jumpCmd(id, m.sel, false), true
	case key.Matches(msg, m.keys.Latest):
		if m.outputs != nil {
			return m.jumpOutput(m.outputs.Total() - 1)
		}
		id := m.request()
		return m, m.jumpCmd(id, m.sel, true), true
	case key.Matches(msg, m.keys.Outputs):
		if m.sel.Mode == urlstate.ModeOutput {
			branch := m.sel.Branch
			m.sel = m.history
			if m.sel.Mode == "" {
				m.sel.Mode = urlstate.ModeHistory
			}
			if m.sel.Branch != branch {
				m.sel = m.sel.WithBranch(branch)
			}
		} else {
			m.history = m.sel
			m.sel = m.sel.OutputAt(0)
		}
		id := m.request()
		return m, m.locateCmd(id, m.sel), true
	case key.Matches(msg, m.keys.Branch):
		if len(m.branches) == 0 {
			m.statusMsg = "no branches"
			return m, nil, true
		}
		next := m.branches[0]
		for i, b := range m.branches {
			if b == m.sel.Branch {
				next = m.branches[(i+1)%len(m.branches)]
				break
			}
		}
		m.sel = m.sel.WithBranch(next)
		m.statusMsg = "branch " + next
		id := m.request()
		return m, m.locateCmd(id, m.sel), true
	}
	return m, nil, false
}

// jumpOutput selects output i, clamped to the declared outputs.
func (m Model) jumpOutput(i int) (tea.Model, tea.Cmd, bool) {
	m.sel = m.sel.OutputAt(max(i, 0))
	id := m.request()
	return m, m.locateCmd(id, m.sel), true
}

func (m Model) can(dir navigation.Direction) bool {
	if m.outputs != nil {
		return m.outputs.Can(dir)
	}
	return m.view.Cursor.Can(dir)
}

func (m Model) move(dir navigation.Direction) (tea.Model, tea.Cmd) {
	if !m.loading && !m.can(dir) {
		m.statusMsg = "cannot go " + dir.String()
		return m, nil
	}
	m.statusMsg = ""
	id := m.request()
	return m, m.moveCmd(id, m.sel, dir)
}

func (m *Model) request() uint64 {
	m.seq++
	m.loading = true
	return m.seq
}

func (m *Model) resize() {
	header := 1
	footer := 1
	if m.helpOpen {
		footer += len(m.keys.bindings())
	}
	m.viewport.Width = max(1, m.width)
	m.viewport.Height = max(1, m.height-header-footer)
}

func (m Model) locateCmd(id uint64, sel urlstate.Selection) tea.Cmd {
	svc, r := m.svc, m.renderer
	return func() tea.Msg {
		ctx := context.Background()
		if sel.Mode == urlstate.ModeOutput {
			ov, err := svc.Outputs(ctx, sel)
			if err != nil {
				return viewLoadedMsg{id: id, err: err}
			}
			content, err := r.Output(ctx, ov.Head.SHA, ov.Outputs, ov.Index)
			return viewLoadedMsg{id: id, outputs: &ov, content: content, renderErr: err}
		}
		view, err := svc.Locate(ctx, sel)
		if err != nil {
			return viewLoadedMsg{id: id, err: err}
		}
		content, err := contentFor(ctx, svc, r, view)
		return viewLoadedMsg{id: id, view: view, content: content, renderErr: err}
	}
}

func (m Model) moveCmd(id uint64, sel urlstate.Selection, dir navigation.Direction) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		next, err := svc.Move(context.Background(), sel, dir)
		return movedMsg{id: id, sel: next, err: err}
	}
}

// jumpCmd selects the commit-info of the first or latest commit of the branch.
func (m Model) jumpCmd(id uint64, sel urlstate.Selection, latest bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		branch, err := svc.Branch(ctx, sel.Branch)
		if err != nil {
			return movedMsg{id: id, err: err}
		}
		commits, err := svc.Commits(ctx, branch)
		if err != nil {
			return movedMsg{id: id, err: err}
		}
		if len(commits) == 0 {
			return movedMsg{id: id, sel: sel}
		}
		target := commits[0]
		if latest {
			target = commits[len(commits)-1]
		}
		sel.Branch = branch
		return movedMsg{id: id, sel: sel.CommitInfo(target.SHA)}
	}
}

func (m Model) loadBranchesCmd() tea.Cmd {
	provider := m.svc.Provider()
	return func() tea.Msg {
		branches, err := provider.ListBranches(context.Background())
		if err != nil {
			return branchesLoadedMsg{err: err}
		}
		names := make([]string, len(branches))
		for i, b := range branches {
			names[i] = b.Name
		}
		return branchesLoadedMsg{branches: names}
	}
}

func contentFor(ctx context.Context, svc *navigation.Service, r *render.Renderer, view navigation.View) (render.Content, error) {
	cur := view.Cursor
	switch cur.Position() {
	case navigation.OnItem:
		it, _ := cur.Item()
		return r.Item(ctx, view.Details, it)
	case navigation.OnCommitInfo:
		return render.CommitInfo(view.Details, cur.Items()), nil
	}

	commits, err := svc.Commits(ctx, view.Selection.Branch)
	if err != nil {
		return render.Content{}, err
	}
	return commitList(view.Selection.Branch, commits), nil
}

// commitList is shown while no commit is selected.
func commitList(branch string, commits []git.Commit) render.Content {
	var b strings.Builder
	if len(commits) == 0 {
		fmt.Fprintf(&b, "Branch %s has no commits.\n", branch)
	} else {
		fmt.Fprintf(&b, "Branch %s, %d commits. Press g for the first commit or G for the latest.\n\n", branch, len(commits))
		for i, c := range commits {
			fmt.Fprintf(&b, "%4d  %s  %s  %s\n", i+1, c.ShortSHA(), c.When.Format("2006-01-02"), c.Subject())
		}
	}
	return render.Content{Kind: render.KindCommitInfo, Title: branch, Text: b.String()}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := []string{m.renderTitle(), m.viewport.View()}
	if m.helpOpen {
		sections = append(sections, m.renderHelp())
	}
	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle() string {
	title := "histwalk"
	if m.sel.Branch != "" {
		title += " · " + m.sel.Branch
	}
	if m.content.Title != "" {
		title += " · " + m.content.Title
	}
	if m.loading {
		title += " (loading...)"
	}
	return m.styles.title.Render(truncate(title, max(10, m.width-2)))
}

func (m Model) renderContent() string {
	c := m.content
	if c.Kind != render.KindDiff {
		return c.Text
	}
	if len(c.Lines) == 0 {
		return m.styles.muted.Render("No textual changes.")
	}
	lines := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = m.renderLine(l)
	}
	return strings.Join(lines, "\n")
}

// renderLine renders a single diff line with old and new line numbers.
func (m Model) renderLine(line render.DiffLine) string {
	lineNo := func(n int) string {
		if n == 0 {
			return m.styles.lineNumber.Render("")
		}
		return m.styles.lineNumber.Render(fmt.Sprintf("%d", n))
	}

	var symbol string
	var style lipgloss.Style
	switch line.Type {
	case render.Added:
		symbol, style = "+", m.styles.added
	case render.Removed:
		symbol, style = "-", m.styles.removed
	default:
		symbol, style = " ", m.styles.unchanged
	}

	body := style.Render(line.Content)
	if len(line.Segments) > 0 {
		var b strings.Builder
		for _, seg := range line.Segments {
			if seg.Changed {
				b.WriteString(style.Inherit(m.styles.changed).Render(seg.Text))
			} else {
				b.WriteString(style.Render(seg.Text))
			}
		}
		body = b.String()
	}
	return lineNo(line.OldNo) + " " + lineNo(line.NewNo) + " " + style.Render(symbol) + " " + body
}

func (m Model) renderStatusBar() string {
	if m.err != nil && m.statusMsg == "" {
		return m.styles.errorText.Render(truncate(fmt.Sprintf("Error: %v", m.err), max(10, m.width)))
	}

	if m.outputs != nil {
		return m.renderOutputStatus()
	}

	cur := m.view.Cursor
	ctr := cur.Counters()

	var parts []string
	if ctr.Commit > 0 {
		parts = append(parts, fmt.Sprintf("commit %d/%d", ctr.Commit, ctr.TotalCommits))
		if ctr.Item > 0 {
			parts = append(parts, fmt.Sprintf("item %d/%d", ctr.Item, ctr.TotalItems))
		} else {
			parts = append(parts, fmt.Sprintf("info (%d items)", ctr.TotalItems))
		}
	} else {
		parts = append(parts, fmt.Sprintf("%d commits", ctr.TotalCommits))
	}

	arrows := []string{
		m.arrow("[", cur.CanGoFastBack()),
		m.arrow("←", cur.CanGoBack()),
		m.arrow("→", cur.CanGoForward()),
		m.arrow("]", cur.CanGoFastForward()),
	}
	parts = append(parts, strings.Join(arrows, " "))
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}
	parts = append(parts, "?:help q:quit")

	return m.styles.statusBar.Render(truncate(strings.Join(parts, " | "), max(10, m.width-2)))
}

func (m Model) renderOutputStatus() string {
	ov := m.outputs
	var parts []string
	switch ctr := ov.Counters(); {
	case ctr.TotalItems == 0:
		parts = append(parts, render.NoOutputsText)
	case ctr.Item == 0:
		parts = append(parts, fmt.Sprintf("%s (%d outputs)", render.OutputNotFoundText, ctr.TotalItems))
	default:
		parts = append(parts, fmt.Sprintf("output %d/%d", ctr.Item, ctr.TotalItems))
	}
	parts = append(parts, m.arrow("←", ov.CanGoPrev())+" "+m.arrow("→", ov.CanGoNext()))
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}
	parts = append(parts, "o:history ?:help q:quit")

	return m.styles.statusBar.Render(truncate(strings.Join(parts, " | "), max(10, m.width-2)))
}

func (m Model) arrow(symbol string, ok bool) string {
	if ok {
		return m.styles.enabled.Render(symbol)
	}
	return m.styles.disabled.Render(symbol)
}

func (m Model) renderHelp() string {
	lines := make([]string, 0, len(m.keys.bindings()))
	for _, b := range m.keys.bindings() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-6s %s", h.Key, h.Desc))
	}
	return m.styles.muted.Render(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
