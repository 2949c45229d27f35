// Package tui is the terminal conversation browser built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/debounce"
	"github.com/dhamidi/convbrowse/loader"
)

// Scroll geometry: a row is treated as RowHeight pixels and a load-more is
// requested once fewer than LoadMoreThreshold pixels remain below the cursor.
const (
	RowHeight         = 40
	LoadMoreThreshold = 200
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "241"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "236", Dark: "241"}).
			Background(lipgloss.AdaptiveColor{Light: "252", Dark: "236"}).
			Padding(0, 1)
)

// Controller is the list state the browser drives. *loader.Loader implements it.
type Controller interface {
	Start(ctx context.Context)
	Snapshot() loader.State
	Subscribe(fn func(loader.State)) (unsubscribe func())
	LoadMore()
	Refresh()
	DeleteConversation(ctx context.Context, id string) <-chan error
}

var _ Controller = (*loader.Loader)(nil)

// Trigger is a debounced action.
type Trigger interface {
	Trigger()
}

// NearBottom reports whether the remaining scroll distance is within threshold.
func NearBottom(distance, threshold int) bool {
	return distance < threshold
}

// item adapts a conversation summary to the list component.
type item struct {
	conversation.Summary
}

func (i item) Title() string { return i.Summary.Title }

func (i item) Description() string {
	parts := []string{i.Provider, i.Model}
	if !i.UpdatedAt.IsZero() {
		parts = append(parts, i.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	for _, tag := range i.Tags {
		parts = append(parts, "#"+tag.Name)
	}
	return strings.Join(nonEmpty(parts), " · ")
}

func (i item) FilterValue() string { return i.Summary.Title }

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Message types
type stateMsg loader.State
type deleteDoneMsg struct {
	id  string
	err error
}
type startedMsg struct{}

// Model is the browser's Bubble Tea model.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	loadMore Trigger

	state    loader.State
	list     list.Model
	spinner  spinner.Model
	notice   string
	quitting bool
}

// New creates a browser model. loadMore receives near-bottom signals.
func New(ctx context.Context, ctrl Controller, loadMore Trigger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Conversations"
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		loadMore: loadMore,
		state:    loader.State{HasMore: true},
		list:     l,
		spinner:  s,
	}
}

// Init starts the loader and the spinner.
func (m Model) Init() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctrl.Start(ctx)
			return startedMsg{}
		},
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.notice = ""
			m.ctrl.Refresh()
			return m, nil
		case "d":
			if cmd := m.deleteSelected(); cmd != nil {
				return m, cmd
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)

	case stateMsg:
		if msg.Version < m.state.Version {
			return m, nil
		}
		m.state = loader.State(msg)
		cmds = append(cmds, m.list.SetItems(items(m.state.Items)))

	case deleteDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("server could not delete %s: %v", msg.id, msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	m.maybeLoadMore()
	return m, tea.Batch(cmds...)
}

// maybeLoadMore signals the debouncer when the cursor is close to the end
// of a list that can still grow.
func (m Model) maybeLoadMore() {
	if m.loadMore == nil || m.state.Loading() || !m.state.HasMore || len(m.state.Items) == 0 {
		return
	}
	below := len(m.list.Items()) - 1 - m.list.Index()
	if NearBottom(below*RowHeight, LoadMoreThreshold) {
		m.loadMore.Trigger()
	}
}

func (m *Model) deleteSelected() tea.Cmd {
	selected, ok := m.list.SelectedItem().(item)
	if !ok {
		return nil
	}
	done := m.ctrl.DeleteConversation(m.ctx, selected.ID)
	m.notice = "deleted " + selected.Summary.Title
	return func() tea.Msg {
		return deleteDoneMsg{id: selected.ID, err: <-done}
	}
}

func items(summaries []conversation.Summary) []list.Item {
	out := make([]list.Item, len(summaries))
	for i, s := range summaries {
		out[i] = item{s}
	}
	return out
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if len(m.state.Items) == 0 {
		b.WriteString(titleStyle.Render("Conversations") + "\n\n")
		switch {
		case m.state.LoadingFirstPage:
			b.WriteString(fmt.Sprintf("  %s Loading conversations...\n", m.spinner.View()))
		case m.state.Err == "":
			b.WriteString(infoStyle.Render("  No conversations yet.") + "\n")
		}
	} else {
		b.WriteString(m.list.View() + "\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	var parts []string
	switch {
	case m.state.LoadingMore:
		parts = append(parts, m.spinner.View()+" Loading more...")
	case m.state.LoadingFirstPage && len(m.state.Items) > 0:
		parts = append(parts, m.spinner.View()+" Refreshing...")
	case !m.state.HasMore && len(m.state.Items) > 0:
		parts = append(parts, "No more conversations")
	}
	if m.state.Err != "" {
		parts = append(parts, errorStyle.Render("Error: "+m.state.Err+" (r to retry)"))
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, fmt.Sprintf("%d loaded · d delete · r refresh · q quit", len(m.state.Items)))
	return statusBarStyle.Render(strings.Join(parts, " │ "))
}

// Run shows the browser until the user quits.
func Run(ctx context.Context, ctrl Controller, opts ...tea.ProgramOption) error {
	debouncer := debounce.New(debounce.LoadMoreDelay, ctrl.LoadMore)
	defer debouncer.Stop()

	p := tea.NewProgram(New(ctx, ctrl, debouncer), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	unsubscribe := ctrl.Subscribe(func(s loader.State) { p.Send(stateMsg(s)) })
	defer unsubscribe()

	_, err := p.Run()
	return err
}
