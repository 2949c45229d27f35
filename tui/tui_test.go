package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/loader"
)

type fakeController struct {
	started   int
	refreshed int
	loadMores int
	deleted   []string
	deleteErr error
}

func (f *fakeController) Start(context.Context)                             { f.started++ }
func (f *fakeController) Snapshot() loader.State                            { return loader.State{} }
func (f *fakeController) Subscribe(func(loader.State)) (unsubscribe func()) { return func() {} }
func (f *fakeController) LoadMore()                                         { f.loadMores++ }
func (f *fakeController) Refresh()                                          { f.refreshed++ }

func (f *fakeController) DeleteConversation(_ context.Context, id string) <-chan error {
	f.deleted = append(f.deleted, id)
	done := make(chan error, 1)
	done <- f.deleteErr
	return done
}

type countingTrigger struct{ n int }

func (c *countingTrigger) Trigger() { c.n++ }

func summaries(n int) []conversation.Summary {
	out := make([]conversation.Summary, n)
	for i := range out {
		out[i] = conversation.Summary{ID: fmt.Sprintf("c%02d", i), Title: fmt.Sprintf("Conversation %d", i), Provider: "openai", Model: "gpt-4o"}
	}
	return out
}

func newModel(t *testing.T) (Model, *fakeController, *countingTrigger) {
	t.Helper()
	ctrl := &fakeController{}
	trig := &countingTrigger{}
	m := New(context.Background(), ctrl, trig)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return updated.(Model), ctrl, trig
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNearBottom(t *testing.T) {
	tests := []struct {
		distance int
		want     bool
	}{
		{0, true},
		{160, true},
		{199, true},
		{200, false},
		{760, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.distance), func(t *testing.T) {
			assert.Equal(t, tt.want, NearBottom(tt.distance, LoadMoreThreshold))
		})
	}
}

func TestStateMessagePopulatesList(t *testing.T) {
	m, _, trig := newModel(t)

	m = update(t, m, stateMsg{Items: summaries(20), CurrentPage: 1, HasMore: true, Version: 3})

	assert.Len(t, m.list.Items(), 20)
	assert.Equal(t, 0, trig.n, "cursor at the top is far from the bottom")
	assert.Contains(t, m.View(), "20 loaded")
}

func TestStaleStateIsIgnored(t *testing.T) {
	m, _, _ := newModel(t)
	m = update(t, m, stateMsg{Items: summaries(5), HasMore: true, Version: 4})
	m = update(t, m, stateMsg{Items: summaries(2), HasMore: true, Version: 2})

	assert.Len(t, m.list.Items(), 5)
}

func TestCursorNearBottomTriggersLoadMore(t *testing.T) {
	m, _, trig := newModel(t)
	m = update(t, m, stateMsg{Items: summaries(20), CurrentPage: 1, HasMore: true, Version: 1})

	m.list.Select(16)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	require.Equal(t, 17, m.list.Index())
	assert.Equal(t, 1, trig.n)
}

func TestNoTriggerWhileLoadingOrComplete(t *testing.T) {
	tests := []struct {
		name  string
		state stateMsg
	}{
		{"loading more", stateMsg{Items: summaries(3), HasMore: true, LoadingMore: true, Version: 1}},
		{"loading first page", stateMsg{Items: summaries(3), HasMore: true, LoadingFirstPage: true, Version: 1}},
		{"complete", stateMsg{Items: summaries(3), HasMore: false, Version: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, trig := newModel(t)
			m = update(t, m, tt.state)
			m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
			assert.Equal(t, 0, trig.n)
		})
	}
}

func TestShortListTriggersLoadMore(t *testing.T) {
	m, _, trig := newModel(t)
	update(t, m, stateMsg{Items: summaries(3), HasMore: true, Version: 1})
	assert.Equal(t, 1, trig.n)
}

func TestDeleteSelected(t *testing.T) {
	m, ctrl, _ := newModel(t)
	ctrl.deleteErr = errors.New("500")
	m = update(t, m, stateMsg{Items: summaries(3), HasMore: false, Version: 1})

	updated, cmd := m.Update(key("d"))
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"c00"}, ctrl.deleted)

	m = update(t, m, cmd())
	assert.Contains(t, m.View(), "server could not delete c00")
}

func TestRefreshAndQuit(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m = update(t, m, key("r"))
	assert.Equal(t, 1, ctrl.refreshed)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsErrorAndEmptyStates(t *testing.T) {
	m, _, _ := newModel(t)
	assert.Contains(t, m.View(), "No conversations yet")

	m = update(t, m, stateMsg{HasMore: true, Err: "Failed to fetch", Version: 1})
	assert.Contains(t, m.View(), "Error: Failed to fetch (r to retry)")

	m = update(t, m, stateMsg{LoadingFirstPage: true, HasMore: true, Version: 2})
	assert.Contains(t, m.View(), "Loading conversations")
}

func TestItemDescription(t *testing.T) {
	i := item{conversation.Summary{Provider: "anthropic", Model: "claude", Tags: []conversation.Tag{{Name: "work"}}}}
	assert.Equal(t, "anthropic · claude · #work", i.Description())
}
