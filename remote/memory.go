package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/dhamidi/convbrowse/conversation"
)

// Memory is an in-process Source holding a fixed conversation list.
// Failures can be injected with FailList and FailDelete, and Gate holds a
// page back until released.
type Memory struct {
	mu         sync.Mutex
	gates      map[int]chan struct{}
	items      []conversation.Summary
	listErr    error
	deleteErr  error
	listCalls  int
	deletedIDs []string
}

var _ Source = (*Memory)(nil)

// NewMemory returns a Memory source serving items in order.
func NewMemory(items []conversation.Summary) *Memory {
	return &Memory{items: append([]conversation.Summary(nil), items...)}
}

// FailList makes every following ListConversations call return err.
// A nil err restores normal behavior.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailDelete makes every following DeleteConversation call return err.
func (m *Memory) FailDelete(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

// Gate blocks ListConversations for page until release is called or the
// request's context is done.
func (m *Memory) Gate(page int) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gates == nil {
		m.gates = make(map[int]chan struct{})
	}
	ch := make(chan struct{})
	m.gates[page] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gates[page] == ch {
				delete(m.gates, page)
			}
			m.mu.Unlock()
			close(ch)
		})
	}
}

// ListCalls reports how many times ListConversations was called.
func (m *Memory) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// Deleted reports the IDs passed to DeleteConversation, in call order.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletedIDs...)
}

// ListConversations returns the requested slice of the list. userID is ignored.
func (m *Memory) ListConversations(ctx context.Context, _ string, page, pageSize int) (conversation.Page, error) {
	m.mu.Lock()
	m.listCalls++
	gate := m.gates[page]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return conversation.Page{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return conversation.Page{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return conversation.Page{}, m.listErr
	}
	if page < 1 || pageSize < 1 {
		return conversation.Page{}, fmt.Errorf("remote: invalid page %d/size %d", page, pageSize)
	}

	total := len(m.items)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := append([]conversation.Summary{}, m.items[start:end]...)

	return conversation.Page{
		Items: items,
		Pagination: conversation.Pagination{
			PageNumber: page,
			PageSize:   pageSize,
			TotalCount: total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// DeleteConversation removes id from the list.
func (m *Memory) DeleteConversation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedIDs = append(m.deletedIDs, id)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, s := range m.items {
		if s.ID == id {
			m.items = append(m.items[:i:i], m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remote: conversation %q: %w", id, ErrNotFound)
}
