package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dhamidi/convbrowse/conversation"
)

// Mirror is a denormalized copy of the last known conversation list. It is
// only read when the API cannot be reached.
type Mirror struct {
	store Store
}

// NewMirror returns a Mirror persisting to store.
func NewMirror(store Store) *Mirror {
	return &Mirror{store: store}
}

// LoadFallback returns the last saved list. Missing, unreadable or corrupt
// data yields an empty list, never an error.
func (m *Mirror) LoadFallback(ctx context.Context) []conversation.Summary {
	raw, ok, err := m.store.Get(ctx, MirrorKey)
	if err != nil {
		log.Warn("history: failed to read mirror", "err", err)
		return []conversation.Summary{}
	}
	if !ok || raw == "" {
		return []conversation.Summary{}
	}

	var items []conversation.Summary
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn("history: mirror is corrupt, ignoring it", "err", err)
		return []conversation.Summary{}
	}
	if items == nil {
		items = []conversation.Summary{}
	}
	return items
}

// SaveFallback overwrites the mirror with items.
func (m *Mirror) SaveFallback(ctx context.Context, items []conversation.Summary) error {
	if items == nil {
		items = []conversation.Summary{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("history: failed to encode mirror: %w", err)
	}
	return m.store.Set(ctx, MirrorKey, string(data))
}

// Clear removes the mirror.
func (m *Mirror) Clear(ctx context.Context) error {
	return m.store.Delete(ctx, MirrorKey)
}
