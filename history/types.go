package history

import (
	"context"
	"errors"
)

// Keys used in the durable store. Settings keys live next to the mirror key
// but are never touched by the conversation loader.
const (
	MirrorKey          = "chats"
	CacheKey           = "conversations_cache"
	DarkModeKey        = "darkMode"
	UserPreferencesKey = "userPreferences"
)

// ErrInvalidKey is returned when a key cannot be stored safely.
var ErrInvalidKey = errors.New("history: invalid key")

// Store is a durable key/value store that survives process restarts.
// Get reports ok=false for a key that was never set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
