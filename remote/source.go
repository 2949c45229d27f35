// Package remote talks to the conversation API.
package remote

import (
	"context"
	"errors"

	"github.com/dhamidi/convbrowse/conversation"
)

// ErrNotFound is returned when the API reports a missing resource.
var ErrNotFound = conversation.ErrConversationNotFound

// ErrUnavailable is returned by sources that are switched off.
var ErrUnavailable = errors.New("remote: source unavailable")

// Source is the paginated conversation list the loader reads from.
type Source interface {
	ListConversations(ctx context.Context, userID string, page, pageSize int) (conversation.Page, error)
	DeleteConversation(ctx context.Context, id string) error
}
