// Package conversation holds the conversation types shared by the loader, the
// local stores and the remote API.
package conversation

import (
	"errors"
	"strings"
	"time"
)

// ErrConversationNotFound is returned when a requested conversation cannot be found.
var ErrConversationNotFound = errors.New("conversation: not found")

// Tag errors.
var (
	ErrTagNotFound = errors.New("conversation: tag not found")
	ErrTagExists   = errors.New("conversation: tag name already in use")
	ErrTagName     = errors.New("conversation: tag name is required")
)

// UntitledTitle replaces empty titles coming from the API.
const UntitledTitle = "Untitled conversation"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Tag is a label attached to a conversation.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Summary is the list-level view of a conversation. Everything except Tags
// is fixed once fetched.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserID    string    `json:"user_id,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []Tag     `json:"tags,omitempty"`
}

// Message is a single entry within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	PageNumber int
	PageSize   int
	TotalCount int
	TotalPages int
}

// Page is one slice of a user's conversation list as returned by the API.
type Page struct {
	Items []Summary
	Pagination
}

// MessagePage is one slice of a conversation's messages.
type MessagePage struct {
	Items []Message
	Pagination
}

// Adapt normalizes a summary received from the API.
func Adapt(s Summary) Summary {
	if strings.TrimSpace(s.Title) == "" {
		s.Title = UntitledTitle
	}
	return s
}

// AdaptAll applies Adapt to every summary in place and returns the slice.
func AdaptAll(items []Summary) []Summary {
	for i := range items {
		items[i] = Adapt(items[i])
	}
	return items
}

// Without returns a copy of items with every summary whose ID is id removed.
func Without(items []Summary, id string) []Summary {
	out := make([]Summary, 0, len(items))
	for _, s := range items {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
