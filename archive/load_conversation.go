package archive

import (
	"context"
	"fmt"

	"github.com/dhamidi/convbrowse/conversation"
)

// Messages returns one page of a conversation's messages in the order they
// were written.
func (a *DB) Messages(ctx context.Context, conversationID string, page, limit int) (conversation.MessagePage, error) {
	if _, err := a.Get(ctx, conversationID); err != nil {
		return conversation.MessagePage{}, err
	}

	var total int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&total); err != nil {
		return conversation.MessagePage{}, fmt.Errorf("archive: failed to count messages for conversation ID '%s': %w", conversationID, err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at, updated_at
		FROM messages WHERE conversation_id = ?
		ORDER BY sequence_number ASC
		LIMIT ? OFFSET ?
	`, conversationID, limit, offset(page, limit))
	if err != nil {
		return conversation.MessagePage{}, fmt.Errorf("archive: failed to query messages for conversation ID '%s': %w", conversationID, err)
	}
	defer rows.Close()

	msgs := make([]conversation.Message, 0)
	for rows.Next() {
		var m conversation.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return conversation.MessagePage{}, fmt.Errorf("archive: failed to scan message for conversation ID '%s': %w", conversationID, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return conversation.MessagePage{}, fmt.Errorf("archive: error during message rows iteration for conversation ID '%s': %w", conversationID, err)
	}

	return conversation.MessagePage{Items: msgs, Pagination: pagination(page, limit, total)}, nil
}
