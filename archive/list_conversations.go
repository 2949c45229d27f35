package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dhamidi/convbrowse/conversation"
)

const summaryColumns = `c.id, c.user_id, c.title, c.provider, c.model, c.created_at, c.updated_at`

// List returns one page of userID's conversations, most recently updated first.
func (a *DB) List(ctx context.Context, userID string, page, limit int) (conversation.Page, error) {
	total, err := a.Count(ctx, userID)
	if err != nil {
		return conversation.Page{}, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM conversations c
		WHERE c.user_id = ?
		ORDER BY c.updated_at DESC, c.docid DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset(page, limit))
	if err != nil {
		return conversation.Page{}, fmt.Errorf("archive: failed to query conversations: %w", err)
	}

	items, err := a.scanSummaries(ctx, rows)
	if err != nil {
		return conversation.Page{}, err
	}
	return conversation.Page{Items: items, Pagination: pagination(page, limit, total)}, nil
}

// Search returns conversations of userID whose title or any message contains
// query, most recently updated first.
func (a *DB) Search(ctx context.Context, userID, query string, page, limit int) (conversation.Page, error) {
	pattern := prepareLikePattern(query)
	where := `
		WHERE c.user_id = ? AND (
			c.title LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = c.id AND m.content LIKE ? ESCAPE '\')
		)`

	var total int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations c`+where, userID, pattern, pattern).Scan(&total)
	if err != nil {
		return conversation.Page{}, fmt.Errorf("archive: failed to execute search query '%s': %w", query, err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM conversations c`+where+`
		ORDER BY c.updated_at DESC, c.docid DESC
		LIMIT ? OFFSET ?
	`, userID, pattern, pattern, limit, offset(page, limit))
	if err != nil {
		return conversation.Page{}, fmt.Errorf("archive: failed to execute search query '%s': %w", query, err)
	}

	items, err := a.scanSummaries(ctx, rows)
	if err != nil {
		return conversation.Page{}, err
	}
	return conversation.Page{Items: items, Pagination: pagination(page, limit, total)}, nil
}

// prepareLikePattern wraps query in wildcards, escaping characters LIKE
// would otherwise interpret.
func prepareLikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(query)) + "%"
}

func (a *DB) scanSummaries(ctx context.Context, rows *sql.Rows) ([]conversation.Summary, error) {
	defer rows.Close()

	items := make([]conversation.Summary, 0)
	var ids []string
	for rows.Next() {
		var s conversation.Summary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Provider, &s.Model, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("archive: failed to scan conversation: %w", err)
		}
		items = append(items, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: error iterating rows: %w", err)
	}
	rows.Close()

	tags, err := a.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Tags = tags[items[i].ID]
	}
	return items, nil
}
