// Package archive is the SQLite store behind the demo conversation API.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dhamidi/convbrowse/conversation"
)

//go:embed schema.sql
var schemaSQL string

// Conversation is a stored conversation together with its messages.
type Conversation struct {
	conversation.Summary
	Messages []conversation.Message
}

// DB stores conversations, messages and tags.
type DB struct {
	db *sql.DB
}

// initDB ensures the database and tables exist, returning a connection.
func initDB(dataSourceName string) (*sql.DB, error) {
	dbDir := filepath.Dir(dataSourceName)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		err = os.MkdirAll(dbDir, 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open opens (creating if needed) the archive at dbPath.
func Open(dbPath string) (*DB, error) {
	db, err := initDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to open/initialize database at %s: %w", dbPath, err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (a *DB) Close() error {
	return a.db.Close()
}

// Save persists the conversation, its tags and its messages. Messages already
// stored for this conversation are replaced.
func (a *DB) Save(ctx context.Context, conv *Conversation) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, provider, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			provider = excluded.provider,
			model = excluded.model,
			updated_at = excluded.updated_at
	`, conv.ID, conv.UserID, conv.Title, conv.Provider, conv.Model, conv.CreatedAt.UTC(), conv.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("archive: failed to save conversation %s: %w", conv.ID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM conversation_tags WHERE conversation_id = ?`, conv.ID); err != nil {
		return err
	}

	for _, tag := range conv.Tags {
		_, err = tx.ExecContext(ctx, `INSERT INTO tags (id, name, color) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`, tag.ID, tag.Name, tag.Color)
		if err != nil {
			return fmt.Errorf("archive: failed to save tag %s: %w", tag.Name, err)
		}
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO conversation_tags (conversation_id, tag_id) VALUES (?, ?)`, conv.ID, tag.ID)
		if err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, conversation_id, sequence_number, role, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		updated := msg.UpdatedAt
		if updated.IsZero() {
			updated = msg.CreatedAt
		}
		if _, err = stmt.ExecContext(ctx, msg.ID, conv.ID, i, msg.Role, msg.Content, msg.CreatedAt.UTC(), updated.UTC()); err != nil {
			return fmt.Errorf("archive: failed to save message %s: %w", msg.ID, err)
		}
	}

	return tx.Commit()
}

// Get returns the summary of a single conversation.
func (a *DB) Get(ctx context.Context, id string) (conversation.Summary, error) {
	var s conversation.Summary
	err := a.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, provider, model, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id).Scan(&s.ID, &s.UserID, &s.Title, &s.Provider, &s.Model, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, fmt.Errorf("archive: conversation %q: %w", id, conversation.ErrConversationNotFound)
	}
	if err != nil {
		return s, fmt.Errorf("archive: failed to query conversation %q: %w", id, err)
	}

	tags, err := a.tagsFor(ctx, []string{id})
	if err != nil {
		return s, err
	}
	s.Tags = tags[id]
	return s, nil
}

// Delete removes a conversation along with its messages and tag links.
func (a *DB) Delete(ctx context.Context, id string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive: failed to delete conversation %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("archive: conversation %q: %w", id, conversation.ErrConversationNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_tags WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns how many conversations userID owns.
func (a *DB) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: failed to count conversations: %w", err)
	}
	return n, nil
}

func pagination(page, limit, total int) conversation.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return conversation.Pagination{PageNumber: page, PageSize: limit, TotalCount: total, TotalPages: totalPages}
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// now is replaced in tests.
var now = time.Now
