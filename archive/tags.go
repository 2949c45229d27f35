package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/dhamidi/convbrowse/conversation"
)

// Tags returns every known tag ordered by name.
func (a *DB) Tags(ctx context.Context) ([]conversation.Tag, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]conversation.Tag, 0)
	for rows.Next() {
		var tag conversation.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("archive: failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Tag returns the tag with the given id.
func (a *DB) Tag(ctx context.Context, id string) (conversation.Tag, error) {
	var tag conversation.Tag
	err := a.db.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE id = ?`, id).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return tag, fmt.Errorf("archive: tag %q: %w", id, conversation.ErrTagNotFound)
	}
	if err != nil {
		return tag, fmt.Errorf("archive: failed to query tag %q: %w", id, err)
	}
	return tag, nil
}

// CreateTag stores a new tag. Names are unique.
func (a *DB) CreateTag(ctx context.Context, name, color string) (conversation.Tag, error) {
	tag := conversation.Tag{ID: ulid.Make().String(), Name: strings.TrimSpace(name), Color: color}
	if tag.Name == "" {
		return conversation.Tag{}, conversation.ErrTagName
	}
	_, err := a.db.ExecContext(ctx, `INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`, tag.ID, tag.Name, tag.Color)
	if err != nil {
		return conversation.Tag{}, tagWriteError(tag.Name, err)
	}
	return tag, nil
}

// UpdateTag renames the tag tag.ID. An empty Color keeps the stored color.
func (a *DB) UpdateTag(ctx context.Context, tag conversation.Tag) (conversation.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return conversation.Tag{}, conversation.ErrTagName
	}
	res, err := a.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = COALESCE(NULLIF(?, ''), color)
		WHERE id = ?
	`, tag.Name, tag.Color, tag.ID)
	if err != nil {
		return conversation.Tag{}, tagWriteError(tag.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conversation.Tag{}, fmt.Errorf("archive: tag %q: %w", tag.ID, conversation.ErrTagNotFound)
	}
	return a.Tag(ctx, tag.ID)
}

// DeleteTag removes a tag and detaches it from every conversation.
func (a *DB) DeleteTag(ctx context.Context, id string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive: failed to delete tag %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("archive: tag %q: %w", id, conversation.ErrTagNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_tags WHERE tag_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func tagWriteError(name string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("archive: tag %q: %w", name, conversation.ErrTagExists)
	}
	return fmt.Errorf("archive: failed to write tag %q: %w", name, err)
}

func (a *DB) tagsFor(ctx context.Context, ids []string) (map[string][]conversation.Tag, error) {
	out := make(map[string][]conversation.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := a.db.QueryContext(ctx, `
		SELECT ct.conversation_id, t.id, t.name, t.color
		FROM conversation_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.conversation_id IN (`+placeholders+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to query conversation tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var convID string
		var tag conversation.Tag
		if err := rows.Scan(&convID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("archive: failed to scan conversation tag: %w", err)
		}
		out[convID] = append(out[convID], tag)
	}
	return out, rows.Err()
}
