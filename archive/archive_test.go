package archive

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/convbrowse/conversation"
)

const testUser = "user-1"

func createTestDB(t *testing.T, conversationsToSave ...*Conversation) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_archive.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, conv := range conversationsToSave {
		if err := db.Save(context.Background(), conv); err != nil {
			t.Fatalf("Failed to save conversation %s to test DB: %v", conv.ID, err)
		}
	}
	return db
}

func testConversation(id string, updated time.Time) *Conversation {
	return &Conversation{
		Summary: conversation.Summary{
			ID:        id,
			UserID:    testUser,
			Title:     "Conversation " + id,
			Provider:  "openai",
			Model:     "gpt-4o",
			CreatedAt: updated.Add(-time.Hour),
			UpdatedAt: updated,
		},
	}
}

func TestListPaginates(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var convs []*Conversation
	for i := 0; i < 5; i++ {
		convs = append(convs, testConversation(fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Hour)))
	}
	other := testConversation("other", base)
	other.UserID = "someone-else"
	db := createTestDB(t, append(convs, other)...)
	ctx := context.Background()

	page1, err := db.List(ctx, testUser, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, conversation.Pagination{PageNumber: 1, PageSize: 2, TotalCount: 5, TotalPages: 3}, page1.Pagination)
	assert.Equal(t, []string{"c4", "c3"}, ids(page1.Items))

	page3, err := db.List(ctx, testUser, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c0"}, ids(page3.Items))

	beyond, err := db.List(ctx, testUser, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
}

func TestGetReturnsTags(t *testing.T) {
	conv := testConversation("c1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	conv.Tags = []conversation.Tag{{ID: "t2", Name: "work"}, {ID: "t1", Name: "home", Color: "#fff"}}
	db := createTestDB(t, conv)

	got, err := db.Get(context.Background(), "c1")
	require.NoError(t, err)

	want := conv.Summary
	want.Tags = []conversation.Tag{{ID: "t1", Name: "home", Color: "#fff"}, {ID: "t2", Name: "work"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissingConversation(t *testing.T) {
	db := createTestDB(t)
	_, err := db.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, conversation.ErrConversationNotFound), "got %v", err)
}

func TestDeleteRemovesMessages(t *testing.T) {
	conv := testConversation("c1", time.Now().UTC())
	conv.Messages = []conversation.Message{
		{ID: "m1", Role: conversation.RoleUser, Content: "hi", CreatedAt: time.Now().UTC()},
	}
	db := createTestDB(t, conv)
	ctx := context.Background()

	require.NoError(t, db.Delete(ctx, "c1"))

	_, err := db.Get(ctx, "c1")
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)
	assert.ErrorIs(t, db.Delete(ctx, "c1"), conversation.ErrConversationNotFound)

	var n int
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMessagesInOrder(t *testing.T) {
	at := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
	conv := testConversation("c1", at)
	for i := 0; i < 3; i++ {
		conv.Messages = append(conv.Messages, conversation.Message{
			ID:        fmt.Sprintf("m%d", i),
			Role:      conversation.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		})
	}
	db := createTestDB(t, conv)

	page, err := db.Messages(context.Background(), "c1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "message 0", page.Items[0].Content)
	assert.Equal(t, "c1", page.Items[0].ConversationID)
	assert.True(t, page.Items[1].UpdatedAt.Equal(page.Items[1].CreatedAt))
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	_, err = db.Messages(context.Background(), "missing", 1, 10)
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	at := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
	byTitle := testConversation("title", at)
	byTitle.Title = "Tuning 100% of the indexes"
	byContent := testConversation("content", at.Add(time.Hour))
	byContent.Messages = []conversation.Message{{ID: "m1", Role: conversation.RoleUser, Content: "how do I tune an index?", CreatedAt: at}}
	unrelated := testConversation("unrelated", at.Add(2*time.Hour))
	db := createTestDB(t, byTitle, byContent, unrelated)
	ctx := context.Background()

	page, err := db.Search(ctx, testUser, "tun", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "title"}, ids(page.Items))
	assert.Equal(t, 2, page.TotalCount)

	page, err = db.Search(ctx, testUser, "100%", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, ids(page.Items))
}

func TestPrepareLikePattern(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "%%"},
		{"  go  ", "%go%"},
		{"100%", `%100\%%`},
		{"snake_case", `%snake\_case%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		if got := prepareLikePattern(tt.input); got != tt.want {
			t.Errorf("prepareLikePattern(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSeed(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx, testUser, 25, rand.New(rand.NewSource(42))))

	n, err := db.Count(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	page, err := db.List(ctx, testUser, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, 2, page.TotalPages)

	tags, err := db.Tags(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tags)
}

func ids(items []conversation.Summary) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestTagLifecycle(t *testing.T) {
	ctx := context.Background()
	conv := testConversation("c1", time.Unix(100, 0))
	conv.Tags = []conversation.Tag{{ID: "t1", Name: "work"}}
	db := createTestDB(t, conv)

	created, err := db.CreateTag(ctx, "  study ", "#0f0")
	require.NoError(t, err)
	assert.Equal(t, "study", created.Name)
	assert.NotEmpty(t, created.ID)

	_, err = db.CreateTag(ctx, "work", "")
	assert.ErrorIs(t, err, conversation.ErrTagExists)
	_, err = db.CreateTag(ctx, " ", "")
	assert.ErrorIs(t, err, conversation.ErrTagName)

	renamed, err := db.UpdateTag(ctx, conversation.Tag{ID: created.ID, Name: "learning"})
	require.NoError(t, err)
	assert.Equal(t, conversation.Tag{ID: created.ID, Name: "learning", Color: "#0f0"}, renamed, "empty color keeps the stored one")

	_, err = db.UpdateTag(ctx, conversation.Tag{ID: created.ID, Name: "work"})
	assert.ErrorIs(t, err, conversation.ErrTagExists)
	_, err = db.UpdateTag(ctx, conversation.Tag{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, conversation.ErrTagNotFound)

	require.NoError(t, db.DeleteTag(ctx, "t1"))
	assert.ErrorIs(t, db.DeleteTag(ctx, "t1"), conversation.ErrTagNotFound)
	_, err = db.Tag(ctx, "t1")
	assert.ErrorIs(t, err, conversation.ErrTagNotFound)

	got, err := db.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got.Tags, "deleting a tag detaches it")

	tags, err := db.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []conversation.Tag{renamed}, tags)
}
