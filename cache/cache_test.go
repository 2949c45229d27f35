package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/history"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, b.err }
func (b brokenStore) Set(context.Context, string, string) error         { return b.err }
func (b brokenStore) Delete(context.Context, string) error              { return b.err }

func sample() []conversation.Summary {
	return []conversation.Summary{
		{ID: "c1", Title: "One", Provider: "openai", Model: "gpt-4o"},
		{ID: "c2", Title: "Two", Provider: "anthropic", Model: "claude"},
	}
}

func TestReadExpiresAfterTTL(t *testing.T) {
	clk := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	c := New(history.NewMemoryStore(), WithClock(clk.Now))
	ctx := context.Background()

	c.Write(ctx, sample())

	clk.Advance(299 * time.Second)
	got, ok := c.Read(ctx)
	require.True(t, ok, "snapshot should be fresh at t0+299s")
	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}

	clk.Advance(2 * time.Second)
	got, ok = c.Read(ctx)
	assert.False(t, ok, "snapshot should be expired at t0+301s")
	assert.Nil(t, got)
}

func TestReadIsAbsentWhenNeverWritten(t *testing.T) {
	c := New(history.NewMemoryStore())
	_, ok := c.Read(context.Background())
	assert.False(t, ok)
}

func TestWriteReplacesSlot(t *testing.T) {
	clk := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	c := New(history.NewMemoryStore(), WithClock(clk.Now))
	ctx := context.Background()

	c.Write(ctx, sample())
	clk.Advance(4 * time.Minute)
	c.Write(ctx, sample()[:1])
	clk.Advance(4 * time.Minute)

	got, ok := c.Read(ctx)
	require.True(t, ok, "second write should restart the TTL")
	if diff := cmp.Diff(sample()[:1], got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePersistsWireFormat(t *testing.T) {
	store := history.NewMemoryStore()
	at := time.UnixMilli(1714557600123)
	c := New(store, WithClock(func() time.Time { return at }))
	ctx := context.Background()

	c.Write(ctx, nil)

	raw, ok, err := store.Get(ctx, history.CacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"data":[],"timestamp":1714557600123}`, raw)
}

func TestCorruptEntryIsAbsent(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, history.CacheKey, "{oops"))

	_, ok := New(store).Read(ctx)
	assert.False(t, ok)
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	c := New(brokenStore{err: errors.New("quota exceeded")})
	ctx := context.Background()

	assert.NotPanics(t, func() { c.Write(ctx, sample()) })
	_, ok := c.Read(ctx)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := New(history.NewMemoryStore())
	ctx := context.Background()
	c.Write(ctx, sample())

	require.NoError(t, c.Clear(ctx))
	_, ok := c.Read(ctx)
	assert.False(t, ok)
}

func TestCustomTTL(t *testing.T) {
	clk := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	c := New(history.NewMemoryStore(), WithClock(clk.Now), WithTTL(time.Second))
	ctx := context.Background()

	c.Write(ctx, sample())
	clk.Advance(time.Second)
	_, ok := c.Read(ctx)
	assert.False(t, ok)
}
