// Package cache keeps a short-lived snapshot of the first conversation page
// so a restart can show something before the API answers.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/history"
)

// TTL is how long a snapshot stays readable.
const TTL = 5 * time.Minute

// Entry is a snapshot together with the time it was captured.
type Entry struct {
	Snapshot   []conversation.Summary
	CapturedAt time.Time
}

// Fresh reports whether the entry is still readable at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt) < ttl
}

// record is the persisted form: timestamp in milliseconds since the epoch.
type record struct {
	Data      []conversation.Summary `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Cache is a single time-expiring slot in a history.Store.
type Cache struct {
	store history.Store
	now   func() time.Time
	ttl   time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL replaces the default TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// New returns a Cache persisting into store.
func New(store history.Store, opts ...Option) *Cache {
	c := &Cache{store: store, now: time.Now, ttl: TTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the cached snapshot if one exists and has not expired.
// Unreadable entries count as absent.
func (c *Cache) Read(ctx context.Context) ([]conversation.Summary, bool) {
	entry, ok := c.entry(ctx)
	if !ok || !entry.Fresh(c.now(), c.ttl) {
		return nil, false
	}
	return entry.Snapshot, true
}

func (c *Cache) entry(ctx context.Context) (Entry, bool) {
	raw, ok, err := c.store.Get(ctx, history.CacheKey)
	if err != nil {
		log.Warn("cache: failed to read snapshot", "err", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Warn("cache: snapshot is corrupt, ignoring it", "err", err)
		return Entry{}, false
	}
	if rec.Data == nil {
		rec.Data = []conversation.Summary{}
	}
	return Entry{Snapshot: rec.Data, CapturedAt: time.UnixMilli(rec.Timestamp)}, true
}

// Write replaces the slot with items captured now. Persistence failures are
// logged and otherwise ignored.
func (c *Cache) Write(ctx context.Context, items []conversation.Summary) {
	if items == nil {
		items = []conversation.Summary{}
	}
	data, err := json.Marshal(record{Data: items, Timestamp: c.now().UnixMilli()})
	if err != nil {
		log.Warn("cache: failed to encode snapshot", "err", err)
		return
	}
	if err := c.store.Set(ctx, history.CacheKey, string(data)); err != nil {
		log.Warn("cache: failed to persist snapshot", "err", err)
	}
}

// Clear drops the slot.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, history.CacheKey)
}
