// Package loader drives the incremental conversation list: it seeds from the
// cache, pages through the remote source, falls back to the durable mirror
// and applies optimistic deletes.
package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dhamidi/convbrowse/cache"
	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/history"
	"github.com/dhamidi/convbrowse/remote"
)

// DefaultPageSize is the number of conversations requested per page.
const DefaultPageSize = 20

// DefaultUserID is the fixed user whose conversations are listed.
const DefaultUserID = "1e50f20b-bd2d-4c13-a276-43ae6415d393"

// ErrClosed is returned for commands issued after Close.
var ErrClosed = errors.New("loader: closed")

// State is a point-in-time view of the list. Version increases with every
// change, so listeners can drop snapshots that arrive out of order.
type State struct {
	Items            []conversation.Summary
	CurrentPage      int
	HasMore          bool
	LoadingFirstPage bool
	LoadingMore      bool
	Err              string
	Version          uint64
}

// Loading reports whether any request is outstanding.
func (s State) Loading() bool {
	return s.LoadingFirstPage || s.LoadingMore
}

func (s State) clone() State {
	s.Items = append([]conversation.Summary(nil), s.Items...)
	return s
}

// Loader owns the conversation list for one view. It is safe for concurrent use.
type Loader struct {
	src      remote.Source
	cache    *cache.Cache
	mirror   *history.Mirror
	userID   string
	pageSize int

	mu        sync.Mutex
	state     State
	base      context.Context
	gen       uint64
	cancel    context.CancelFunc
	started   bool
	closed    bool
	listeners map[int]func(State)
	nextID    int

	wg sync.WaitGroup
}

// Option configures a Loader.
type Option func(*Loader)

// WithUserID selects whose conversations are listed.
func WithUserID(id string) Option {
	return func(l *Loader) { l.userID = id }
}

// WithPageSize sets the page size. Values below one are ignored.
func WithPageSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

// New returns an idle Loader. Call Start to begin loading.
func New(src remote.Source, c *cache.Cache, m *history.Mirror, opts ...Option) *Loader {
	l := &Loader{
		src:       src,
		cache:     c,
		mirror:    m,
		userID:    DefaultUserID,
		pageSize:  DefaultPageSize,
		state:     State{HasMore: true},
		base:      context.Background(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Subscribe registers fn to be called after every state change. fn runs
// outside the loader's lock and may call back into the Loader.
func (l *Loader) Subscribe(fn func(State)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

// Start seeds the list from the cache and fetches the first page in the
// background. ctx bounds every request the Loader makes afterwards.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	if l.closed || l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.base = ctx
	l.mu.Unlock()

	cached, ok := l.cache.Read(ctx)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if ok && len(cached) > 0 {
		l.adoptCachedLocked(cached)
		l.changedLocked()
	}
	s, fns := l.fetchLocked(1, false)
	l.mu.Unlock()

	l.notify(s, fns)
}

// LoadMore requests the next page unless a request is already outstanding
// or the list is complete.
func (l *Loader) LoadMore() {
	l.mu.Lock()
	if l.stoppedLocked() || l.state.Loading() || !l.state.HasMore {
		l.mu.Unlock()
		return
	}
	s, fns := l.fetchLocked(l.state.CurrentPage+1, true)
	l.mu.Unlock()

	l.notify(s, fns)
}

// Refresh reloads the first page, superseding any outstanding request.
func (l *Loader) Refresh() {
	l.mu.Lock()
	if l.stoppedLocked() {
		l.mu.Unlock()
		return
	}
	l.state.CurrentPage = 1
	l.state.HasMore = true
	s, fns := l.fetchLocked(1, false)
	l.mu.Unlock()

	l.notify(s, fns)
}

// DeleteConversation removes id from the list and the durable mirror before
// returning, then deletes it remotely. The returned channel receives the
// remote outcome. A remote failure is logged and the removal stands.
func (l *Loader) DeleteConversation(ctx context.Context, id string) <-chan error {
	done := make(chan error, 1)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		done <- ErrClosed
		return done
	}
	l.state.Items = conversation.Without(l.state.Items, id)
	if err := l.mirror.SaveFallback(ctx, l.state.Items); err != nil {
		log.Warn("loader: failed to update mirror after delete", "id", id, "err", err)
	}
	l.changedLocked()
	s, fns := l.state.clone(), l.listenersLocked()
	l.wg.Add(1)
	l.mu.Unlock()

	l.notify(s, fns)

	go func() {
		defer l.wg.Done()
		err := l.src.DeleteConversation(ctx, id)
		if err != nil {
			log.Warn("loader: remote delete failed", "id", id, "err", err)
		}
		done <- err
	}()
	return done
}

// Close cancels the outstanding request. Results that arrive later and
// commands issued afterwards are ignored.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Wait blocks until every background request has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// fetchLocked supersedes the outstanding request and starts a new one.
func (l *Loader) fetchLocked(page int, appendItems bool) (State, []func(State)) {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(l.base)
	l.cancel = cancel

	first := page == 1 && !appendItems
	l.state.LoadingFirstPage = first
	l.state.LoadingMore = !first
	l.state.Err = ""
	l.changedLocked()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		result, err := l.src.ListConversations(ctx, l.userID, page, l.pageSize)
		l.finish(ctx, gen, page, appendItems, result, err)
	}()

	return l.state.clone(), l.listenersLocked()
}

// finish applies a completed request unless it has been superseded.
func (l *Loader) finish(ctx context.Context, gen uint64, page int, appendItems bool, result conversation.Page, err error) {
	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.cancel()
	l.cancel = nil
	first := page == 1 && !appendItems

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		// Cancelled from outside; nothing to report.
	case err != nil:
		l.failLocked(page, first, err)
	default:
		l.applyLocked(page, appendItems, result)
	}

	l.state.LoadingFirstPage = false
	l.state.LoadingMore = false
	l.changedLocked()
	s, fns := l.state.clone(), l.listenersLocked()
	l.mu.Unlock()

	l.notify(s, fns)
}

func (l *Loader) applyLocked(page int, appendItems bool, result conversation.Page) {
	if appendItems {
		l.state.Items = append(l.state.Items, result.Items...)
	} else {
		l.state.Items = append([]conversation.Summary(nil), result.Items...)
	}
	l.state.CurrentPage = page
	l.state.HasMore = HasMore(page, result, len(l.state.Items), l.pageSize)

	if page == 1 && !appendItems {
		l.cache.Write(l.base, l.state.Items)
		if err := l.mirror.SaveFallback(l.base, l.state.Items); err != nil {
			log.Warn("loader: failed to update mirror", "err", err)
		}
	}
}

func (l *Loader) failLocked(page int, first bool, err error) {
	l.state.Err = err.Error()
	log.Warn("loader: failed to load conversations", "page", page, "err", err)
	if !first || len(l.state.Items) > 0 {
		return
	}

	if cached, ok := l.cache.Read(l.base); ok && len(cached) > 0 {
		l.adoptCachedLocked(cached)
		return
	}
	fallback := l.mirror.LoadFallback(l.base)
	l.state.Items = fallback
	if len(fallback) > 0 {
		l.state.HasMore = false
	}
}

// adoptCachedLocked shows a cached first page. The cursor moves to page one
// so the next LoadMore continues after it.
func (l *Loader) adoptCachedLocked(cached []conversation.Summary) {
	l.state.Items = append([]conversation.Summary(nil), cached...)
	l.state.CurrentPage = 1
}

// stoppedLocked reports whether new requests would be pointless: the Loader
// is closed or the context given to Start is done.
func (l *Loader) stoppedLocked() bool {
	return l.closed || l.base.Err() != nil
}

// HasMore reports whether pages remain once result, fetched as page, has
// been applied and the list holds runningTotal items.
func HasMore(page int, result conversation.Page, runningTotal, pageSize int) bool {
	return page < result.TotalPages ||
		(len(result.Items) == pageSize && runningTotal < result.TotalCount)
}

func (l *Loader) changedLocked() {
	l.state.Version++
}

func (l *Loader) listenersLocked() []func(State) {
	fns := make([]func(State), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (l *Loader) notify(s State, fns []func(State)) {
	for _, fn := range fns {
		fn(s.clone())
	}
}
