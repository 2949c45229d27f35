// Package convbrowse wires the conversation browser together: the local
// store, the cache and mirror, the remote API client and the list loader.
package convbrowse

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/dhamidi/convbrowse/cache"
	"github.com/dhamidi/convbrowse/config"
	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/history"
	"github.com/dhamidi/convbrowse/loader"
	"github.com/dhamidi/convbrowse/remote"
)

// App holds everything a command needs.
type App struct {
	Config *config.Config
	Store  history.Store
	Cache  *cache.Cache
	Mirror *history.Mirror
	Client *remote.Client
	Source remote.Source

	closer io.Closer
}

// Option configures an App.
type Option func(*App)

// WithSource lists conversations from src instead of the HTTP API.
func WithSource(src remote.Source) Option {
	return func(a *App) { a.Source = src }
}

// WithStore replaces the configured local store.
func WithStore(store history.Store) Option {
	return func(a *App) { a.Store = store }
}

// Open builds an App from cfg.
func Open(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.Store == nil {
		store, closer, err := OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		a.Store, a.closer = store, closer
	}

	a.Cache = cache.New(a.Store)
	a.Mirror = history.NewMirror(a.Store)
	a.Client = remote.NewClient(cfg.APIURL, remote.WithTimeout(cfg.HTTPTimeout))
	if a.Source == nil {
		a.Source = a.Client
	}
	return a, nil
}

// OpenStore opens the local store selected by cfg.Store. The closer is nil
// when the store holds no resources.
func OpenStore(cfg *config.Config) (history.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreSQLite, "":
		db, err := history.Open(cfg.StorePath())
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.StoreFile:
		return history.NewFileStore(afero.NewOsFs(), cfg.FileStoreDir()), nil, nil
	case config.StoreMemory:
		return history.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("convbrowse: unknown store %q", cfg.Store)
	}
}

// NewLoader returns a loader over the App's source, cache and mirror.
func (a *App) NewLoader() *loader.Loader {
	return loader.New(a.Source, a.Cache, a.Mirror,
		loader.WithUserID(a.Config.UserID),
		loader.WithPageSize(a.Config.PageSize),
	)
}

// Close releases the local store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	if err != nil {
		return fmt.Errorf("convbrowse: failed to close store: %w", err)
	}
	return nil
}

var demoTitles = []string{
	"Debugging a flaky integration test",
	"Weekend trip itinerary",
	"Explain Go generics",
	"",
	"SQL index strategy",
	"Draft release notes",
	"Recipe ideas for dinner",
}

// DemoSource returns an in-process source holding n generated conversations,
// newest first.
func DemoSource(n int, rng *rand.Rand) (*remote.Memory, error) {
	if n < 0 {
		return nil, errors.New("convbrowse: negative demo size")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	start := time.Now().UTC().Truncate(time.Minute)
	items := make([]conversation.Summary, n)
	for i := range items {
		at := start.Add(-time.Duration(i) * time.Hour)
		items[i] = conversation.Adapt(conversation.Summary{
			ID:        ulid.MustNew(ulid.Timestamp(at), ulid.Monotonic(rng, 0)).String(),
			UserID:    config.DefaultUserID,
			Title:     demoTitles[rng.Intn(len(demoTitles))],
			Provider:  "demo",
			Model:     "demo-1",
			CreatedAt: at,
			UpdatedAt: at,
		})
	}
	return remote.NewMemory(items), nil
}
