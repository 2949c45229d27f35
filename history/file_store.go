package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FileStore keeps one file per key inside dir on an afero.Fs.
type FileStore struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at dir. Pass afero.NewOsFs() for
// real files or afero.NewMemMapFs() in tests.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (f *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get returns the contents of the file for key.
func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := afero.ReadFile(f.fs, p)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("history: failed to read %s: %w", p, err)
	}
	return string(data), true, nil
}

// Set writes value to a temporary file and renames it over the key's file,
// so readers never observe a half-written value.
func (f *FileStore) Set(_ context.Context, key, value string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("history: failed to create directory %s: %w", f.dir, err)
	}
	tmp := p + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("history: failed to write %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("history: failed to replace %s: %w", p, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileStore) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("history: failed to remove %s: %w", p, err)
	}
	return nil
}
