// Package config loads convbrowse settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

// DefaultUserID is the fixed user the browser lists conversations for.
const DefaultUserID = "1e50f20b-bd2d-4c13-a276-43ae6415d393"

// Config holds every convbrowse setting.
type Config struct {
	// APIURL is the base URL of the conversation API (CONVBROWSE_API_URL)
	APIURL string

	// UserID selects whose conversations are listed (CONVBROWSE_USER_ID)
	UserID string

	// DataDir holds the local store and logs (CONVBROWSE_DATA_DIR)
	DataDir string

	// Store is one of sqlite, file or memory (CONVBROWSE_STORE)
	Store string

	// LogLevel is a charmbracelet/log level name (CONVBROWSE_LOG_LEVEL)
	LogLevel string

	// PageSize is the number of conversations per request (CONVBROWSE_PAGE_SIZE)
	PageSize int

	// HTTPTimeout bounds each API request; zero disables it (CONVBROWSE_HTTP_TIMEOUT)
	HTTPTimeout time.Duration
}

var (
	env     *Config
	envOnce sync.Once
)

// Env returns the singleton configuration, loading it on first call.
func Env() *Config {
	envOnce.Do(func() {
		env = &Config{
			APIURL:      getEnvDefault("CONVBROWSE_API_URL", "http://localhost:8080/api/v1"),
			UserID:      getEnvDefault("CONVBROWSE_USER_ID", DefaultUserID),
			DataDir:     getEnvDefault("CONVBROWSE_DATA_DIR", defaultDataDir()),
			Store:       getEnvDefault("CONVBROWSE_STORE", StoreSQLite),
			LogLevel:    getEnvDefault("CONVBROWSE_LOG_LEVEL", "info"),
			PageSize:    getEnvInt("CONVBROWSE_PAGE_SIZE", 20),
			HTTPTimeout: getEnvDuration("CONVBROWSE_HTTP_TIMEOUT", 0),
		}
	})
	return env
}

// ResetEnv drops the cached configuration (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Warn("config: ignoring invalid value", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn("config: ignoring invalid value", "key", key, "value", v)
		return fallback
	}
	return d
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".convbrowse")
}

// StorePath is the sqlite database backing the local store.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "store.db")
}

// FileStoreDir is the directory used by the file store.
func (c *Config) FileStoreDir() string {
	return filepath.Join(c.DataDir, "store")
}

// LogPath is where the terminal browser writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "convbrowse.log")
}

// ServerDBPath is the default database of the demo API server.
func (c *Config) ServerDBPath() string {
	return filepath.Join(c.DataDir, "server.db")
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
