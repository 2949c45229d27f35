// Package logging configures the process-wide charmbracelet/log logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Setup points the default logger at w and applies level.
func Setup(level string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetReportTimestamp(true)
	return nil
}

// ToFile sends log output to path, creating its directory, and returns
// the file so the caller can close it.
func ToFile(level, path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("logging: failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: failed to open log file: %w", err)
	}
	if err := Setup(level, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
