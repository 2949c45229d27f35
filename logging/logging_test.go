package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer Setup("info", os.Stderr)
	var buf bytes.Buffer

	require.NoError(t, Setup("warn", &buf))
	log.Info("hidden")
	log.Warn("cache: failed to persist snapshot", "err", "quota")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "failed to persist snapshot")
	assert.Contains(t, buf.String(), "err=quota")
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup("loud", &bytes.Buffer{}))
}

func TestToFile(t *testing.T) {
	defer Setup("info", os.Stderr)
	path := filepath.Join(t.TempDir(), "nested", "convbrowse.log")

	f, err := ToFile("debug", path)
	require.NoError(t, err)
	log.Debug("written", "page", 2)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
