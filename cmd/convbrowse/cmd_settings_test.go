package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/convbrowse/history"
)

func TestSettingsSetAndShow(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	ctx := context.Background()
	store := history.NewMemoryStore()
	var buf bytes.Buffer

	require.NoError(t, runSettingsShow(ctx, store, &buf))
	assert.Contains(t, buf.String(), "dark-mode  auto\n")

	require.NoError(t, runSettingsSet(ctx, store, &buf, "dark-mode", "true"))
	require.NoError(t, runSettingsSet(ctx, store, &buf, "font-size", "large"))
	require.NoError(t, runSettingsSet(ctx, store, &buf, "auto-save", "false"))

	buf.Reset()
	require.NoError(t, runSettingsShow(ctx, store, &buf))
	assert.Equal(t, "dark-mode  true\nauto-save  false\nfont-size  large\nlanguage   zh-CN\n", buf.String())
}

func TestSettingsSetRejectsBadValues(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	var buf bytes.Buffer

	assert.Error(t, runSettingsSet(ctx, store, &buf, "dark-mode", "sometimes"))
	assert.Error(t, runSettingsSet(ctx, store, &buf, "font-size", "huge"))
	assert.Error(t, runSettingsSet(ctx, store, &buf, "colour", "red"))

	s, err := history.LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.DarkModeSet)
	assert.Equal(t, history.DefaultPreferences(), s.Preferences)
}
