package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(context.Background(), NewMemoryStore())
	require.NoError(t, err)
	assert.False(t, s.DarkModeSet)
	assert.Equal(t, DefaultPreferences(), s.Preferences)
}

func TestSettingsSaveLoadReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, SaveDarkMode(ctx, store, true))
	prefs := Preferences{AutoSave: false, FontSize: FontLarge, Language: "en-US"}
	require.NoError(t, SavePreferences(ctx, store, prefs))

	raw, ok, err := store.Get(ctx, DarkModeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", raw)

	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.True(t, s.DarkMode)
	assert.True(t, s.DarkModeSet)
	assert.Equal(t, prefs, s.Preferences)

	require.NoError(t, ResetSettings(ctx, store))
	s, err = LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.DarkModeSet)
	assert.Equal(t, DefaultPreferences(), s.Preferences)
}

func TestSettingsRejectInvalidPreferences(t *testing.T) {
	store := NewMemoryStore()
	err := SavePreferences(context.Background(), store, Preferences{FontSize: "huge", Language: "en"})
	assert.Error(t, err)
	_, ok, _ := store.Get(context.Background(), UserPreferencesKey)
	assert.False(t, ok)
}

func TestSettingsIgnoreCorruptValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, DarkModeKey, "maybe"))
	require.NoError(t, store.Set(ctx, UserPreferencesKey, "{not json"))

	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.DarkModeSet)
	assert.Equal(t, DefaultPreferences(), s.Preferences)
}

func TestSettingsStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	_, err := LoadSettings(context.Background(), failingStore{err: boom})
	assert.ErrorIs(t, err, boom)
}
