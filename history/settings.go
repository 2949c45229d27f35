package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
)

// Font sizes accepted in Preferences.
const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// Preferences is the JSON object stored under UserPreferencesKey.
type Preferences struct {
	AutoSave bool   `json:"autoSave"`
	FontSize string `json:"fontSize"`
	Language string `json:"language"`
}

// DefaultPreferences is used for anything never saved.
func DefaultPreferences() Preferences {
	return Preferences{AutoSave: true, FontSize: FontMedium, Language: "zh-CN"}
}

// Settings are the user's display preferences. DarkModeSet is false until
// dark mode has been chosen explicitly.
type Settings struct {
	DarkMode    bool
	DarkModeSet bool
	Preferences Preferences
}

// Validate rejects unknown font sizes and an empty language.
func (p Preferences) Validate() error {
	switch p.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		return fmt.Errorf("history: unknown font size %q", p.FontSize)
	}
	if p.Language == "" {
		return errors.New("history: language is required")
	}
	return nil
}

// LoadSettings reads the saved settings. Corrupt values are logged and
// replaced by defaults.
func LoadSettings(ctx context.Context, store Store) (Settings, error) {
	s := Settings{Preferences: DefaultPreferences()}

	raw, ok, err := store.Get(ctx, DarkModeKey)
	if err != nil {
		return s, fmt.Errorf("history: failed to read dark mode: %w", err)
	}
	if ok {
		if dark, err := strconv.ParseBool(raw); err == nil {
			s.DarkMode, s.DarkModeSet = dark, true
		} else {
			log.Warn("history: ignoring corrupt dark mode setting", "value", raw)
		}
	}

	raw, ok, err = store.Get(ctx, UserPreferencesKey)
	if err != nil {
		return s, fmt.Errorf("history: failed to read preferences: %w", err)
	}
	if ok {
		prefs := DefaultPreferences()
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil || prefs.Validate() != nil {
			log.Warn("history: ignoring corrupt preferences", "value", raw)
		} else {
			s.Preferences = prefs
		}
	}
	return s, nil
}

// SaveDarkMode stores the dark mode choice as a JSON boolean.
func SaveDarkMode(ctx context.Context, store Store, dark bool) error {
	return store.Set(ctx, DarkModeKey, strconv.FormatBool(dark))
}

// SavePreferences validates and stores p.
func SavePreferences(ctx context.Context, store Store, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("history: failed to encode preferences: %w", err)
	}
	return store.Set(ctx, UserPreferencesKey, string(data))
}

// ResetSettings forgets every saved setting.
func ResetSettings(ctx context.Context, store Store) error {
	for _, key := range []string{DarkModeKey, UserPreferencesKey} {
		if err := store.Delete(ctx, key); err != nil {
			return fmt.Errorf("history: failed to reset %s: %w", key, err)
		}
	}
	return nil
}
