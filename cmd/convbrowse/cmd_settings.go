package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
	"github.com/dhamidi/convbrowse/history"
)

// settingNames lists the keys accepted by "settings set".
var settingNames = []string{"dark-mode", "auto-save", "font-size", "language"}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show display settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store history.Store) error {
				return runSettingsShow(cmd.Context(), store, cmd.OutOrStdout())
			})
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:       "set <name> <value>",
			Short:     "Change a setting (dark-mode, auto-save, font-size, language)",
			Args:      cobra.ExactArgs(2),
			ValidArgs: settingNames,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(func(store history.Store) error {
					return runSettingsSet(cmd.Context(), store, cmd.OutOrStdout(), args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Forget every saved setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(func(store history.Store) error {
					if err := history.ResetSettings(cmd.Context(), store); err != nil {
						return err
					}
					convbrowse.NewTextDisplay(cmd.OutOrStdout()).DisplayNotice("settings reset")
					return nil
				})
			},
		},
	)
	return cmd
}

func withStore(fn func(history.Store) error) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app.Store)
}

func runSettingsShow(ctx context.Context, store history.Store, out io.Writer) error {
	s, err := history.LoadSettings(ctx, store)
	if err != nil {
		return err
	}
	dark := "auto"
	if s.DarkModeSet {
		dark = strconv.FormatBool(s.DarkMode)
	}
	fmt.Fprintf(out, "dark-mode  %s\n", dark)
	fmt.Fprintf(out, "auto-save  %t\n", s.Preferences.AutoSave)
	fmt.Fprintf(out, "font-size  %s\n", s.Preferences.FontSize)
	fmt.Fprintf(out, "language   %s\n", s.Preferences.Language)
	return nil
}

func runSettingsSet(ctx context.Context, store history.Store, out io.Writer, name, value string) error {
	s, err := history.LoadSettings(ctx, store)
	if err != nil {
		return err
	}

	prefs := s.Preferences
	switch name {
	case "dark-mode":
		dark, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("dark-mode must be true or false, got %q", value)
		}
		if err := history.SaveDarkMode(ctx, store, dark); err != nil {
			return err
		}
	case "auto-save":
		prefs.AutoSave, err = strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto-save must be true or false, got %q", value)
		}
	case "font-size":
		prefs.FontSize = value
	case "language":
		prefs.Language = value
	default:
		return fmt.Errorf("unknown setting %q (want one of %v)", name, settingNames)
	}

	if name != "dark-mode" {
		if err := history.SavePreferences(ctx, store, prefs); err != nil {
			return err
		}
	}
	convbrowse.NewTextDisplay(out).DisplayNotice("%s set to %s", name, value)
	return nil
}
