package main

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse/config"
	"github.com/dhamidi/convbrowse/history"
	"github.com/dhamidi/convbrowse/logging"
	"github.com/dhamidi/convbrowse/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive conversation browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context())
		},
	}
}

func runBrowse(ctx context.Context) error {
	cfg := config.Env()
	logFile, err := logging.ToFile(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	settings, err := history.LoadSettings(ctx, app.Store)
	if err != nil {
		return err
	}
	if settings.DarkModeSet {
		lipgloss.SetHasDarkBackground(settings.DarkMode)
	}

	l := app.NewLoader()
	defer l.Wait()
	defer l.Close()

	return tui.Run(ctx, l)
}
