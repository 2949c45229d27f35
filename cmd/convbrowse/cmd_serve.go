package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse/archive"
	"github.com/dhamidi/convbrowse/config"
	"github.com/dhamidi/convbrowse/server"
)

func serveCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
		seed   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo conversation API",
		Long: `Serve the conversation API from a local SQLite database. With --seed N,
an empty database is filled with N generated conversations for the
configured user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Env()
			if dbPath == "" {
				dbPath = cfg.ServerDBPath()
			}

			db, err := archive.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if seed > 0 {
				n, err := db.Count(ctx, cfg.UserID)
				if err != nil {
					return err
				}
				if n == 0 {
					if err := db.Seed(ctx, cfg.UserID, seed, nil); err != nil {
						return fmt.Errorf("failed to seed %s: %w", dbPath, err)
					}
					log.Info("seeded database", "path", dbPath, "conversations", seed, "user", cfg.UserID)
				}
			}

			return server.ListenAndServe(ctx, addr, server.New(db))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "the address to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default <data-dir>/server.db)")
	cmd.Flags().IntVar(&seed, "seed", 0, "seed an empty database with N conversations")
	return cmd
}
