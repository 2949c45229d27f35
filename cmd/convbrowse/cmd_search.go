package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/search"
)

func searchCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversations",
		Long: `Search conversation titles and messages on the server. With --local,
fuzzy-match titles in the locally stored list instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			query := strings.Join(args, " ")
			display := convbrowse.NewTextDisplay(cmd.OutOrStdout())

			if local {
				display.DisplaySummaries(search.Summaries(localItems(ctx, app), query))
				return nil
			}

			page, err := app.Client.Search(ctx, query, app.Config.UserID, 1, app.Config.PageSize)
			if err != nil {
				return err
			}
			display.DisplaySummaries(page.Items)
			if page.TotalCount > len(page.Items) {
				display.DisplayNotice("%d of %d matches shown", len(page.Items), page.TotalCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Search the local copy without calling the API")
	return cmd
}

// localItems prefers a fresh cache snapshot over the durable mirror.
func localItems(ctx context.Context, app *convbrowse.App) []conversation.Summary {
	if items, ok := app.Cache.Read(ctx); ok {
		return items
	}
	return app.Mirror.LoadFallback(ctx)
}
