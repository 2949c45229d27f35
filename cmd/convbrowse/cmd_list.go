package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
)

func listCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print conversations, newest first",
		Long: `Print the first page of conversations. With --all, keep loading pages
until the list is complete. When the API cannot be reached the locally
cached copy is printed along with the error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Load every page")
	return cmd
}

func runList(ctx context.Context, out io.Writer, all bool) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	l := app.NewLoader()
	defer l.Close()

	l.Start(ctx)
	l.Wait()
	for all && ctx.Err() == nil {
		s := l.Snapshot()
		if !s.HasMore || s.Err != "" {
			break
		}
		l.LoadMore()
		l.Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s := l.Snapshot()
	display := convbrowse.NewTextDisplay(out)
	display.DisplaySummaries(s.Items)
	if s.Err == "" {
		if s.HasMore && !all {
			display.DisplayNotice("%d shown, more available (use --all)", len(s.Items))
		}
		return nil
	}

	display.DisplayError("%s", s.Err)
	if len(s.Items) == 0 {
		return errors.New("no conversations available")
	}
	display.DisplayNotice("showing %d conversations from the local copy", len(s.Items))
	return nil
}
