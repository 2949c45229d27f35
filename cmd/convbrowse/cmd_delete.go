package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation",
		Long: `Delete a conversation. It is removed from the local copy right away,
even if the API then fails to delete it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			l := app.NewLoader()
			defer l.Close()
			l.Start(ctx)
			l.Wait()

			display := convbrowse.NewTextDisplay(cmd.OutOrStdout())
			if err := <-l.DeleteConversation(ctx, args[0]); err != nil {
				return fmt.Errorf("removed locally, but the API failed to delete %s: %w", args[0], err)
			}
			display.DisplayNotice("deleted %s", args[0])
			return nil
		},
	}
}
