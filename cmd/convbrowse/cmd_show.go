package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
)

const messagesPerPage = 100

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			summary, err := app.Client.GetConversation(ctx, args[0])
			if err != nil {
				return err
			}
			display := convbrowse.NewTextDisplay(cmd.OutOrStdout())
			display.DisplaySummary(summary)

			for page := 1; ; page++ {
				msgs, err := app.Client.ListMessages(ctx, summary.ID, page, messagesPerPage)
				if err != nil {
					return err
				}
				display.DisplayMessages(msgs.Items)
				if page >= msgs.TotalPages || len(msgs.Items) == 0 {
					return nil
				}
			}
		},
	}
}
