package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local conversation cache",
	}
	cmd.AddCommand(cacheClearCmd())
	return cmd
}

func cacheClearCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop the cached first page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.Cache.Clear(ctx); err != nil {
				return err
			}
			display := convbrowse.NewTextDisplay(cmd.OutOrStdout())
			if !all {
				display.DisplayNotice("cache cleared")
				return nil
			}
			if err := app.Mirror.Clear(ctx); err != nil {
				return err
			}
			display.DisplayNotice("cache and offline copy cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also drop the offline copy")
	return cmd
}
