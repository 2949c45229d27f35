package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/convbrowse"
	"github.com/dhamidi/convbrowse/conversation"
	"github.com/dhamidi/convbrowse/remote"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List and manage conversation tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *remote.Client) error {
				tags, err := c.ListTags(cmd.Context())
				if err != nil {
					return err
				}
				convbrowse.NewTextDisplay(cmd.OutOrStdout()).DisplayTags(tags)
				return nil
			})
		},
	}
	cmd.AddCommand(tagsCreateCmd(), tagsRenameCmd(), tagsDeleteCmd())
	return cmd
}

func tagsCreateCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *remote.Client) error {
				return runTagsCreate(cmd.Context(), c, cmd.OutOrStdout(), args[0], color)
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Display color, e.g. #3b82f6")
	return cmd
}

func tagsRenameCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "rename <id-or-name> <new-name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *remote.Client) error {
				return runTagsRename(cmd.Context(), c, cmd.OutOrStdout(), args[0], args[1], color)
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "New display color; keeps the current one when empty")
	return cmd
}

func tagsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a tag and detach it from every conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *remote.Client) error {
				return runTagsDelete(cmd.Context(), c, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func withClient(fn func(*remote.Client) error) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app.Client)
}

func runTagsCreate(ctx context.Context, c *remote.Client, out io.Writer, name, color string) error {
	tag, err := c.CreateTag(ctx, name, color)
	if err != nil {
		return err
	}
	convbrowse.NewTextDisplay(out).DisplayNotice("created tag %s (%s)", tag.Name, tag.ID)
	return nil
}

func runTagsRename(ctx context.Context, c *remote.Client, out io.Writer, ref, name, color string) error {
	tag, err := resolveTag(ctx, c, ref)
	if err != nil {
		return err
	}
	renamed, err := c.UpdateTag(ctx, conversation.Tag{ID: tag.ID, Name: name, Color: color})
	if err != nil {
		return err
	}
	convbrowse.NewTextDisplay(out).DisplayNotice("renamed tag %s to %s", tag.Name, renamed.Name)
	return nil
}

func runTagsDelete(ctx context.Context, c *remote.Client, out io.Writer, ref string) error {
	tag, err := resolveTag(ctx, c, ref)
	if err != nil {
		return err
	}
	if err := c.DeleteTag(ctx, tag.ID); err != nil {
		return err
	}
	convbrowse.NewTextDisplay(out).DisplayNotice("deleted tag %s", tag.Name)
	return nil
}

// resolveTag accepts a tag id or an exact tag name.
func resolveTag(ctx context.Context, c *remote.Client, ref string) (conversation.Tag, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return conversation.Tag{}, err
	}
	for _, t := range tags {
		if t.ID == ref {
			return t, nil
		}
	}
	for _, t := range tags {
		if t.Name == ref {
			return t, nil
		}
	}
	return conversation.Tag{}, fmt.Errorf("tag %q: %w", ref, conversation.ErrTagNotFound)
}
