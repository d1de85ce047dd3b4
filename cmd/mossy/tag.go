package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(
		newTagAddCmd(a),
		newTagRmCmd(a),
		newTagRenameCmd(a),
		newTagRecatCmd(a),
		newTagLsCmd(a),
	)
	return cmd
}

func newTagAddCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				tag, err := a.store.AddTag(ctx, args[0], category)
				if err != nil {
					return err
				}
				fmt.Printf("Created tag %d %q\n", tag.ID, tag.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Tag category")
	return cmd
}

func newTagRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <tag>",
		Short: "Delete a tag (must hold no documents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				tag, err := a.findTag(args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeleteTag(ctx, tag); err != nil {
					return err
				}
				fmt.Printf("Deleted tag %q\n", tag.Name)
				return nil
			})
		},
	}
}

func newTagRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tag> <new-name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				tag, err := a.findTag(args[0])
				if err != nil {
					return err
				}
				return a.store.SetTagName(ctx, tag, args[1])
			})
		},
	}
}

func newTagRecatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recat <tag> [category]",
		Short: "Set or clear a tag's category",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				tag, err := a.findTag(args[0])
				if err != nil {
					return err
				}
				category := ""
				if len(args) == 2 {
					category = args[1]
				}
				return a.store.SetTagCategory(ctx, tag, category)
			})
		},
	}
}

func newTagLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [tag]",
		Short: "List tags, or one tag's projects and documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				if len(args) == 0 {
					for _, tag := range a.store.Tags().Items() {
						line := fmt.Sprintf("%d\t%s", tag.ID, tag.Name)
						if tag.Category != "" {
							line += fmt.Sprintf(" [%s]", tag.Category)
						}
						fmt.Println(line)
					}
					return nil
				}

				tag, err := a.findTag(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Tag %d %q\n", tag.ID, tag.Name)
				if tag.Category != "" {
					fmt.Printf("Category: %s\n", tag.Category)
				}
				for _, project := range tag.Projects.Items() {
					fmt.Printf("  project %d\t%s\n", project.ID, project.Name)
				}
				for _, doc := range tag.Documents.Items() {
					fmt.Printf("  doc %d\t%s\t%s\n", doc.ID, doc.Path.Kind, doc.Path.DisplayName())
				}
				return nil
			})
		},
	}
}
