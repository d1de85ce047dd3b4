package main

import (
	"context"
	"fmt"

	"github.com/Yuuso/mossy/internal/domain/services"

	"github.com/spf13/cobra"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage documents inside a project or tag",
	}
	cmd.AddCommand(
		newDocAddCmd(a),
		newDocAddStringCmd(a),
		newDocRmCmd(a),
		newDocRenameCmd(a),
	)
	return cmd
}

// ownerFlags adds the --project/--tag owner selection pair to a command.
func ownerFlags(cmd *cobra.Command, projectRef, tagRef *string) {
	cmd.Flags().StringVarP(projectRef, "project", "p", "", "Owning project (name or id)")
	cmd.Flags().StringVarP(tagRef, "tag", "t", "", "Owning tag (name or id)")
}

func newDocAddCmd(a *app) *cobra.Command {
	var projectRef, tagRef string
	var link bool
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a file or directory as a document",
		Long: `Add a file or directory from disk to a project or tag. By default the file
is copied into the store's managed data directory; with --link the document
references the original location instead. Directories are always linked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				owner, _, err := a.resolveOwner(projectRef, tagRef)
				if err != nil {
					return err
				}
				mode := services.TransferCopy
				if link {
					mode = services.TransferLink
				}
				doc, err := a.store.AddDocumentFile(ctx, mode, owner, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Added document %d %q\n", doc.ID, doc.Path.DisplayName())
				return nil
			})
		},
	}
	ownerFlags(cmd, &projectRef, &tagRef)
	cmd.Flags().BoolVarP(&link, "link", "l", false, "Reference the file in place instead of copying")
	return cmd
}

func newDocAddStringCmd(a *app) *cobra.Command {
	var projectRef, tagRef string
	cmd := &cobra.Command{
		Use:   "add-string <text>",
		Short: "Add a document from free-form text (a path or an http(s) address)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				owner, _, err := a.resolveOwner(projectRef, tagRef)
				if err != nil {
					return err
				}
				doc, err := a.store.AddDocumentString(ctx, owner, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Added document %d %q\n", doc.ID, doc.Path.DisplayName())
				return nil
			})
		},
	}
	ownerFlags(cmd, &projectRef, &tagRef)
	return cmd
}

func newDocRmCmd(a *app) *cobra.Command {
	var projectRef, tagRef string
	cmd := &cobra.Command{
		Use:   "rm <document>",
		Short: "Delete a document (stored files are moved to the trash)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				owner, docs, err := a.resolveOwner(projectRef, tagRef)
				if err != nil {
					return err
				}
				doc, err := findDocument(docs, args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeleteDocument(ctx, doc, owner); err != nil {
					return err
				}
				fmt.Printf("Deleted document %d\n", doc.ID)
				return nil
			})
		},
	}
	ownerFlags(cmd, &projectRef, &tagRef)
	return cmd
}

func newDocRenameCmd(a *app) *cobra.Command {
	var projectRef, tagRef string
	cmd := &cobra.Command{
		Use:   "rename <document> <new-name>",
		Short: "Rename a stored file document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				_, docs, err := a.resolveOwner(projectRef, tagRef)
				if err != nil {
					return err
				}
				doc, err := findDocument(docs, args[0])
				if err != nil {
					return err
				}
				if err := a.store.RenameDocument(ctx, doc, args[1]); err != nil {
					return err
				}
				fmt.Printf("Renamed document %d to %q\n", doc.ID, doc.Path.DisplayName())
				return nil
			})
		},
	}
	ownerFlags(cmd, &projectRef, &tagRef)
	return cmd
}
