package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectRmCmd(a),
		newProjectRenameCmd(a),
		newProjectAltAddCmd(a),
		newProjectAltRmCmd(a),
		newProjectTagCmd(a),
		newProjectUntagCmd(a),
		newProjectLsCmd(a),
	)
	return cmd
}

func newProjectAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.store.AddProject(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Created project %d %q\n", project.ID, project.Name)
				return nil
			})
		},
	}
}

func newProjectRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <project>",
		Short: "Delete a project (must hold no documents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeleteProject(ctx, project); err != nil {
					return err
				}
				fmt.Printf("Deleted project %q\n", project.Name)
				return nil
			})
		},
	}
}

func newProjectRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <new-name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				return a.store.SetProjectName(ctx, project, args[1])
			})
		},
	}
}

func newProjectAltAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alt-add <project> <alt-name>",
		Short: "Add an alternative name to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				return a.store.AddProjectAltName(ctx, project, args[1])
			})
		},
	}
}

func newProjectAltRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alt-rm <project> <alt-name>",
		Short: "Remove an alternative name from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				return a.store.DeleteProjectAltName(ctx, project, args[1])
			})
		},
	}
}

func newProjectTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <project> <tag>",
		Short: "Associate a tag with a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				tag, err := a.findTag(args[1])
				if err != nil {
					return err
				}
				return a.store.AddProjectTag(ctx, project, tag)
			})
		},
	}
}

func newProjectUntagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <project> <tag>",
		Short: "Remove a tag association from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				tag, err := a.findTag(args[1])
				if err != nil {
					return err
				}
				return a.store.DeleteProjectTag(ctx, project, tag)
			})
		},
	}
}

func newProjectLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [project]",
		Short: "List projects, or one project's tags and documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context) error {
				if len(args) == 0 {
					for _, project := range a.store.Projects().Items() {
						line := fmt.Sprintf("%d\t%s", project.ID, project.Name)
						if len(project.AltNames) > 0 {
							line += fmt.Sprintf(" (%s)", strings.Join(project.AltNames, ", "))
						}
						fmt.Println(line)
					}
					return nil
				}

				project, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Project %d %q\n", project.ID, project.Name)
				if len(project.AltNames) > 0 {
					fmt.Printf("Also known as: %s\n", strings.Join(project.AltNames, ", "))
				}
				for _, tag := range project.Tags.Items() {
					fmt.Printf("  tag %d\t%s\n", tag.ID, tag.Name)
				}
				for _, doc := range project.Documents.Items() {
					fmt.Printf("  doc %d\t%s\t%s\n", doc.ID, doc.Path.Kind, doc.Path.DisplayName())
				}
				return nil
			})
		},
	}
}
