package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Yuuso/mossy/internal/config"
	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
	"github.com/Yuuso/mossy/internal/store"

	"github.com/spf13/cobra"
)

// app carries the wiring every command shares.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	prefs  repositories.PreferencesRepository
	store  *store.Store

	// persistent flag: explicit store directory, overriding preferences
	storeDir string
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mossy",
		Short: "Mossy personal document organizer",
		Long: `Mossy organizes documents into projects and tags, backed by a single-file
database and a managed data directory. Files can be copied into the store or
linked in place; deleted files are recycled, never erased.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&a.storeDir, "store", "s", "", "Store directory (defaults to the last opened store)")
	cmd.AddCommand(
		newInitCmd(a),
		newOpenCmd(a),
		newProjectCmd(a),
		newTagCmd(a),
		newDocCmd(a),
	)
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init <dir>",
		Short: "Create a new store in an existing directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.InitNew(cmd.Context(), args[0]); err != nil {
				return err
			}
			defer a.store.Deinit()
			fmt.Printf("Created store at %s\n", a.store.Root())
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <dir>",
		Short: "Open a store and remember it as the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.InitOpen(cmd.Context(), args[0]); err != nil {
				return err
			}
			defer a.store.Deinit()
			fmt.Printf("Opened store at %s (%d projects, %d tags)\n",
				a.store.Root(), a.store.Projects().Len(), a.store.Tags().Len())
			return nil
		},
	}
}

// withStore opens the store for one command invocation and closes it after.
// The --store flag wins; otherwise the last opened store is reopened, gated
// by the auto-open preference.
func (a *app) withStore(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.storeDir != "" {
		if err := a.store.InitOpen(ctx, a.storeDir); err != nil {
			return err
		}
	} else {
		a.store.AutoReopen(ctx)
		if !a.store.Initialized() {
			return fmt.Errorf("no store selected: pass --store or open one first: %w", domain.ErrNotFound)
		}
	}
	defer a.store.Deinit()

	return fn(ctx)
}

// findProject resolves a project by numeric id or exact name. Name matches
// also consider alternative names.
func (a *app) findProject(ref string) (*models.Project, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if project, ok := a.store.Projects().Get(id); ok {
			return project, nil
		}
	}
	for _, project := range a.store.Projects().Items() {
		if project.Name == ref {
			return project, nil
		}
		for _, alt := range project.AltNames {
			if alt == ref {
				return project, nil
			}
		}
	}
	return nil, fmt.Errorf("project %q: %w", ref, domain.ErrNotFound)
}

// findTag resolves a tag by numeric id or exact name.
func (a *app) findTag(ref string) (*models.Tag, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if tag, ok := a.store.Tags().Get(id); ok {
			return tag, nil
		}
	}
	for _, tag := range a.store.Tags().Items() {
		if tag.Name == ref {
			return tag, nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", ref, domain.ErrNotFound)
}

// resolveOwner turns the --project / --tag flag pair into an owner reference
// and its document collection. Exactly one of the two must be set.
func (a *app) resolveOwner(projectRef, tagRef string) (models.OwnerRef, *models.Collection[*models.Document], error) {
	switch {
	case projectRef != "" && tagRef != "":
		return models.OwnerRef{}, nil, fmt.Errorf("pass either --project or --tag, not both: %w", domain.ErrValidation)
	case projectRef != "":
		project, err := a.findProject(projectRef)
		if err != nil {
			return models.OwnerRef{}, nil, err
		}
		return models.ProjectOwner(project.ID), project.Documents, nil
	case tagRef != "":
		tag, err := a.findTag(tagRef)
		if err != nil {
			return models.OwnerRef{}, nil, err
		}
		return models.TagOwner(tag.ID), tag.Documents, nil
	default:
		return models.OwnerRef{}, nil, fmt.Errorf("pass --project or --tag to select an owner: %w", domain.ErrValidation)
	}
}

// findDocument resolves a document inside one owner's collection by numeric
// id or display name.
func findDocument(docs *models.Collection[*models.Document], ref string) (*models.Document, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if doc, ok := docs.Get(id); ok {
			return doc, nil
		}
	}
	for _, doc := range docs.Items() {
		if doc.Path.DisplayName() == ref {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document %q: %w", ref, domain.ErrNotFound)
}
