package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
)

// AddTag validates the name, inserts the row, and appends the fully-formed
// tag to the in-memory collection after commit.
func (s *Store) AddTag(ctx context.Context, name, category string) (*models.Tag, error) {
	s.mustInitialized("AddTag")

	if err := validateTagName(name); err != nil {
		return nil, err
	}

	tag := models.NewTag(0, name, category, time.Now())

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.tagRepo.Insert(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.tags.Add(tag)
	s.logger.Info("tag added", "id", tag.ID, "name", tag.Name, "category", tag.Category)
	return tag, nil
}

// DeleteTag removes an empty tag: its row, its project associations, and,
// after commit, its in-memory presence including every project's
// back-reference. A tag owning documents fails with ErrNotEmpty.
func (s *Store) DeleteTag(ctx context.Context, tag *models.Tag) error {
	s.mustInitialized("DeleteTag")

	if tag.Documents.Len() != 0 {
		return fmt.Errorf("tag %q owns %d documents: %w",
			tag.Name, tag.Documents.Len(), domain.ErrNotEmpty)
	}
	if !s.tags.Contains(tag.ID) {
		return fmt.Errorf("tag %d: %w", tag.ID, domain.ErrNotFound)
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.tagRepo.Delete(ctx, tag.ID); err != nil {
			return err
		}
		if _, err := s.linkRepo.DeleteProjectTagsForTag(ctx, tag.ID); err != nil {
			return err
		}

		count, err := s.linkRepo.CountDocuments(ctx, models.TagOwner(tag.ID))
		if err != nil {
			return err
		}
		if count != 0 {
			return fmt.Errorf("tag %d: %d residual document associations: %w",
				tag.ID, count, domain.ErrInconsistent)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, project := range tag.Projects.Items() {
		project.Tags.Remove(tag.ID)
	}
	s.tags.Remove(tag.ID)
	s.logger.Info("tag deleted", "id", tag.ID, "name", tag.Name)
	return nil
}

// SetTagName renames a tag in a single persisted transaction.
func (s *Store) SetTagName(ctx context.Context, tag *models.Tag, name string) error {
	s.mustInitialized("SetTagName")

	if err := validateTagName(name); err != nil {
		return err
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.tagRepo.UpdateName(ctx, tag.ID, name)
	})
	if err != nil {
		return err
	}

	tag.Name = name
	s.tags.Updated(tag, "name")
	return nil
}

// SetTagCategory recategorizes a tag. The category may be empty.
func (s *Store) SetTagCategory(ctx context.Context, tag *models.Tag, category string) error {
	s.mustInitialized("SetTagCategory")

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.tagRepo.UpdateCategory(ctx, tag.ID, category)
	})
	if err != nil {
		return err
	}

	tag.Category = category
	s.tags.Updated(tag, "category")
	return nil
}
