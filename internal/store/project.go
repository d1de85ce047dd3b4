package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
)

// AddProject validates the name, inserts the row, and appends the
// fully-formed project to the in-memory collection after commit.
func (s *Store) AddProject(ctx context.Context, name string) (*models.Project, error) {
	s.mustInitialized("AddProject")

	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	project := models.NewProject(0, name, time.Now())

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.projectRepo.Insert(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.projects.Add(project)
	s.logger.Info("project added", "id", project.ID, "name", project.Name)
	return project, nil
}

// DeleteProject removes an empty project: its row, its tag associations,
// and, after commit, its in-memory presence including every tag's
// back-reference. A project owning documents fails with ErrNotEmpty.
func (s *Store) DeleteProject(ctx context.Context, project *models.Project) error {
	s.mustInitialized("DeleteProject")

	if project.Documents.Len() != 0 {
		return fmt.Errorf("project %q owns %d documents: %w",
			project.Name, project.Documents.Len(), domain.ErrNotEmpty)
	}
	if !s.projects.Contains(project.ID) {
		return fmt.Errorf("project %d: %w", project.ID, domain.ErrNotFound)
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
			return err
		}
		if _, err := s.linkRepo.DeleteProjectTagsForProject(ctx, project.ID); err != nil {
			return err
		}

		// Post-condition: the emptiness pre-check must agree with the
		// association table. A residual row means prior corruption.
		count, err := s.linkRepo.CountDocuments(ctx, models.ProjectOwner(project.ID))
		if err != nil {
			return err
		}
		if count != 0 {
			return fmt.Errorf("project %d: %d residual document associations: %w",
				project.ID, count, domain.ErrInconsistent)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, tag := range project.Tags.Items() {
		tag.Projects.Remove(project.ID)
	}
	s.projects.Remove(project.ID)
	s.logger.Info("project deleted", "id", project.ID, "name", project.Name)
	return nil
}

// SetProjectName renames a project in a single persisted transaction.
func (s *Store) SetProjectName(ctx context.Context, project *models.Project, name string) error {
	s.mustInitialized("SetProjectName")

	if err := validateProjectName(name); err != nil {
		return err
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.projectRepo.UpdateName(ctx, project.ID, name)
	})
	if err != nil {
		return err
	}

	project.Name = name
	s.projects.Updated(project, "name")
	return nil
}

// AddProjectAltName prepends an alternate display name. Duplicates are not
// filtered; uniqueness is unspecified at this layer.
func (s *Store) AddProjectAltName(ctx context.Context, project *models.Project, altName string) error {
	s.mustInitialized("AddProjectAltName")

	if err := validateProjectName(altName); err != nil {
		return err
	}

	altNames := append([]string{altName}, project.AltNames...)

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.projectRepo.UpdateAltNames(ctx, project.ID, altNames)
	})
	if err != nil {
		return err
	}

	project.AltNames = altNames
	s.projects.Updated(project, "alt_names")
	return nil
}

// DeleteProjectAltName removes an alternate display name.
func (s *Store) DeleteProjectAltName(ctx context.Context, project *models.Project, altName string) error {
	s.mustInitialized("DeleteProjectAltName")

	if !slices.Contains(project.AltNames, altName) {
		return fmt.Errorf("project %d alt name %q: %w", project.ID, altName, domain.ErrNotFound)
	}

	altNames := make([]string, 0, len(project.AltNames))
	for _, name := range project.AltNames {
		if name != altName {
			altNames = append(altNames, name)
		}
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.projectRepo.UpdateAltNames(ctx, project.ID, altNames)
	})
	if err != nil {
		return err
	}

	project.AltNames = altNames
	s.projects.Updated(project, "alt_names")
	return nil
}

// AddProjectTag links a project and a tag, keeping the many-to-many
// relation symmetric. Any pre-existing link on either in-memory side fails
// with ErrAlreadyLinked before a row is written.
func (s *Store) AddProjectTag(ctx context.Context, project *models.Project, tag *models.Tag) error {
	s.mustInitialized("AddProjectTag")

	if !s.projects.Contains(project.ID) {
		return fmt.Errorf("project %d: %w", project.ID, domain.ErrNotFound)
	}
	if !s.tags.Contains(tag.ID) {
		return fmt.Errorf("tag %d: %w", tag.ID, domain.ErrNotFound)
	}
	if project.Tags.Contains(tag.ID) || tag.Projects.Contains(project.ID) {
		return fmt.Errorf("project %d and tag %d: %w", project.ID, tag.ID, domain.ErrAlreadyLinked)
	}

	link, err := models.NewProjectTagLink(project.ID, tag.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err = s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.linkRepo.InsertProjectTag(ctx, link)
	})
	if err != nil {
		return err
	}

	project.Tags.Add(tag)
	tag.Projects.Add(project)
	return nil
}

// DeleteProjectTag unlinks a project and a tag. A missing link on either
// in-memory side fails with ErrNotLinked: the two sets must agree before
// the row is touched.
func (s *Store) DeleteProjectTag(ctx context.Context, project *models.Project, tag *models.Tag) error {
	s.mustInitialized("DeleteProjectTag")

	if !s.projects.Contains(project.ID) {
		return fmt.Errorf("project %d: %w", project.ID, domain.ErrNotFound)
	}
	if !s.tags.Contains(tag.ID) {
		return fmt.Errorf("tag %d: %w", tag.ID, domain.ErrNotFound)
	}
	if !project.Tags.Contains(tag.ID) || !tag.Projects.Contains(project.ID) {
		return fmt.Errorf("project %d and tag %d: %w", project.ID, tag.ID, domain.ErrNotLinked)
	}

	link, err := models.NewProjectTagLink(project.ID, tag.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err = s.txm.ExecTx(ctx, func(ctx context.Context) error {
		return s.linkRepo.DeleteProjectTag(ctx, link)
	})
	if err != nil {
		return err
	}

	tag.Projects.Remove(project.ID)
	project.Tags.Remove(tag.ID)
	return nil
}
