package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/services"
)

// AddDocumentFile ingests a file or directory from disk and attaches the
// resulting document to the owning container. When the ingest copied a file
// into the store and the database insert then fails, the copy is removed so
// disk and database stay in step.
func (s *Store) AddDocumentFile(ctx context.Context, mode services.TransferMode, owner models.OwnerRef, path string) (*models.Document, error) {
	s.mustInitialized("AddDocumentFile")

	docPath, copiedAbs, err := s.files.IngestFile(mode, path, owner)
	if err != nil {
		return nil, err
	}

	doc, err := s.addDocument(ctx, owner, docPath)
	if err != nil {
		if copiedAbs != "" {
			s.files.RemoveCopied(copiedAbs)
		}
		return nil, err
	}

	s.logger.Info("document added",
		"id", doc.ID,
		"owner", owner.Kind.String(),
		"owner_id", owner.ID,
		"mode", mode.String(),
	)
	return doc, nil
}

// AddDocumentString interprets free-form text. A path naming something on
// disk is ingested as a Link; an absolute http(s) address becomes a Url
// document; anything else is rejected.
func (s *Store) AddDocumentString(ctx context.Context, owner models.OwnerRef, data string) (*models.Document, error) {
	s.mustInitialized("AddDocumentString")

	data = strings.TrimSpace(data)
	if data == "" {
		return nil, fmt.Errorf("empty document text: %w", domain.ErrValidation)
	}

	if _, err := os.Stat(data); err == nil {
		return s.AddDocumentFile(ctx, services.TransferLink, owner, data)
	}

	if models.IsValidURL(data) {
		doc, err := s.addDocument(ctx, owner, models.NewPath(models.PathURL, data))
		if err != nil {
			return nil, err
		}
		s.logger.Info("document added",
			"id", doc.ID,
			"owner", owner.Kind.String(),
			"owner_id", owner.ID,
			"mode", "url",
		)
		return doc, nil
	}

	return nil, fmt.Errorf("%q is neither an existing path nor an absolute http(s) address: %w",
		data, domain.ErrValidation)
}

// addDocument persists a document row plus its single ownership association
// and, after commit, adds the document to the container's collection.
func (s *Store) addDocument(ctx context.Context, owner models.OwnerRef, path models.DocumentPath) (*models.Document, error) {
	if path.Kind == models.PathUnknown {
		return nil, fmt.Errorf("document path %q: %w", path.Value, domain.ErrUnsupportedType)
	}

	container, ok := s.containerDocuments(owner)
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", owner.Kind, owner.ID, domain.ErrNotFound)
	}

	doc := &models.Document{Path: path, CreatedAt: time.Now()}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.docRepo.Insert(ctx, doc); err != nil {
			return err
		}
		link, err := models.NewDocumentLink(owner, doc.ID)
		if err != nil {
			return err
		}
		return s.linkRepo.InsertDocumentLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	container.Add(doc)
	return doc, nil
}

// DeleteDocument removes a document from its owning container. For File
// documents the stored copy is recycled to the trash directory inside the
// same transaction, so a recycle failure rolls the row deletions back and
// leaves the store unchanged.
func (s *Store) DeleteDocument(ctx context.Context, document *models.Document, owner models.OwnerRef) error {
	s.mustInitialized("DeleteDocument")

	container, ok := s.containerDocuments(owner)
	if !ok {
		return fmt.Errorf("%s %d: %w", owner.Kind, owner.ID, domain.ErrNotFound)
	}
	if !container.Contains(document.ID) {
		return fmt.Errorf("document %d not in %s %d: %w",
			document.ID, owner.Kind, owner.ID, domain.ErrNotFound)
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.docRepo.Delete(ctx, document.ID); err != nil {
			return err
		}

		n, err := s.linkRepo.DeleteDocumentLinks(ctx, owner.Kind, document.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("document %d: %d ownership associations, want 1: %w",
				document.ID, n, domain.ErrInconsistent)
		}

		if document.Path.Kind == models.PathFile {
			return s.files.Recycle(s.files.ResolveAbsolute(document.Path))
		}
		return nil
	})
	if err != nil {
		return err
	}

	container.Remove(document.ID)
	s.logger.Info("document deleted",
		"id", document.ID,
		"owner", owner.Kind.String(),
		"owner_id", owner.ID,
	)
	return nil
}

// RenameDocument renames a File document's stored copy, keeping it in its
// current directory. The path row is updated and the file renamed inside one
// transaction; a rename failure rolls the path update back.
func (s *Store) RenameDocument(ctx context.Context, document *models.Document, newName string) error {
	s.mustInitialized("RenameDocument")

	if document.Path.Kind != models.PathFile {
		return fmt.Errorf("%s documents cannot be renamed: %w",
			document.Path.Kind, domain.ErrUnsupportedType)
	}
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("empty document name: %w", domain.ErrValidation)
	}

	oldAbs := s.files.ResolveAbsolute(document.Path)
	if _, err := os.Stat(oldAbs); err != nil {
		return fmt.Errorf("stored file %s: %w", oldAbs, domain.ErrNotFound)
	}

	newPath := models.NewPath(models.PathFile,
		filepath.Join(filepath.Dir(document.Path.Value), newName))
	newAbs := s.files.ResolveAbsolute(newPath)
	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("target %s: %w", newAbs, domain.ErrAlreadyExists)
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.docRepo.UpdatePath(ctx, document.ID, newPath); err != nil {
			return err
		}
		if err := os.Rename(oldAbs, newAbs); err != nil {
			return &domain.IOError{Op: "rename", Path: oldAbs, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	document.Path = newPath
	s.notifyDocumentUpdated(document)
	return nil
}

// notifyDocumentUpdated fires an update event on every container holding the
// document. A document has a single owner, but the owner is not recorded on
// the document itself, so the containers are scanned.
func (s *Store) notifyDocumentUpdated(document *models.Document) {
	for _, project := range s.projects.Items() {
		if project.Documents.Contains(document.ID) {
			project.Documents.Updated(document, "path")
		}
	}
	for _, tag := range s.tags.Items() {
		if tag.Documents.Contains(document.ID) {
			tag.Documents.Updated(document, "path")
		}
	}
}
