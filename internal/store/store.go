// Package store implements the persistence engine and facade: the owner of
// the canonical project/tag/document graph, persisted to a single-file
// sqlite database with manually enforced referential integrity, and the
// coordinator of filesystem side effects with database mutations.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
	"github.com/Yuuso/mossy/internal/domain/services"
	"github.com/Yuuso/mossy/internal/fsops"
	"github.com/Yuuso/mossy/internal/identity"
	"github.com/Yuuso/mossy/internal/repository/sqlite"
)

// DatabaseFilename is the database file's fixed name inside the store root.
const DatabaseFilename = "mossy_database.db"

// State is the facade lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateInitialized
)

// Store implements the services.Store interface. Single-threaded by
// contract: one logical thread of control calls one operation at a time.
type Store struct {
	logger   *slog.Logger
	prefs    repositories.PreferencesRepository
	resolver *identity.Resolver

	state  State
	root   string
	db     *sql.DB
	txm    repositories.TransactionManager
	loader repositories.GraphLoader

	projectRepo repositories.ProjectRepository
	tagRepo     repositories.TagRepository
	docRepo     repositories.DocumentRepository
	linkRepo    repositories.LinkRepository
	files       *fsops.Manager

	projects *models.Collection[*models.Project]
	tags     *models.Collection[*models.Tag]
}

var _ services.Store = (*Store)(nil)

// New creates an uninitialized store.
func New(prefs repositories.PreferencesRepository, logger *slog.Logger) *Store {
	return &Store{
		logger:   logger,
		prefs:    prefs,
		resolver: identity.NewResolver(logger),
		projects: models.NewCollection[*models.Project](),
		tags:     models.NewCollection[*models.Tag](),
	}
}

// Initialized reports whether the store is open.
func (s *Store) Initialized() bool { return s.state == StateInitialized }

// Projects is the observable in-memory project collection.
func (s *Store) Projects() *models.Collection[*models.Project] { return s.projects }

// Tags is the observable in-memory tag collection.
func (s *Store) Tags() *models.Collection[*models.Tag] { return s.tags }

// Root returns the store root directory. Empty while uninitialized.
func (s *Store) Root() string { return s.root }

// mustInitialized guards mutating operations. Calling one while not
// initialized is a programmer error, not a recoverable runtime condition.
func (s *Store) mustInitialized(op string) {
	if s.state != StateInitialized {
		panic("store: " + op + " called while not initialized")
	}
}

// InitNew creates a store at dir: identity file plus a fresh database.
func (s *Store) InitNew(ctx context.Context, dir string) error {
	if s.state != StateUninitialized {
		panic("store: InitNew called while already initialized")
	}
	s.state = StateInitializing

	root, err := s.resolver.InitNew(dir)
	if err != nil {
		s.reset()
		return err
	}

	db, err := sqlite.Create(ctx, filepath.Join(root, DatabaseFilename))
	if err != nil {
		// The identity write already succeeded; leaving it behind would
		// block a retried create with ErrAlreadyExists.
		identityPath := filepath.Join(root, identity.Filename)
		if rmErr := os.Remove(identityPath); rmErr != nil {
			s.logger.Warn("failed to remove store identity after create failure",
				"path", identityPath,
				"error", rmErr,
			)
		}
		s.reset()
		return err
	}

	s.attach(root, db)
	s.state = StateInitialized
	s.rememberOpened(root)
	s.logger.Info("store created", "root", root)
	return nil
}

// InitOpen opens an existing store at dir and loads the full entity graph.
func (s *Store) InitOpen(ctx context.Context, dir string) error {
	if s.state != StateUninitialized {
		panic("store: InitOpen called while already initialized")
	}
	s.state = StateInitializing

	root, err := s.resolver.InitOpen(dir)
	if err != nil {
		s.reset()
		return err
	}

	db, err := sqlite.Open(ctx, filepath.Join(root, DatabaseFilename))
	if err != nil {
		s.reset()
		return err
	}

	s.attach(root, db)

	graph, err := s.loader.LoadGraph(ctx)
	if err != nil {
		s.reset()
		return err
	}
	for _, project := range graph.Projects {
		s.projects.Add(project)
	}
	for _, tag := range graph.Tags {
		s.tags.Add(tag)
	}

	s.state = StateInitialized
	s.rememberOpened(root)
	s.logger.Info("store opened",
		"root", root,
		"projects", s.projects.Len(),
		"tags", s.tags.Len(),
	)
	return nil
}

// Deinit clears all in-memory collections, closes the database, and
// returns to uninitialized. Safe to call in any state.
func (s *Store) Deinit() {
	s.reset()
}

// AutoReopen opens the last used store when the auto-reopen preference is
// set and the remembered path still exists. A failure to reopen is logged,
// not fatal: startup proceeds uninitialized.
func (s *Store) AutoReopen(ctx context.Context) {
	prefs, err := s.prefs.Load()
	if err != nil {
		s.logger.Warn("failed to load user preferences", "error", err)
		return
	}
	if !prefs.AutoOpenLastStore || prefs.LastStorePath == "" {
		return
	}

	if err := s.InitOpen(ctx, prefs.LastStorePath); err != nil {
		s.logger.Warn("failed to reopen last store",
			"root", prefs.LastStorePath,
			"error", err,
		)
	}
}

// AbsolutePath resolves a document's path against the store root.
func (s *Store) AbsolutePath(document *models.Document) string {
	s.mustInitialized("AbsolutePath")
	return s.files.ResolveAbsolute(document.Path)
}

// CoverDocument resolves a container's cover document id against its own
// documents. A dangling id is a display concern, never an error.
func (s *Store) CoverDocument(owner models.OwnerRef) (*models.Document, bool) {
	switch owner.Kind {
	case models.OwnerProject:
		if project, ok := s.projects.Get(owner.ID); ok && project.CoverDocumentID != 0 {
			return project.Documents.Get(project.CoverDocumentID)
		}
	case models.OwnerTag:
		if tag, ok := s.tags.Get(owner.ID); ok && tag.CoverDocumentID != 0 {
			return tag.Documents.Get(tag.CoverDocumentID)
		}
	}
	return nil, false
}

func (s *Store) attach(root string, db *sql.DB) {
	cfg := &sqlite.RepositoryConfig{DB: db, Logger: s.logger}
	s.root = root
	s.db = db
	s.txm = sqlite.NewTransactionManager(cfg)
	s.loader = sqlite.NewGraphLoader(cfg)
	s.projectRepo = sqlite.NewProjectRepository(cfg)
	s.tagRepo = sqlite.NewTagRepository(cfg)
	s.docRepo = sqlite.NewDocumentRepository(cfg)
	s.linkRepo = sqlite.NewLinkRepository(cfg)
	s.files = fsops.NewManager(root, s.logger)
}

func (s *Store) reset() {
	s.tags.Clear()
	s.projects.Clear()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	s.db = nil
	s.root = ""
	s.txm = nil
	s.loader = nil
	s.projectRepo = nil
	s.tagRepo = nil
	s.docRepo = nil
	s.linkRepo = nil
	s.files = nil
	s.state = StateUninitialized
}

// rememberOpened records the store path into user preferences after a
// successful open. Best-effort: preference failures never fail the open.
func (s *Store) rememberOpened(root string) {
	prefs, err := s.prefs.Load()
	if err != nil {
		s.logger.Warn("failed to load user preferences", "error", err)
		return
	}
	if prefs.LastStorePath == root {
		return
	}
	prefs.LastStorePath = root
	if err := s.prefs.Save(prefs); err != nil {
		s.logger.Warn("failed to save user preferences", "error", err)
	}
}

// containerDocuments returns the owning container's document collection.
func (s *Store) containerDocuments(owner models.OwnerRef) (*models.Collection[*models.Document], bool) {
	switch owner.Kind {
	case models.OwnerProject:
		if project, ok := s.projects.Get(owner.ID); ok {
			return project.Documents, true
		}
	case models.OwnerTag:
		if tag, ok := s.tags.Get(owner.ID); ok {
			return tag.Documents, true
		}
	}
	return nil, false
}
