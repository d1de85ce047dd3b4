package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/repository/sqlite"
)

func testConfig(t *testing.T) *sqlite.RepositoryConfig {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mossy_database.db")
	db, err := sqlite.Create(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &sqlite.RepositoryConfig{
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func Test_Create_Installs_Schema_And_Version(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	version, err := sqlite.UserVersion(t.Context(), cfg.DB)
	require.NoError(t, err)
	require.Equal(t, 1, version)

	for _, table := range []string{
		"projects", "documents", "tags",
		"project_tag", "project_document", "tag_document",
	} {
		var name string
		err := cfg.DB.QueryRowContext(t.Context(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func Test_Create_Fails_When_Database_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mossy_database.db")
	db, err := sqlite.Create(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = sqlite.Create(t.Context(), path)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func Test_Open_Fails_When_Database_Missing(t *testing.T) {
	t.Parallel()

	_, err := sqlite.Open(t.Context(), filepath.Join(t.TempDir(), "mossy_database.db"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_ProjectRepository_Insert_Assigns_ID(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	repo := sqlite.NewProjectRepository(cfg)

	first := models.NewProject(0, "Thesis", time.Now())
	second := models.NewProject(0, "Garden", time.Now())
	second.AltNames = []string{"Backyard", "Yard"}

	require.NoError(t, repo.Insert(t.Context(), first))
	require.NoError(t, repo.Insert(t.Context(), second))
	require.Greater(t, first.ID, int64(0))
	require.Greater(t, second.ID, first.ID)
}

func Test_ProjectRepository_Delete_Missing_Is_NotFound(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	repo := sqlite.NewProjectRepository(cfg)

	err := repo.Delete(t.Context(), 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_TagRepository_Update_Requires_Existing_Row(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	repo := sqlite.NewTagRepository(cfg)

	tag := models.NewTag(0, "photography", "hobby", time.Now())
	require.NoError(t, repo.Insert(t.Context(), tag))

	require.NoError(t, repo.UpdateName(t.Context(), tag.ID, "photos"))
	require.NoError(t, repo.UpdateCategory(t.Context(), tag.ID, ""))

	require.ErrorIs(t, repo.UpdateName(t.Context(), tag.ID+1, "x"), domain.ErrNotFound)
}

func Test_LinkRepository_DeleteProjectTag_Missing_Is_NotLinked(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	repo := sqlite.NewLinkRepository(cfg)

	link, err := models.NewProjectTagLink(1, 2)
	require.NoError(t, err)

	require.ErrorIs(t, repo.DeleteProjectTag(t.Context(), link), domain.ErrNotLinked)

	require.NoError(t, repo.InsertProjectTag(t.Context(), link))
	require.NoError(t, repo.DeleteProjectTag(t.Context(), link))
}

func Test_LinkRepository_CountDocuments_Per_Owner(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	repo := sqlite.NewLinkRepository(cfg)
	ctx := t.Context()

	for _, docID := range []int64{10, 11} {
		link, err := models.NewDocumentLink(models.ProjectOwner(1), docID)
		require.NoError(t, err)
		require.NoError(t, repo.InsertDocumentLink(ctx, link))
	}
	tagLink, err := models.NewDocumentLink(models.TagOwner(1), 12)
	require.NoError(t, err)
	require.NoError(t, repo.InsertDocumentLink(ctx, tagLink))

	n, err := repo.CountDocuments(ctx, models.ProjectOwner(1))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = repo.CountDocuments(ctx, models.TagOwner(1))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	removed, err := repo.DeleteDocumentLinks(ctx, models.OwnerProject, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	n, err = repo.CountDocuments(ctx, models.ProjectOwner(1))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func Test_TransactionManager_Rolls_Back_On_Error(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	txm := sqlite.NewTransactionManager(cfg)
	repo := sqlite.NewProjectRepository(cfg)
	ctx := t.Context()

	boom := context.DeadlineExceeded
	err := txm.ExecTx(ctx, func(ctx context.Context) error {
		if err := repo.Insert(ctx, models.NewProject(0, "Doomed", time.Now())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, cfg.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count))
	require.Zero(t, count)
}

func Test_GraphLoader_Reconstructs_Wired_Graph(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := t.Context()

	projects := sqlite.NewProjectRepository(cfg)
	tags := sqlite.NewTagRepository(cfg)
	docs := sqlite.NewDocumentRepository(cfg)
	links := sqlite.NewLinkRepository(cfg)

	project := models.NewProject(0, "Archive", time.Now())
	project.AltNames = []string{"Old Stuff"}
	require.NoError(t, projects.Insert(ctx, project))

	tag := models.NewTag(0, "scans", "paperwork", time.Now())
	require.NoError(t, tags.Insert(ctx, tag))

	doc := &models.Document{
		Path:      models.NewPath(models.PathFile, "data/PRJ_1/scan.pdf"),
		CreatedAt: time.Now(),
	}
	require.NoError(t, docs.Insert(ctx, doc))

	ptLink, err := models.NewProjectTagLink(project.ID, tag.ID)
	require.NoError(t, err)
	require.NoError(t, links.InsertProjectTag(ctx, ptLink))

	docLink, err := models.NewDocumentLink(models.ProjectOwner(project.ID), doc.ID)
	require.NoError(t, err)
	require.NoError(t, links.InsertDocumentLink(ctx, docLink))

	graph, err := sqlite.NewGraphLoader(cfg).LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Projects, 1)
	require.Len(t, graph.Tags, 1)

	loadedProject := graph.Projects[0]
	loadedTag := graph.Tags[0]

	require.Equal(t, "Archive", loadedProject.Name)
	require.Equal(t, []string{"Old Stuff"}, loadedProject.AltNames)

	// Both sides of the relation are wired to the same instances.
	require.True(t, loadedProject.Tags.Contains(loadedTag.ID))
	require.True(t, loadedTag.Projects.Contains(loadedProject.ID))

	loadedDoc, ok := loadedProject.Documents.Get(doc.ID)
	require.True(t, ok)
	require.Equal(t, models.PathFile, loadedDoc.Path.Kind)
	require.Equal(t, "data/PRJ_1/scan.pdf", loadedDoc.Path.Value)
}

func Test_GraphLoader_Skips_Dangling_Associations(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := t.Context()

	project := models.NewProject(0, "Lonely", time.Now())
	require.NoError(t, sqlite.NewProjectRepository(cfg).Insert(ctx, project))

	// Association rows pointing at entities that no longer exist.
	_, err := cfg.DB.ExecContext(ctx,
		"INSERT INTO project_tag (project_id, tag_id) VALUES (?, ?)", project.ID, 999)
	require.NoError(t, err)
	_, err = cfg.DB.ExecContext(ctx,
		"INSERT INTO project_document (project_id, document_id) VALUES (?, ?)", project.ID, 888)
	require.NoError(t, err)

	graph, err := sqlite.NewGraphLoader(cfg).LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Projects, 1)
	require.Zero(t, graph.Projects[0].Tags.Len())
	require.Zero(t, graph.Projects[0].Documents.Len())
}

func Test_GraphLoader_Bad_Timestamp_Is_Corrupt(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := t.Context()

	_, err := cfg.DB.ExecContext(ctx,
		"INSERT INTO projects (project_id, name, date_created) VALUES (1, 'x', 'garbage')")
	require.NoError(t, err)

	_, err = sqlite.NewGraphLoader(cfg).LoadGraph(ctx)
	require.ErrorIs(t, err, domain.ErrCorrupt)
}

func Test_GraphLoader_Accepts_Second_Precision_Timestamps(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := t.Context()

	_, err := cfg.DB.ExecContext(ctx,
		"INSERT INTO projects (project_id, name, date_created) VALUES (1, 'Old', ?)",
		time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)

	graph, err := sqlite.NewGraphLoader(cfg).LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Projects, 1)
	require.False(t, graph.Projects[0].CreatedAt.IsZero())
}
