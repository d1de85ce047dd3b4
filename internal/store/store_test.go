package store_test

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/services"
	"github.com/Yuuso/mossy/internal/repository/jsonfile"
	"github.com/Yuuso/mossy/internal/store"
)

type harness struct {
	store *store.Store
	prefs string
	root  string
}

// newHarness creates a fresh store rooted in a temp directory.
func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefsPath := filepath.Join(t.TempDir(), "user_settings.json")
	root := t.TempDir()

	s := store.New(jsonfile.NewPreferencesRepository(prefsPath, logger), logger)
	require.NoError(t, s.InitNew(t.Context(), root))
	t.Cleanup(s.Deinit)

	return &harness{store: s, prefs: prefsPath, root: root}
}

// reopen closes the store and opens a fresh instance on the same root,
// forcing a full graph reload from disk.
func (h *harness) reopen(t *testing.T) {
	t.Helper()

	h.store.Deinit()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.store = store.New(jsonfile.NewPreferencesRepository(h.prefs, logger), logger)
	require.NoError(t, h.store.InitOpen(t.Context(), h.root))
	t.Cleanup(h.store.Deinit)
}

// execSQL mutates the store's database directly, bypassing the engine, to
// seed the kinds of rows only prior corruption could produce.
func (h *harness) execSQL(t *testing.T, query string, args ...any) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(h.root, store.DatabaseFilename))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(t.Context(), query, args...)
	require.NoError(t, err)
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_InitNew_Creates_Identity_And_Database(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.True(t, h.store.Initialized())
	_, err := os.Stat(filepath.Join(h.root, "mossy_config.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(h.root, store.DatabaseFilename))
	require.NoError(t, err)
}

func Test_Mutations_Survive_Reopen(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Thesis")
	require.NoError(t, err)
	require.NoError(t, h.store.AddProjectAltName(ctx, project, "PhD"))

	tag, err := h.store.AddTag(ctx, "research", "work")
	require.NoError(t, err)
	require.NoError(t, h.store.AddProjectTag(ctx, project, tag))

	h.reopen(t)

	loaded, ok := h.store.Projects().Get(project.ID)
	require.True(t, ok)
	require.Equal(t, "Thesis", loaded.Name)
	require.Equal(t, []string{"PhD"}, loaded.AltNames)
	require.True(t, loaded.Tags.Contains(tag.ID))

	loadedTag, ok := h.store.Tags().Get(tag.ID)
	require.True(t, ok)
	require.Equal(t, "work", loadedTag.Category)
	require.True(t, loadedTag.Projects.Contains(project.ID))
}

func Test_AddProject_Rejects_Invalid_Names(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	for _, name := range []string{"", "   ", "a;b"} {
		_, err := h.store.AddProject(ctx, name)
		require.ErrorIs(t, err, domain.ErrValidation, "name %q", name)
	}
}

func Test_DeleteProject_Refuses_While_Documents_Held(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Photos")
	require.NoError(t, err)

	source := writeSource(t, "cat.jpg", "bytes")
	doc, err := h.store.AddDocumentFile(ctx, services.TransferCopy, models.ProjectOwner(project.ID), source)
	require.NoError(t, err)

	require.ErrorIs(t, h.store.DeleteProject(ctx, project), domain.ErrNotEmpty)
	require.True(t, h.store.Projects().Contains(project.ID))

	require.NoError(t, h.store.DeleteDocument(ctx, doc, models.ProjectOwner(project.ID)))
	require.NoError(t, h.store.DeleteProject(ctx, project))
	require.False(t, h.store.Projects().Contains(project.ID))
}

func Test_DeleteProject_Removes_Tag_Links(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Garden")
	require.NoError(t, err)
	tag, err := h.store.AddTag(ctx, "outdoors", "")
	require.NoError(t, err)
	require.NoError(t, h.store.AddProjectTag(ctx, project, tag))

	// Tag links never block deletion; they are dissolved with the project.
	require.NoError(t, h.store.DeleteProject(ctx, project))
	require.False(t, tag.Projects.Contains(project.ID))

	h.reopen(t)
	loadedTag, ok := h.store.Tags().Get(tag.ID)
	require.True(t, ok)
	require.Zero(t, loadedTag.Projects.Len())
}

func Test_ProjectTag_Link_Is_Symmetric(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Reading")
	require.NoError(t, err)
	tag, err := h.store.AddTag(ctx, "books", "hobby")
	require.NoError(t, err)

	require.NoError(t, h.store.AddProjectTag(ctx, project, tag))
	require.True(t, project.Tags.Contains(tag.ID))
	require.True(t, tag.Projects.Contains(project.ID))

	require.ErrorIs(t, h.store.AddProjectTag(ctx, project, tag), domain.ErrAlreadyLinked)

	require.NoError(t, h.store.DeleteProjectTag(ctx, project, tag))
	require.False(t, project.Tags.Contains(tag.ID))
	require.False(t, tag.Projects.Contains(project.ID))

	require.ErrorIs(t, h.store.DeleteProjectTag(ctx, project, tag), domain.ErrNotLinked)
}

func Test_AddDocumentFile_Copy_Duplicates_Get_Suffixed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Album")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	first, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "photo.jpg", "one"))
	require.NoError(t, err)
	second, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "photo.jpg", "two"))
	require.NoError(t, err)

	require.Equal(t, "photo.jpg", first.Path.DisplayName())
	require.Equal(t, "photo_(1).jpg", second.Path.DisplayName())

	for _, doc := range []*models.Document{first, second} {
		_, err := os.Stat(h.store.AbsolutePath(doc))
		require.NoError(t, err)
	}
	require.Equal(t, 2, project.Documents.Len())
}

func Test_AddDocumentFile_Link_References_In_Place(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	tag, err := h.store.AddTag(ctx, "manuals", "")
	require.NoError(t, err)

	source := writeSource(t, "manual.pdf", "pdf")
	doc, err := h.store.AddDocumentFile(ctx, services.TransferLink, models.TagOwner(tag.ID), source)
	require.NoError(t, err)

	require.Equal(t, models.PathLink, doc.Path.Kind)
	require.Equal(t, source, h.store.AbsolutePath(doc))
	require.True(t, tag.Documents.Contains(doc.ID))
}

func Test_AddDocumentFile_Unknown_Owner_Is_NotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	source := writeSource(t, "x.txt", "x")
	_, err := h.store.AddDocumentFile(t.Context(), services.TransferCopy, models.ProjectOwner(99), source)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_AddDocumentString_Classifies_Input(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Links")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	urlDoc, err := h.store.AddDocumentString(ctx, owner, "https://example.com/article")
	require.NoError(t, err)
	require.Equal(t, models.PathURL, urlDoc.Path.Kind)

	source := writeSource(t, "notes.md", "text")
	pathDoc, err := h.store.AddDocumentString(ctx, owner, source)
	require.NoError(t, err)
	require.Equal(t, models.PathLink, pathDoc.Path.Kind)

	_, err = h.store.AddDocumentString(ctx, owner, "neither a path nor a url")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func Test_DeleteDocument_Recycles_Stored_File(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Scans")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	doc, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "receipt.png", "png"))
	require.NoError(t, err)
	abs := h.store.AbsolutePath(doc)

	require.NoError(t, h.store.DeleteDocument(ctx, doc, owner))

	_, err = os.Stat(abs)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(h.root, "trash", "receipt.png"))
	require.NoError(t, err)
	require.Zero(t, project.Documents.Len())
}

func Test_DeleteDocument_Failed_Recycle_Changes_Nothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Fragile")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	doc, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "gone.txt", "bytes"))
	require.NoError(t, err)

	// Sabotage: remove the stored file behind the store's back.
	require.NoError(t, os.Remove(h.store.AbsolutePath(doc)))

	err = h.store.DeleteDocument(ctx, doc, owner)
	var ioErr *domain.IOError
	require.ErrorAs(t, err, &ioErr)

	// The row deletions rolled back and the in-memory model is untouched.
	require.True(t, project.Documents.Contains(doc.ID))
	h.reopen(t)
	loaded, ok := h.store.Projects().Get(project.ID)
	require.True(t, ok)
	require.True(t, loaded.Documents.Contains(doc.ID))
}

func Test_DeleteDocument_Wrong_Owner_Is_NotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "A")
	require.NoError(t, err)
	tag, err := h.store.AddTag(ctx, "b", "")
	require.NoError(t, err)

	doc, err := h.store.AddDocumentString(ctx, models.ProjectOwner(project.ID), "https://example.com")
	require.NoError(t, err)

	err = h.store.DeleteDocument(ctx, doc, models.TagOwner(tag.ID))
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.True(t, project.Documents.Contains(doc.ID))
}

func Test_RenameDocument_Moves_Stored_File(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Papers")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	doc, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "draft.txt", "v1"))
	require.NoError(t, err)
	oldAbs := h.store.AbsolutePath(doc)

	require.NoError(t, h.store.RenameDocument(ctx, doc, "final.txt"))

	require.Equal(t, "final.txt", doc.Path.DisplayName())
	_, err = os.Stat(oldAbs)
	require.True(t, os.IsNotExist(err))
	content, err := os.ReadFile(h.store.AbsolutePath(doc))
	require.NoError(t, err)
	require.Equal(t, "v1", string(content))

	h.reopen(t)
	loaded, ok := h.store.Projects().Get(project.ID)
	require.True(t, ok)
	reloaded, ok := loaded.Documents.Get(doc.ID)
	require.True(t, ok)
	require.Equal(t, "final.txt", reloaded.Path.DisplayName())
}

func Test_RenameDocument_Collision_Leaves_Both_Untouched(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Papers")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	first, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "a.txt", "a"))
	require.NoError(t, err)
	second, err := h.store.AddDocumentFile(ctx, services.TransferCopy, owner,
		writeSource(t, "b.txt", "b"))
	require.NoError(t, err)

	require.ErrorIs(t, h.store.RenameDocument(ctx, second, "a.txt"), domain.ErrAlreadyExists)

	require.Equal(t, "a.txt", first.Path.DisplayName())
	require.Equal(t, "b.txt", second.Path.DisplayName())
	for _, doc := range []*models.Document{first, second} {
		_, err := os.Stat(h.store.AbsolutePath(doc))
		require.NoError(t, err)
	}
}

func Test_RenameDocument_Rejects_Non_File_Documents(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Links")
	require.NoError(t, err)

	doc, err := h.store.AddDocumentString(ctx, models.ProjectOwner(project.ID), "https://example.com")
	require.NoError(t, err)

	require.ErrorIs(t, h.store.RenameDocument(ctx, doc, "new"), domain.ErrUnsupportedType)
}

func Test_Failed_Copy_Ingest_Leaves_No_Orphan_File(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	// Owner 99 does not exist, so the insert fails after the copy happened.
	source := writeSource(t, "orphan.txt", "bytes")
	_, err := h.store.AddDocumentFile(t.Context(), services.TransferCopy, models.ProjectOwner(99), source)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = os.Stat(filepath.Join(h.root, "data", "PRJ_99", "orphan.txt"))
	require.True(t, os.IsNotExist(err), "compensation should remove the copy")
}

func Test_DeleteTag_Refuses_While_Documents_Held(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	tag, err := h.store.AddTag(ctx, "clippings", "")
	require.NoError(t, err)
	owner := models.TagOwner(tag.ID)

	doc, err := h.store.AddDocumentString(ctx, owner, "https://example.com/recipe")
	require.NoError(t, err)

	require.ErrorIs(t, h.store.DeleteTag(ctx, tag), domain.ErrNotEmpty)

	require.NoError(t, h.store.DeleteDocument(ctx, doc, owner))
	require.NoError(t, h.store.DeleteTag(ctx, tag))
	require.False(t, h.store.Tags().Contains(tag.ID))
}

func Test_SetNames_Fire_Updates_And_Persist(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Before")
	require.NoError(t, err)
	tag, err := h.store.AddTag(ctx, "old", "cat")
	require.NoError(t, err)

	var updates []string
	h.store.Projects().Subscribe(func(ev models.Event[*models.Project]) {
		if ev.Kind == models.EventUpdate {
			updates = append(updates, ev.Field)
		}
	})

	require.NoError(t, h.store.SetProjectName(ctx, project, "After"))
	require.NoError(t, h.store.SetTagName(ctx, tag, "new"))
	require.NoError(t, h.store.SetTagCategory(ctx, tag, ""))
	require.Equal(t, []string{"name"}, updates)

	h.reopen(t)
	loaded, _ := h.store.Projects().Get(project.ID)
	require.Equal(t, "After", loaded.Name)
	loadedTag, _ := h.store.Tags().Get(tag.ID)
	require.Equal(t, "new", loadedTag.Name)
	require.Empty(t, loadedTag.Category)
}

func Test_AltName_Add_And_Remove(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Main")
	require.NoError(t, err)

	require.NoError(t, h.store.AddProjectAltName(ctx, project, "Primary"))
	require.NoError(t, h.store.AddProjectAltName(ctx, project, "Core"))
	require.Equal(t, []string{"Core", "Primary"}, project.AltNames)

	require.ErrorIs(t, h.store.DeleteProjectAltName(ctx, project, "missing"), domain.ErrNotFound)
	require.NoError(t, h.store.DeleteProjectAltName(ctx, project, "Primary"))

	h.reopen(t)
	loaded, _ := h.store.Projects().Get(project.ID)
	require.Equal(t, []string{"Core"}, loaded.AltNames)
}

func Test_DeleteDocument_Duplicate_Association_Is_Inconsistent_And_Rolls_Back(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Dup")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	doc, err := h.store.AddDocumentString(ctx, owner, "https://example.com/x")
	require.NoError(t, err)

	// A second ownership row for the same document, as prior corruption
	// would leave it.
	h.execSQL(t, "INSERT INTO project_document (project_id, document_id) VALUES (?, ?)",
		project.ID, doc.ID)

	err = h.store.DeleteDocument(ctx, doc, owner)
	require.ErrorIs(t, err, domain.ErrInconsistent)

	// Row deletions rolled back; memory untouched.
	require.True(t, project.Documents.Contains(doc.ID))
	h.reopen(t)
	loaded, ok := h.store.Projects().Get(project.ID)
	require.True(t, ok)
	require.True(t, loaded.Documents.Contains(doc.ID))
}

func Test_DeleteProject_Residual_Association_Is_Inconsistent_And_Rolls_Back(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Ghost")
	require.NoError(t, err)

	// An ownership row the in-memory model knows nothing about.
	h.execSQL(t, "INSERT INTO project_document (project_id, document_id) VALUES (?, ?)",
		project.ID, 777)

	err = h.store.DeleteProject(ctx, project)
	require.ErrorIs(t, err, domain.ErrInconsistent)

	require.True(t, h.store.Projects().Contains(project.ID))
	h.reopen(t)
	require.True(t, h.store.Projects().Contains(project.ID), "project row should survive the rollback")
}

func Test_DeleteTag_Residual_Association_Is_Inconsistent_And_Rolls_Back(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	tag, err := h.store.AddTag(ctx, "haunted", "")
	require.NoError(t, err)

	h.execSQL(t, "INSERT INTO tag_document (tag_id, document_id) VALUES (?, ?)",
		tag.ID, 777)

	err = h.store.DeleteTag(ctx, tag)
	require.ErrorIs(t, err, domain.ErrInconsistent)

	require.True(t, h.store.Tags().Contains(tag.ID))
	h.reopen(t)
	require.True(t, h.store.Tags().Contains(tag.ID), "tag row should survive the rollback")
}

func Test_InitNew_Failed_Database_Create_Leaves_Directory_Retryable(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefs := jsonfile.NewPreferencesRepository(filepath.Join(t.TempDir(), "p.json"), logger)
	root := t.TempDir()

	// A stray database without an identity file makes creation fail after
	// the identity write.
	require.NoError(t, os.WriteFile(filepath.Join(root, store.DatabaseFilename), []byte("stray"), 0o644))

	s := store.New(prefs, logger)
	err := s.InitNew(t.Context(), root)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.False(t, s.Initialized())

	_, statErr := os.Stat(filepath.Join(root, "mossy_config.json"))
	require.True(t, os.IsNotExist(statErr), "identity file should be cleaned up")

	// Clearing the stray database makes the same directory creatable.
	require.NoError(t, os.Remove(filepath.Join(root, store.DatabaseFilename)))
	require.NoError(t, s.InitNew(t.Context(), root))
	s.Deinit()
}

func Test_CoverDocument_Resolves_By_Id_And_Tolerates_Dangling(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := t.Context()

	project, err := h.store.AddProject(ctx, "Covers")
	require.NoError(t, err)
	owner := models.ProjectOwner(project.ID)

	doc, err := h.store.AddDocumentString(ctx, owner, "https://example.com/cover")
	require.NoError(t, err)

	h.execSQL(t, "UPDATE projects SET cover_document_id = ? WHERE project_id = ?",
		doc.ID, project.ID)
	h.reopen(t)

	cover, ok := h.store.CoverDocument(owner)
	require.True(t, ok)
	require.Equal(t, doc.ID, cover.ID)

	// Dangling id resolves to no cover, never an error.
	h.execSQL(t, "UPDATE projects SET cover_document_id = 999 WHERE project_id = ?", project.ID)
	h.reopen(t)

	_, ok = h.store.CoverDocument(owner)
	require.False(t, ok)

	_, ok = h.store.CoverDocument(models.TagOwner(42))
	require.False(t, ok)
}

func Test_Mutating_While_Uninitialized_Panics(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefs := jsonfile.NewPreferencesRepository(filepath.Join(t.TempDir(), "p.json"), logger)
	s := store.New(prefs, logger)

	require.Panics(t, func() { _, _ = s.AddProject(t.Context(), "x") })
}

func Test_Open_Remembers_Last_Store_Path(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefs, err := jsonfile.NewPreferencesRepository(h.prefs, logger).Load()
	require.NoError(t, err)
	require.Equal(t, h.root, prefs.LastStorePath)
}
