package identity

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yuuso/mossy/internal/domain"
)

func testResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_InitNew_Writes_Identity_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := testResolver()

	root, err := r.InitNew(dir)
	require.NoError(t, err)
	require.Equal(t, dir, root)

	raw, err := os.ReadFile(filepath.Join(dir, Filename))
	require.NoError(t, err)

	var data Data
	require.NoError(t, json.Unmarshal(raw, &data))
	require.Equal(t, CurrentVersion, data.Version)
	require.NotEmpty(t, data.ConfigID)
	require.False(t, data.DateCreated.IsZero())
}

func Test_InitNew_Fails_When_Identity_Already_Present(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := testResolver()

	_, err := r.InitNew(dir)
	require.NoError(t, err)

	_, err = r.InitNew(dir)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func Test_InitNew_Fails_When_Directory_Missing(t *testing.T) {
	t.Parallel()

	_, err := testResolver().InitNew(filepath.Join(t.TempDir(), "nope"))

	var ioErr *domain.IOError
	require.ErrorAs(t, err, &ioErr)
}

func Test_InitOpen_Accepts_Directory_Or_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := testResolver()
	_, err := r.InitNew(dir)
	require.NoError(t, err)

	root, err := r.InitOpen(dir)
	require.NoError(t, err)
	require.Equal(t, dir, root)

	root, err = r.InitOpen(filepath.Join(dir, Filename))
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

func Test_InitOpen_Rejects_Foreign_Filename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	other := filepath.Join(dir, "something.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))

	_, err := testResolver().InitOpen(other)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func Test_InitOpen_Rejects_Corrupt_Content(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := testResolver().InitOpen(dir)
	require.ErrorIs(t, err, domain.ErrCorrupt)
}

func Test_InitOpen_Rejects_Version_Mismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw, err := json.Marshal(Data{Version: CurrentVersion + 1, ConfigID: "x"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), raw, 0o644))

	_, err = testResolver().InitOpen(dir)
	require.ErrorIs(t, err, domain.ErrCorrupt)
	require.False(t, errors.Is(err, domain.ErrValidation))
}
