// Package fsops performs the filesystem side effects that accompany store
// mutations: copying and linking ingested files, recycling deleted ones,
// and compensating for partial failures between the database and the disk.
package fsops

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/services"
)

// On-disk layout under the store root.
const (
	dataDir  = "data"
	trashDir = "trash"

	projectFolderPrefix = "PRJ_"
	tagFolderPrefix     = "TAG_"
)

// Manager performs file operations relative to one store root.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager rooted at the store directory.
func NewManager(root string, logger *slog.Logger) *Manager {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Manager{root: root, logger: logger}
}

// Root returns the store root directory.
func (m *Manager) Root() string { return m.root }

// ResolveAbsolute resolves a document path to an absolute filesystem path.
// File-type values are relative to the store root; Link values are already
// absolute and used verbatim.
func (m *Manager) ResolveAbsolute(path models.DocumentPath) string {
	if path.Kind == models.PathFile {
		return filepath.Join(m.root, path.Value)
	}
	return path.Value
}

// ownerDir returns the managed data directory for a container, relative to
// the store root.
func ownerDir(owner models.OwnerRef) string {
	prefix := projectFolderPrefix
	if owner.Kind == models.OwnerTag {
		prefix = tagFolderPrefix
	}
	return filepath.Join(dataDir, fmt.Sprintf("%s%d", prefix, owner.ID))
}

// IngestFile classifies source and performs any required copy. It returns
// the document path to persist and, when a copy happened, the absolute
// target path for compensation should the subsequent database insert fail.
//
// Directories are always treated as Link regardless of transfer mode.
// .url files become Url documents after shortcut validation; .lnk files are
// rejected outright.
func (m *Manager) IngestFile(mode services.TransferMode, source string, owner models.OwnerRef) (models.DocumentPath, string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return models.DocumentPath{}, "", &domain.IOError{Op: "stat", Path: source, Err: err}
	}

	// Link values must stay resolvable regardless of the process working
	// directory on later runs.
	abs, err := filepath.Abs(source)
	if err != nil {
		return models.DocumentPath{}, "", &domain.IOError{Op: "resolve", Path: source, Err: err}
	}

	if info.IsDir() {
		return models.NewPath(models.PathLink, abs), "", nil
	}

	ext := filepath.Ext(source)
	switch {
	case ext == "":
		return models.DocumentPath{}, "", fmt.Errorf("%s has no file extension: %w", source, domain.ErrUnsupportedFileType)
	case strings.EqualFold(ext, ".lnk"):
		return models.DocumentPath{}, "", fmt.Errorf("shortcut (.lnk) files: %w", domain.ErrUnsupportedFileType)
	case strings.EqualFold(ext, ".url"):
		content, err := os.ReadFile(source)
		if err != nil {
			return models.DocumentPath{}, "", &domain.IOError{Op: "read", Path: source, Err: err}
		}
		address, err := ParseInternetShortcut(string(content))
		if err != nil {
			return models.DocumentPath{}, "", err
		}
		return models.NewPath(models.PathURL, address), "", nil
	}

	if mode == services.TransferLink {
		return models.NewPath(models.PathLink, abs), "", nil
	}

	rel, copied, err := m.copyIntoStore(abs, owner)
	if err != nil {
		return models.DocumentPath{}, "", err
	}
	return models.NewPath(models.PathFile, rel), copied, nil
}

// copyIntoStore duplicates absSource into the owner's managed data
// directory, resolving target filename collisions with a _(N) suffix.
func (m *Manager) copyIntoStore(absSource string, owner models.OwnerRef) (string, string, error) {
	if insideDir(m.root, absSource) {
		return "", "", fmt.Errorf("%s: %w", absSource, domain.ErrSourceInsideStore)
	}

	relDir := ownerDir(owner)
	if err := os.MkdirAll(filepath.Join(m.root, relDir), 0o755); err != nil {
		return "", "", &domain.IOError{Op: "create directory", Path: relDir, Err: err}
	}

	rel := uniqueTarget(m.root, relDir, filepath.Base(absSource))
	abs := filepath.Join(m.root, rel)

	if err := copyFile(absSource, abs); err != nil {
		return "", "", err
	}

	return rel, abs, nil
}

// RemoveCopied deletes a file copied by a failed ingest. Best-effort: the
// primary operation has already failed for its own reason, so a failure
// here is logged, not re-raised.
func (m *Manager) RemoveCopied(abs string) {
	if err := os.Remove(abs); err != nil {
		m.logger.Error("failed to remove copied file during compensation",
			"path", abs,
			"error", err,
		)
	}
}

// Recycle moves the file into the store's trash directory rather than
// permanently erasing it. A missing or inaccessible file is an IOError and
// callers treat it as fatal to the enclosing transaction.
func (m *Manager) Recycle(abs string) error {
	if _, err := os.Stat(abs); err != nil {
		return &domain.IOError{Op: "recycle", Path: abs, Err: err}
	}

	dir := filepath.Join(m.root, trashDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.IOError{Op: "create directory", Path: dir, Err: err}
	}

	rel := uniqueTarget(m.root, trashDir, filepath.Base(abs))
	if err := os.Rename(abs, filepath.Join(m.root, rel)); err != nil {
		return &domain.IOError{Op: "recycle", Path: abs, Err: err}
	}

	return nil
}

// ParseInternetShortcut validates .url file content of the single-line
// "[InternetShortcut]" / "URL=<value>" shape and returns the address.
// The address must be an absolute http or https URL.
func ParseInternetShortcut(content string) (string, error) {
	parts := strings.Split(content, "URL=")
	if len(parts) != 2 {
		return "", fmt.Errorf("expected a single URL entry: %w", domain.ErrInvalidShortcut)
	}

	header := strings.TrimSpace(parts[0])
	address := strings.TrimSpace(parts[1])
	if header != "[InternetShortcut]" {
		return "", fmt.Errorf("missing [InternetShortcut] header: %w", domain.ErrInvalidShortcut)
	}
	if !models.IsValidURL(address) {
		return "", fmt.Errorf("%q is not an absolute http(s) address: %w", address, domain.ErrInvalidShortcut)
	}

	return address, nil
}

// uniqueTarget returns a store-relative path in relDir for filename,
// appending _(N) before the extension until the target is free.
func uniqueTarget(root, relDir, filename string) string {
	rel := filepath.Join(relDir, filename)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(root, rel)); os.IsNotExist(err) {
			return rel
		}
		rel = filepath.Join(relDir, fmt.Sprintf("%s_(%d)%s", stem, n, ext))
	}
}

// insideDir reports whether path is inside dir.
func insideDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &domain.IOError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()

	// O_EXCL: the caller has already picked a collision-free target.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &domain.IOError{Op: "copy", Path: dst, Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return &domain.IOError{Op: "copy", Path: dst, Err: err}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return &domain.IOError{Op: "copy", Path: dst, Err: err}
	}

	return nil
}
