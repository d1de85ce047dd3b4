// Package jsonfile persists the process-wide user preferences as a single
// JSON file under the user's config directory.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// FilePreferencesRepository implements the PreferencesRepository interface.
type FilePreferencesRepository struct {
	path   string
	logger *slog.Logger
}

// NewPreferencesRepository creates a repository storing at path.
func NewPreferencesRepository(path string, logger *slog.Logger) repositories.PreferencesRepository {
	return &FilePreferencesRepository{path: path, logger: logger}
}

// Load reads the stored preferences. A missing file yields defaults; an
// unreadable blob is reset to defaults rather than failing startup.
func (r *FilePreferencesRepository) Load() (*models.UserPreferences, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		prefs := models.DefaultPreferences()
		if err := r.Save(prefs); err != nil {
			return nil, err
		}
		return prefs, nil
	}
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: r.path, Err: err}
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		r.logger.Warn("user preferences unreadable, resetting to defaults",
			"path", r.path,
			"error", err,
		)
		prefs := models.DefaultPreferences()
		if err := r.Save(prefs); err != nil {
			return nil, err
		}
		return prefs, nil
	}

	return &prefs, nil
}

// Save writes the preferences, creating the parent directory when needed.
func (r *FilePreferencesRepository) Save(prefs *models.UserPreferences) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return &domain.IOError{Op: "create directory", Path: filepath.Dir(r.path), Err: err}
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(raw)); err != nil {
		return &domain.IOError{Op: "write", Path: r.path, Err: err}
	}

	return nil
}
