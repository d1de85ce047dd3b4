package repositories

import (
	"github.com/Yuuso/mossy/internal/domain/models"
)

// PreferencesRepository persists the process-wide user preferences blob.
type PreferencesRepository interface {
	// Load reads the stored preferences, returning defaults when nothing has
	// been written yet.
	Load() (*models.UserPreferences, error)

	// Save writes the preferences.
	Save(prefs *models.UserPreferences) error
}
