package models

// UserPreferences is the process-wide user settings blob, persisted as a
// single JSON file. Field tags match the existing on-disk format.
type UserPreferences struct {
	AutoOpenLastStore bool   `json:"AutoOpenLastDatabase"`
	LastStorePath     string `json:"LastDatabaseFolderPath"`
}

// DefaultPreferences returns the preferences written on first run.
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{AutoOpenLastStore: true}
}
