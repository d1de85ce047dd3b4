package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Environment string
	LogDir      string
	PrefsPath   string // user preferences file (last opened store, auto-open)
	// Debug flags
	Debug bool // Enables DEBUG level logging
}

func Load() *Config {
	env := getEnv("MOSSY_ENV", "dev")

	return &Config{
		Environment: env,
		LogDir:      getEnv("MOSSY_LOG_DIR", "logs"),
		PrefsPath:   getEnv("MOSSY_PREFS_PATH", defaultPrefsPath()),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("MOSSY_DEBUG", getDefaultDebug(env)) == "true",
	}
}

// defaultPrefsPath places the preferences file under the OS user config
// directory, falling back to the working directory when none is available.
func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "user_settings.json"
	}
	return filepath.Join(dir, "mossy", "user_settings.json")
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
