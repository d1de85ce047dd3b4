// Package identity resolves and validates the store-identity file: a
// versioned JSON blob marking a directory as a store root.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/Yuuso/mossy/internal/domain"
)

// CurrentVersion is stored in every identity file. There is no migration
// engine; the version is written once and never changed.
const CurrentVersion = 1

// Filename is the identity file's fixed name inside the store root.
const Filename = "mossy_config.json"

// Data is the identity file's content. Field tags match the existing
// on-disk format.
type Data struct {
	Version     int       `json:"MossyVersion"`
	ConfigID    string    `json:"ConfigId"`
	DateCreated time.Time `json:"DateCreated"`
}

// Resolver creates and validates store roots.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// InitNew marks dir as a new store root by writing a fresh identity file.
// Fails with domain.ErrAlreadyExists when one is already present.
// Returns the validated root directory.
func (r *Resolver) InitNew(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", &domain.IOError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory: %w", dir, domain.ErrValidation)
	}

	path := filepath.Join(dir, Filename)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("store identity %s: %w", path, domain.ErrAlreadyExists)
	}

	data := Data{
		Version:     CurrentVersion,
		ConfigID:    uuid.NewString(),
		DateCreated: time.Now(),
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode store identity: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return "", &domain.IOError{Op: "write", Path: path, Err: err}
	}

	r.logger.Info("store identity created", "id", data.ConfigID, "root", dir)
	return dir, nil
}

// InitOpen validates the identity file at target, which may be the store
// root directory or the identity file itself. Returns the store root.
func (r *Resolver) InitOpen(target string) (string, error) {
	path := target
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		path = filepath.Join(target, Filename)
	}

	if !strings.HasSuffix(path, Filename) {
		return "", fmt.Errorf("%s is not a store identity file: %w", path, domain.ErrValidation)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.IOError{Op: "read", Path: path, Err: err}
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("store identity %s: %v: %w", path, err, domain.ErrCorrupt)
	}
	if data.Version != CurrentVersion {
		return "", fmt.Errorf("store identity %s: unsupported version %d: %w", path, data.Version, domain.ErrCorrupt)
	}

	r.logger.Info("store identity opened", "id", data.ConfigID)
	return filepath.Dir(path), nil
}
