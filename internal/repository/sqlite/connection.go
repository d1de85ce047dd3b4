package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// schemaVersion is recorded in PRAGMA user_version on creation. There is no
// migration engine; the version is stored but never changed.
const schemaVersion = 1

// timeFormat is the stored text form of date_created columns.
const timeFormat = time.RFC3339Nano

// RepositoryConfig holds shared dependencies for repository implementations.
type RepositoryConfig struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Create creates a new database file at path and installs the schema.
// Fails with domain.ErrAlreadyExists when a database already exists there.
func Create(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("database %s: %w", path, domain.ErrAlreadyExists)
	}

	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		removeDatabaseFiles(path)
		return nil, err
	}

	return db, nil
}

// removeDatabaseFiles deletes a partially created database along with the
// -wal/-shm sidecars journal_mode=WAL may have left next to it.
func removeDatabaseFiles(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

// Open opens an existing database file at path.
// Fails with domain.ErrNotFound when no database exists there.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, domain.ErrNotFound)
	}
	return open(ctx, path)
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection per open store; operations are never interleaved.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	return nil
}

// UserVersion reads the stored schema version.
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// GetExecutor returns the appropriate query executor for the context: the
// transaction when one is present, the plain handle otherwise. This lets
// repositories participate automatically in the store's transactions.
func GetExecutor(ctx context.Context, db *sql.DB) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return db
}
