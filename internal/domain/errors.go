package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for precondition failures - use with errors.Is().
// These are reported to the caller before any state is mutated.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAlreadyLinked = errors.New("already linked")
	ErrNotLinked     = errors.New("not linked")
	ErrNotEmpty      = errors.New("not empty")
)

// Sentinel errors for data-integrity failures.
var (
	// ErrInconsistent means a post-condition check failed after a write that
	// should have been impossible to fail. The enclosing transaction is always
	// rolled back and the error is surfaced loudly.
	ErrInconsistent = errors.New("store inconsistent")

	// ErrCorrupt means a required column was null or a stored value could not
	// be reconstructed where the schema disallows it.
	ErrCorrupt = errors.New("store corrupt")
)

// Sentinel errors for document ingest and rename.
var (
	ErrUnsupportedType     = errors.New("unsupported document type")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidShortcut     = errors.New("invalid internet shortcut")
	ErrSourceInsideStore   = errors.New("source is inside the store directory")
)

// StoreError wraps a database failure with the operation and target that
// caused it.
type StoreError struct {
	Op  string // operation, e.g. "add project"
	ID  int64  // target entity id, 0 when not applicable
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s (id=%d): %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure with the operation and path that
// caused it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
