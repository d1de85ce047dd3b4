package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// No foreign-key constraints are declared: the store enforces
// referential integrity manually, and repair/inspection tooling outside
// this core can read the raw tables freely.
const schemaSQL = `
CREATE TABLE projects (
	project_id			INTEGER NOT NULL PRIMARY KEY,
	name				TEXT	NOT NULL,
	alt_names			TEXT,
	cover_document_id	INTEGER,
	flags				INTEGER,
	date_created		TEXT	NOT NULL
);

CREATE TABLE documents (
	document_id			INTEGER NOT NULL PRIMARY KEY,
	path				TEXT	NOT NULL,
	flags				INTEGER,
	date_created		TEXT	NOT NULL
);

CREATE TABLE tags (
	tag_id				INTEGER NOT NULL PRIMARY KEY,
	name				TEXT	NOT NULL,
	category			TEXT	NOT NULL,
	cover_document_id	INTEGER,
	color				TEXT,
	flags				INTEGER,
	date_created		TEXT	NOT NULL
);

CREATE TABLE project_tag (
	project_id			INTEGER NOT NULL,
	tag_id				INTEGER NOT NULL
);

CREATE TABLE project_document (
	project_id			INTEGER NOT NULL,
	document_id			INTEGER NOT NULL
);

CREATE TABLE tag_document (
	tag_id				INTEGER NOT NULL,
	document_id			INTEGER NOT NULL
);
`

func createSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	stmt := fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}
