package models

import (
	"time"
)

// AltNameSeparator joins a project's alternate names into the single
// persisted column. Project names and alt names must not contain it.
const AltNameSeparator = ";"

// Document is a reference owned by exactly one container (a Project or a
// Tag). Ownership is established at creation and never reassigned.
type Document struct {
	ID        int64
	Path      DocumentPath
	Flags     int64 // reserved, currently unused
	CreatedAt time.Time
}

func (d *Document) EntityID() int64 { return d.ID }

// Tag is a cross-cutting grouping of documents, linked many-to-many with
// projects. CoverDocumentID is a non-owning reference resolved by id; a
// dangling id is a display concern, not an integrity violation.
type Tag struct {
	ID              int64
	Name            string
	Category        string
	Color           string
	CoverDocumentID int64 // 0 = none
	Flags           int64
	CreatedAt       time.Time

	Documents *Collection[*Document]
	Projects  *Collection[*Project]
}

func (t *Tag) EntityID() int64 { return t.ID }

// NewTag constructs a tag with empty collections.
func NewTag(id int64, name, category string, createdAt time.Time) *Tag {
	return &Tag{
		ID:        id,
		Name:      name,
		Category:  category,
		CreatedAt: createdAt,
		Documents: NewCollection[*Document](),
		Projects:  NewCollection[*Project](),
	}
}

// Project is a named grouping of documents with alternate display names.
type Project struct {
	ID              int64
	Name            string
	AltNames        []string
	CoverDocumentID int64 // 0 = none
	Flags           int64
	CreatedAt       time.Time

	Tags      *Collection[*Tag]
	Documents *Collection[*Document]
}

func (p *Project) EntityID() int64 { return p.ID }

// NewProject constructs a project with empty collections.
func NewProject(id int64, name string, createdAt time.Time) *Project {
	return &Project{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		Tags:      NewCollection[*Tag](),
		Documents: NewCollection[*Document](),
	}
}
