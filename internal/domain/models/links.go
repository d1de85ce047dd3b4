package models

import (
	"fmt"
)

// OwnerKind identifies the container side of a document link.
type OwnerKind int

const (
	OwnerProject OwnerKind = iota
	OwnerTag
)

func (k OwnerKind) String() string {
	if k == OwnerTag {
		return "tag"
	}
	return "project"
}

// OwnerRef names a container by kind and identifier.
type OwnerRef struct {
	Kind OwnerKind
	ID   int64
}

// ProjectOwner returns an OwnerRef for a project.
func ProjectOwner(id int64) OwnerRef { return OwnerRef{Kind: OwnerProject, ID: id} }

// TagOwner returns an OwnerRef for a tag.
func TagOwner(id int64) OwnerRef { return OwnerRef{Kind: OwnerTag, ID: id} }

// ProjectTagLink is one row of the project<->tag association table. The
// storage engine declares no foreign keys, so links are modeled as explicit
// values with validated constructors and integrity is enforced around them.
type ProjectTagLink struct {
	ProjectID int64
	TagID     int64
}

// NewProjectTagLink validates both identifiers before forming a link.
func NewProjectTagLink(projectID, tagID int64) (ProjectTagLink, error) {
	if projectID <= 0 {
		return ProjectTagLink{}, fmt.Errorf("project tag link: invalid project id %d", projectID)
	}
	if tagID <= 0 {
		return ProjectTagLink{}, fmt.Errorf("project tag link: invalid tag id %d", tagID)
	}
	return ProjectTagLink{ProjectID: projectID, TagID: tagID}, nil
}

// DocumentLink is one row of a container->document association table
// (project_document or tag_document depending on the owner kind).
type DocumentLink struct {
	Owner      OwnerRef
	DocumentID int64
}

// NewDocumentLink validates both identifiers before forming a link.
func NewDocumentLink(owner OwnerRef, documentID int64) (DocumentLink, error) {
	if owner.ID <= 0 {
		return DocumentLink{}, fmt.Errorf("document link: invalid %s id %d", owner.Kind, owner.ID)
	}
	if documentID <= 0 {
		return DocumentLink{}, fmt.Errorf("document link: invalid document id %d", documentID)
	}
	return DocumentLink{Owner: owner, DocumentID: documentID}, nil
}
