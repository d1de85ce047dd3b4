package models

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathKind discriminates where a document's content lives.
type PathKind int

const (
	// PathUnknown is never constructed intentionally; encountering it after
	// parsing signals corrupt stored data.
	PathUnknown PathKind = iota
	PathFile
	PathLink
	PathURL
)

// Serialized variant tags. These are the on-disk strings and must not change.
const (
	pathKindUnknown = "Unknown"
	pathKindFile    = "File"
	pathKindLink    = "Link"
	pathKindURL     = "Url"
)

const pathSeparator = ":"

// String returns the serialized variant tag for the kind.
func (k PathKind) String() string {
	switch k {
	case PathFile:
		return pathKindFile
	case PathLink:
		return pathKindLink
	case PathURL:
		return pathKindURL
	default:
		return pathKindUnknown
	}
}

// DocumentPath describes where a document's content lives.
//
// File values are relative to the store root, Link values are absolute
// filesystem paths, URL values are absolute http(s) addresses.
type DocumentPath struct {
	Kind  PathKind
	Value string
}

// NewPath constructs a DocumentPath for a known kind.
func NewPath(kind PathKind, value string) DocumentPath {
	return DocumentPath{Kind: kind, Value: value}
}

// ParsePath reconstructs a DocumentPath from its raw serialized form
// "<Variant>:<value>". The value may itself contain the separator; only the
// first occurrence splits. Malformed input never fails loudly: it yields a
// PathUnknown path carrying the raw string, which callers surface as a
// data-integrity smell.
func ParsePath(raw string) DocumentPath {
	tag, value, found := strings.Cut(raw, pathSeparator)
	if !found {
		return DocumentPath{Kind: PathUnknown, Value: raw}
	}
	switch tag {
	case pathKindFile:
		return DocumentPath{Kind: PathFile, Value: value}
	case pathKindLink:
		return DocumentPath{Kind: PathLink, Value: value}
	case pathKindURL:
		return DocumentPath{Kind: PathURL, Value: value}
	default:
		return DocumentPath{Kind: PathUnknown, Value: raw}
	}
}

// Raw returns the serialized form, the inverse of ParsePath for the three
// known variants.
func (p DocumentPath) Raw() string {
	return p.Kind.String() + pathSeparator + p.Value
}

// DisplayName computes the derived, non-persisted display form.
// File paths display as the base filename, Link paths as
// "<parent-directory>/<filename>", URLs as host-and-path with the scheme
// prefix stripped.
func (p DocumentPath) DisplayName() string {
	switch p.Kind {
	case PathFile:
		return filepath.Base(p.Value)
	case PathLink:
		dir, file := filepath.Split(filepath.Clean(p.Value))
		parent := filepath.Base(filepath.Clean(dir))
		if parent == "." || parent == string(filepath.Separator) {
			return file
		}
		return parent + "/" + file
	case PathURL:
		u, err := url.Parse(p.Value)
		if err != nil || u.Host == "" {
			s := strings.TrimPrefix(p.Value, "https://")
			return strings.TrimPrefix(s, "http://")
		}
		return u.Host + u.Path
	default:
		return p.Value
	}
}

// IsValidURL reports whether s is an absolute http or https address.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
