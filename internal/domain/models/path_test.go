package models

import (
	"path/filepath"
	"testing"
)

func TestParsePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want DocumentPath
	}{
		{
			name: "file path",
			raw:  "File:data/PRJ_3/notes.txt",
			want: DocumentPath{Kind: PathFile, Value: "data/PRJ_3/notes.txt"},
		},
		{
			name: "link path",
			raw:  "Link:/home/user/archive/report.pdf",
			want: DocumentPath{Kind: PathLink, Value: "/home/user/archive/report.pdf"},
		},
		{
			name: "url keeps colons inside the value",
			raw:  "Url:https://example.com:8080/page",
			want: DocumentPath{Kind: PathURL, Value: "https://example.com:8080/page"},
		},
		{
			name: "unknown tag carries the raw string",
			raw:  "Bogus:stuff",
			want: DocumentPath{Kind: PathUnknown, Value: "Bogus:stuff"},
		},
		{
			name: "no separator carries the raw string",
			raw:  "just-a-value",
			want: DocumentPath{Kind: PathUnknown, Value: "just-a-value"},
		},
		{
			name: "empty value",
			raw:  "File:",
			want: DocumentPath{Kind: PathFile, Value: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParsePath(tt.raw)
			if got != tt.want {
				t.Fatalf("ParsePath(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDocumentPath_Raw_RoundTrips(t *testing.T) {
	t.Parallel()

	paths := []DocumentPath{
		NewPath(PathFile, "data/TAG_1/photo.jpg"),
		NewPath(PathLink, "/mnt/share/video.mkv"),
		NewPath(PathURL, "https://example.com/a:b:c"),
	}

	for _, p := range paths {
		if got := ParsePath(p.Raw()); got != p {
			t.Errorf("ParsePath(Raw()) = %+v, want %+v", got, p)
		}
	}
}

func TestDocumentPath_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path DocumentPath
		want string
	}{
		{
			name: "file shows base name",
			path: NewPath(PathFile, filepath.Join("data", "PRJ_7", "thesis.pdf")),
			want: "thesis.pdf",
		},
		{
			name: "link shows parent and file",
			path: NewPath(PathLink, filepath.Join(string(filepath.Separator), "home", "user", "docs", "plan.md")),
			want: "docs/plan.md",
		},
		{
			name: "url strips scheme",
			path: NewPath(PathURL, "https://example.com/articles/go"),
			want: "example.com/articles/go",
		},
		{
			name: "unknown shows the raw value",
			path: DocumentPath{Kind: PathUnknown, Value: "garbage"},
			want: "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.path.DisplayName(); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://example.com:8443/x",
	}
	invalid := []string{
		"",
		"example.com",
		"ftp://example.com/file",
		"https://",
		"/home/user/file.txt",
	}

	for _, s := range valid {
		if !IsValidURL(s) {
			t.Errorf("IsValidURL(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidURL(s) {
			t.Errorf("IsValidURL(%q) = true, want false", s)
		}
	}
}
