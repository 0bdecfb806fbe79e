package document

import (
	"fmt"
	"path"
)

// Type identifies one of the per-project markdown documents.
type Type string

const (
	TypeRequirements Type = "requirements"
	TypeDesign       Type = "design"
	TypeTasks        Type = "tasks"
)

// ParseType validates a document type received from the outside.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeRequirements, TypeDesign, TypeTasks:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, s)
}

// FileName returns the on-disk file name for the document type.
func (t Type) FileName() string {
	return string(t) + ".md"
}

// RelPath returns the store-relative path of a project document.
func RelPath(projectID string, docType Type) string {
	return path.Join(projectID, docType.FileName())
}

// Document is the full content of a project document plus its version stamp.
type Document struct {
	ProjectID     string `json:"project_id"`
	Type          Type   `json:"document_type"`
	Content       string `json:"content"`
	ModifiedStamp int64  `json:"last_modified_timestamp"`
}

// Meta is the persisted version metadata for a document. The canonical
// content lives on the filesystem at RelPath; the stamp here is the
// value compared on every save.
type Meta struct {
	TenantID      string
	ProjectID     string
	Type          Type
	RelPath       string
	ModifiedStamp int64
	Checksum      string
	SizeBytes     int64
}
