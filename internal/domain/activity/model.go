package activity

import "time"

// EntryType classifies an activity log entry.
type EntryType string

const (
	TypeProjectCreated   EntryType = "project_created"
	TypeDocumentSaved    EntryType = "document_saved"
	TypeDocumentRestored EntryType = "document_restored"
	TypeFileChanged      EntryType = "file_changed"
)

// Entry is one row in a project's activity log.
type Entry struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"tenant_id"`
	ProjectID    string    `json:"project_id"`
	DocumentType *string   `json:"document_type,omitempty"`
	Type         EntryType `json:"activity_type"`
	Summary      string    `json:"summary"`
	Stamp        int64     `json:"timestamp"`
	CreatedAt    time.Time `json:"created_at"`
}
