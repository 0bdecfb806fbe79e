package project

import "time"

// Project is a container for a fixed set of markdown documents.
type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is a lightweight representation for listing.
type Summary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	DocumentCount     int       `json:"document_count"`
	LastModifiedStamp int64     `json:"last_modified_timestamp"`
	CreatedAt         time.Time `json:"created_at"`
}
