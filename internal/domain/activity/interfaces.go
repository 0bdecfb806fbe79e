package activity

import "context"

// ListOptions filters activity listings.
type ListOptions struct {
	ProjectID string
	Types     []EntryType
	Limit     int
}

// Repository manages activity log persistence.
type Repository interface {
	Log(ctx context.Context, tenantID string, entry *Entry) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]Entry, error)
}
