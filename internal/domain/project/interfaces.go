package project

import "context"

// Repository manages project persistence.
type Repository interface {
	Create(ctx context.Context, tenantID string, proj *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	GetDefault(ctx context.Context, tenantID string) (*Project, error)
	List(ctx context.Context, tenantID string) ([]Summary, error)
}
