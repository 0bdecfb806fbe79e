package activity

import (
	"context"
	"log/slog"
)

const defaultLimit = 50

// Service exposes recent activity for projects.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Recent returns the most recent activity entries, newest first.
func (s *Service) Recent(ctx context.Context, tenantID string, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	return s.repo.List(ctx, tenantID, opts)
}
