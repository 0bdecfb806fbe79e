package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkforge/docsync/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends an activity entry
func (r *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.Entry) error {
	query := `
		INSERT INTO activity_log (tenant_id, project_id, doc_type, activity_type, summary, stamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tenantID,
		entry.ProjectID,
		entry.DocumentType,
		string(entry.Type),
		entry.Summary,
		entry.Stamp,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	return nil
}

// LogForProject appends an entry resolving the tenant from the project
// registry. Used by the file watcher, which observes paths without a
// tenant in hand.
func (r *ActivityRepository) LogForProject(ctx context.Context, projectID string, entry *activity.Entry) error {
	query := `
		INSERT INTO activity_log (tenant_id, project_id, doc_type, activity_type, summary, stamp)
		SELECT tenant_id, ?, ?, ?, ?, ?
		FROM projects
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		projectID,
		entry.DocumentType,
		string(entry.Type),
		entry.Summary,
		entry.Stamp,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity for project: %w", err)
	}

	return nil
}

// List returns activity entries, newest first
func (r *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT id, tenant_id, project_id, doc_type, activity_type, summary, stamp, created_at
		FROM activity_log
		WHERE tenant_id = ?
	`
	args := []any{tenantID}

	if opts.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += " AND activity_type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY stamp DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.ProjectID,
			&entry.DocumentType,
			&entry.Type,
			&entry.Summary,
			&entry.Stamp,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
