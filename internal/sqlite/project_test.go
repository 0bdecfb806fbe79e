package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/domain/project"
	"github.com/inkforge/docsync/internal/repository"
	"github.com/stretchr/testify/require"
)

func mustCreateProject(t *testing.T, repo *ProjectRepository, tenantID, id, name string, createdAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), tenantID, &project.Project{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	mustCreateProject(t, repo, "tenant1", "p1", "Website Redesign", time.Now())

	proj, err := repo.Get(ctx, "tenant1", "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", proj.ID)
	require.Equal(t, "Website Redesign", proj.Name)
	require.Equal(t, "tenant1", proj.TenantID)
}

func TestProjectRepository_Get_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)

	mustCreateProject(t, repo, "tenant1", "p1", "Mine", time.Now())

	_, err := repo.Get(context.Background(), "tenant2", "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_Create_Duplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)

	mustCreateProject(t, repo, "tenant1", "p1", "First", time.Now())

	err := repo.Create(context.Background(), "tenant1", &project.Project{
		ID:        "p1",
		Name:      "Second",
		CreatedAt: time.Now(),
	})
	require.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestProjectRepository_GetDefault(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.GetDefault(ctx, "tenant1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	base := time.Now().Add(-time.Hour)
	mustCreateProject(t, repo, "tenant1", "older", "Older", base)
	mustCreateProject(t, repo, "tenant1", "newer", "Newer", base.Add(time.Minute))

	proj, err := repo.GetDefault(ctx, "tenant1")
	require.NoError(t, err)
	require.Equal(t, "older", proj.ID)
}

func TestProjectRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	mustCreateProject(t, repo, "tenant1", "p1", "First", base)
	mustCreateProject(t, repo, "tenant1", "p2", "Second", base.Add(time.Minute))
	mustCreateProject(t, repo, "tenant2", "other", "Other tenant", base)

	require.NoError(t, docs.Create(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeRequirements,
		RelPath:       "p1/requirements.md",
		ModifiedStamp: 100,
		Checksum:      "abc",
		SizeBytes:     5,
	}))
	require.NoError(t, docs.Create(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		RelPath:       "p1/design.md",
		ModifiedStamp: 200,
		Checksum:      "def",
		SizeBytes:     7,
	}))

	summaries, err := repo.List(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest project first.
	require.Equal(t, "p2", summaries[0].ID)
	require.Equal(t, 0, summaries[0].DocumentCount)

	require.Equal(t, "p1", summaries[1].ID)
	require.Equal(t, 2, summaries[1].DocumentCount)
	require.Equal(t, int64(200), summaries[1].LastModifiedStamp)
}
