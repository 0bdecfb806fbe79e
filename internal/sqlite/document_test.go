package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/repository"
	"github.com/stretchr/testify/require"
)

func newDocRepos(t *testing.T) (*DocumentRepository, *ProjectRepository) {
	t.Helper()
	db := newTestDB(t)
	projects := NewProjectRepository(db)
	mustCreateProject(t, projects, "tenant1", "p1", "Test Project", time.Now())
	return NewDocumentRepository(db), projects
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	docs, _ := newDocRepos(t)
	ctx := context.Background()

	meta := &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeRequirements,
		RelPath:       "p1/requirements.md",
		ModifiedStamp: 100,
		Checksum:      "abc",
		SizeBytes:     12,
	}
	require.NoError(t, docs.Create(ctx, "tenant1", meta))

	got, err := docs.Get(ctx, "tenant1", "p1", document.TypeRequirements)
	require.NoError(t, err)
	require.Equal(t, "p1/requirements.md", got.RelPath)
	require.Equal(t, int64(100), got.ModifiedStamp)
	require.Equal(t, "abc", got.Checksum)
	require.Equal(t, int64(12), got.SizeBytes)
}

func TestDocumentRepository_Get_NotFound(t *testing.T) {
	docs, _ := newDocRepos(t)
	_, err := docs.Get(context.Background(), "tenant1", "p1", document.TypeDesign)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentRepository_Create_UnknownProject(t *testing.T) {
	docs, _ := newDocRepos(t)
	err := docs.Create(context.Background(), "tenant1", &document.Meta{
		ProjectID:     "ghost",
		Type:          document.TypeRequirements,
		RelPath:       "ghost/requirements.md",
		ModifiedStamp: 1,
		Checksum:      "x",
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestDocumentRepository_Create_Duplicate(t *testing.T) {
	docs, _ := newDocRepos(t)
	ctx := context.Background()

	meta := &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeTasks,
		RelPath:       "p1/tasks.md",
		ModifiedStamp: 1,
		Checksum:      "x",
	}
	require.NoError(t, docs.Create(ctx, "tenant1", meta))
	require.ErrorIs(t, docs.Create(ctx, "tenant1", meta), repository.ErrConflict)
}

func TestDocumentRepository_Update_StampMatch(t *testing.T) {
	docs, _ := newDocRepos(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		RelPath:       "p1/design.md",
		ModifiedStamp: 100,
		Checksum:      "old",
		SizeBytes:     3,
	}))

	err := docs.Update(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		ModifiedStamp: 200,
		Checksum:      "new",
		SizeBytes:     5,
	}, 100)
	require.NoError(t, err)

	got, err := docs.Get(ctx, "tenant1", "p1", document.TypeDesign)
	require.NoError(t, err)
	require.Equal(t, int64(200), got.ModifiedStamp)
	require.Equal(t, "new", got.Checksum)
}

func TestDocumentRepository_Update_StaleStamp(t *testing.T) {
	docs, _ := newDocRepos(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		RelPath:       "p1/design.md",
		ModifiedStamp: 100,
		Checksum:      "old",
	}))

	err := docs.Update(ctx, "tenant1", &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeDesign,
		ModifiedStamp: 200,
		Checksum:      "new",
	}, 99)
	require.ErrorIs(t, err, repository.ErrConflict)

	// The row is untouched after the rejected update.
	got, err := docs.Get(ctx, "tenant1", "p1", document.TypeDesign)
	require.NoError(t, err)
	require.Equal(t, int64(100), got.ModifiedStamp)
	require.Equal(t, "old", got.Checksum)
}

func TestDocumentRepository_Put_Upserts(t *testing.T) {
	docs, _ := newDocRepos(t)
	ctx := context.Background()

	meta := &document.Meta{
		ProjectID:     "p1",
		Type:          document.TypeRequirements,
		RelPath:       "p1/requirements.md",
		ModifiedStamp: 100,
		Checksum:      "v1",
		SizeBytes:     2,
	}
	require.NoError(t, docs.Put(ctx, "tenant1", meta))

	meta.ModifiedStamp = 200
	meta.Checksum = "v2"
	require.NoError(t, docs.Put(ctx, "tenant1", meta))

	got, err := docs.Get(ctx, "tenant1", "p1", document.TypeRequirements)
	require.NoError(t, err)
	require.Equal(t, int64(200), got.ModifiedStamp)
	require.Equal(t, "v2", got.Checksum)
}
