package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/docstore"
)

type toy struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCreateAndGet(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := New[toy](store, "toys", nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, toy{Name: "ball", Count: 3})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, rec.ID)
	require.Equal(t, "ball", rec.Data.Name)
	require.Equal(t, 3, rec.Data.Count)
	require.False(t, rec.CreatedAt.IsZero())
	require.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestGetSurfacesNotFound(t *testing.T) {
	repo := New[toy](docstore.NewMemoryStore(), "toys", nil)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestListDegradesToEmpty(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := New[toy](store, "toys", nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, toy{Name: "rope"})
	require.NoError(t, err)
	require.Len(t, repo.GetAll(ctx), 1)

	store.SetFailure(docstore.ErrUnavailable)
	require.Empty(t, repo.GetAll(ctx), "outage reads as no data, not an error")
	require.Empty(t, repo.GetByField(ctx, "name", "rope"))

	store.SetFailure(nil)
	require.Len(t, repo.GetAll(ctx), 1)
}

func TestWritesSurfaceErrors(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := New[toy](store, "toys", nil)
	ctx := context.Background()

	store.SetFailure(docstore.ErrUnavailable)
	_, err := repo.Create(ctx, toy{Name: "bone"})
	require.ErrorIs(t, err, docstore.ErrUnavailable)
	require.ErrorIs(t, repo.Update(ctx, "any", map[string]any{"count": 1}), docstore.ErrUnavailable)
	require.ErrorIs(t, repo.Delete(ctx, "any"), docstore.ErrUnavailable)
}

func TestUpdateStripsReservedKeys(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := New[toy](store, "toys", nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, toy{Name: "ball", Count: 1})
	require.NoError(t, err)

	err = repo.Update(ctx, id, map[string]any{
		"count":     2,
		"id":        "forged",
		"createdAt": "1999-01-01T00:00:00Z",
		"updatedAt": "1999-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, rec.ID)
	require.Equal(t, 2, rec.Data.Count)
	require.True(t, rec.CreatedAt.After(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, rec.UpdatedAt.Before(rec.CreatedAt))
}

func TestEmptyPatchStillBumpsUpdatedAt(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := New[toy](store, "toys", nil)
	repo.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	id, err := repo.Create(ctx, toy{Name: "ball"})
	require.NoError(t, err)

	repo.now = func() time.Time { return time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Update(ctx, id, map[string]any{}))

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, rec.UpdatedAt.After(rec.CreatedAt))
}

func TestListSkipsUndecodableDocuments(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "toys", map[string]any{"name": "ball", "count": 1}, time.Now())
	require.NoError(t, err)
	_, err = store.Insert(ctx, "toys", map[string]any{"name": "rope", "count": "not-a-number"}, time.Now())
	require.NoError(t, err)

	repo := New[toy](store, "toys", nil)
	records := repo.GetAll(ctx)
	require.Len(t, records, 1)
	require.Equal(t, "ball", records[0].Data.Name)
}
