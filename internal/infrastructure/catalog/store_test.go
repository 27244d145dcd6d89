package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorlens/backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	return store
}

func TestAddBusiness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	business, err := store.AddBusiness(ctx, "Hydro Quebec")
	require.NoError(t, err)
	require.NotNil(t, business)
	assert.Equal(t, "Hydro Quebec", business.Name)
	assert.NotZero(t, business.ID)

	// The business name becomes an implicit case-insensitive keyword
	catalog, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Hydro Quebec", catalog[0].Keyword)
	assert.False(t, catalog[0].CaseSensitive)
	assert.Equal(t, domain.MatchTypeExact, catalog[0].MatchType)
	assert.Equal(t, business.ID, catalog[0].BusinessID)
}

func TestAddBusiness_Duplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddBusiness(ctx, "Bell Canada")
	require.NoError(t, err)

	_, err = store.AddBusiness(ctx, "Bell Canada")
	assert.ErrorIs(t, err, domain.ErrDuplicateBusiness)
}

func TestAddBusiness_EmptyName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AddBusiness(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAddKeyword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	business, err := store.AddBusiness(ctx, "Hydro Quebec")
	require.NoError(t, err)

	require.NoError(t, store.AddKeyword(ctx, business.ID, "HQ", true, domain.MatchTypeExact))

	catalog, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	// Snapshot is ordered by business name then keyword
	assert.Equal(t, "HQ", catalog[0].Keyword)
	assert.True(t, catalog[0].CaseSensitive)
	assert.Equal(t, "Hydro Quebec", catalog[1].Keyword)
}

func TestAddKeyword_UnknownBusiness(t *testing.T) {
	store := newTestStore(t)

	err := store.AddKeyword(context.Background(), 999, "ghost", false, domain.MatchTypeExact)
	assert.ErrorIs(t, err, domain.ErrBusinessNotFound)
}

func TestDeleteBusiness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	business, err := store.AddBusiness(ctx, "Videotron")
	require.NoError(t, err)
	require.NoError(t, store.AddKeyword(ctx, business.ID, "videotron ltee", false, domain.MatchTypeFuzzy))

	require.NoError(t, store.DeleteBusiness(ctx, business.ID))

	catalog, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)

	assert.ErrorIs(t, store.DeleteBusiness(ctx, business.ID), domain.ErrBusinessNotFound)
}

func TestIncrementUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	business, err := store.AddBusiness(ctx, "Bell Canada")
	require.NoError(t, err)

	require.NoError(t, store.IncrementUsage(ctx, business.ID, "Bell Canada"))
	require.NoError(t, store.IncrementUsage(ctx, business.ID, "Bell Canada"))

	var record KeywordRecord
	require.NoError(t, store.db.Where("business_id = ?", business.ID).First(&record).Error)
	assert.Equal(t, int64(2), record.UsageCount)
	assert.NotNil(t, record.LastUsedAt)

	assert.ErrorIs(t, store.IncrementUsage(ctx, business.ID, "never registered"), domain.ErrBusinessNotFound)
}

func TestSnapshot_Ordering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Videotron", "Bell Canada", "Hydro Quebec"} {
		_, err := store.AddBusiness(ctx, name)
		require.NoError(t, err)
	}

	catalog, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "Bell Canada", catalog[0].BusinessName)
	assert.Equal(t, "Hydro Quebec", catalog[1].BusinessName)
	assert.Equal(t, "Videotron", catalog[2].BusinessName)
}

func TestProjectsAndCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddProject(ctx, "2024 Renovation", "house receipts")
	require.NoError(t, err)
	_, err = store.AddCategory(ctx, "Utilities", "UTIL")
	require.NoError(t, err)

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "2024 Renovation", projects[0].Name)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "UTIL", categories[0].Code)
}
