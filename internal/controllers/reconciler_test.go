package controllers

import (
	"context"
	"testing"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/amaumene/imagesearch/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem(thumb string) models.SearchItem {
	return models.NewSearchItem(models.KindImage, thumb, "site", nil)
}

func idSet(records []models.FavoriteRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.ID] = struct{}{}
	}
	return set
}

func TestStampSavedIsPure(t *testing.T) {
	a, b, c := sampleItem("https://a"), sampleItem("https://b"), sampleItem("https://c")
	a.IsSaved = true // stale flag must be overwritten
	items := []models.SearchItem{a, b, c}
	favorites := []models.FavoriteRecord{b.Record()}

	first := StampSaved(items, favorites)
	second := StampSaved(items, favorites)

	assert.Equal(t, first, second)
	assert.False(t, first[0].IsSaved)
	assert.True(t, first[1].IsSaved)
	assert.False(t, first[2].IsSaved)

	// inputs are untouched
	assert.True(t, items[0].IsSaved)
	assert.False(t, items[1].IsSaved)
	assert.Len(t, favorites, 1)
}

func TestStampSavedEmptyInputs(t *testing.T) {
	assert.Empty(t, StampSaved(nil, nil))
	stamped := StampSaved([]models.SearchItem{sampleItem("https://a")}, nil)
	require.Len(t, stamped, 1)
	assert.False(t, stamped[0].IsSaved)
}

func TestStampDoesNotWriteFavorites(t *testing.T) {
	kv := store.NewMemoryKV()
	favorites := store.NewFavoritesStore(kv, quietLogger())
	r := NewReconciler(favorites, metrics.New(), quietLogger())
	ctx := context.Background()

	item := sampleItem("https://a")
	_, err := favorites.Add(ctx, item.Record())
	require.NoError(t, err)
	before, _, err := kv.Get(ctx, store.FavoritesKey)
	require.NoError(t, err)

	stamped, err := r.Stamp(ctx, []models.SearchItem{item, sampleItem("https://b")})
	require.NoError(t, err)
	assert.True(t, stamped[0].IsSaved)
	assert.False(t, stamped[1].IsSaved)

	after, _, err := kv.Get(ctx, store.FavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestToggleSaveThenRemoveRestoresFavorites(t *testing.T) {
	favorites := store.NewFavoritesStore(store.NewMemoryKV(), quietLogger())
	m := metrics.New()
	r := NewReconciler(favorites, m, quietLogger())
	ctx := context.Background()

	existing := sampleItem("https://existing")
	_, err := favorites.Add(ctx, existing.Record())
	require.NoError(t, err)
	before, err := favorites.List(ctx)
	require.NoError(t, err)

	item := sampleItem("https://new")
	saved, notice, err := r.Toggle(ctx, item)
	require.NoError(t, err)
	assert.True(t, saved.IsSaved)
	assert.Equal(t, models.NoticeSaved, notice)

	during, err := favorites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, during, 2)
	assert.Contains(t, idSet(during), item.ID)

	removed, notice, err := r.Toggle(ctx, saved)
	require.NoError(t, err)
	assert.False(t, removed.IsSaved)
	assert.Equal(t, models.NoticeRemoved, notice)

	after, err := favorites.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, idSet(before), idSet(after))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FavoriteToggles.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FavoriteToggles.WithLabelValues("remove")))
}

func TestToggleDoubleSaveIsIdempotent(t *testing.T) {
	favorites := store.NewFavoritesStore(store.NewMemoryKV(), quietLogger())
	r := NewReconciler(favorites, metrics.New(), quietLogger())
	ctx := context.Background()

	item := sampleItem("https://a")
	_, _, err := r.Toggle(ctx, item)
	require.NoError(t, err)
	// stale UI still shows the item unsaved
	_, _, err = r.Toggle(ctx, item)
	require.NoError(t, err)
	added, err := favorites.Add(ctx, item.Record())
	require.NoError(t, err)
	assert.False(t, added)

	records, err := favorites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestToggleStorageFailureReturnsOriginal(t *testing.T) {
	r := NewReconciler(store.NewFavoritesStore(failingKV{}, quietLogger()), metrics.New(), quietLogger())

	item := sampleItem("https://a")
	got, notice, err := r.Toggle(context.Background(), item)
	require.Error(t, err)
	assert.Equal(t, item, got)
	assert.Equal(t, models.NoticeNone, notice)

	var se *models.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestFavoritesAndRemove(t *testing.T) {
	favorites := store.NewFavoritesStore(store.NewMemoryKV(), quietLogger())
	r := NewReconciler(favorites, metrics.New(), quietLogger())
	ctx := context.Background()

	a, b := sampleItem("https://a"), sampleItem("https://b")
	_, err := favorites.Add(ctx, a.Record())
	require.NoError(t, err)
	_, err = favorites.Add(ctx, b.Record())
	require.NoError(t, err)

	items, err := r.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.True(t, items[0].IsSaved)
	assert.True(t, items[1].IsSaved)

	require.NoError(t, r.Remove(ctx, a.ID))
	assert.ErrorIs(t, r.Remove(ctx, a.ID), models.ErrNotFound)

	items, err = r.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
}
