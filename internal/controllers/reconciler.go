package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/sirupsen/logrus"
)

// FavoritesRepository is the persistence the reconciler needs
type FavoritesRepository interface {
	List(ctx context.Context) ([]models.FavoriteRecord, error)
	Add(ctx context.Context, rec models.FavoriteRecord) (bool, error)
	RemoveByID(ctx context.Context, id string) (bool, error)
}

// Reconciler overlays the persisted saved status onto search results and
// applies save/remove toggles
type Reconciler struct {
	favorites FavoritesRepository
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(favorites FavoritesRepository, m *metrics.Metrics, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		favorites: favorites,
		metrics:   m,
		logger:    logger,
	}
}

// StampSaved returns a copy of items with IsSaved set from favorites.
// It does not modify either input.
func StampSaved(items []models.SearchItem, favorites []models.FavoriteRecord) []models.SearchItem {
	saved := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		saved[f.ID] = struct{}{}
	}

	stamped := make([]models.SearchItem, len(items))
	for i, item := range items {
		_, item.IsSaved = saved[item.ID]
		stamped[i] = item
	}
	return stamped
}

// Stamp reads the current favorites and stamps items against them
func (r *Reconciler) Stamp(ctx context.Context, items []models.SearchItem) ([]models.SearchItem, error) {
	favorites, err := r.favorites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return StampSaved(items, favorites), nil
}

// Toggle flips the saved status of item and persists the change.
// Saving an id that is already stored leaves the store unchanged.
// On error the original item is returned.
func (r *Reconciler) Toggle(ctx context.Context, item models.SearchItem) (models.SearchItem, models.Notice, error) {
	updated := item
	updated.IsSaved = !item.IsSaved

	if updated.IsSaved {
		added, err := r.favorites.Add(ctx, updated.Record())
		if err != nil {
			return item, models.NoticeNone, fmt.Errorf("failed to save favorite: %w", err)
		}
		r.metrics.FavoriteToggles.WithLabelValues("save").Inc()
		r.logger.WithFields(logrus.Fields{
			"id":    updated.ID,
			"kind":  updated.Kind.Label(),
			"added": added,
		}).Info("Item saved")
		return updated, models.NoticeSaved, nil
	}

	removed, err := r.favorites.RemoveByID(ctx, updated.ID)
	if err != nil {
		return item, models.NoticeNone, fmt.Errorf("failed to remove favorite: %w", err)
	}
	r.metrics.FavoriteToggles.WithLabelValues("remove").Inc()
	r.logger.WithFields(logrus.Fields{
		"id":      updated.ID,
		"kind":    updated.Kind.Label(),
		"removed": removed,
	}).Info("Item removed")
	return updated, models.NoticeRemoved, nil
}

// Favorites returns the stored favorites as saved items, in insertion order
func (r *Reconciler) Favorites(ctx context.Context) ([]models.SearchItem, error) {
	records, err := r.favorites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	items := make([]models.SearchItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Item())
	}
	return items, nil
}

// Remove deletes a favorite by id
func (r *Reconciler) Remove(ctx context.Context, id string) error {
	removed, err := r.favorites.RemoveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		return fmt.Errorf("favorite %s: %w", id, models.ErrNotFound)
	}
	r.metrics.FavoriteToggles.WithLabelValues("remove").Inc()
	return nil
}
