package controllers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/amaumene/imagesearch/internal/utils"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer is the number of pending states kept per subscriber
const subscriberBuffer = 8

// CombinedFetcher fetches one page of merged image and video results
type CombinedFetcher interface {
	FetchCombined(ctx context.Context, query string, imagePage, videoPage int) ([]models.SearchItem, error)
}

// KeywordRepository persists the last submitted keyword
type KeywordRepository interface {
	Save(ctx context.Context, keyword string) error
	Load(ctx context.Context) (string, bool, error)
}

// SessionDeps are the collaborators of a search session
type SessionDeps struct {
	Fetcher    CombinedFetcher
	Reconciler *Reconciler
	Keywords   KeywordRepository
	Metrics    *metrics.Metrics
}

// SessionController owns the state of one search screen. Operations are
// serialised; observers receive every published state through Subscribe.
type SessionController struct {
	fetcher    CombinedFetcher
	reconciler *Reconciler
	keywords   KeywordRepository
	metrics    *metrics.Metrics
	logger     *logrus.Logger

	opMu    sync.Mutex
	cursor  *PageCursor
	keyword *string

	stateMu sync.RWMutex
	state   models.SessionState

	subMu  sync.Mutex
	subs   map[int]chan models.SessionState
	nextID int

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// NewSessionController starts a session. The last persisted keyword, if
// any, is exposed in the initial idle state.
func NewSessionController(ctx context.Context, deps SessionDeps, logger *logrus.Logger) *SessionController {
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &SessionController{
		fetcher:    deps.Fetcher,
		reconciler: deps.Reconciler,
		keywords:   deps.Keywords,
		metrics:    deps.Metrics,
		logger:     logger,
		cursor:     NewPageCursor(),
		subs:       make(map[int]chan models.SessionState),
		ctx:        sctx,
		cancel:     cancel,
	}

	keyword, found, err := s.keywords.Load(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to load last keyword")
	} else if found && keyword != "" {
		s.keyword = &keyword
	}

	s.state = models.SessionState{
		Items:   []models.SearchItem{},
		Keyword: s.keyword,
		Status:  models.StatusIdle,
		Cursor:  s.cursor.Pages(),
	}
	return s
}

// State returns a snapshot of the last published state
func (s *SessionController) State() models.SessionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers an observer. The current state is delivered first.
// When the buffer is full the oldest pending state is dropped. The returned
// func unsubscribes and closes the channel.
func (s *SessionController) Subscribe() (<-chan models.SessionState, func()) {
	ch := make(chan models.SessionState, subscriberBuffer)

	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.closed.Load() {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.State()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// SubmitQuery persists text as the last keyword, resets the cursor and
// fetches the first pages
func (s *SessionController) SubmitQuery(ctx context.Context, text string) error {
	keyword := utils.NormalizeKeyword(text)
	if keyword == "" {
		return models.ErrEmptyQuery
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return models.ErrSessionClosed
	}

	if err := s.keywords.Save(ctx, keyword); err != nil {
		s.logger.WithError(err).WithField("keyword", keyword).Warn("Failed to persist keyword")
	}

	s.keyword = &keyword
	s.cursor.Reset()

	s.logger.WithFields(logrus.Fields{
		"keyword": keyword,
	}).Info("New query submitted")

	return s.refresh(ctx)
}

// Refresh re-fetches the current pages. On failure the previously
// published items stay visible and the error is returned.
func (s *SessionController) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return models.ErrSessionClosed
	}
	return s.refresh(ctx)
}

// OnScrollEnd advances both page counters and replaces the items with the
// next pages
func (s *SessionController) OnScrollEnd(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return models.ErrSessionClosed
	}
	if s.keyword == nil {
		return models.ErrEmptyQuery
	}

	s.cursor.Advance()
	pages := s.cursor.Pages()
	s.logger.WithFields(logrus.Fields{
		"image_page": pages.ImagePage,
		"video_page": pages.VideoPage,
	}).Debug("Cursor advanced")

	return s.refresh(ctx)
}

// ToggleItem flips the saved status of item, persists it and splices the
// updated item into the published list by id
func (s *SessionController) ToggleItem(ctx context.Context, item models.SearchItem) (models.SearchItem, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return item, models.ErrSessionClosed
	}

	updated, notice, err := s.reconciler.Toggle(ctx, item)
	if err != nil {
		s.logger.WithError(err).WithField("id", item.ID).Error("Failed to toggle favorite")
		return item, err
	}

	next := s.State()
	for i := range next.Items {
		if next.Items[i].ID == updated.ID {
			next.Items[i].IsSaved = updated.IsSaved
		}
	}
	next.Notice = notice
	s.publish(next)
	return updated, nil
}

// ReloadSavedStatus re-stamps the published items against the stored
// favorites without fetching
func (s *SessionController) ReloadSavedStatus(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return models.ErrSessionClosed
	}
	return s.restamp(ctx, models.NoticeNone)
}

// ListFavorites returns the stored favorites as saved items
func (s *SessionController) ListFavorites(ctx context.Context) ([]models.SearchItem, error) {
	return s.reconciler.Favorites(ctx)
}

// RemoveFavorite deletes a favorite by id, re-stamps the published items and
// returns the remaining favorites
func (s *SessionController) RemoveFavorite(ctx context.Context, id string) ([]models.SearchItem, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.closed.Load() {
		return nil, models.ErrSessionClosed
	}

	if err := s.reconciler.Remove(ctx, id); err != nil {
		return nil, err
	}
	if err := s.restamp(ctx, models.NoticeRemoved); err != nil {
		return nil, err
	}
	return s.reconciler.Favorites(ctx)
}

// Close ends the session. In-flight fetches are abandoned and subscriber
// channels are closed.
func (s *SessionController) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.logger.Debug("Session closed")
}

func (s *SessionController) refresh(ctx context.Context) error {
	if s.keyword == nil {
		return models.ErrEmptyQuery
	}
	keyword := *s.keyword
	pages := s.cursor.Pages()

	previous := s.State()
	loading := previous
	loading.Keyword = s.keyword
	loading.Status = models.StatusLoading
	loading.Notice = models.NoticeNone
	loading.Cursor = pages
	s.publish(loading)

	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	items, err := s.fetcher.FetchCombined(fctx, keyword, pages.ImagePage, pages.VideoPage)
	if err == nil {
		items, err = s.reconciler.Stamp(fctx, items)
	}
	if s.closed.Load() {
		return models.ErrSessionClosed
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"keyword":    keyword,
			"image_page": pages.ImagePage,
			"video_page": pages.VideoPage,
		}).Error("Search failed, keeping previous results")

		failed := loading
		failed.Status = models.StatusReady
		failed.Notice = models.NoticeSearchFailed
		s.publish(failed)
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"items":   len(items),
	}).Debug("Search completed")

	s.publish(models.SessionState{
		Items:   items,
		Keyword: s.keyword,
		Status:  models.StatusReady,
		Cursor:  pages,
	})
	return nil
}

func (s *SessionController) restamp(ctx context.Context, notice models.Notice) error {
	next := s.State()
	items, err := s.reconciler.Stamp(ctx, next.Items)
	if err != nil {
		return err
	}
	next.Items = items
	next.Notice = notice
	s.publish(next)
	return nil
}

// publish stores state as current and offers a copy to every subscriber
func (s *SessionController) publish(state models.SessionState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed.Load() {
		return
	}

	s.stateMu.Lock()
	s.state = state.Clone()
	s.stateMu.Unlock()

	for _, ch := range s.subs {
		offer(ch, state.Clone())
	}
	s.metrics.StatePublishes.Inc()
}

// offer sends st without blocking, discarding the oldest pending state
// while the buffer is full
func offer(ch chan models.SessionState, st models.SessionState) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

