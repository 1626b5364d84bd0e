package controllers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/amaumene/imagesearch/internal/services/kakao"
	"github.com/amaumene/imagesearch/internal/store"
	"github.com/sirupsen/logrus"
)

var errUnavailable = errors.New("service unavailable")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func at(hour int) kakao.Timestamp {
	return kakao.Timestamp{Time: time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC), Valid: true}
}

// fakeSearcher returns canned documents and records the pages it was asked for
type fakeSearcher struct {
	mu         sync.Mutex
	images     []kakao.ImageDocument
	videos     []kakao.VideoDocument
	imageErr   error
	videoErr   error
	imagePages []int
	videoPages []int
}

func (f *fakeSearcher) SearchImages(ctx context.Context, req kakao.Request) (*kakao.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagePages = append(f.imagePages, req.Page)
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &kakao.ImageResponse{Documents: f.images}, nil
}

func (f *fakeSearcher) SearchVideos(ctx context.Context, req kakao.Request) (*kakao.VideoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoPages = append(f.videoPages, req.Page)
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return &kakao.VideoResponse{Documents: f.videos}, nil
}

func (f *fakeSearcher) setImageErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageErr = err
}

// blockingFetcher holds FetchCombined until its context ends or release is closed
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	items   []models.SearchItem
}

func (b *blockingFetcher) FetchCombined(ctx context.Context, query string, imagePage, videoPage int) ([]models.SearchItem, error) {
	close(b.started)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
		return b.items, nil
	}
}

// failingKV fails every call
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, &models.StorageError{Op: "get", Err: errUnavailable}
}

func (failingKV) Put(context.Context, string, string) error {
	return &models.StorageError{Op: "put", Err: errUnavailable}
}

func (failingKV) Update(context.Context, string, func(string, bool) (string, error)) error {
	return &models.StorageError{Op: "update", Err: errUnavailable}
}

func (failingKV) Close() error { return nil }

type sessionFixture struct {
	searcher  *fakeSearcher
	kv        store.KeyValue
	favorites *store.FavoritesStore
	keywords  *store.KeywordStore
	metrics   *metrics.Metrics
	session   *SessionController
}

func newSessionFixture(searcher *fakeSearcher, kv store.KeyValue) *sessionFixture {
	logger := quietLogger()
	m := metrics.New()
	favorites := store.NewFavoritesStore(kv, logger)
	keywords := store.NewKeywordStore(kv)

	session := NewSessionController(context.Background(), SessionDeps{
		Fetcher:    NewAggregator(searcher, m, logger),
		Reconciler: NewReconciler(favorites, m, logger),
		Keywords:   keywords,
		Metrics:    m,
	}, logger)

	return &sessionFixture{
		searcher:  searcher,
		kv:        kv,
		favorites: favorites,
		keywords:  keywords,
		metrics:   m,
		session:   session,
	}
}
