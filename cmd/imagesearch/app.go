package main

import (
	"context"
	"fmt"

	"github.com/amaumene/imagesearch/internal/config"
	"github.com/amaumene/imagesearch/internal/controllers"
	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/services/kakao"
	"github.com/amaumene/imagesearch/internal/store"
	"github.com/amaumene/imagesearch/internal/telemetry"
	"github.com/amaumene/imagesearch/internal/utils"
	"github.com/sirupsen/logrus"
)

// app holds everything one command needs
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	kv       store.KeyValue
	session  *controllers.SessionController
	shutdown func(context.Context) error
}

// newApp wires configuration, storage, the search client and a session.
// With persist=false favorites and the keyword live in memory only.
func newApp(ctx context.Context, persist bool) (*app, error) {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger and tracing
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	shutdown := telemetry.Setup(cfg.TracingEnabled, telemetry.NewLogProcessor(logger))
	m := metrics.New()

	// 3. Open storage
	var kv store.KeyValue
	if persist {
		kv, err = store.Open(cfg, logger)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("failed to open %s store: %w", cfg.StorageDriver, err)
		}
	} else {
		kv = store.NewMemoryKV()
	}
	logger.WithFields(logrus.Fields{
		"driver":  cfg.StorageDriver,
		"persist": persist,
	}).Debug("Storage initialized")

	// 4. Initialize search client
	client, err := kakao.NewClient(cfg, m, logger)
	if err != nil {
		_ = kv.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize Kakao client: %w", err)
	}
	var searcher kakao.Searcher = client
	if cfg.CacheTTL > 0 {
		searcher = kakao.NewCachedClient(client, cfg.CacheTTL, m)
	}

	// 5. Initialize controllers
	favorites := store.NewFavoritesStore(kv, logger)
	session := controllers.NewSessionController(ctx, controllers.SessionDeps{
		Fetcher:    controllers.NewAggregator(searcher, m, logger),
		Reconciler: controllers.NewReconciler(favorites, m, logger),
		Keywords:   store.NewKeywordStore(kv),
		Metrics:    m,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		kv:       kv,
		session:  session,
		shutdown: shutdown,
	}, nil
}

// Close ends the session and releases storage and tracing
func (a *app) Close() {
	a.session.Close()
	if err := a.kv.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close storage")
	}
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.WithError(err).Error("Failed to shut down tracing")
	}
}
