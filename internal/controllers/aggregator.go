package controllers

import (
	"context"
	"fmt"
	"sort"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/amaumene/imagesearch/internal/services/kakao"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/amaumene/imagesearch/internal/controllers"

// Aggregator fetches images and video clips together and merges them
type Aggregator struct {
	searcher kakao.Searcher
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	tracer   trace.Tracer
}

// NewAggregator creates a new aggregator over searcher
func NewAggregator(searcher kakao.Searcher, m *metrics.Metrics, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		searcher: searcher,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// FetchCombined runs the image and video searches concurrently and returns
// their normalised union, newest first. If either search fails the whole
// call fails and no partial list is returned.
func (a *Aggregator) FetchCombined(ctx context.Context, query string, imagePage, videoPage int) ([]models.SearchItem, error) {
	ctx, span := a.tracer.Start(ctx, "FetchCombined", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("image_page", imagePage),
		attribute.Int("video_page", videoPage),
	))
	defer span.End()

	var images, videos []models.SearchItem
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ctx, span := a.tracer.Start(gctx, "SearchImages")
		defer span.End()

		resp, err := a.searcher.SearchImages(ctx, kakao.Request{Query: query, Page: imagePage})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "image search failed")
			return fmt.Errorf("image search: %w", err)
		}
		images = NormalizeImages(resp.Documents)
		span.SetAttributes(attribute.Int("count", len(images)))
		return nil
	})

	g.Go(func() error {
		ctx, span := a.tracer.Start(gctx, "SearchVideos")
		defer span.End()

		resp, err := a.searcher.SearchVideos(ctx, kakao.Request{Query: query, Page: videoPage})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "video search failed")
			return fmt.Errorf("video search: %w", err)
		}
		videos = NormalizeVideos(resp.Documents)
		span.SetAttributes(attribute.Int("count", len(videos)))
		return nil
	})

	if err := g.Wait(); err != nil {
		a.metrics.CombinedFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "combined fetch failed")
		return nil, err
	}

	merged := MergeByTimestamp(images, videos)

	a.logger.WithFields(logrus.Fields{
		"query":      query,
		"image_page": imagePage,
		"video_page": videoPage,
		"images":     len(images),
		"videos":     len(videos),
	}).Debug("Combined fetch completed")
	span.SetAttributes(attribute.Int("count", len(merged)))

	return merged, nil
}

// NormalizeImages maps image documents onto search items
func NormalizeImages(docs []kakao.ImageDocument) []models.SearchItem {
	items := make([]models.SearchItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.NewSearchItem(models.KindImage, doc.ThumbnailURL, doc.DisplaySiteName, doc.DateTime.Ptr()))
	}
	return items
}

// NormalizeVideos maps video documents onto search items; the title is shown as the site name
func NormalizeVideos(docs []kakao.VideoDocument) []models.SearchItem {
	items := make([]models.SearchItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.NewSearchItem(models.KindVideo, doc.Thumbnail, doc.Title, doc.DateTime.Ptr()))
	}
	return items
}

// MergeByTimestamp concatenates the lists and sorts them newest first.
// Items without a timestamp go last and keep their relative order.
func MergeByTimestamp(lists ...[]models.SearchItem) []models.SearchItem {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]models.SearchItem, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := merged[i].Timestamp, merged[j].Timestamp
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return merged
}
