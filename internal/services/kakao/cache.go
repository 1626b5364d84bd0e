package kakao

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/patrickmn/go-cache"
)

// CachedClient keeps successful responses for a while so that scrolling
// back over already seen pages does not hit the API again. Failures are
// never cached.
type CachedClient struct {
	next    Searcher
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewCachedClient wraps next with a response cache of the given TTL
func NewCachedClient(next Searcher, ttl time.Duration, m *metrics.Metrics) *CachedClient {
	return &CachedClient{
		next:    next,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func cacheKey(kind models.Kind, req Request) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", kind, req.Sort, req.Query, req.Page, req.Size)
}

// SearchImages serves image pages from the cache when possible
func (c *CachedClient) SearchImages(ctx context.Context, req Request) (*ImageResponse, error) {
	key := cacheKey(models.KindImage, req)
	if v, ok := c.cache.Get(key); ok {
		c.lookup(models.KindImage, "hit")
		return v.(*ImageResponse), nil
	}
	c.lookup(models.KindImage, "miss")

	resp, err := c.next.SearchImages(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, resp)
	return resp, nil
}

// SearchVideos serves video pages from the cache when possible
func (c *CachedClient) SearchVideos(ctx context.Context, req Request) (*VideoResponse, error) {
	key := cacheKey(models.KindVideo, req)
	if v, ok := c.cache.Get(key); ok {
		c.lookup(models.KindVideo, "hit")
		return v.(*VideoResponse), nil
	}
	c.lookup(models.KindVideo, "miss")

	resp, err := c.next.SearchVideos(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, resp)
	return resp, nil
}

func (c *CachedClient) lookup(kind models.Kind, result string) {
	c.metrics.CacheLookups.WithLabelValues(kind.Label(), result).Inc()
}
