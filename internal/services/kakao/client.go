package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amaumene/imagesearch/internal/config"
	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	imagePath = "/v2/search/image"
	videoPath = "/v2/search/vclip"
	userAgent = "imagesearch/1.0"

	maxErrorBody = 4 * 1024
)

// Client wraps direct Kakao search API HTTP calls.
// It does not retry; retry policy belongs to callers.
type Client struct {
	baseURL    string
	apiKey     string
	sort       models.Sort
	imageSize  int
	videoSize  int
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewClient creates a new Kakao client from configuration
func NewClient(cfg *config.Config, m *metrics.Metrics, logger *logrus.Logger) (*Client, error) {
	if cfg.KakaoBaseURL == "" {
		return nil, fmt.Errorf("kakao base URL is required")
	}
	if cfg.KakaoAPIKey == "" {
		return nil, fmt.Errorf("kakao API key is required")
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 2 {
			burst = 2 // image and video requests of one combined fetch leave together
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:   cfg.KakaoBaseURL,
		apiKey:    cfg.KakaoAPIKey,
		sort:      cfg.Sort,
		imageSize: cfg.ImagePageSize,
		videoSize: cfg.VideoPageSize,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}, nil
}

// do performs an authenticated GET and decodes the JSON body into result
func (c *Client) do(ctx context.Context, kind models.Kind, path string, params url.Values, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &models.TransportError{Kind: kind, Op: "rate limit", Err: err}
		}
	}

	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid kakao URL: %w", err)
	}
	apiURL = apiURL.JoinPath(path)
	apiURL.RawQuery = params.Encode()
	finalURL := apiURL.String()

	c.logger.WithFields(logrus.Fields{
		"url":  finalURL,
		"kind": kind.Label(),
	}).Debug("Performing Kakao search")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	err = c.send(req, kind, result)
	c.metrics.FetchDuration.WithLabelValues(kind.Label()).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(kind.Label()).Inc()
		return err
	}
	return nil
}

func (c *Client) send(req *http.Request, kind models.Kind, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.TransportError{Kind: kind, Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Error("Kakao API returned non-OK status")

		var apiErr apiError
		msg := string(body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.ErrorType + ": " + apiErr.Message
		}
		return &models.TransportError{
			Kind:       kind,
			Op:         "request",
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &models.TransportError{Kind: kind, Op: "decode", Err: err}
	}
	return nil
}

func searchParams(req Request) url.Values {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("sort", string(req.Sort))
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("size", strconv.Itoa(req.Size))
	return params
}
