package kakao

import (
	"context"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/sirupsen/logrus"
)

// Request describes one page of a search.
// Zero Size and empty Sort fall back to the client's configured values.
type Request struct {
	Query string
	Page  int
	Size  int
	Sort  models.Sort
}

// Searcher is the contract of the search API used by the controllers
type Searcher interface {
	SearchImages(ctx context.Context, req Request) (*ImageResponse, error)
	SearchVideos(ctx context.Context, req Request) (*VideoResponse, error)
}

// SearchImages fetches one page of image results
func (c *Client) SearchImages(ctx context.Context, req Request) (*ImageResponse, error) {
	req, err := c.prepare(models.KindImage, req)
	if err != nil {
		return nil, err
	}

	var resp ImageResponse
	if err := c.do(ctx, models.KindImage, imagePath, searchParams(req), &resp); err != nil {
		return nil, err
	}

	for _, doc := range resp.Documents {
		c.warnMalformed(models.KindImage, doc.ThumbnailURL, doc.DateTime)
	}

	c.logger.WithFields(logrus.Fields{
		"page":   req.Page,
		"count":  len(resp.Documents),
		"is_end": resp.Meta.IsEnd,
	}).Debug("Image search completed")
	return &resp, nil
}

// SearchVideos fetches one page of video clip results
func (c *Client) SearchVideos(ctx context.Context, req Request) (*VideoResponse, error) {
	req, err := c.prepare(models.KindVideo, req)
	if err != nil {
		return nil, err
	}

	var resp VideoResponse
	if err := c.do(ctx, models.KindVideo, videoPath, searchParams(req), &resp); err != nil {
		return nil, err
	}

	for _, doc := range resp.Documents {
		c.warnMalformed(models.KindVideo, doc.Thumbnail, doc.DateTime)
	}

	c.logger.WithFields(logrus.Fields{
		"page":   req.Page,
		"count":  len(resp.Documents),
		"is_end": resp.Meta.IsEnd,
	}).Debug("Video search completed")
	return &resp, nil
}

func (c *Client) warnMalformed(kind models.Kind, thumbnail string, ts Timestamp) {
	if !ts.Malformed() {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"kind":      kind.Label(),
		"thumbnail": thumbnail,
		"datetime":  ts.Raw,
	}).Warn("Unparseable datetime, treating as absent")
}

// prepare fills defaults and checks the request against the API bounds
func (c *Client) prepare(kind models.Kind, req Request) (Request, error) {
	if req.Size == 0 {
		req.Size = c.imageSize
		if kind == models.KindVideo {
			req.Size = c.videoSize
		}
	}
	if req.Sort == "" {
		req.Sort = c.sort
	}
	return req, Validate(kind, req)
}

// Validate checks a fully populated request against the per-kind bounds
func Validate(kind models.Kind, req Request) error {
	if req.Query == "" {
		return models.ErrEmptyQuery
	}
	if req.Page < 1 || req.Page > models.MaxPage(kind) {
		return models.ErrInvalidPage
	}
	if req.Size < 1 || req.Size > models.MaxPageSize(kind) {
		return models.ErrInvalidPageSize
	}
	if _, err := models.ParseSort(string(req.Sort)); err != nil {
		return err
	}
	return nil
}
