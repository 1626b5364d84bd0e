package controllers

import (
	"github.com/amaumene/imagesearch/internal/models"
)

// PageCursor tracks the next page of each kind.
// Both counters live in [1, max] and wrap from max back to 1.
type PageCursor struct {
	imagePage int
	videoPage int
	maxImage  int
	maxVideo  int
}

// NewPageCursor creates a cursor at page 1 bounded by the API page limits
func NewPageCursor() *PageCursor {
	return &PageCursor{
		imagePage: 1,
		videoPage: 1,
		maxImage:  models.MaxImagePage,
		maxVideo:  models.MaxVideoPage,
	}
}

// Reset moves both counters back to page 1
func (c *PageCursor) Reset() {
	c.imagePage = 1
	c.videoPage = 1
}

// Advance moves each counter to its next page, wrapping max to 1
func (c *PageCursor) Advance() {
	c.imagePage = c.imagePage%c.maxImage + 1
	c.videoPage = c.videoPage%c.maxVideo + 1
}

// Pages returns the current position
func (c *PageCursor) Pages() models.PageCursor {
	return models.PageCursor{ImagePage: c.imagePage, VideoPage: c.videoPage}
}
