package models

import (
	"time"

	"github.com/google/uuid"
)

// itemNamespace scopes the name-based UUIDs generated for search items
var itemNamespace = uuid.MustParse("6f1d8a52-3c4b-5e0f-9a7d-2b8c4e6f1a30")

// SearchItem is the unified result entity for both kinds
type SearchItem struct {
	ID           string     `json:"id"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	SiteName     string     `json:"site_name,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Kind         Kind       `json:"kind"`
	IsSaved      bool       `json:"is_saved"`
}

// FavoriteRecord is the persisted subset of a SearchItem
type FavoriteRecord struct {
	ID           string     `json:"id"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	SiteName     string     `json:"site_name,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Kind         Kind       `json:"kind"`
}

// NewSearchItem builds an item whose ID is derived from its source document
func NewSearchItem(kind Kind, thumbnailURL, siteName string, timestamp *time.Time) SearchItem {
	return SearchItem{
		ID:           ItemID(kind, thumbnailURL, siteName, timestamp),
		ThumbnailURL: thumbnailURL,
		SiteName:     siteName,
		Timestamp:    timestamp,
		Kind:         kind,
	}
}

// ItemID derives a stable identity for a remote document.
// The thumbnail URL is the identity; documents without one fall back to
// their kind, site name and timestamp so that re-fetches still agree.
func ItemID(kind Kind, thumbnailURL, siteName string, timestamp *time.Time) string {
	name := thumbnailURL
	if name == "" {
		name = string(kind) + "|" + siteName
		if timestamp != nil {
			name += "|" + timestamp.UTC().Format(time.RFC3339Nano)
		}
	}
	return uuid.NewSHA1(itemNamespace, []byte(name)).String()
}

// Record returns the persisted form of the item
func (i SearchItem) Record() FavoriteRecord {
	return FavoriteRecord{
		ID:           i.ID,
		ThumbnailURL: i.ThumbnailURL,
		SiteName:     i.SiteName,
		Timestamp:    i.Timestamp,
		Kind:         i.Kind,
	}
}

// Item returns the record as a saved SearchItem
func (r FavoriteRecord) Item() SearchItem {
	return SearchItem{
		ID:           r.ID,
		ThumbnailURL: r.ThumbnailURL,
		SiteName:     r.SiteName,
		Timestamp:    r.Timestamp,
		Kind:         r.Kind,
		IsSaved:      true,
	}
}
