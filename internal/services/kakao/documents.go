package kakao

import (
	"bytes"
	"encoding/json"
	"time"
)

// Meta is the paging metadata returned with every search response
type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// ImageDocument is a single result of /v2/search/image
type ImageDocument struct {
	Collection      string    `json:"collection"`
	DateTime        Timestamp `json:"datetime"`
	DisplaySiteName string    `json:"display_sitename"`
	DocURL          string    `json:"doc_url"`
	Height          int       `json:"height"`
	ImageURL        string    `json:"image_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Width           int       `json:"width"`
}

// VideoDocument is a single result of /v2/search/vclip
type VideoDocument struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	DateTime  Timestamp `json:"datetime"`
	PlayTime  int       `json:"play_time"` // seconds
	Thumbnail string    `json:"thumbnail"`
	Author    string    `json:"author"`
}

// ImageResponse is the body of an image search
type ImageResponse struct {
	Meta      Meta            `json:"meta"`
	Documents []ImageDocument `json:"documents"`
}

// VideoResponse is the body of a video clip search
type VideoResponse struct {
	Meta      Meta            `json:"meta"`
	Documents []VideoDocument `json:"documents"`
}

// apiError is the error body the API sends with non-2xx statuses
type apiError struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

// Timestamp is an ISO-8601 time that may be missing, null, empty or
// malformed. Anything that is not a valid time reads as absent; Raw keeps
// the rejected input.
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// UnmarshalJSON accepts RFC 3339 strings (fractional seconds allowed).
// It never fails, so one bad document cannot fail the whole page.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Raw = string(data)
		return nil
	}
	if s == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Raw = s
		return nil
	}
	t.Time = parsed
	t.Valid = true
	return nil
}

// Malformed reports whether a value was present but could not be parsed
func (t Timestamp) Malformed() bool {
	return !t.Valid && t.Raw != ""
}

// Ptr returns the time, or nil when absent
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
