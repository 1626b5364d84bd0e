package models

// PageCursor holds the next page to fetch for each kind
type PageCursor struct {
	ImagePage int `json:"image_page"`
	VideoPage int `json:"video_page"`
}

// SessionState is the snapshot published to observers of a search session
type SessionState struct {
	Items   []SearchItem `json:"items"`
	Keyword *string      `json:"keyword,omitempty"`
	Status  Status       `json:"status"`
	Notice  Notice       `json:"notice,omitempty"`
	Cursor  PageCursor   `json:"cursor"`
}

// Clone returns a copy whose item slice can be modified independently
func (s SessionState) Clone() SessionState {
	out := s
	if s.Items != nil {
		out.Items = make([]SearchItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.Keyword != nil {
		kw := *s.Keyword
		out.Keyword = &kw
	}
	return out
}
