package models

// Kind represents which search category an item belongs to
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// Label returns the lower-case display name of the kind
func (k Kind) Label() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// Sort represents the result ordering requested from the search API
type Sort string

const (
	SortAccuracy Sort = "accuracy"
	SortRecency  Sort = "recency"
)

// ParseSort validates a sort string; empty means the default (accuracy)
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortAccuracy, nil
	case SortAccuracy, SortRecency:
		return Sort(s), nil
	default:
		return "", ErrInvalidSort
	}
}

// Page bounds enforced by the remote API
const (
	MaxImagePage     = 50
	MaxVideoPage     = 15
	MaxImagePageSize = 80
	MaxVideoPageSize = 30

	DefaultImagePageSize = 80
	DefaultVideoPageSize = 15
)

// MaxPage returns the highest page number the API accepts for a kind
func MaxPage(kind Kind) int {
	if kind == KindVideo {
		return MaxVideoPage
	}
	return MaxImagePage
}

// MaxPageSize returns the largest page size the API accepts for a kind
func MaxPageSize(kind Kind) int {
	if kind == KindVideo {
		return MaxVideoPageSize
	}
	return MaxImagePageSize
}

// Status represents the lifecycle state of a search session
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

// Notice is a transient, user-facing message attached to one published state
type Notice string

const (
	NoticeNone         Notice = ""
	NoticeSaved        Notice = "saved"
	NoticeRemoved      Notice = "removed"
	NoticeSearchFailed Notice = "search_failed"
)
