package utils

import "time"

// DisplayDateFormat is the layout used to show item timestamps
const DisplayDateFormat = "2006-01-02 15:04:05"

// FormatTimestamp renders t in local time, or "" when t is absent
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(DisplayDateFormat)
}
