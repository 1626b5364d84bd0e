package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/amaumene/imagesearch/internal/utils"
)

// renderItems prints items as a numbered table
func renderItems(w io.Writer, items []models.SearchItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tDATE\tSAVED\tSITE\tID\tTHUMBNAIL")
	for i, item := range items {
		saved := ""
		if item.IsSaved {
			saved = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			item.Kind.Label(),
			utils.FormatTimestamp(item.Timestamp),
			saved,
			item.SiteName,
			item.ID,
			item.ThumbnailURL,
		)
	}
	tw.Flush()
}

// renderNotice prints the message belonging to a notice, if any
func renderNotice(w io.Writer, notice models.Notice) {
	switch notice {
	case models.NoticeSaved:
		fmt.Fprintln(w, "Saved to favorites")
	case models.NoticeRemoved:
		fmt.Fprintln(w, "Removed from favorites")
	case models.NoticeSearchFailed:
		fmt.Fprintln(w, "Search failed, showing previous results")
	}
}

// renderHeader prints the keyword and cursor of state
func renderHeader(w io.Writer, state models.SessionState) {
	keyword := "-"
	if state.Keyword != nil {
		keyword = *state.Keyword
	}
	fmt.Fprintf(w, "keyword: %s  status: %s  pages: image %d, video %d  items: %d\n",
		keyword, state.Status, state.Cursor.ImagePage, state.Cursor.VideoPage, len(state.Items))
}
