package state

import (
	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/tui/facets"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

func PostRowsBefore(rows []facets.Row, end int) int {
	if end <= 0 || len(rows) == 0 {
		return 0
	}
	if end > len(rows) {
		end = len(rows)
	}
	count := 0
	for i := 0; i < end; i++ {
		if rows[i].Kind == facets.RowPost {
			count++
		}
	}
	return count
}

func PostIndexByID(posts []blogapi.Post, postID string) int {
	for i, post := range posts {
		if post.ID == postID {
			return i
		}
	}
	return -1
}

// SyncedPostIndex maps a row cursor to the nearest displayed post,
// preferring rows at or after the cursor.
func SyncedPostIndex(rows []facets.Row, cursor int) int {
	if len(rows) == 0 {
		return 0
	}
	cursor = ClampCursor(cursor, len(rows))
	if rows[cursor].Kind == facets.RowPost {
		return rows[cursor].PostIndex
	}
	for i := cursor + 1; i < len(rows); i++ {
		if rows[i].Kind == facets.RowPost {
			return rows[i].PostIndex
		}
	}
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].Kind == facets.RowPost {
			return rows[i].PostIndex
		}
	}
	return 0
}
