package state

import (
	"testing"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/tui/facets"
)

func TestClampCursor(t *testing.T) {
	cases := []struct {
		cursor, size, want int
	}{
		{0, 0, 0},
		{5, 3, 2},
		{-2, 3, 0},
		{1, 3, 1},
	}
	for _, tc := range cases {
		if got := ClampCursor(tc.cursor, tc.size); got != tc.want {
			t.Fatalf("ClampCursor(%d, %d) = %d, want %d", tc.cursor, tc.size, got, tc.want)
		}
	}
}

func TestCenteredWindow(t *testing.T) {
	start, end := CenteredWindow(100, 50, 10)
	if start != 45 || end != 55 {
		t.Fatalf("window = [%d, %d)", start, end)
	}

	start, end = CenteredWindow(100, 2, 10)
	if start != 0 || end != 10 {
		t.Fatalf("top-clamped window = [%d, %d)", start, end)
	}

	start, end = CenteredWindow(100, 98, 10)
	if start != 90 || end != 100 {
		t.Fatalf("bottom-clamped window = [%d, %d)", start, end)
	}

	start, end = CenteredWindow(5, 2, 10)
	if start != 0 || end != 5 {
		t.Fatalf("small list window = [%d, %d)", start, end)
	}
}

func TestPostRowsBefore(t *testing.T) {
	rows := []facets.Row{
		{Kind: facets.RowSection},
		{Kind: facets.RowPost, PostIndex: 0},
		{Kind: facets.RowTag},
		{Kind: facets.RowPost, PostIndex: 1},
	}
	if got := PostRowsBefore(rows, 3); got != 1 {
		t.Fatalf("PostRowsBefore = %d, want 1", got)
	}
	if got := PostRowsBefore(rows, 99); got != 2 {
		t.Fatalf("PostRowsBefore clamped = %d, want 2", got)
	}
}

func TestPostIndexByID(t *testing.T) {
	posts := []blogapi.Post{{ID: "a"}, {ID: "b"}}
	if got := PostIndexByID(posts, "b"); got != 1 {
		t.Fatalf("PostIndexByID = %d", got)
	}
	if got := PostIndexByID(posts, "zzz"); got != -1 {
		t.Fatalf("missing ID should return -1, got %d", got)
	}
}

func TestSyncedPostIndex_PrefersForward(t *testing.T) {
	rows := []facets.Row{
		{Kind: facets.RowPost, PostIndex: 0},
		{Kind: facets.RowSection},
		{Kind: facets.RowPost, PostIndex: 1},
	}
	if got := SyncedPostIndex(rows, 1); got != 1 {
		t.Fatalf("cursor on section should map forward, got %d", got)
	}
	if got := SyncedPostIndex(rows, 0); got != 0 {
		t.Fatalf("cursor on a post maps to itself, got %d", got)
	}
}

func TestSyncedPostIndex_FallsBackward(t *testing.T) {
	rows := []facets.Row{
		{Kind: facets.RowPost, PostIndex: 0},
		{Kind: facets.RowSection},
	}
	if got := SyncedPostIndex(rows, 1); got != 0 {
		t.Fatalf("trailing section should map backward, got %d", got)
	}
}
