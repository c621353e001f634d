package view

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/scribe-tui/scribe/internal/blogapi"
	tuitheme "github.com/scribe-tui/scribe/internal/tui/theme"
)

func TestRenderPostLine_AbsoluteDateAtRightEdge(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	th := tuitheme.Default()

	line := RenderPostLine(PostLineParams{
		Post: blogapi.Post{
			ID:        "1",
			Title:     "Absolute date rendering",
			Author:    "alice",
			IsPublic:  true,
			CreatedAt: now.Add(-2 * time.Hour),
		},
		Now:   now,
		Width: 70,
	}, th)
	plain := stripANSIText(line)
	if !strings.HasSuffix(plain, "[2026-02-09]") {
		t.Fatalf("expected absolute date suffix at right edge, got %q", plain)
	}
	if !strings.Contains(plain, "Absolute date rendering — alice") {
		t.Fatalf("expected title with author, got %q", plain)
	}
}

func TestRenderPostLine_CompactHidesAuthor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	line := RenderPostLine(PostLineParams{
		Post:    blogapi.Post{Title: "Short", Author: "alice", IsPublic: true},
		Compact: true,
		Width:   60,
	}, th)
	if strings.Contains(stripANSIText(line), "alice") {
		t.Fatalf("compact line should not show the author: %q", line)
	}
}

func TestRenderPostLine_NumbersAndMarkers(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	line := RenderPostLine(PostLineParams{
		Post:        blogapi.Post{Title: "Numbered", IsPublic: true},
		ShowNumbers: true,
		VisiblePos:  2,
		Active:      true,
		Selected:    true,
		Width:       60,
	}, th)
	plain := stripANSIText(line)
	if !strings.Contains(plain, ">* 3.") {
		t.Fatalf("expected cursor, selection marker and number, got %q", plain)
	}
}

func TestRenderPostLine_BadgeReflectsAccessState(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	line := RenderPostLine(PostLineParams{
		Post:  blogapi.Post{Title: "Locked", AccessStatus: blogapi.AccessPending},
		Width: 60,
	}, th)
	if !strings.Contains(stripANSIText(line), "[pending]") {
		t.Fatalf("expected pending badge, got %q", line)
	}
}

func TestCommentPreviewLine(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	post := blogapi.Post{LatestComment: &blogapi.Comment{Author: "bob", Text: "great\npost"}}
	line := CommentPreviewLine(post, 60, th)
	plain := stripANSIText(line)
	if !strings.Contains(plain, "↳ bob: great post") {
		t.Fatalf("expected flattened preview, got %q", plain)
	}

	if got := CommentPreviewLine(blogapi.Post{}, 60, th); got != "" {
		t.Fatalf("no preview expected without a latest comment, got %q", got)
	}
}

func TestRenderFacetLine_SelectionMarkerAndCount(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	selected := stripANSIText(RenderFacetLine("go", 3, true, false, th))
	if !strings.Contains(selected, "[x] go") || !strings.Contains(selected, "(3)") {
		t.Fatalf("unexpected selected facet line: %q", selected)
	}

	unselected := stripANSIText(RenderFacetLine("rust", 0, false, false, th))
	if !strings.Contains(unselected, "[ ] rust") || !strings.Contains(unselected, "(0)") {
		t.Fatalf("unexpected unselected facet line: %q", unselected)
	}

	noCount := stripANSIText(RenderFacetLine("Tag match: ANY", -1, false, false, th))
	if strings.Contains(noCount, "(") {
		t.Fatalf("negative count should hide the tally: %q", noCount)
	}
}

func TestRelativeTimeLabel(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		then time.Time
		want string
	}{
		{then: now.Add(-30 * time.Second), want: "just now"},
		{then: now.Add(-1 * time.Minute), want: "1 minute ago"},
		{then: now.Add(-3 * time.Minute), want: "3 minutes ago"},
		{then: now.Add(-1 * time.Hour), want: "1 hour ago"},
		{then: now.Add(-7 * time.Hour), want: "7 hours ago"},
		{then: now.Add(-1 * 24 * time.Hour), want: "1 day ago"},
		{then: now.Add(-7 * 24 * time.Hour), want: "7 days ago"},
	}
	for _, tc := range cases {
		if got := RelativeTimeLabel(now, tc.then); got != tc.want {
			t.Fatalf("RelativeTimeLabel(%s) = %q, want %q", tc.then.UTC().Format(time.RFC3339), got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("hello world", 8); got != "hello..." {
		t.Fatalf("truncateRunes = %q", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Fatalf("truncateRunes should not touch short strings: %q", got)
	}
	if got := truncateRunes("abc", 2); got != ".." {
		t.Fatalf("truncateRunes tiny budget = %q", got)
	}
}

func TestToolbar_VariesByMode(t *testing.T) {
	if !strings.Contains(Toolbar("detail"), "i comment") {
		t.Fatalf("detail toolbar missing comment hint: %q", Toolbar("detail"))
	}
	if !strings.Contains(Toolbar("list"), "m moderation") {
		t.Fatalf("list toolbar missing moderation hint: %q", Toolbar("list"))
	}
	if !strings.Contains(Toolbar("moderation"), "a approve") {
		t.Fatalf("moderation toolbar missing approve hint: %q", Toolbar("moderation"))
	}
}

func TestFooter_ShowsViewerAndCounts(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := tuitheme.Default()

	plain := stripANSIText(Footer("list", "alice", 3, 10, 2, th))
	if !strings.Contains(plain, "alice") || !strings.Contains(plain, "3/10 posts") || !strings.Contains(plain, "2 pending requests") {
		t.Fatalf("unexpected footer: %q", plain)
	}

	anonymous := stripANSIText(Footer("list", "", 1, 1, 0, th))
	if !strings.Contains(anonymous, "anonymous") {
		t.Fatalf("anonymous viewer missing: %q", anonymous)
	}
	if strings.Contains(anonymous, "pending") {
		t.Fatalf("pending section should hide at zero: %q", anonymous)
	}
}
