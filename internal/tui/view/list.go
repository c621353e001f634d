package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
	tuitheme "github.com/scribe-tui/scribe/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type PostLineParams struct {
	Post         blogapi.Post
	Viewer       feed.Viewer
	Now          time.Time
	RelativeTime bool
	Compact      bool
	ShowNumbers  bool
	VisiblePos   int
	Active       bool
	Selected     bool
	Width        int
}

// RenderPostLine draws one feed row: cursor and selection markers, access
// badge, styled title with author, date right-aligned.
func RenderPostLine(p PostLineParams, th tuitheme.Theme) string {
	date := p.Post.CreatedAt.UTC().Format(time.DateOnly)
	if p.RelativeTime {
		date = RelativeTimeLabel(p.Now, p.Post.CreatedAt)
	}

	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	selectedMarker := " "
	if p.Selected {
		selectedMarker = "*"
	}

	prefix := fmt.Sprintf("    %s%s ", cursorMarker, selectedMarker)
	if p.ShowNumbers {
		prefix = fmt.Sprintf("    %s%s%2d. ", cursorMarker, selectedMarker, p.VisiblePos+1)
	}

	badge := th.AccessBadge(p.Post)
	dateLabel := "[" + date + "]"

	label := strings.TrimSpace(p.Post.Title)
	if label == "" {
		label = "(untitled)"
	}
	if !p.Compact {
		label = label + " — " + p.Post.Author
	}

	available := p.Width - visibleLen(prefix) - visibleLen(badge) - 2 - visibleLen(dateLabel)
	if available < 1 {
		available = 1
	}
	label = truncateRunes(label, available)
	styled := th.StylePostTitle(p.Post, p.Viewer, label)

	gap := p.Width - visibleLen(prefix) - visibleLen(badge) - 1 - visibleLen(label) - visibleLen(dateLabel)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+badge+" "+styled+strings.Repeat(" ", gap)+dateLabel)
}

// CommentPreviewLine renders the denormalized latest-comment teaser shown
// under a post row in the expanded list.
func CommentPreviewLine(post blogapi.Post, width int, th tuitheme.Theme) string {
	comment := post.LatestComment
	if comment == nil {
		return ""
	}
	author := th.CommentAuthor.Render(comment.Author)
	text := strings.Join(strings.Fields(comment.Text), " ")
	line := "        ↳ " + author + ": " + text
	available := width
	if available < 1 {
		available = 80
	}
	if visibleLen(line) > available {
		overflow := visibleLen(line) - available + 3
		text = truncateRunes(text, max(1, utf8.RuneCountInString(text)-overflow))
		line = "        ↳ " + author + ": " + text
	}
	return line
}

// RenderFacetLine draws a tag, author, or toggle row with its count.
func RenderFacetLine(label string, count int, selected, active bool, th tuitheme.Theme) string {
	marker := "[ ]"
	if selected {
		marker = "[x]"
	}
	left := "  " + marker + " " + label
	if selected {
		left = "  " + marker + " " + th.FacetSelected.Render(label)
	}
	if count >= 0 {
		left += " " + th.FacetCount.Render(fmt.Sprintf("(%d)", count))
	}
	return th.RenderActiveLine(active, left)
}

func RenderSectionLine(label string, active bool, th tuitheme.Theme) string {
	return th.RenderActiveLine(active, th.Section.Render("■ "+label))
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) {
		return "just now"
	}
	d := now.Sub(then)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", n)
	}
	if d < 24*time.Hour {
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", n)
	}
	n := int(d / (24 * time.Hour))
	if n == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", n)
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
