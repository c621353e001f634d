package view

import (
	"strings"
	"time"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
	"github.com/scribe-tui/scribe/internal/render/body"
)

// BuildDetailLines lays out the full post view. The title and metadata are
// always shown; the body appears only when the access rule allows it, with
// a teaser notice otherwise. Comments follow newest first.
func BuildDetailLines(post blogapi.Post, viewer feed.Viewer, width int) []string {
	lines := make([]string, 0, 32)
	lines = append(lines, body.WrapText(post.Title, width)...)
	lines = append(lines, strings.Repeat("=", boundedLen(post.Title, width)))
	lines = append(lines, "")

	lines = append(lines, body.WrapText("Author: "+post.Author, width)...)
	lines = append(lines, "Date: "+post.CreatedAt.UTC().Format(time.RFC3339))
	if len(post.Tags) > 0 {
		lines = append(lines, body.WrapText("Tags: "+strings.Join(post.Tags, ", "), width)...)
	}
	if post.IsPublic {
		lines = append(lines, "Visibility: public")
	} else {
		lines = append(lines, "Visibility: private")
	}
	if post.IsSubscribed {
		lines = append(lines, "Following author: yes")
	}

	vis := feed.PostVisibility(post, viewer)
	lines = append(lines, "")
	if vis.ContentVisible {
		lines = append(lines, body.ContentLines(post.Content, width)...)
	} else {
		notice := "This post is private. Press A to request access."
		switch post.AccessStatus {
		case blogapi.AccessPending:
			notice = "Access request pending — the author has not decided yet."
		case blogapi.AccessRejected:
			notice = "Access request rejected by the author."
		}
		lines = append(lines, body.WrapText(notice, width)...)
	}

	lines = append(lines, "", "Comments:")
	if len(post.Comments) == 0 {
		lines = append(lines, "  (none)")
	}
	for _, comment := range post.Comments {
		header := "  " + comment.Author
		if !comment.CreatedAt.IsZero() {
			header += " · " + comment.CreatedAt.UTC().Format(time.DateOnly)
		}
		lines = append(lines, header)
		for _, line := range body.WrapText(comment.Text, width-4) {
			lines = append(lines, "    "+line)
		}
	}
	return lines
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func boundedLen(s string, width int) int {
	n := len(s)
	if n < 1 {
		n = 1
	}
	if width > 0 && n > width {
		n = width
	}
	return n
}
