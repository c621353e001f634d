package view

import (
	"strings"
	"testing"
	"time"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
)

func detailFor(post blogapi.Post, viewer feed.Viewer) string {
	return strings.Join(BuildDetailLines(post, viewer, 60), "\n")
}

func TestBuildDetailLines_VisiblePostShowsBody(t *testing.T) {
	post := blogapi.Post{
		Title:     "Hello",
		Author:    "alice",
		Content:   "the actual body",
		IsPublic:  true,
		Tags:      []string{"go", "tui"},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	out := detailFor(post, feed.Viewer{})

	if !strings.Contains(out, "the actual body") {
		t.Fatalf("body missing: %q", out)
	}
	if !strings.Contains(out, "Author: alice") || !strings.Contains(out, "Tags: go, tui") {
		t.Fatalf("metadata missing: %q", out)
	}
	if !strings.Contains(out, "Visibility: public") {
		t.Fatalf("visibility missing: %q", out)
	}
}

func TestBuildDetailLines_BlurredPostHidesBody(t *testing.T) {
	post := blogapi.Post{Title: "Secret", Author: "alice", Content: "hidden text"}
	out := detailFor(post, feed.Viewer{Username: "bob", Authenticated: true})

	if strings.Contains(out, "hidden text") {
		t.Fatalf("private body leaked: %q", out)
	}
	if !strings.Contains(out, "Press A to request access") {
		t.Fatalf("access hint missing: %q", out)
	}
}

func TestBuildDetailLines_NoticeVariesByAccessStatus(t *testing.T) {
	viewer := feed.Viewer{Username: "bob", Authenticated: true}

	pending := detailFor(blogapi.Post{Title: "S", Author: "alice", AccessStatus: blogapi.AccessPending}, viewer)
	if !strings.Contains(pending, "pending") {
		t.Fatalf("pending notice missing: %q", pending)
	}

	rejected := detailFor(blogapi.Post{Title: "S", Author: "alice", AccessStatus: blogapi.AccessRejected}, viewer)
	if !strings.Contains(rejected, "rejected") {
		t.Fatalf("rejected notice missing: %q", rejected)
	}
}

func TestBuildDetailLines_ApprovedUnlocksBody(t *testing.T) {
	post := blogapi.Post{Title: "Secret", Author: "alice", Content: "now readable", AccessStatus: blogapi.AccessApproved}
	out := detailFor(post, feed.Viewer{Username: "bob", Authenticated: true})
	if !strings.Contains(out, "now readable") {
		t.Fatalf("approved body missing: %q", out)
	}
}

func TestBuildDetailLines_CommentsListed(t *testing.T) {
	post := blogapi.Post{
		Title:    "T",
		Author:   "alice",
		IsPublic: true,
		Comments: []blogapi.Comment{
			{Author: "bob", Text: "newest", CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
			{Author: "carol", Text: "older"},
		},
	}
	out := detailFor(post, feed.Viewer{})

	newestIdx := strings.Index(out, "newest")
	olderIdx := strings.Index(out, "older")
	if newestIdx < 0 || olderIdx < 0 || newestIdx > olderIdx {
		t.Fatalf("comments should read newest first: %q", out)
	}
	if strings.Contains(out, "(none)") {
		t.Fatalf("placeholder should not appear alongside comments: %q", out)
	}
}

func TestBuildDetailLines_EmptyThreadPlaceholder(t *testing.T) {
	out := detailFor(blogapi.Post{Title: "T", Author: "alice", IsPublic: true}, feed.Viewer{})
	if !strings.Contains(out, "(none)") {
		t.Fatalf("empty thread placeholder missing: %q", out)
	}
}

func TestRenderDetailLines_Window(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}

	out := RenderDetailLines(lines, 1, 2)
	if out != "b\nc\n" {
		t.Fatalf("window = %q", out)
	}

	clamped := RenderDetailLines(lines, 99, 2)
	if clamped != "e\n" {
		t.Fatalf("clamped window = %q", clamped)
	}

	if got := RenderDetailLines(nil, 0, 2); got != "" {
		t.Fatalf("empty input = %q", got)
	}
}
