package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
)

func TestStylePostTitle_ByRelation(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()
	viewer := feed.Viewer{Username: "alice", Authenticated: true}

	own := th.StylePostTitle(blogapi.Post{Author: "alice", IsPublic: true}, viewer, "Mine")
	if !strings.Contains(own, "\x1b[") {
		t.Fatalf("expected styled own title, got %q", own)
	}

	blurred := th.StylePostTitle(blogapi.Post{Author: "bob"}, viewer, "Hidden")
	if !strings.Contains(blurred, "\x1b[") {
		t.Fatalf("expected styled blurred title, got %q", blurred)
	}

	subscribed := th.StylePostTitle(blogapi.Post{Author: "bob", IsPublic: true, IsSubscribed: true}, viewer, "Followed")
	if !strings.Contains(subscribed, "\x1b[") {
		t.Fatalf("expected styled subscribed title, got %q", subscribed)
	}

	plain := th.StylePostTitle(blogapi.Post{Author: "carol", IsPublic: true}, viewer, "Other")
	if !strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected styled default title, got %q", plain)
	}
}

func TestAccessBadge_PerState(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := Default()

	cases := []struct {
		post blogapi.Post
		want string
	}{
		{blogapi.Post{IsPublic: true}, "[public]"},
		{blogapi.Post{}, "[private]"},
		{blogapi.Post{AccessStatus: blogapi.AccessPending}, "[pending]"},
		{blogapi.Post{AccessStatus: blogapi.AccessApproved}, "[approved]"},
		{blogapi.Post{AccessStatus: blogapi.AccessRejected}, "[rejected]"},
	}
	for _, tc := range cases {
		if got := th.AccessBadge(tc.post); got != tc.want {
			t.Fatalf("AccessBadge(%+v) = %q, want %q", tc.post, got, tc.want)
		}
	}
}

func TestAccessBadge_PublicWinsOverStatus(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	th := Default()

	got := th.AccessBadge(blogapi.Post{IsPublic: true, AccessStatus: blogapi.AccessPending})
	if got != "[public]" {
		t.Fatalf("public post should always badge public, got %q", got)
	}
}
