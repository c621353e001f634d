// Package feed holds the feed composition rules: what the viewer is allowed
// to see, which posts pass the active filter selection, and how the sidebar
// counts are derived. Everything here is pure data transformation; fetching
// and persistence live elsewhere.
package feed

import (
	"sort"
	"strings"

	"github.com/scribe-tui/scribe/internal/blogapi"
)

// Viewer is the identity the rules are evaluated against. An anonymous
// viewer has Authenticated false and an empty Username.
type Viewer struct {
	Username      string
	Authenticated bool
}

// MatchMode selects how multiple chosen tags combine.
type MatchMode int

const (
	MatchAny MatchMode = iota
	MatchAll
)

func (m MatchMode) String() string {
	if m == MatchAll {
		return "ALL"
	}
	return "ANY"
}

// Selection is the ephemeral filter state. It lives for the page view only
// and resets on restart.
type Selection struct {
	Tags              map[string]bool
	Authors           map[string]bool
	Mode              MatchMode
	OnlyMine          bool
	OnlySubscriptions bool
}

func NewSelection() Selection {
	return Selection{
		Tags:    make(map[string]bool),
		Authors: make(map[string]bool),
	}
}

func (s *Selection) ToggleTag(tag string) {
	if s.Tags[tag] {
		delete(s.Tags, tag)
		return
	}
	s.Tags[tag] = true
}

func (s *Selection) ToggleAuthor(author string) {
	if s.Authors[author] {
		delete(s.Authors, author)
		return
	}
	s.Authors[author] = true
}

func (s *Selection) ToggleMode() {
	if s.Mode == MatchAll {
		s.Mode = MatchAny
		return
	}
	s.Mode = MatchAll
}

// Visibility is the per-post presentation outcome. The two flags are
// independent: a blurred post still shows its title and author as a teaser
// while the body stays hidden.
type Visibility struct {
	Blurred        bool
	ContentVisible bool
}

// PostVisibility applies the access rule. Public posts are always readable;
// private posts are readable only by their author or once an access request
// is approved.
func PostVisibility(post blogapi.Post, viewer Viewer) Visibility {
	ownPost := viewer.Authenticated && post.Author == viewer.Username
	visible := post.IsPublic || ownPost || post.AccessStatus == blogapi.AccessApproved
	return Visibility{
		Blurred:        !post.IsPublic && !ownPost && post.AccessStatus != blogapi.AccessApproved,
		ContentVisible: visible,
	}
}

// Normalize patches server payload gaps in place: a missing comments array
// becomes an empty one so downstream code never nil-checks it.
func Normalize(posts []blogapi.Post) {
	for i := range posts {
		if posts[i].Comments == nil {
			posts[i].Comments = []blogapi.Comment{}
		}
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
	}
}

// Sort orders newest first. The sort must stay stable: posts sharing a
// created_at keep their server-returned order across reloads.
func Sort(posts []blogapi.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// Filter returns the posts passing every active category. Categories
// combine with AND; within the tags category the mode switches ALL/ANY.
func Filter(posts []blogapi.Post, sel Selection, viewer Viewer) []blogapi.Post {
	out := make([]blogapi.Post, 0, len(posts))
	for _, post := range posts {
		if Matches(post, sel, viewer) {
			out = append(out, post)
		}
	}
	return out
}

// Matches reports whether a single post passes the selection.
func Matches(post blogapi.Post, sel Selection, viewer Viewer) bool {
	if !matchesTags(post.Tags, sel) {
		return false
	}
	if len(sel.Authors) > 0 && !sel.Authors[post.Author] {
		return false
	}
	if sel.OnlyMine && post.Author != viewer.Username {
		return false
	}
	if sel.OnlySubscriptions && !isSubscriptionPost(post, viewer) {
		return false
	}
	return true
}

func matchesTags(tags []string, sel Selection) bool {
	if len(sel.Tags) == 0 {
		return true
	}
	have := make(map[string]bool, len(tags))
	for _, tag := range tags {
		have[tag] = true
	}
	if sel.Mode == MatchAll {
		for tag := range sel.Tags {
			if !have[tag] {
				return false
			}
		}
		return true
	}
	for tag := range sel.Tags {
		if have[tag] {
			return true
		}
	}
	return false
}

// A viewer's own posts never count as a subscription match, even when the
// server flags them subscribed.
func isSubscriptionPost(post blogapi.Post, viewer Viewer) bool {
	return post.IsSubscribed && post.Author != viewer.Username
}

// Counts are the sidebar facet tallies. They are computed against the
// filtered set, not the raw feed, so each number reads as "how many of the
// currently visible posts match this facet".
type Counts struct {
	Tags          map[string]int
	Authors       map[string]int
	Subscriptions int
	MyPosts       int
}

func CountFacets(filtered []blogapi.Post, allTags, allAuthors []string, viewer Viewer) Counts {
	counts := Counts{
		Tags:    make(map[string]int, len(allTags)),
		Authors: make(map[string]int, len(allAuthors)),
	}
	for _, tag := range allTags {
		counts.Tags[tag] = 0
	}
	for _, author := range allAuthors {
		counts.Authors[author] = 0
	}
	for _, post := range filtered {
		for _, tag := range post.Tags {
			if _, known := counts.Tags[tag]; known {
				counts.Tags[tag]++
			}
		}
		if _, known := counts.Authors[post.Author]; known {
			counts.Authors[post.Author]++
		}
		if isSubscriptionPost(post, viewer) {
			counts.Subscriptions++
		}
		if post.Author == viewer.Username && viewer.Username != "" {
			counts.MyPosts++
		}
	}
	return counts
}

// Tags returns the distinct tags across the feed, sorted case-insensitively.
func Tags(posts []blogapi.Post) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 16)
	for _, post := range posts {
		for _, tag := range post.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sortFold(out)
	return out
}

// Authors returns the distinct authors across the feed, sorted
// case-insensitively.
func Authors(posts []blogapi.Post) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 16)
	for _, post := range posts {
		if !seen[post.Author] {
			seen[post.Author] = true
			out = append(out, post.Author)
		}
	}
	sortFold(out)
	return out
}

func sortFold(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		li := strings.ToLower(values[i])
		lj := strings.ToLower(values[j])
		if li != lj {
			return li < lj
		}
		return values[i] < values[j]
	})
}

// PrependComment inserts a freshly created comment at the head of its
// post's thread (newest first) and refreshes the preview. Mutation happens
// only after the server confirmed the comment, so a failed call leaves the
// feed untouched.
func PrependComment(posts []blogapi.Post, postID string, comment blogapi.Comment) {
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		posts[i].Comments = append([]blogapi.Comment{comment}, posts[i].Comments...)
		latest := comment
		posts[i].LatestComment = &latest
		return
	}
}

// SetAccessStatus records the server-returned status of an access request
// on the local post.
func SetAccessStatus(posts []blogapi.Post, postID string, status blogapi.AccessStatus) {
	for i := range posts {
		if posts[i].ID == postID {
			posts[i].AccessStatus = status
			return
		}
	}
}

// SetComments replaces a post's thread with the server's full list.
func SetComments(posts []blogapi.Post, postID string, comments []blogapi.Comment) {
	for i := range posts {
		if posts[i].ID == postID {
			if comments == nil {
				comments = []blogapi.Comment{}
			}
			posts[i].Comments = comments
			return
		}
	}
}

// IndexByID locates a post in the feed, -1 when absent.
func IndexByID(posts []blogapi.Post, postID string) int {
	for i := range posts {
		if posts[i].ID == postID {
			return i
		}
	}
	return -1
}

// AddSubscription adds an author to the local subscriptions set, once.
func AddSubscription(subscriptions []string, author string) []string {
	for _, existing := range subscriptions {
		if existing == author {
			return subscriptions
		}
	}
	return append(subscriptions, author)
}

// PendingRequests narrows the moderation list to requests still awaiting a
// decision; resolved requests stay server-side but are not displayed.
func PendingRequests(requests []blogapi.AccessRequest) []blogapi.AccessRequest {
	out := make([]blogapi.AccessRequest, 0, len(requests))
	for _, request := range requests {
		if request.Status == blogapi.AccessPending {
			out = append(out, request)
		}
	}
	return out
}
