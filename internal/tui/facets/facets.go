// Package facets flattens the sidebar filters and the filtered feed into
// one navigable row list: section headers, filter toggles, tag and author
// facets with counts, then the posts themselves.
package facets

import (
	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
)

type RowKind string

const (
	RowSection RowKind = "section"
	RowToggle  RowKind = "toggle"
	RowTag     RowKind = "tag"
	RowAuthor  RowKind = "author"
	RowPost    RowKind = "post"
)

// Toggle identifiers carried in Row.Value.
const (
	ToggleMyPosts       = "my_posts"
	ToggleSubscriptions = "subscriptions"
	ToggleTagMode       = "tag_mode"
)

const (
	SectionFilters = "Filters"
	SectionTags    = "Tags"
	SectionAuthors = "Authors"
	SectionPosts   = "Posts"
)

type Row struct {
	Kind     RowKind
	Label    string
	Value    string
	Count    int
	Selected bool
	// PostIndex points into the filtered post slice for RowPost rows.
	PostIndex int
}

type BuildOptions struct {
	CollapsedSections map[string]bool
	HideFacets        bool
}

// BuildRows lays out the full navigable list. Counts are facet tallies
// against the filtered set; tags and authors are the known facet values in
// display order.
func BuildRows(filtered []blogapi.Post, tags, authors []string, sel feed.Selection, counts feed.Counts, opts BuildOptions) []Row {
	rows := make([]Row, 0, len(filtered)+len(tags)+len(authors)+8)

	if !opts.HideFacets {
		rows = append(rows, Row{Kind: RowSection, Label: SectionFilters})
		if !opts.CollapsedSections[SectionFilters] {
			rows = append(rows,
				Row{Kind: RowToggle, Label: "My posts", Value: ToggleMyPosts, Count: counts.MyPosts, Selected: sel.OnlyMine},
				Row{Kind: RowToggle, Label: "Subscriptions", Value: ToggleSubscriptions, Count: counts.Subscriptions, Selected: sel.OnlySubscriptions},
				Row{Kind: RowToggle, Label: "Tag match: " + sel.Mode.String(), Value: ToggleTagMode, Count: -1, Selected: sel.Mode == feed.MatchAll},
			)
		}

		if len(tags) > 0 {
			rows = append(rows, Row{Kind: RowSection, Label: SectionTags})
			if !opts.CollapsedSections[SectionTags] {
				for _, tag := range tags {
					rows = append(rows, Row{
						Kind:     RowTag,
						Label:    tag,
						Value:    tag,
						Count:    counts.Tags[tag],
						Selected: sel.Tags[tag],
					})
				}
			}
		}

		if len(authors) > 0 {
			rows = append(rows, Row{Kind: RowSection, Label: SectionAuthors})
			if !opts.CollapsedSections[SectionAuthors] {
				for _, author := range authors {
					rows = append(rows, Row{
						Kind:     RowAuthor,
						Label:    author,
						Value:    author,
						Count:    counts.Authors[author],
						Selected: sel.Authors[author],
					})
				}
			}
		}
	}

	rows = append(rows, Row{Kind: RowSection, Label: SectionPosts})
	if !opts.CollapsedSections[SectionPosts] {
		for i := range filtered {
			rows = append(rows, Row{Kind: RowPost, PostIndex: i})
		}
	}
	return rows
}

// FirstPostRow returns the index of the first post row, or the first row
// when the feed is empty.
func FirstPostRow(rows []Row) int {
	for i, row := range rows {
		if row.Kind == RowPost {
			return i
		}
	}
	return 0
}

// PostRowForIndex locates the row showing the given filtered-post index,
// -1 when it is not displayed (collapsed section).
func PostRowForIndex(rows []Row, postIndex int) int {
	for i, row := range rows {
		if row.Kind == RowPost && row.PostIndex == postIndex {
			return i
		}
	}
	return -1
}

// VisiblePostIndices lists the filtered-post indices currently displayed,
// in row order.
func VisiblePostIndices(rows []Row) []int {
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		if row.Kind == RowPost {
			out = append(out, row.PostIndex)
		}
	}
	return out
}
