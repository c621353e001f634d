package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	FacetCount lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	TitleOwn        lipgloss.Style
	TitleSubscribed lipgloss.Style
	TitleDefault    lipgloss.Style
	TitleBlurred    lipgloss.Style

	BadgePublic   lipgloss.Style
	BadgePrivate  lipgloss.Style
	BadgePending  lipgloss.Style
	BadgeApproved lipgloss.Style
	BadgeRejected lipgloss.Style

	CommentAuthor lipgloss.Style
	HiddenBody    lipgloss.Style
	FacetSelected lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		FacetCount: lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		TitleOwn:        lipgloss.NewStyle().Bold(true).Foreground(cpRosewater),
		TitleSubscribed: lipgloss.NewStyle().Bold(true).Foreground(cpText),
		TitleDefault:    lipgloss.NewStyle().Foreground(cpSubtext0),
		TitleBlurred:    lipgloss.NewStyle().Italic(true).Foreground(cpOverlay1),

		BadgePublic:   lipgloss.NewStyle().Foreground(cpGreen),
		BadgePrivate:  lipgloss.NewStyle().Foreground(cpOverlay1),
		BadgePending:  lipgloss.NewStyle().Foreground(cpYellow),
		BadgeApproved: lipgloss.NewStyle().Foreground(cpGreen),
		BadgeRejected: lipgloss.NewStyle().Foreground(cpRed),

		CommentAuthor: lipgloss.NewStyle().Foreground(cpLavender),
		HiddenBody:    lipgloss.NewStyle().Italic(true).Foreground(cpOverlay1),
		FacetSelected: lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
	}
}

// StylePostTitle picks a title style by the post's relation to the viewer:
// own posts, subscribed authors, blurred teasers, everything else.
func (t Theme) StylePostTitle(post blogapi.Post, viewer feed.Viewer, title string) string {
	if title == "" {
		return title
	}
	vis := feed.PostVisibility(post, viewer)
	switch {
	case viewer.Authenticated && post.Author == viewer.Username:
		return t.TitleOwn.Render(title)
	case vis.Blurred:
		return t.TitleBlurred.Render(title)
	case post.IsSubscribed:
		return t.TitleSubscribed.Render(title)
	default:
		return t.TitleDefault.Render(title)
	}
}

// AccessBadge renders the access marker shown next to a post title.
func (t Theme) AccessBadge(post blogapi.Post) string {
	if post.IsPublic {
		return t.BadgePublic.Render("[public]")
	}
	switch post.AccessStatus {
	case blogapi.AccessPending:
		return t.BadgePending.Render("[pending]")
	case blogapi.AccessApproved:
		return t.BadgeApproved.Render("[approved]")
	case blogapi.AccessRejected:
		return t.BadgeRejected.Render("[rejected]")
	default:
		return t.BadgePrivate.Render("[private]")
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
