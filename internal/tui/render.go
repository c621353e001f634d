package tui

import (
	"fmt"
	"strings"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
	"github.com/scribe-tui/scribe/internal/tui/facets"
	tuistate "github.com/scribe-tui/scribe/internal/tui/state"
	"github.com/scribe-tui/scribe/internal/tui/view"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("scribe"))
	b.WriteString("  ")
	b.WriteString(m.theme.ModePill.Render(m.mode.String()))
	b.WriteString("\n")
	b.WriteString(m.theme.MetaLabel.Render(view.Toolbar(m.toolbarMode())))
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(m.renderHelp())
	case m.mode == modeLogin:
		b.WriteString(m.renderLogin())
	case m.mode == modeCompose:
		b.WriteString(m.renderCompose())
	case m.mode == modeDetail:
		b.WriteString(m.renderDetail())
	case m.mode == modeModeration:
		b.WriteString(m.renderModeration())
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	b.WriteString(view.MessagePanel(m.loading, m.statusLine(), warning, m.theme))
	b.WriteString(" | ")
	b.WriteString(m.theme.MetaLabel.Render(m.startupMetrics()))
	b.WriteString("\n")
	b.WriteString(view.Footer(m.mode.String(), m.viewer.Username, len(m.filtered), len(m.posts), len(feed.PendingRequests(m.requests)), m.theme))
	b.WriteString("\n")
	return b.String()
}

func (m Model) toolbarMode() string {
	if m.mode == modeList {
		return "list"
	}
	return m.mode.String()
}

func (m Model) statusLine() string {
	if m.loading {
		return m.spin.View() + " working"
	}
	return m.status
}

func (m Model) startupMetrics() string {
	cachePart := "cache n/a"
	if m.cacheLoadDuration > 0 || m.cacheLoadedEntries > 0 {
		cachePart = fmt.Sprintf("cache %dms (%d posts)", m.cacheLoadDuration.Milliseconds(), m.cacheLoadedEntries)
	}
	refreshPart := "initial refresh pending"
	if m.initialRefreshDone {
		refreshPart = fmt.Sprintf("initial refresh %dms", m.initialRefreshDuration.Milliseconds())
		if m.initialRefreshFailed {
			refreshPart = fmt.Sprintf("initial refresh failed in %dms", m.initialRefreshDuration.Milliseconds())
		}
	}
	return cachePart + ", " + refreshPart
}

func (m Model) renderList() string {
	if len(m.rows) == 0 {
		return "  No posts.\n"
	}

	height := tuistate.PageStep(m.height, m.status != "")
	start, end := tuistate.CenteredWindow(len(m.rows), m.cursor, height)

	var b strings.Builder
	for i := start; i < end; i++ {
		row := m.rows[i]
		active := i == m.cursor
		switch row.Kind {
		case facets.RowSection:
			b.WriteString(view.RenderSectionLine(row.Label, active, m.theme))
		case facets.RowToggle, facets.RowTag, facets.RowAuthor:
			b.WriteString(view.RenderFacetLine(row.Label, row.Count, row.Selected, active, m.theme))
		case facets.RowPost:
			post := m.filtered[row.PostIndex]
			b.WriteString(view.RenderPostLine(view.PostLineParams{
				Post:         post,
				Viewer:       m.viewer,
				Now:          m.nowFn(),
				RelativeTime: m.relativeTime,
				Compact:      m.compact,
				ShowNumbers:  m.showNumbers,
				VisiblePos:   tuistate.PostRowsBefore(m.rows, i),
				Active:       active,
				Selected:     post.ID == m.selectedPostID,
				Width:        m.contentWidth(),
			}, m.theme))
			if !m.compact && post.LatestComment != nil {
				if preview := view.CommentPreviewLine(post, m.contentWidth(), m.theme); preview != "" {
					b.WriteString("\n")
					b.WriteString(preview)
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	post, ok := m.detailPost()
	if !ok {
		return "  Post no longer available.\n"
	}
	lines := view.BuildDetailLines(post, m.viewer, m.contentWidth())
	out := view.RenderDetailLines(lines, m.detailTop, m.detailBodyHeight())
	if m.commentFocused {
		out += "\n" + m.theme.CommentAuthor.Render("comment> ") + m.commentInput.View() + "\n"
	}
	return out
}

func (m Model) renderLogin() string {
	var b strings.Builder
	title := "Login"
	if m.registerMode {
		title = "Register"
	}
	b.WriteString(m.theme.Section.Render("■ " + title))
	b.WriteString("\n\n")
	b.WriteString("  " + m.theme.MetaLabel.Render("username") + " " + m.loginInputs[0].View() + "\n")
	b.WriteString("  " + m.theme.MetaLabel.Render("password") + " " + m.loginInputs[1].View() + "\n")
	if m.registerMode {
		b.WriteString("  " + m.theme.MetaLabel.Render("email   ") + " " + m.loginInputs[2].View() + "\n")
	}
	if m.loginErr != "" {
		b.WriteString("\n  " + m.theme.StateWarn.Render(m.loginErr) + "\n")
	}
	return b.String()
}

func (m Model) renderCompose() string {
	var b strings.Builder
	title := "New post"
	if m.editingPostID != "" {
		title = "Edit post"
	}
	b.WriteString(m.theme.Section.Render("■ " + title))
	b.WriteString("\n\n")
	b.WriteString("  " + m.theme.MetaLabel.Render("title  ") + " " + m.composeTitle.View() + "\n")
	b.WriteString("  " + m.theme.MetaLabel.Render("tags   ") + " " + m.composeTags.View() + "\n")
	b.WriteString("  " + m.theme.MetaLabel.Render("content") + " " + m.composeContent.View() + "\n\n")
	visibility := "private"
	if m.composePublic {
		visibility = "public"
	}
	b.WriteString("  " + m.theme.MetaLabel.Render("visibility") + " " + m.theme.MetaValue.Render(visibility) + "\n")
	return b.String()
}

func (m Model) renderModeration() string {
	pending := feed.PendingRequests(m.requests)
	var b strings.Builder
	b.WriteString(m.theme.Section.Render("■ Access requests"))
	b.WriteString("\n\n")
	if len(pending) == 0 {
		b.WriteString("  No pending requests.\n")
		return b.String()
	}
	for i, request := range m.requests {
		if request.Status != blogapi.AccessPending {
			continue
		}
		marker := "  "
		if i == m.requestCursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s wants access to post %s", marker, request.Requester, request.PostID)
		if !request.CreatedAt.IsZero() {
			line += m.theme.MetaLabel.Render("  (" + request.CreatedAt.UTC().Format("2006-01-02") + ")")
		}
		b.WriteString(m.theme.RenderActiveLine(i == m.requestCursor, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"j/k, ↓/↑", "move"},
			{"g/G", "first/last row"},
			{"pgup/pgdn", "page"},
			{"enter", "open post, toggle facet, fold section"},
			{"esc", "back"},
		}},
		{"Feed", [][2]string{
			{"r", "reload feed"},
			{"t", "clear tag filters"},
			{"a", "clear author filters"},
			{"f", "follow the highlighted author"},
			{"A", "request access to a private post"},
		}},
		{"Writing", [][2]string{
			{"n", "new post"},
			{"e", "edit own post"},
			{"D D", "delete own post"},
			{"i", "comment (detail view)"},
		}},
		{"Account", [][2]string{
			{"L", "login"},
			{"ctrl+r", "register (login screen)"},
			{"O", "logout"},
			{"m", "moderate access requests"},
		}},
		{"Display", [][2]string{
			{"c", "compact rows"},
			{"d", "relative dates"},
			{"N", "row numbers"},
		}},
	}

	var b strings.Builder
	for _, section := range sections {
		b.WriteString(m.theme.Section.Render(section.title))
		b.WriteString("\n")
		for _, kv := range section.keys {
			b.WriteString("  " + m.theme.FacetSelected.Render(fmt.Sprintf("%-12s", kv[0])) + " " + kv[1] + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.MetaLabel.Render("press ? or esc to close"))
	b.WriteString("\n")
	return b.String()
}
