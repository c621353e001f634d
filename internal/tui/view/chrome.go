package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/scribe-tui/scribe/internal/tui/theme"
)

func Toolbar(mode string) string {
	switch mode {
	case "detail":
		return "j/k scroll | [ ] prev/next | i comment | A request access | f follow author | esc back | ? help"
	case "compose":
		return "tab next field | ctrl+p toggle public | enter save | esc cancel"
	case "moderation":
		return "j/k move | a approve | x reject | r reload | esc back | ? help"
	case "login":
		return "tab switch field | ctrl+r register mode | enter submit | esc cancel"
	default:
		return "j/k move | enter open/toggle | f follow | A access | n new post | m moderation | a/t clear filters | r refresh | L login | ? help | q quit"
	}
}

func Footer(mode, viewer string, shown, total, pending int, th tuitheme.Theme) string {
	who := "anonymous"
	if viewer != "" {
		who = viewer
	}
	parts := []string{
		th.MetaLabel.Render("mode") + " " + th.MetaValue.Render(mode),
		th.MetaLabel.Render("viewer") + " " + th.MetaValue.Render(who),
		th.MetaValue.Render(fmt.Sprintf("%d/%d posts", shown, total)),
	}
	if pending > 0 {
		parts = append(parts, th.FacetCount.Render(fmt.Sprintf("%d pending requests", pending)))
	}
	return strings.Join(parts, " • ")
}

func MessagePanel(loading bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	stateLabel := th.StateIdle.Render("state")
	if warning != "" {
		state = "warning"
		stateLabel = th.StateWarn.Render("state")
	}
	if loading {
		state = "loading"
		stateLabel = th.StateLoad.Render("state")
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if warning != "" {
		main = warning
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
