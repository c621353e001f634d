// Package body converts post content into wrapped terminal lines. Posts
// are usually plain text but the composer tolerates pasted HTML, so both
// forms render through the same path.
package body

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

// ContentLines renders a post body at the given width. HTML-looking input
// is tokenized and flattened to paragraphs; plain text passes through.
func ContentLines(content string, width int) []string {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil
	}
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		if flattened := flattenHTML(text); flattened != "" {
			text = flattened
		}
	}
	return WrapText(text, width)
}

var blockBreakTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
	"blockquote": true, "pre": true, "table": true, "tr": true,
}

var skipTags = map[string]bool{"script": true, "style": true}

func flattenHTML(raw string) string {
	tokenizer := nethtml.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skipDepth := 0

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case nethtml.ErrorToken:
			return collapseBlankLines(b.String())
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipTags[tag] && tokenType == nethtml.StartTagToken {
				skipDepth++
			}
			if tag == "br" {
				b.WriteString("\n")
			}
		case nethtml.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockBreakTags[tag] {
				b.WriteString("\n\n")
			}
		case nethtml.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(string(tokenizer.Text()))
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// WrapText word-wraps at width, keeping paragraph breaks. Words longer
// than the width are hard-split.
func WrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))

	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for len(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, word[:width])
				word = word[width:]
			}
			if line == "" {
				line = word
				continue
			}
			if len(line)+1+len(word) <= width {
				line += " " + word
				continue
			}
			out = append(out, line)
			line = word
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
