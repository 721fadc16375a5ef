// Package paragraphs turns rich-text content into the ordered paragraph units
// used by the per-paragraph question step.
package paragraphs

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/mlopes/apreciador/model"
)

// Paragraphs shorter than this (trimmed, in runes) are decorative noise and
// are dropped from extraction.
const minLength = 10

var reBlankLines = regexp.MustCompile(`\n\s*\n`)

// Extract parses content into its paragraph list. Content without any <p>
// markup gets loose lines wrapped into paragraphs first. Malformed HTML never
// fails: whatever paragraph elements the tolerant parser finds are used.
// Surviving paragraphs are numbered p1..pM with no gaps.
func Extract(raw string) []model.Paragraph {
	if !strings.Contains(raw, "<p") {
		raw = autop(raw)
	}

	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return []model.Paragraph{}
	}

	out := []model.Paragraph{}
	count := 1
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "p" {
			return
		}
		text := strings.TrimSpace(nodeText(n))
		if utf8.RuneCountInString(text) <= minLength {
			return
		}
		out = append(out, model.Paragraph{
			ID:      fmt.Sprintf("p%d", count),
			Content: text,
		})
		count++
	})
	return out
}

// PlainText strips all markup from content, for prompt context.
func PlainText(raw string) string {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.TrimSpace(nodeText(root))
}

// autop wraps blank-line separated blocks in <p> tags, mirroring how the host
// CMS auto-paragraphs plain content before display.
func autop(raw string) string {
	var b strings.Builder
	for _, block := range reBlankLines.Split(raw, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(block)
		b.WriteString("</p>\n")
	}
	return b.String()
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}
