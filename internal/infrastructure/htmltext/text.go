package htmltext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Config struct {
	TagsToSkip    []string
	BlockTags     []string
	MaxOutputRune int
}

// DefaultConfig drops non-content tags and breaks lines on block elements.
var DefaultConfig = Config{
	TagsToSkip: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "sup",
	},
	BlockTags: []string{
		"p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"table", "tr", "section", "article", "blockquote", "dd", "dt",
	},
}

// Extract converts an HTML fragment into plain text. Input that is not HTML
// comes back with whitespace normalized.
func Extract(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return Truncate(normalize(rawHTML), cfg.MaxOutputRune)
	}

	var sb strings.Builder
	for _, n := range nodes {
		collectText(&sb, n, cfg)
	}

	return Truncate(normalize(sb.String()), cfg.MaxOutputRune)
}

func collectText(sb *strings.Builder, n *html.Node, cfg *Config) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.TagsToSkip...) {
			return
		}
	}

	block := n.Type == html.ElementNode && isOneOf(n.Data, cfg.BlockTags...)
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(sb, c, cfg)
	}
	if block {
		sb.WriteString("\n")
	}
}

// normalize collapses runs of spaces inside lines and drops empty lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Truncate cuts s to at most maxRunes runes. Zero or negative means no limit.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
