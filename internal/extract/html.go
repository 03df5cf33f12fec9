package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true,
}

// VisibleText returns the human-visible text of an HTML document, skipping
// scripts and styles. Anchor targets are kept inline after the anchor text
// so that linked sources remain visible to the citation grammars.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			if n.Data == "a" {
				href := attr(n, "href")
				isWeb := strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
				if isWeb && !strings.Contains(textOf(n), href) {
					buf.WriteString(href)
					buf.WriteString(" ")
				}
			}
			if blockElements[n.Data] {
				buf.WriteString("\n")
			}
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}

// textOf concatenates the text nodes below n
func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else {
			sb.WriteString(textOf(c))
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
