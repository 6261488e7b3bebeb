package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/sanitize"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Content, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := &Content{Title: baseTitle(filename)}
	body := findBody(doc)
	if body == nil {
		body = doc
	}
	// Prefer <title>, then the first <h1>.
	if title := findTitle(doc); title != "" {
		content.Title = title
	} else if h := findHeading(body); h != "" {
		content.Title = h
	}
	if err := sanitize.Node(body); err != nil {
		return nil, err
	}
	content.Nodes = detach(body)
	return content, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(dom.TextContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// findHeading returns the text of the first top-level heading under n.
func findHeading(n *html.Node) string {
	if n.Type == html.ElementNode && headingLevel(n.Data) == 1 {
		return strings.TrimSpace(dom.TextContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHeading(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
