package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/sanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Content, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	content := &Content{Title: baseTitle(filename)}
	if title := firstHeading(doc, src); title != "" {
		content.Title = title
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	root := dom.NewRoot()
	if err := dom.SetInnerHTML(root, buf.String()); err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	if err := sanitize.Node(root); err != nil {
		return nil, err
	}
	trimBlankText(root)
	content.Nodes = detach(root)
	return content, nil
}

// firstHeading returns the text of the first level-1 heading.
func firstHeading(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return strings.TrimSpace(extractText(h, src))
		}
	}
	return ""
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return buf.String()
}

// trimBlankText drops the whitespace-only text nodes the renderer leaves
// between blocks.
func trimBlankText(root *html.Node) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if dom.IsText(c) && strings.TrimSpace(c.Data) == "" {
			root.RemoveChild(c)
		}
		c = next
	}
}
