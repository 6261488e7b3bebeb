// Package export renders block content as html, markdown, plain text or docx.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"golang.org/x/net/html"
)

// Format is an export format.
type Format string

const (
	HTML     Format = "html"
	Markdown Format = "md"
	Text     Format = "txt"
	DOCX     Format = "docx"
)

// ParseFormat validates an export format name. "markdown" and "text" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return HTML, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "docx":
		return DOCX, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case Markdown:
		return "text/markdown; charset=utf-8"
	case Text:
		return "text/plain; charset=utf-8"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/html; charset=utf-8"
}

// Options tune an export.
type Options struct {
	// Highlight runs inline-code markers tagged language-* through chroma.
	Highlight bool
	// Style is the chroma style name used when highlighting.
	Style string
	// Defaults are the editable root's base style, used to resolve runs.
	Defaults dom.Defaults
}

// Write renders the children of root to w. root is not modified.
func Write(w io.Writer, root *html.Node, f Format, opts Options) error {
	if opts.Defaults == (dom.Defaults{}) {
		opts.Defaults = dom.DefaultStyle
	}
	switch f {
	case HTML:
		return writeHTML(w, root, opts)
	case Markdown:
		md, err := toMarkdown(root)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case Text:
		_, err := io.WriteString(w, toText(root))
		return err
	case DOCX:
		return writeDOCX(w, root, opts)
	}
	return fmt.Errorf("unsupported export format: %s", f)
}

var blockTags = map[string]bool{
	"div": true, "p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "li": true, "pre": true, "blockquote": true,
	"ul": true, "ol": true,
}

// line is a run of text nodes between block boundaries or <br>.
type line struct {
	tag   string
	texts []*html.Node
}

// lines splits the content under root into visual lines.
func lines(root *html.Node) []line {
	var out []line
	cur := line{}
	push := func(next string) {
		if len(cur.texts) > 0 {
			out = append(out, cur)
		}
		cur = line{tag: next}
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case dom.IsText(c):
				cur.texts = append(cur.texts, c)
			case dom.Tag(c) == "br":
				push(cur.tag)
			case blockTags[dom.Tag(c)]:
				outer := cur.tag
				push(dom.Tag(c))
				walk(c)
				push(outer)
			case dom.IsElement(c):
				walk(c)
			}
		}
	}
	walk(root)
	push("")
	return out
}

func toText(root *html.Node) string {
	var buf strings.Builder
	for i, l := range lines(root) {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for _, t := range l.texts {
			buf.WriteString(t.Data)
		}
	}
	return buf.String()
}
