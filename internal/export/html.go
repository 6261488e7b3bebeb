package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"golang.org/x/net/html"
)

const languagePrefix = "language-"

func writeHTML(w io.Writer, root *html.Node, opts Options) error {
	out := dom.Clone(root)
	if opts.Highlight {
		if err := highlightCode(out, opts.Style); err != nil {
			return err
		}
	}
	for c := out.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// highlightCode replaces the text of every language-tagged code marker under
// root with chroma's inline-styled token spans.
func highlightCode(root *html.Node, styleName string) error {
	style := styles.Get(styleName) // unknown names get styles.Fallback
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.PreventSurroundingPre(true))

	var markers []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if format.IsCodeMarker(c) && codeLanguage(c) != "" {
				markers = append(markers, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)

	for _, code := range markers {
		lexer := lexers.Get(codeLanguage(code))
		if lexer == nil {
			continue
		}
		lexer = chroma.Coalesce(lexer)
		it, err := lexer.Tokenise(nil, dom.TextContent(code))
		if err != nil {
			return fmt.Errorf("tokenise %s: %w", codeLanguage(code), err)
		}
		var buf bytes.Buffer
		if err := formatter.Format(&buf, style, it); err != nil {
			return fmt.Errorf("highlight %s: %w", codeLanguage(code), err)
		}
		if err := dom.SetInnerHTML(code, buf.String()); err != nil {
			return fmt.Errorf("parse highlighted code: %w", err)
		}
	}
	return nil
}

// codeLanguage returns the language named by a language-* class.
func codeLanguage(n *html.Node) string {
	v, _ := dom.Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if strings.HasPrefix(c, languagePrefix) {
			return strings.TrimPrefix(c, languagePrefix)
		}
	}
	return ""
}
