// Package sanitize strips untrusted markup down to what an editable block
// may hold: inline formatting, a handful of block elements and links.
package sanitize

import (
	"fmt"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"b", "strong", "i", "em", "u", "ins", "s", "strike", "del",
		"code", "kbd", "samp", "tt", "span", "font", "br", "sub", "sup", "mark",
		"div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre",
	)
	p.AllowAttrs("class", "title").Globally()
	p.AllowAttrs("face", "color").OnElements("font")
	p.AllowStyles(
		"color", "background-color", "font-family", "font-weight", "font-style",
		"text-decoration", "text-decoration-line",
	).Globally()

	p.AllowAttrs("href").OnElements("a")
	p.AllowElements("a")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")

	// Page chrome and form controls go with everything inside them.
	p.SkipElementsContent(
		"nav", "header", "footer", "form", "button", "select", "textarea",
		"template", "head", "svg", "canvas", "video", "audio",
	)
	return p
}

// HTML returns s with everything outside the editable allowlist removed.
func HTML(s string) string {
	return policy.Sanitize(s)
}

// Node sanitises the subtree under n in place. <code> elements become
// inline-code markers.
func Node(n *html.Node) error {
	inner, err := dom.InnerHTML(n)
	if err != nil {
		return fmt.Errorf("sanitize: %w", err)
	}
	if err := dom.SetInnerHTML(n, policy.Sanitize(inner)); err != nil {
		return fmt.Errorf("sanitize: %w", err)
	}
	markCode(n)
	return nil
}

func markCode(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.Tag(c) == "code" && !dom.HasClass(c, format.CodeClass) && !dom.HasClass(c, format.LegacyCodeClass) {
			addClass(c, format.CodeClass)
		}
		markCode(c)
	}
}

func addClass(n *html.Node, class string) {
	if v, ok := dom.Attr(n, "class"); ok && strings.TrimSpace(v) != "" {
		dom.SetAttr(n, "class", v+" "+class)
		return
	}
	dom.SetAttr(n, "class", class)
}
