package export

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	mdOnce sync.Once
	mdConv *converter.Converter
)

// markdownConverter writes bold, italic and code with commonmark syntax and
// underline as <u>, which markdown has no syntax for. Fonts and colours are
// dropped.
func markdownConverter() *converter.Converter {
	mdOnce.Do(func() {
		mdConv = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithStrongDelimiter("**"),
					commonmark.WithEmDelimiter("*"),
				),
			),
		)
		mdConv.Register.PreRenderer(renameCodeMarkers, converter.PriorityEarly)
		for _, tag := range []string{"u", "span", "font"} {
			mdConv.Register.RendererFor(tag, converter.TagTypeInline, renderStyled, converter.PriorityEarly)
		}
	})
	return mdConv
}

// renderStyled handles elements whose emphasis comes from their tag or their
// own inline style rather than from b/i.
func renderStyled(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var marks [][2]string
	st := dom.InlineStyle(n)
	if isBold(st.Get("font-weight")) {
		marks = append(marks, [2]string{"**", "**"})
	}
	if strings.EqualFold(st.Get("font-style"), "italic") {
		marks = append(marks, [2]string{"*", "*"})
	}
	if dom.Tag(n) == "u" || strings.Contains(strings.ToLower(st.Get("text-decoration")), "underline") {
		marks = append(marks, [2]string{"<u>", "</u>"})
	}
	if len(marks) == 0 {
		return converter.RenderTryNext
	}

	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	text := buf.String()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		w.WriteString(text)
		return converter.RenderSuccess
	}
	// Emphasis markers must hug the text.
	lead := text[:len(text)-len(strings.TrimLeft(text, " \t\n"))]
	trail := text[len(strings.TrimRight(text, " \t\n")):]
	for i := len(marks) - 1; i >= 0; i-- {
		trimmed = marks[i][0] + trimmed + marks[i][1]
	}
	w.WriteString(lead + trimmed + trail)
	return converter.RenderSuccess
}

// renameCodeMarkers turns class-marked code spans into <code> so they render
// as code spans.
func renameCodeMarkers(_ converter.Context, doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if format.IsCodeMarker(n) && n.DataAtom != atom.Code {
			n.Data, n.DataAtom = "code", atom.Code
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

func toMarkdown(root *html.Node) (string, error) {
	// The converter collapses whitespace in place.
	out, err := markdownConverter().ConvertNode(dom.Clone(root))
	if err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	md := strings.TrimSpace(string(out))
	if md == "" {
		return "", nil
	}
	return md + "\n", nil
}

func isBold(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "bold", "bolder", "700", "800", "900":
		return true
	}
	return false
}
