package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

const monospaceFont = "Courier New"

// writeDOCX writes one paragraph per line. Each text node becomes a run whose
// properties come from its resolved style.
func writeDOCX(w io.Writer, root *html.Node, opts Options) error {
	doc := docx.New().WithDefaultTheme()
	for _, l := range lines(root) {
		para := doc.AddParagraph()
		if len(l.tag) == 2 && l.tag[0] == 'h' && l.tag[1] >= '1' && l.tag[1] <= '6' {
			para.Style("Heading" + l.tag[1:])
		}
		for _, t := range l.texts {
			if t.Data == "" {
				continue
			}
			addRun(para, t.Data, dom.Compute(t.Parent, root, opts.Defaults), opts.Defaults)
		}
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addRun(para *docx.Paragraph, text string, cs dom.ComputedStyle, d dom.Defaults) {
	run := para.AddText(text)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok && strings.TrimSpace(t.Text) != t.Text {
			t.XMLSpace = "preserve"
		}
	}
	if cs.FontWeight >= 700 {
		run.Bold()
	}
	if cs.FontStyle == "italic" {
		run.Italic()
	}
	if strings.Contains(cs.TextDecoration, "underline") {
		run.Underline("single")
	}
	if c, ok := dom.ParseColor(cs.Color); ok && c != dom.Black {
		run.Color(strings.TrimPrefix(c.Hex(), "#"))
	}
	if face := runFont(cs.FontFamily, d.FontFamily); face != "" {
		run.Font(face, face, face, "")
	}
}

// runFont names the font a run needs, or "" when the document default
// applies.
func runFont(family, base string) string {
	if family == "" || family == base {
		return ""
	}
	if name, ok := format.MatchFont(family); ok {
		if name == format.DefaultFont {
			return ""
		}
		return name
	}
	if strings.Contains(strings.ToLower(family), "monospace") {
		return monospaceFont
	}
	return format.DisplayName(family)
}
