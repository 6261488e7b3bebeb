package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Content, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "textblock-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	content := &Content{Title: baseTitle(filename)}
	titled := false
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		block := dom.NewElement("div")
		if level := docxHeadingLevel(para); level > 0 {
			block = dom.NewElement(fmt.Sprintf("h%d", level))
			if level == 1 && !titled {
				content.Title = strings.TrimSpace(docxParagraphText(para))
				titled = content.Title != ""
			}
		}
		for _, child := range para.Children {
			if run, ok := child.(*docx.Run); ok {
				if n := docxRun(run); n != nil {
					block.AppendChild(n)
				}
			}
		}
		if block.FirstChild == nil {
			block.AppendChild(dom.NewElement("br"))
		}
		content.Nodes = append(content.Nodes, block)
	}
	return content, nil
}

// docxRun converts a run to a text node wrapped in the elements its run
// properties ask for.
func docxRun(run *docx.Run) *html.Node {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	if buf.Len() == 0 {
		return nil
	}
	n := dom.NewText(buf.String())
	props := run.RunProperties
	if props == nil {
		return n
	}

	wrap := func(tag string) {
		el := dom.NewElement(tag)
		el.AppendChild(n)
		n = el
	}
	var face, color string
	if props.Fonts != nil {
		face = props.Fonts.ASCII
	}
	if props.Color != nil && props.Color.Val != "" && !strings.EqualFold(props.Color.Val, "auto") {
		if rgb, ok := dom.ParseColor("#" + props.Color.Val); ok {
			color = rgb.Hex()
		}
	}
	if face != "" || color != "" {
		wrap("font")
		if face != "" {
			dom.SetAttr(n, "face", face)
		}
		if color != "" {
			dom.SetAttr(n, "color", color)
		}
	}
	if props.Underline != nil && props.Underline.Val != "none" {
		wrap("u")
	}
	if props.Italic != nil {
		wrap("i")
	}
	if props.Bold != nil {
		wrap("b")
	}
	return n
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	if d := style[len(style)-1]; d >= '1' && d <= '6' {
		return int(d - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}
