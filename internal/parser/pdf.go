package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

var errNoText = errors.New("no extractable text")

// PDFParser handles PDF files. It reads styled text runs with the Go library
// and can fall back to plain pdftotext output.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Content, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "textblock-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	content := &Content{Title: baseTitle(filename)}
	nodes, err := extractPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		var text string
		text, err = extractPdftotext(tmpPath)
		if err == nil {
			paragraphs, serr := splitParagraphs(strings.NewReader(strings.ReplaceAll(text, "\f", "\n\n")))
			if serr != nil {
				return nil, serr
			}
			nodes = textBlocks(paragraphs)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	content.Nodes = nodes
	return content, nil
}

// extractPDFPages returns one <div> per page. Consecutive glyphs sharing a
// font form a run; a change of baseline starts a new line.
func extractPDFPages(path string) (nodes []*html.Node, err error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defer func() {
		// The library panics on some malformed content streams.
		if r := recover(); r != nil {
			nodes, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		div := dom.NewElement("div")
		var (
			font    string
			run     strings.Builder
			lastY   float64
			started bool
		)
		flush := func() {
			if run.Len() > 0 {
				div.AppendChild(styledRun(font, run.String()))
				run.Reset()
			}
		}
		for _, t := range page.Content().Text {
			if started && math.Abs(t.Y-lastY) > t.FontSize/2 {
				flush()
				div.AppendChild(dom.NewElement("br"))
			}
			if t.Font != font {
				flush()
				font = t.Font
			}
			run.WriteString(t.S)
			lastY = t.Y
			started = true
		}
		flush()
		if strings.TrimSpace(dom.TextContent(div)) != "" {
			nodes = append(nodes, div)
		}
	}
	if len(nodes) == 0 {
		return nil, errNoText
	}
	return nodes, nil
}

// styledRun wraps text in the elements its PDF font name implies.
func styledRun(font, text string) *html.Node {
	n := dom.NewText(text)
	bold, italic, face := pdfFontStyle(font)
	if face != "" {
		el := dom.NewElement("font")
		dom.SetAttr(el, "face", face)
		el.AppendChild(n)
		n = el
	}
	if italic {
		el := dom.NewElement("i")
		el.AppendChild(n)
		n = el
	}
	if bold {
		el := dom.NewElement("b")
		el.AppendChild(n)
		n = el
	}
	return n
}

// pdfFontStyle reads weight, slant and family out of a PDF base font name
// such as "ABCDEF+TimesNewRomanPS-BoldItalicMT". face is empty for the
// default font and for families outside the font menu.
func pdfFontStyle(name string) (bold, italic bool, face string) {
	// Subset fonts carry a six-letter tag.
	if i := strings.IndexByte(name, '+'); i == 6 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	bold = strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy")
	italic = strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	family := lower
	if i := strings.IndexAny(family, "-,"); i >= 0 {
		family = family[:i]
	}
	family = strings.ReplaceAll(family, " ", "")
	for _, f := range format.Fonts {
		key := strings.ToLower(strings.ReplaceAll(f.Name, " ", ""))
		if strings.HasPrefix(family, key) {
			if f.Name != format.DefaultFont {
				face = f.Value
			}
			break
		}
	}
	return bold, italic, face
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
