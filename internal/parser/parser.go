// Package parser imports documents into editable block content.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"golang.org/x/net/html"
)

// Content is an imported document: a title and the children of an editable
// root.
type Content struct {
	Title string
	Nodes []*html.Node
}

// Parser converts raw document bytes into editable content.
type Parser interface {
	Parse(r io.Reader, filename string) (*Content, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune parsers that shell out or guess.
type Options struct {
	FallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the directory and extension from filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// textBlocks turns plain text into one <div> per paragraph, with line breaks
// inside a paragraph kept as <br>.
func textBlocks(paragraphs []string) []*html.Node {
	var nodes []*html.Node
	for _, para := range paragraphs {
		div := dom.NewElement("div")
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				div.AppendChild(dom.NewElement("br"))
			}
			div.AppendChild(dom.NewText(line))
		}
		nodes = append(nodes, div)
	}
	return nodes
}

// detach removes the children of n and returns them.
func detach(n *html.Node) []*html.Node {
	var nodes []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		nodes = append(nodes, c)
		c = next
	}
	return nodes
}
