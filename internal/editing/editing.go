// Package editing implements the built-in rich-text commands a browser offers
// through execCommand, over an x/net/html tree and a dom.Selection.
package editing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"golang.org/x/net/html"
)

// Command names a built-in editing command.
type Command string

const (
	Bold         Command = "bold"
	Italic       Command = "italic"
	Underline    Command = "underline"
	RemoveFormat Command = "removeFormat"
	FontName     Command = "fontName"
	ForeColor    Command = "foreColor"
)

var (
	ErrNoSelection = errors.New("no selection")
	ErrUnsupported = errors.New("unsupported command")
)

// formattingTags are unwrapped by removeFormat. Inline-code markers are
// structural and only removed by toggling code.
var formattingTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true, "ins": true,
	"s": true, "strike": true, "font": true, "tt": true, "sub": true,
	"sup": true, "small": true, "big": true, "cite": true, "dfn": true, "var": true,
}

// Executor runs commands against one editable root and its selection.
type Executor struct {
	Root      *html.Node
	Selection *dom.Selection
}

// Exec runs cmd over the current selection. value is used by fontName and
// foreColor.
func (e *Executor) Exec(cmd Command, value string) error {
	r := e.Selection.RangeAt(0)
	if r == nil || r.Collapsed() {
		return ErrNoSelection
	}
	if !dom.Contains(e.Root, r.CommonAncestor()) {
		return fmt.Errorf("%s: selection is outside the editable root", cmd)
	}

	switch cmd {
	case Bold:
		return e.wrap("b", nil)
	case Italic:
		return e.wrap("i", nil)
	case Underline:
		return e.wrap("u", nil)
	case RemoveFormat:
		return e.removeFormat()
	case FontName:
		face := strings.TrimSpace(value)
		if face == "" {
			return fmt.Errorf("%s: empty font family", cmd)
		}
		return e.wrap("font", func(el *html.Node) {
			dom.SetAttr(el, "face", face)
			clearDescendants(el, "face", "font-family")
		})
	case ForeColor:
		color := strings.TrimSpace(value)
		if c, ok := dom.ParseColor(color); ok {
			color = c.Hex()
		}
		if color == "" {
			return fmt.Errorf("%s: empty color", cmd)
		}
		return e.wrap("font", func(el *html.Node) {
			dom.SetAttr(el, "color", color)
			clearDescendants(el, "color", "color")
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, cmd)
	}
}

// wrap moves the selected run into a new element and selects its contents.
func (e *Executor) wrap(tag string, setup func(*html.Node)) error {
	r := e.Selection.RangeAt(0)
	top := elementFor(r.CommonAncestor())
	first, last, err := r.SplitTo(top)
	if err != nil {
		return err
	}
	if first == nil {
		return ErrNoSelection
	}

	el := dom.NewElement(tag)
	top.InsertBefore(el, first)
	for n := first; ; {
		next := n.NextSibling
		top.RemoveChild(n)
		el.AppendChild(n)
		if n == last {
			break
		}
		n = next
	}
	if setup != nil {
		setup(el)
	}

	r.SelectNodeContents(el)
	return nil
}

// removeFormat lifts the selection out of every formatting ancestor below the
// root, then unwraps formatting elements inside it.
func (e *Executor) removeFormat() error {
	r := e.Selection.RangeAt(0)
	top := elementFor(r.CommonAncestor())
	for a := top; a != nil && a != e.Root; a = a.Parent {
		if isFormatting(a) {
			top = a.Parent
		}
	}

	first, last, err := r.SplitTo(top)
	if err != nil {
		return err
	}
	if first == nil {
		return ErrNoSelection
	}
	before := r.Start.Offset
	after := dom.ChildCount(top) - r.End.Offset

	var run []*html.Node
	for n := first; ; n = n.NextSibling {
		run = append(run, n)
		if n == last {
			break
		}
	}
	for _, n := range run {
		stripFormatting(n)
	}

	r.Start = dom.Boundary{Node: top, Offset: before}
	r.End = dom.Boundary{Node: top, Offset: dom.ChildCount(top) - after}
	return nil
}

// stripFormatting unwraps n and its descendants when they are formatting
// elements, and drops formatting declarations from styled spans.
func stripFormatting(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		stripFormatting(c)
		c = next
	}
	if !dom.IsElement(n) {
		return
	}
	if dom.Tag(n) == "span" {
		st := dom.InlineStyle(n)
		for _, p := range []string{"font-weight", "font-style", "text-decoration", "text-decoration-line", "font-family", "color"} {
			st.Remove(p)
		}
		dom.SetInlineStyle(n, st)
		if len(n.Attr) == 0 {
			dom.Unwrap(n)
		}
		return
	}
	if formattingTags[dom.Tag(n)] {
		dom.Unwrap(n)
	}
}

func isFormatting(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	if dom.Tag(n) == "span" {
		_, ok := dom.Attr(n, "style")
		return ok
	}
	return formattingTags[dom.Tag(n)]
}

// clearDescendants removes a presentational attribute and its matching style
// property from every element below el, so the new wrapper takes effect.
func clearDescendants(el *html.Node, attr, prop string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElement(c) {
				if dom.Tag(c) == "font" {
					dom.RemoveAttr(c, attr)
				}
				st := dom.InlineStyle(c)
				if st.Remove(prop) {
					dom.SetInlineStyle(c, st)
				}
			}
			walk(c)
		}
	}
	walk(el)
}

func elementFor(n *html.Node) *html.Node {
	if dom.IsText(n) {
		return n.Parent
	}
	return n
}
