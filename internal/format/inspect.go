// Package format inspects which inline formatting applies to a selection and
// toggles that formatting on or off.
package format

import (
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"golang.org/x/net/html"
)

// Format is one of the toggleable inline formats.
type Format string

const (
	Bold      Format = "bold"
	Italic    Format = "italic"
	Underline Format = "underline"
	Code      Format = "code"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Bold, Italic, Underline, Code:
		return f, true
	}
	return "", false
}

// Inline-code markers carry one of these classes, or are <code> elements.
const (
	CodeClass       = "inline-code"
	LegacyCodeClass = "code-format"
)

// ActiveFormats is a snapshot of the formats applying to a selection.
type ActiveFormats struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Underline bool `json:"underline"`
	Code      bool `json:"code"`
}

// Has reports whether f is active.
func (a ActiveFormats) Has(f Format) bool {
	switch f {
	case Bold:
		return a.Bold
	case Italic:
		return a.Italic
	case Underline:
		return a.Underline
	case Code:
		return a.Code
	}
	return false
}

// State is everything the toolbar displays for a selection.
type State struct {
	Active ActiveFormats `json:"active"`
	Font   string        `json:"font"`
	Color  string        `json:"color"`
}

// EmptyState is what an unselected block shows.
func EmptyState() State {
	return State{Font: DefaultFont, Color: DefaultColor}
}

// Inspector reads formatting state out of an editable root. Defaults are the
// root's base style.
type Inspector struct {
	Defaults dom.Defaults
}

// Inspect computes the full toolbar state for sel.
func (in Inspector) Inspect(sel *dom.Selection, root *html.Node) State {
	return State{
		Active: ActiveFormats{
			Bold:      in.IsActive(Bold, sel, root),
			Italic:    in.IsActive(Italic, sel, root),
			Underline: in.IsActive(Underline, sel, root),
			Code:      in.IsActive(Code, sel, root),
		},
		Font:  in.CurrentFont(sel, root),
		Color: in.CurrentColor(sel, root),
	}
}

// IsActive reports whether f applies at the selection's common ancestor.
func (in Inspector) IsActive(f Format, sel *dom.Selection, root *html.Node) bool {
	node := startNode(sel)
	if node == nil {
		return false
	}
	if f == Code {
		return FindCodeElement(node, root) != nil
	}
	for n := node; n != nil && n != root; n = n.Parent {
		if !dom.IsElement(n) {
			continue
		}
		if matchesComputed(f, dom.Compute(n, root, in.Defaults)) ||
			matchesInline(f, dom.InlineStyle(n)) ||
			matchesTag(f, dom.Tag(n)) {
			return true
		}
	}
	return false
}

// CurrentFont returns the canonical name of the nearest known font family.
func (in Inspector) CurrentFont(sel *dom.Selection, root *html.Node) string {
	for n := startNode(sel); n != nil && n != root; n = n.Parent {
		if !dom.IsElement(n) {
			continue
		}
		family := dom.Compute(n, root, in.Defaults).FontFamily
		if family == "" || family == "initial" {
			continue
		}
		if name, ok := MatchFont(family); ok {
			return name
		}
	}
	return DefaultFont
}

// CurrentColor returns the nearest non-default colour, as #RRGGBB when it
// parses and verbatim otherwise.
func (in Inspector) CurrentColor(sel *dom.Selection, root *html.Node) string {
	for n := startNode(sel); n != nil && n != root; n = n.Parent {
		if !dom.IsElement(n) {
			continue
		}
		if c := dom.InlineStyle(n).Get("color"); c != "" {
			return displayColor(c)
		}
		c := dom.Compute(n, root, in.Defaults).Color
		if c != "" && c != dom.Black.CSS() && c != "initial" {
			return displayColor(c)
		}
	}
	return DefaultColor
}

// displayColor normalises c for the toolbar, keeping values it cannot parse.
func displayColor(c string) string {
	if hex, ok := RGBToHex(c); ok {
		return hex
	}
	return c
}

// FindCodeElement returns the nearest inline-code marker at or above n,
// stopping before root.
func FindCodeElement(n, root *html.Node) *html.Node {
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		if IsCodeMarker(cur) {
			return cur
		}
	}
	return nil
}

// IsCodeMarker reports whether n is an inline-code element.
func IsCodeMarker(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	return dom.Tag(n) == "code" || dom.HasClass(n, CodeClass) || dom.HasClass(n, LegacyCodeClass)
}

// startNode is the selection's common ancestor, lifted to an element.
func startNode(sel *dom.Selection) *html.Node {
	r := sel.RangeAt(0)
	if r == nil {
		return nil
	}
	n := r.CommonAncestor()
	if dom.IsText(n) {
		n = n.Parent
	}
	return n
}

func matchesComputed(f Format, cs dom.ComputedStyle) bool {
	switch f {
	case Bold:
		return cs.FontWeight >= 700
	case Italic:
		return cs.FontStyle == "italic"
	case Underline:
		return strings.Contains(cs.TextDecoration, "underline")
	}
	return false
}

func matchesInline(f Format, st dom.Style) bool {
	switch f {
	case Bold:
		return isBoldWeight(st.Get("font-weight"))
	case Italic:
		return strings.EqualFold(st.Get("font-style"), "italic")
	case Underline:
		return strings.Contains(strings.ToLower(st.Get("text-decoration")), "underline")
	}
	return false
}

func matchesTag(f Format, tag string) bool {
	switch f {
	case Bold:
		return tag == "b" || tag == "strong"
	case Italic:
		return tag == "i" || tag == "em"
	case Underline:
		return tag == "u"
	}
	return false
}

func isBoldWeight(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "bold" || v == "bolder" {
		return true
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return v != "" && n >= 700
}
