package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Defaults are the style values an editable root starts from.
type Defaults struct {
	FontFamily string
	Color      string
}

// DefaultStyle matches the widget's initial toolbar state.
var DefaultStyle = Defaults{
	FontFamily: "Arial, sans-serif",
	Color:      "#000000",
}

// ComputedStyle is the resolved value of the properties the format inspector
// cares about. It plays the role of a browser's getComputedStyle.
type ComputedStyle struct {
	FontWeight     int    // numeric weight, 400 normal, 700 bold
	FontStyle      string // normal, italic or oblique
	TextDecoration string // "none" or a space-separated list of lines
	FontFamily     string
	Color          string // rgb(r, g, b), or the raw value when it does not parse
}

// Compute resolves the style of n by cascading from root down to n. root's own
// attributes apply; ancestors above root are ignored.
func Compute(n, root *html.Node, d Defaults) ComputedStyle {
	cs := ComputedStyle{
		FontWeight:     400,
		FontStyle:      "normal",
		TextDecoration: "none",
		FontFamily:     d.FontFamily,
		Color:          d.Color,
	}
	if c, ok := ParseColor(cs.Color); ok {
		cs.Color = c.CSS()
	}
	if IsText(n) {
		n = n.Parent
	}

	var chain []*html.Node
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
		if cur == root {
			break
		}
	}
	var lines []string
	for i := len(chain) - 1; i >= 0; i-- {
		el := chain[i]
		if !IsElement(el) {
			continue
		}
		applyHints(&cs, el, &lines)
		applyDeclarations(&cs, InlineStyle(el), &lines)
	}
	if len(lines) > 0 {
		cs.TextDecoration = strings.Join(lines, " ")
	}
	return cs
}

func applyHints(cs *ComputedStyle, el *html.Node, lines *[]string) {
	switch Tag(el) {
	case "b", "strong":
		cs.FontWeight = bolder(cs.FontWeight)
	case "i", "em", "cite", "dfn", "var":
		cs.FontStyle = "italic"
	case "u", "ins":
		addLine(lines, "underline")
	case "s", "strike", "del":
		addLine(lines, "line-through")
	case "code", "kbd", "samp", "tt":
		cs.FontFamily = "monospace"
	case "font":
		if face, ok := Attr(el, "face"); ok && strings.TrimSpace(face) != "" {
			cs.FontFamily = strings.TrimSpace(face)
		}
		if col, ok := Attr(el, "color"); ok {
			setColor(cs, col)
		}
	}
}

func applyDeclarations(cs *ComputedStyle, st Style, lines *[]string) {
	if v := st.Get("font-weight"); v != "" {
		cs.FontWeight = resolveWeight(v, cs.FontWeight)
	}
	if v := strings.ToLower(st.Get("font-style")); v != "" && v != "inherit" {
		if v == "initial" {
			v = "normal"
		}
		cs.FontStyle = v
	}
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		v := strings.ToLower(st.Get(prop))
		for _, f := range strings.Fields(v) {
			switch f {
			case "underline", "overline", "line-through":
				addLine(lines, f)
			}
		}
	}
	if v := st.Get("font-family"); v != "" && v != "inherit" {
		cs.FontFamily = v
	}
	if v := st.Get("color"); v != "" && v != "inherit" {
		setColor(cs, v)
	}
}

func setColor(cs *ComputedStyle, v string) {
	if c, ok := ParseColor(v); ok {
		cs.Color = c.CSS()
		return
	}
	if strings.EqualFold(v, "initial") {
		cs.Color = Black.CSS()
		return
	}
	cs.Color = v
}

func addLine(lines *[]string, line string) {
	for _, l := range *lines {
		if l == line {
			return
		}
	}
	*lines = append(*lines, line)
}

func bolder(w int) int {
	switch {
	case w < 350:
		return 400
	case w < 550:
		return 700
	default:
		return 900
	}
}

func resolveWeight(v string, inherited int) int {
	switch strings.ToLower(v) {
	case "normal", "initial":
		return 400
	case "bold":
		return 700
	case "bolder":
		return bolder(inherited)
	case "lighter":
		if inherited >= 750 {
			return 700
		}
		if inherited >= 550 {
			return 400
		}
		return 100
	case "inherit":
		return inherited
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 1000 {
		return n
	}
	return inherited
}
