package format

import (
	"strings"

	"golang.org/x/text/cases"
)

// Font is an entry of the toolbar's font menu. Value is the font-family list
// applied to the selection; Name is what the toolbar shows.
type Font struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DefaultFont is reported when no ancestor resolves to a known font.
const DefaultFont = "Arial"

// DefaultColor is reported when no ancestor sets a non-black colour.
const DefaultColor = "#000000"

// Fonts is the fixed font menu, in display order.
var Fonts = []Font{
	{Name: "Arial", Value: "Arial, sans-serif"},
	{Name: "Times New Roman", Value: "Times New Roman, serif"},
	{Name: "Helvetica", Value: "Helvetica, sans-serif"},
	{Name: "Georgia", Value: "Georgia, serif"},
	{Name: "Verdana", Value: "Verdana, sans-serif"},
	{Name: "Courier New", Value: "Courier New, monospace"},
	{Name: "Comic Sans MS", Value: "Comic Sans MS, cursive"},
	{Name: "Impact", Value: "Impact, fantasy"},
	{Name: "Trebuchet MS", Value: "Trebuchet MS, sans-serif"},
	{Name: "Palatino", Value: "Palatino, serif"},
}

// MatchFont maps a font-family list to the canonical name of a known font.
// Families are tried in order and compared with Unicode case folding; when no
// family equals a known name, the first known name contained in the list wins.
func MatchFont(family string) (string, bool) {
	fold := cases.Fold()
	folded := fold.String(family)
	for _, part := range strings.Split(folded, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		for _, f := range Fonts {
			if part == fold.String(f.Name) {
				return f.Name, true
			}
		}
	}
	for _, f := range Fonts {
		if strings.Contains(folded, fold.String(f.Name)) {
			return f.Name, true
		}
	}
	return "", false
}

// DisplayName is the name shown for a font-family value just applied: its
// first family, unquoted.
func DisplayName(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}
