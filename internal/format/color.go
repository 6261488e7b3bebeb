package format

import (
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
)

// RGBToHex normalises a CSS colour for display. rgb()/rgba() become #RRGGBB
// and hex values are uppercased as-is. Anything else, named colours and
// "initial" included, is rejected so the caller can fall back to the raw value.
func RGBToHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "initial":
		return "", false
	case strings.HasPrefix(s, "#"):
		return strings.ToUpper(s), true
	case !strings.HasPrefix(strings.ToLower(s), "rgb"):
		return "", false
	}
	c, ok := dom.ParseColor(s)
	if !ok {
		return "", false
	}
	return c.Hex(), true
}
