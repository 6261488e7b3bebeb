package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGB is an opaque sRGB colour.
type RGB struct {
	R, G, B uint8
}

// Black is the initial value of the color property.
var Black = RGB{}

// ParseColor understands #rgb, #rrggbb, rgb(), rgba() and the CSS named
// colours. Alpha is discarded.
func ParseColor(s string) (RGB, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RGB{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return RGB{c.R, c.G, c.B}, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return RGB{}, false
	}
	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RGB{}, false
	}
	var ch [3]uint8
	for i := range 3 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return RGB{}, false
		}
		ch[i] = uint8(n)
	}
	return RGB{ch[0], ch[1], ch[2]}, true
}

func parseHex(h string) (RGB, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// Hex formats c as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// CSS formats c the way browsers serialise a computed colour.
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
