package dom

import (
	"strings"

	cssparser "github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// Style is a parsed inline style attribute. Declaration order is kept so that
// rendering a style back out does not reshuffle it.
type Style struct {
	decls []declaration
}

type declaration struct {
	prop  string
	value string
}

// ParseStyle parses the contents of a style attribute. Malformed declarations
// are dropped; later declarations of the same property win.
func ParseStyle(s string) Style {
	var st Style
	if strings.TrimSpace(s) == "" {
		return st
	}
	decls, err := cssparser.ParseDeclarations(terminate(s))
	if err != nil {
		// Recover declaration by declaration so one bad entry does not hide
		// the rest.
		decls = decls[:0]
		for _, part := range strings.Split(s, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			if d, err := cssparser.ParseDeclarations(part + ";"); err == nil {
				decls = append(decls, d...)
			}
		}
	}
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		value := strings.TrimSpace(d.Value)
		if prop == "" || value == "" {
			continue
		}
		st.Set(prop, value)
	}
	return st
}

// terminate appends the semicolon the declaration parser needs after the last
// declaration.
func terminate(s string) string {
	s = strings.TrimRight(s, " \t\n")
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	return s
}

// InlineStyle returns the parsed style attribute of n.
func InlineStyle(n *html.Node) Style {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// SetInlineStyle writes st back to n, removing the attribute when st is empty.
func SetInlineStyle(n *html.Node, st Style) {
	if st.Empty() {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", st.String())
}

// Get returns the value of prop, or "".
func (s Style) Get(prop string) string {
	for _, d := range s.decls {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Set adds or replaces a declaration.
func (s *Style) Set(prop, value string) {
	for i, d := range s.decls {
		if d.prop == prop {
			s.decls[i].value = value
			return
		}
	}
	s.decls = append(s.decls, declaration{prop: prop, value: value})
}

// Remove deletes prop; it reports whether anything was removed.
func (s *Style) Remove(prop string) bool {
	for i, d := range s.decls {
		if d.prop == prop {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return true
		}
	}
	return false
}

// Empty reports whether the style has no declarations.
func (s Style) Empty() bool {
	return len(s.decls) == 0
}

func (s Style) String() string {
	parts := make([]string, 0, len(s.decls))
	for _, d := range s.decls {
		parts = append(parts, d.prop+": "+d.value)
	}
	return strings.Join(parts, "; ")
}
