package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NewRoot creates an empty editable region.
func NewRoot() *html.Node {
	root := NewElement("div")
	SetAttr(root, "contenteditable", "true")
	return root
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Tag returns the lowercase tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// HasClass reports whether the class attribute of n lists class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// TextContent concatenates every descendant text node of n.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// Contains reports whether n is anc or one of its descendants.
func Contains(anc, n *html.Node) bool {
	if anc == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == anc {
			return true
		}
	}
	return false
}

// Index returns the position of n among its siblings.
func Index(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
	}
	return i
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// Length is the boundary-point length of n: runes for text, children otherwise.
func Length(n *html.Node) int {
	if n.Type == html.TextNode {
		return len([]rune(n.Data))
	}
	return ChildCount(n)
}

// ShallowClone copies n's type, tag and attributes, without children.
func ShallowClone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	return c
}

// Clone deep-copies n and its subtree.
func Clone(n *html.Node) *html.Node {
	c := ShallowClone(n)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// InsertAfter inserts newChild directly after ref.
func InsertAfter(newChild, ref *html.Node) {
	ref.Parent.InsertBefore(newChild, ref.NextSibling)
}

// InsertAt inserts child as the i-th child of parent.
func InsertAt(parent, child *html.Node, i int) {
	parent.InsertBefore(child, ChildAt(parent, i))
}

// ReplaceWith puts repl in old's position and detaches old.
func ReplaceWith(old, repl *html.Node) {
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

// Unwrap replaces n by its children.
func Unwrap(n *html.Node) {
	p := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// MoveChildren moves every child of src to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// SplitText cuts a text node at a rune offset. n keeps the head; the tail is
// inserted after n and returned.
func SplitText(n *html.Node, offset int) *html.Node {
	runes := []rune(n.Data)
	tail := NewText(string(runes[offset:]))
	n.Data = string(runes[:offset])
	InsertAfter(tail, n)
	return tail
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of n with the parsed fragment s.
func SetInnerHTML(n *html.Node, s string) error {
	nodes, err := html.ParseFragment(strings.NewReader(s), n)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// FindByID returns the first element under n with the given id.
func FindByID(n *html.Node, id string) *html.Node {
	if n == nil || id == "" {
		return nil
	}
	if v, ok := Attr(n, "id"); ok && v == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := FindByID(c, id); f != nil {
			return f
		}
	}
	return nil
}

// Path returns the child indices leading from root to n.
func Path(root, n *html.Node) ([]int, error) {
	var path []int
	for cur := n; cur != root; cur = cur.Parent {
		if cur == nil {
			return nil, fmt.Errorf("node is not inside root")
		}
		path = append(path, Index(cur))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// NodeAt follows a child-index path from root.
func NodeAt(root *html.Node, path []int) (*html.Node, error) {
	n := root
	for depth, i := range path {
		c := ChildAt(n, i)
		if c == nil {
			return nil, fmt.Errorf("path %v: no child %d at depth %d", path, i, depth)
		}
		n = c
	}
	return n, nil
}
