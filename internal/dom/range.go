package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Boundary is a DOM boundary point. Offsets count runes inside text nodes and
// children inside every other node.
type Boundary struct {
	Node   *html.Node
	Offset int
}

// Range is a span of content between two boundary points, start <= end.
type Range struct {
	Start Boundary
	End   Boundary
}

// NewRange returns a range between two points, swapping them if needed.
func NewRange(start, end Boundary) *Range {
	if ComparePoints(start, end) > 0 {
		start, end = end, start
	}
	return &Range{Start: start, End: end}
}

// Collapsed reports whether the range is empty.
func (r *Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// Clone copies the range.
func (r *Range) Clone() *Range {
	c := *r
	return &c
}

// SelectNodeContents makes the range span the contents of n.
func (r *Range) SelectNodeContents(n *html.Node) {
	r.Start = Boundary{Node: n, Offset: 0}
	r.End = Boundary{Node: n, Offset: Length(n)}
}

// Collapse moves the end to the start (toStart) or the start to the end.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.End = r.Start
	} else {
		r.Start = r.End
	}
}

// CommonAncestor returns the deepest node containing both boundaries.
func (r *Range) CommonAncestor() *html.Node {
	for a := r.Start.Node; a != nil; a = a.Parent {
		if Contains(a, r.End.Node) {
			return a
		}
	}
	return nil
}

// String returns the text covered by the range.
func (r *Range) String() string {
	var buf strings.Builder
	for _, seg := range r.textSegments() {
		runes := []rune(seg.node.Data)
		buf.WriteString(string(runes[seg.lo:seg.hi]))
	}
	return buf.String()
}

type textSegment struct {
	node   *html.Node
	lo, hi int
}

// textSegments lists the covered part of every text node in the range, in
// document order.
func (r *Range) textSegments() []textSegment {
	anc := r.CommonAncestor()
	if anc == nil {
		return nil
	}
	var segs []textSegment
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			l := Length(n)
			lo, hi := 0, l
			if ComparePoints(r.Start, Boundary{n, 0}) > 0 {
				if r.Start.Node == n {
					lo = r.Start.Offset
				} else {
					lo = l
				}
			}
			if ComparePoints(r.End, Boundary{n, l}) < 0 {
				if r.End.Node == n {
					hi = r.End.Offset
				} else {
					hi = 0
				}
			}
			if lo < hi {
				segs = append(segs, textSegment{node: n, lo: lo, hi: hi})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(anc)
	return segs
}

// ComparePoints orders two boundary points in tree order: -1 when a is before
// b, 0 when equal, 1 when after.
func ComparePoints(a, b Boundary) int {
	if a.Node == b.Node {
		return compareInts(a.Offset, b.Offset)
	}
	if Contains(a.Node, b.Node) {
		child := b.Node
		for child.Parent != a.Node {
			child = child.Parent
		}
		if Index(child) < a.Offset {
			return 1
		}
		return -1
	}
	if Contains(b.Node, a.Node) {
		return -ComparePoints(b, a)
	}
	return compareNodes(a.Node, b.Node)
}

// compareNodes orders two nodes of which neither contains the other.
func compareNodes(a, b *html.Node) int {
	pa, pb := ancestry(a), ancestry(b)
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	if i == 0 || i >= len(pa) || i >= len(pb) {
		// Disconnected trees have no order; keep the comparison stable.
		return 0
	}
	return compareInts(Index(pa[i]), Index(pb[i]))
}

// ancestry lists n's ancestors from the top of its tree down to n.
func ancestry(n *html.Node) []*html.Node {
	var out []*html.Node
	for ; n != nil; n = n.Parent {
		out = append(out, n)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
