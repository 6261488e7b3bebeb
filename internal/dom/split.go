package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// SplitTo splits text nodes and elements along the range boundaries until the
// range covers a contiguous run of top's children. The range is rewritten to
// (top, i)-(top, j) and the run's first and last nodes are returned; both are
// nil when the run is empty. top must contain both boundaries.
func (r *Range) SplitTo(top *html.Node) (first, last *html.Node, err error) {
	if !Contains(top, r.Start.Node) || !Contains(top, r.End.Node) {
		return nil, nil, fmt.Errorf("split: range is not inside %s", describe(top))
	}

	// End first, so a start inside the same text node keeps its offset.
	r.End = splitTextBoundary(r.End, &r.Start)
	r.Start = splitTextBoundary(r.Start, &r.End)

	for r.End.Node != top {
		r.End = liftBoundary(r.End, &r.Start)
	}
	for r.Start.Node != top {
		r.Start = liftBoundary(r.Start, &r.End)
	}
	if r.Start.Offset >= r.End.Offset {
		r.End = r.Start
		return nil, nil, nil
	}
	return ChildAt(top, r.Start.Offset), ChildAt(top, r.End.Offset-1), nil
}

// splitTextBoundary turns a point inside a text node into a point in its
// parent, splitting the text when the point falls mid-node. other is the
// opposite boundary of the same range and is kept in step.
func splitTextBoundary(b Boundary, other *Boundary) Boundary {
	n := b.Node
	if !IsText(n) || n.Parent == nil {
		return b
	}
	p := n.Parent
	switch l := Length(n); {
	case b.Offset <= 0:
		return Boundary{p, Index(n)}
	case b.Offset >= l:
		return Boundary{p, Index(n) + 1}
	}
	tail := SplitText(n, b.Offset)
	if other.Node == n && other.Offset >= b.Offset {
		*other = Boundary{tail, other.Offset - b.Offset}
	}
	shiftForInsert(other, p, Index(tail))
	return Boundary{p, Index(tail)}
}

// liftBoundary moves a point one level up, splitting its container when the
// point is strictly inside it.
func liftBoundary(b Boundary, other *Boundary) Boundary {
	n := b.Node
	p := n.Parent
	switch {
	case b.Offset <= 0:
		return Boundary{p, Index(n)}
	case b.Offset >= ChildCount(n):
		return Boundary{p, Index(n) + 1}
	}
	right := ShallowClone(n)
	for c := ChildAt(n, b.Offset); c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		right.AppendChild(c)
		c = next
	}
	InsertAfter(right, n)
	if other.Node == n && other.Offset > b.Offset {
		*other = Boundary{right, other.Offset - b.Offset}
	}
	shiftForInsert(other, p, Index(right))
	return Boundary{p, Index(right)}
}

// shiftForInsert adjusts b after a child was inserted into parent at idx.
func shiftForInsert(b *Boundary, parent *html.Node, idx int) {
	if b.Node == parent && b.Offset >= idx {
		b.Offset++
	}
}

func describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if IsElement(n) {
		return "<" + Tag(n) + ">"
	}
	return "node"
}
