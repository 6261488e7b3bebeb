package dom

// Selection holds at most one range, like a browser selection in a single
// editable region.
type Selection struct {
	r *Range
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// RangeCount is 0 or 1.
func (s *Selection) RangeCount() int {
	if s == nil || s.r == nil {
		return 0
	}
	return 1
}

// RangeAt returns the range at index i, or nil.
func (s *Selection) RangeAt(i int) *Range {
	if i != 0 || s.RangeCount() == 0 {
		return nil
	}
	return s.r
}

// RemoveAllRanges empties the selection.
func (s *Selection) RemoveAllRanges() {
	s.r = nil
}

// AddRange replaces the current range with r.
func (s *Selection) AddRange(r *Range) {
	s.r = r
}

// String returns the selected text.
func (s *Selection) String() string {
	if s.RangeCount() == 0 {
		return ""
	}
	return s.r.String()
}
