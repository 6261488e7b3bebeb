package format

import (
	"testing"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func setup(t *testing.T, inner string) *html.Node {
	t.Helper()
	root := dom.NewRoot()
	if err := dom.SetInnerHTML(root, inner); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	return root
}

func node(t *testing.T, root *html.Node, path ...int) *html.Node {
	t.Helper()
	n, err := dom.NodeAt(root, path)
	if err != nil {
		t.Fatalf("NodeAt(%v): %v", path, err)
	}
	return n
}

func selectContents(n *html.Node) *dom.Selection {
	r := &dom.Range{}
	r.SelectNodeContents(n)
	sel := dom.NewSelection()
	sel.AddRange(r)
	return sel
}

func selectText(n *html.Node, lo, hi int) *dom.Selection {
	sel := dom.NewSelection()
	sel.AddRange(dom.NewRange(dom.Boundary{Node: n, Offset: lo}, dom.Boundary{Node: n, Offset: hi}))
	return sel
}

var inspector = Inspector{Defaults: dom.DefaultStyle}

func TestIsActive_Bold(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		path  []int
		want  bool
	}{
		{"strong ancestor", `<strong><span>x</span></strong>`, []int{0, 0, 0}, true},
		{"b tag", `<b>x</b>`, []int{0, 0}, true},
		{"inline weight 700", `<span style="font-weight: 700">x</span>`, []int{0, 0}, true},
		{"inline weight bold", `<span style="font-weight:bold"><i>x</i></span>`, []int{0, 0, 0}, true},
		{"inline weight 900", `<span style="font-weight: 900">x</span>`, []int{0, 0}, true},
		{"weight 600", `<span style="font-weight: 600">x</span>`, []int{0, 0}, false},
		{"plain", `<span>x</span>`, []int{0, 0}, false},
		{"bold reset inside", `<b><span style="font-weight: normal">x</span></b>`, []int{0, 0, 0}, true},
	}
	for _, tt := range tests {
		root := setup(t, tt.inner)
		sel := selectContents(node(t, root, tt.path...))
		if got := inspector.IsActive(Bold, sel, root); got != tt.want {
			t.Errorf("%s: expected bold=%v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestIsActive_ItalicUnderline(t *testing.T) {
	root := setup(t, `<em><span style="text-decoration: underline overline">x</span></em>y`)
	x := selectContents(node(t, root, 0, 0, 0))
	y := selectContents(node(t, root, 1))

	if !inspector.IsActive(Italic, x, root) {
		t.Error("expected italic inside <em>")
	}
	if !inspector.IsActive(Underline, x, root) {
		t.Error("expected underline from inline text-decoration")
	}
	if inspector.IsActive(Italic, y, root) || inspector.IsActive(Underline, y, root) {
		t.Error("expected no formatting outside the elements")
	}
}

func TestIsActive_Code(t *testing.T) {
	root := setup(t, `<code>a</code><span class="code-format"><b>b</b></span><span class="inline-code">c</span><tt>d</tt>`)
	tests := []struct {
		path []int
		want bool
	}{
		{[]int{0, 0}, true},
		{[]int{1, 0, 0}, true},
		{[]int{2, 0}, true},
		{[]int{3, 0}, false},
	}
	for _, tt := range tests {
		sel := selectContents(node(t, root, tt.path...))
		if got := inspector.IsActive(Code, sel, root); got != tt.want {
			t.Errorf("path %v: expected code=%v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestIsActive_StopsAtRoot(t *testing.T) {
	outer := setup(t, `<b></b>`)
	root := dom.NewRoot()
	dom.SetInnerHTML(root, "x")
	node(t, outer, 0).AppendChild(root)

	sel := selectContents(node(t, root, 0))
	if inspector.IsActive(Bold, sel, root) {
		t.Error("formatting above the editable root must not count")
	}
}

func TestInspect_NoSelection(t *testing.T) {
	root := setup(t, `<b>x</b>`)
	got := inspector.Inspect(dom.NewSelection(), root)
	if diff := cmp.Diff(EmptyState(), got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_FullState(t *testing.T) {
	root := setup(t, `<font face="Courier New, monospace" color="#1e90ff"><u><i>x</i></u></font>`)
	sel := selectContents(node(t, root, 0, 0, 0, 0))

	want := State{
		Active: ActiveFormats{Italic: true, Underline: true},
		Font:   "Courier New",
		Color:  "#1E90FF",
	}
	if diff := cmp.Diff(want, inspector.Inspect(sel, root)); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrentFont(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		path  []int
		want  string
	}{
		{"outermost of three", `<span style="font-family: Georgia"><span><span>x</span></span></span>`, []int{0, 0, 0, 0}, "Georgia"},
		{"no font", `<span><span>x</span></span>`, []int{0, 0, 0}, "Arial"},
		{"case folded", `<span style="font-family: 'TIMES NEW ROMAN', serif">x</span>`, []int{0, 0}, "Times New Roman"},
		{"unknown then ancestor", `<span style="font-family: Verdana"><span style="font-family: Wingdings">x</span></span>`, []int{0, 0, 0}, "Verdana"},
		{"code marker inherits", `<span style="font-family: Impact"><code>x</code></span>`, []int{0, 0, 0}, "Impact"},
	}
	for _, tt := range tests {
		root := setup(t, tt.inner)
		sel := selectContents(node(t, root, tt.path...))
		if got := inspector.CurrentFont(sel, root); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestCurrentColor(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		path  []int
		want  string
	}{
		{"inline rgb", `<span style="color: rgb(255, 0, 0)"><b>x</b></span>`, []int{0, 0, 0}, "#FF0000"},
		{"font color", `<font color="#00ff00">x</font>`, []int{0, 0}, "#00FF00"},
		{"named passes through", `<span style="color: red">x</span>`, []int{0, 0}, "red"},
		{"extended named passes through", `<span style="color: darkred">x</span>`, []int{0, 0}, "darkred"},
		{"hsl passes through", `<span style="color: hsl(0, 100%, 50%)">x</span>`, []int{0, 0}, "hsl(0, 100%, 50%)"},
		{"unparseable passes through", `<span style="color: var(--accent)">x</span>`, []int{0, 0}, "var(--accent)"},
		{"explicit black", `<span style="color: #000">x</span>`, []int{0, 0}, "#000"},
		{"default", `<span>x</span>`, []int{0, 0}, "#000000"},
	}
	for _, tt := range tests {
		root := setup(t, tt.inner)
		sel := selectContents(node(t, root, tt.path...))
		if got := inspector.CurrentColor(sel, root); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestRGBToHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"rgb(255, 0, 0)", "#FF0000", true},
		{"rgb(1,2,3)", "#010203", true},
		{"rgba(16, 32, 48, 0.5)", "#102030", true},
		{"#abc", "#ABC", true},
		{"#a1b2c3", "#A1B2C3", true},
		{"initial", "", false},
		{"", "", false},
		{"hsl(0, 100%, 50%)", "", false},
		{"rgb(256, 0, 0)", "", false},
		{"red", "", false},
		{"RGB(0, 0, 255)", "#0000FF", true},
	}
	for _, tt := range tests {
		got, ok := RGBToHex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RGBToHex(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchFont(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Georgia, serif", "Georgia", true},
		{`"Comic Sans MS", cursive`, "Comic Sans MS", true},
		{"trebuchet ms", "Trebuchet MS", true},
		{"Wingdings, Palatino", "Palatino", true},
		{"monospace", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchFont(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchFont(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if got := DisplayName("Times New Roman, serif"); got != "Times New Roman" {
		t.Errorf("DisplayName: got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat(" Bold "); !ok || f != Bold {
		t.Errorf("expected bold, got %q, %v", f, ok)
	}
	if _, ok := ParseFormat("strike"); ok {
		t.Error("expected strike to be rejected")
	}
}
