package block

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/textblock/internal/format"
	"github.com/dgallion1/textblock/internal/toolbar"
	"github.com/google/go-cmp/cmp"
)

func newBlock(t *testing.T, inner string) *Block {
	t.Helper()
	b := New("blk-1", Options{})
	if _, err := b.Input(inner); err != nil {
		t.Fatalf("Input: %v", err)
	}
	return b
}

func textRange(path []int, start, end int) *RangeSpec {
	return &RangeSpec{
		Start: Point{Path: path, Offset: start},
		End:   Point{Path: path, Offset: end},
	}
}

func TestNew_EmptyBlock(t *testing.T) {
	b := New("blk-1", Options{})
	snap := b.Snapshot()
	if snap.ID != "blk-1" {
		t.Errorf("expected ID %q, got %q", "blk-1", snap.ID)
	}
	if snap.HTML != "" {
		t.Errorf("expected empty content, got %q", snap.HTML)
	}
	if snap.Toolbar != toolbar.Hidden {
		t.Errorf("expected hidden toolbar, got %q", snap.Toolbar)
	}
	if diff := cmp.Diff(format.EmptyState(), snap.State); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if snap.Selection != nil {
		t.Errorf("expected no selection, got %+v", snap.Selection)
	}
}

func TestInput_LoneBreakEmptiesBlock(t *testing.T) {
	b := newBlock(t, "<br>")
	if got := b.Snapshot().HTML; got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}

func TestInput_Sanitises(t *testing.T) {
	b := newBlock(t, `hi<img src=x onerror="alert(1)"><script>alert(2)</script><b onclick="x()">there</b>`)
	if got := b.Snapshot().HTML; got != "hi<b>there</b>" {
		t.Errorf("expected sanitised content, got %q", got)
	}

	var buf bytes.Buffer
	if err := b.RenderPage(&buf); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	for _, bad := range []string{"onerror", "<script", "onclick"} {
		if strings.Contains(buf.String(), bad) {
			t.Errorf("expected page without %q, got %s", bad, buf.String())
		}
	}
}

func TestSelect_ShowsToolbar(t *testing.T) {
	b := newBlock(t, "hello world")
	snap, err := b.Select(textRange([]int{0}, 0, 5))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if snap.Toolbar != toolbar.Visible {
		t.Errorf("expected visible toolbar, got %q", snap.Toolbar)
	}
	if snap.Selected != "hello" {
		t.Errorf("expected selected text %q, got %q", "hello", snap.Selected)
	}
	want := format.State{Font: format.DefaultFont, Color: format.DefaultColor}
	if diff := cmp.Diff(want, snap.State); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_BlankHidesToolbar(t *testing.T) {
	b := newBlock(t, "<b>hello</b>   world")
	if _, err := b.Select(textRange([]int{0, 0}, 0, 5)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	snap, err := b.Select(textRange([]int{1}, 0, 3))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if snap.Toolbar != toolbar.Hidden {
		t.Errorf("expected hidden toolbar, got %q", snap.Toolbar)
	}
	if snap.State.Active != (format.ActiveFormats{}) {
		t.Errorf("expected no active formats, got %+v", snap.State.Active)
	}

	snap, _ = b.Select(nil)
	if snap.Selection != nil || snap.Toolbar != toolbar.Hidden {
		t.Errorf("expected cleared selection and hidden toolbar, got %+v", snap)
	}
}

func TestSelect_InvalidRange(t *testing.T) {
	b := newBlock(t, "abc")
	tests := []struct {
		name string
		spec *RangeSpec
	}{
		{"missing child", textRange([]int{4}, 0, 1)},
		{"offset past end", textRange([]int{0}, 0, 9)},
		{"negative offset", textRange([]int{0}, -1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Select(tt.spec); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestToggleFormat_RefreshesState(t *testing.T) {
	b := newBlock(t, "hello world")
	if _, err := b.Select(textRange([]int{0}, 0, 5)); err != nil {
		t.Fatalf("Select: %v", err)
	}

	snap, err := b.ToggleFormat(format.Bold)
	if err != nil {
		t.Fatalf("ToggleFormat: %v", err)
	}
	if snap.HTML != "<b>hello</b> world" {
		t.Errorf("unexpected content: %s", snap.HTML)
	}
	if !snap.State.Active.Bold {
		t.Error("expected bold to be active after toggling it on")
	}
	if snap.Selected != "hello" {
		t.Errorf("expected selection to survive, got %q", snap.Selected)
	}

	snap, err = b.ToggleFormat(format.Bold)
	if err != nil {
		t.Fatalf("ToggleFormat: %v", err)
	}
	if snap.HTML != "hello world" {
		t.Errorf("unexpected content: %s", snap.HTML)
	}
	if snap.State.Active.Bold {
		t.Error("expected bold to be inactive after toggling it off")
	}
}

func TestToggleFormat_CodeRoundTrip(t *testing.T) {
	b := newBlock(t, "say foo now")
	if _, err := b.Select(textRange([]int{0}, 4, 7)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	snap, err := b.ToggleFormat(format.Code)
	if err != nil {
		t.Fatalf("apply code: %v", err)
	}
	if !snap.State.Active.Code {
		t.Error("expected code to be active")
	}
	snap, err = b.ToggleFormat(format.Code)
	if err != nil {
		t.Fatalf("remove code: %v", err)
	}
	if snap.HTML != "say foo now" || snap.State.Active.Code {
		t.Errorf("expected original text without code, got %s (%+v)", snap.HTML, snap.State.Active)
	}
}

func TestApplyFontAndColor(t *testing.T) {
	b := newBlock(t, "hello world")
	if _, err := b.Select(textRange([]int{0}, 0, 5)); err != nil {
		t.Fatalf("Select: %v", err)
	}

	snap, err := b.ApplyColor("#FF0000")
	if err != nil {
		t.Fatalf("ApplyColor: %v", err)
	}
	if snap.State.Color != "#FF0000" {
		t.Errorf("expected color %q, got %q", "#FF0000", snap.State.Color)
	}
	if !strings.Contains(snap.HTML, `color="#FF0000"`) {
		t.Errorf("expected a colour wrapper, got %s", snap.HTML)
	}

	snap, err = b.ApplyFont("Georgia, serif")
	if err != nil {
		t.Fatalf("ApplyFont: %v", err)
	}
	if snap.State.Font != "Georgia" {
		t.Errorf("expected font %q, got %q", "Georgia", snap.State.Font)
	}
}

func TestApplyColor_NoSelectionIsNoop(t *testing.T) {
	b := newBlock(t, "hello")
	snap, err := b.ApplyColor("#FF0000")
	if err != nil {
		t.Fatalf("ApplyColor: %v", err)
	}
	if snap.HTML != "hello" || snap.State.Color != format.DefaultColor {
		t.Errorf("expected no change, got %s (%s)", snap.HTML, snap.State.Color)
	}
}

func TestBlur(t *testing.T) {
	tests := []struct {
		related string
		want    toolbar.Visibility
	}{
		{colorPickerID, toolbar.Visible},
		{toolbarID, toolbar.Visible},
		{fontSelectID, toolbar.Visible},
		{"format-bold", toolbar.Visible},
		{editableID, toolbar.Visible},
		{"somewhere-else", toolbar.Hidden},
		{"", toolbar.Hidden},
	}
	for _, tt := range tests {
		b := newBlock(t, "<b>hello</b> world")
		if _, err := b.Select(textRange([]int{0, 0}, 0, 5)); err != nil {
			t.Fatalf("Select: %v", err)
		}
		snap := b.Blur(tt.related)
		if snap.Toolbar != tt.want {
			t.Errorf("blur to %q: expected %q, got %q", tt.related, tt.want, snap.Toolbar)
		}
		if tt.want == toolbar.Hidden && snap.State.Active.Bold {
			t.Errorf("blur to %q: expected active formats to clear", tt.related)
		}
		if tt.want == toolbar.Visible && !snap.State.Active.Bold {
			t.Errorf("blur to %q: expected bold to stay active", tt.related)
		}
	}
}

func TestRenderPage_ReflectsState(t *testing.T) {
	b := newBlock(t, "<i>hello</i>")
	var buf bytes.Buffer
	if err := b.RenderPage(&buf); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !strings.Contains(buf.String(), `id="format-toolbar" tabindex="-1" class="toolbar" hidden=""`) {
		t.Errorf("expected hidden toolbar, got %s", buf.String())
	}

	if _, err := b.Select(textRange([]int{0, 0}, 0, 5)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	buf.Reset()
	if err := b.RenderPage(&buf); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	page := buf.String()
	if strings.Contains(page, `hidden=""`) {
		t.Errorf("expected visible toolbar, got %s", page)
	}
	if !strings.Contains(page, `id="format-italic" data-format="italic" title="Toggle Italic" class="active"`) {
		t.Errorf("expected italic button to be active, got %s", page)
	}
	if !strings.Contains(page, `<option value="Arial, sans-serif" style="font-family: Arial, sans-serif" selected="">Arial</option>`) {
		t.Errorf("expected Arial to be selected, got %s", page)
	}
	if !strings.Contains(page, `<div contenteditable="true" id="editable"`) {
		t.Errorf("expected the editable region, got %s", page)
	}
}

func TestStore(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	old := New("old", Options{})
	store.Put(old)
	time.Sleep(100 * time.Millisecond)
	fresh := New("new", Options{})
	store.Put(fresh)

	if store.Len() != 2 {
		t.Fatalf("expected 2 blocks, got %d", store.Len())
	}
	if removed := store.Cleanup(); removed != 1 {
		t.Errorf("expected 1 block removed, got %d", removed)
	}
	if store.Get("old") != nil {
		t.Error("expected idle block to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh block to survive cleanup")
	}
	if !store.Delete("new") {
		t.Error("expected Delete to report an existing block")
	}
	if store.Delete("new") {
		t.Error("expected Delete to report a missing block")
	}
}

func TestNewID_SortedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if id <= prev {
			t.Fatalf("expected %q to sort after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestEncodeID(t *testing.T) {
	var b [16]byte
	if got := encodeID(b); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}
	for i := range b {
		b[i] = 0xff
	}
	if got, want := encodeID(b), "7"+strings.Repeat("Z", 25); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
