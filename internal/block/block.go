// Package block holds editing sessions: one editable region with its
// selection, floating toolbar and formatting state.
package block

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/editing"
	"github.com/dgallion1/textblock/internal/format"
	"github.com/dgallion1/textblock/internal/sanitize"
	"github.com/dgallion1/textblock/internal/toolbar"
	"golang.org/x/net/html"
)

var (
	ErrNotFound     = errors.New("block not found")
	ErrInvalidRange = errors.New("invalid range")
)

// Point addresses a boundary point by child-index path from the editable
// root plus an offset (runes in text nodes, children otherwise).
type Point struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// RangeSpec is a client-side description of a selection.
type RangeSpec struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Options configure a new block.
type Options struct {
	Defaults dom.Defaults
	Log      *slog.Logger
}

// Block is one editing session. All events are serialised by mu, matching the
// single-threaded event model of an editing surface.
type Block struct {
	mu sync.Mutex

	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	page      *html.Node
	root      *html.Node
	sel       *dom.Selection
	toolbar   *toolbar.Machine
	inspector format.Inspector
	mutator   *format.Mutator
	state     format.State
	log       *slog.Logger
}

// Snapshot is a JSON-safe copy of a block's state.
type Snapshot struct {
	ID        string             `json:"block_id"`
	Title     string             `json:"title,omitempty"`
	HTML      string             `json:"html"`
	Text      string             `json:"text"`
	Toolbar   toolbar.Visibility `json:"toolbar"`
	State     format.State       `json:"state"`
	Selection *RangeSpec         `json:"selection,omitempty"`
	Selected  string             `json:"selected_text,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// New creates an empty block.
func New(id string, opts Options) *Block {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Defaults == (dom.Defaults{}) {
		opts.Defaults = dom.DefaultStyle
	}

	page, root := newPage(opts.Defaults)
	now := time.Now()
	b := &Block{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		page:      page,
		root:      root,
		sel:       dom.NewSelection(),
		inspector: format.Inspector{Defaults: opts.Defaults},
		state:     format.EmptyState(),
		log:       log.With("block_id", id),
	}
	b.toolbar = toolbar.New(
		toolbar.NodeArea{Node: root},
		toolbar.NodeArea{Node: dom.FindByID(page, toolbarID)},
		toolbar.NodeArea{Node: dom.FindByID(page, colorPickerID)},
	)
	b.toolbar.Subscribe(func(c toolbar.Change) {
		b.log.Debug("toolbar visibility changed", "from", c.From, "to", c.To)
	})
	b.mutator = &format.Mutator{
		Root:      root,
		Selection: b.sel,
		Commands:  &editing.Executor{Root: root, Selection: b.sel},
		Inspector: b.inspector,
		Log:       b.log,
	}
	return b
}

// SetTitle names the block, usually after the file it was imported from.
func (b *Block) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Title = title
}

// SetContent replaces the editable content with nodes. Used by importers.
func (b *Block) SetContent(nodes []*html.Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dom.RemoveChildren(b.root)
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		b.root.AppendChild(n)
	}
	b.resetSelection()
}

// Input replaces the editable content with markup typed by the client. The
// markup is sanitised; a region holding only a line break is emptied so the
// placeholder shows.
func (b *Block) Input(inner string) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(inner) == "<br>" {
		inner = ""
	}
	if err := dom.SetInnerHTML(b.root, sanitize.HTML(inner)); err != nil {
		return Snapshot{}, fmt.Errorf("input: %w", err)
	}
	b.resetSelection()
	return b.snapshot(), nil
}

// Select moves the selection. A nil spec clears it.
func (b *Block) Select(spec *RangeSpec) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if spec == nil {
		b.resetSelection()
		return b.snapshot(), nil
	}
	r, err := b.resolve(*spec)
	if err != nil {
		return Snapshot{}, err
	}
	b.sel.RemoveAllRanges()
	b.sel.AddRange(r)
	b.touch()

	text := b.sel.String()
	if strings.TrimSpace(text) != "" {
		b.state = b.inspector.Inspect(b.sel, b.root)
		b.toolbar.OnSelect(text, b.state.Active)
	} else {
		b.toolbar.OnSelect(text, format.ActiveFormats{})
		b.state.Active = format.ActiveFormats{}
	}
	return b.snapshot(), nil
}

// Blur handles focus leaving the block for the element with relatedID. Focus
// moving to the toolbar, the colour picker or the editable region keeps the
// toolbar up.
func (b *Block) Blur(relatedID string) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	var related any
	if n := dom.FindByID(b.page, relatedID); n != nil {
		related = n
	}
	if b.toolbar.OnBlur(related) == toolbar.Hidden {
		b.state.Active = format.ActiveFormats{}
	}
	b.touch()
	return b.snapshot()
}

// ToggleFormat toggles f over the selection and re-inspects.
func (b *Block) ToggleFormat(f format.Format) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.mutator.ToggleFormat(f)
	b.refresh()
	b.touch()
	return b.snapshot(), err
}

// ApplyFont sets the font family of the selection.
func (b *Block) ApplyFont(family string) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, err := b.mutator.ApplyFont(family)
	if name != "" {
		b.state.Font = name
		b.refreshActive()
	}
	b.touch()
	return b.snapshot(), err
}

// ApplyColor sets the text colour of the selection.
func (b *Block) ApplyColor(color string) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	applied, err := b.mutator.ApplyColor(color)
	if applied != "" {
		b.state.Color = applied
		b.refreshActive()
	}
	b.touch()
	return b.snapshot(), err
}

// Snapshot returns the current state.
func (b *Block) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// View runs fn with the editable root while holding the block lock. fn must
// not keep references to the tree.
func (b *Block) View(fn func(root *html.Node, in format.Inspector) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.root, b.inspector)
}

// LastUpdated returns when the block last saw an event.
func (b *Block) LastUpdated() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.UpdatedAt
}

func (b *Block) refresh() {
	if b.sel.RangeCount() == 0 {
		b.state.Active = format.ActiveFormats{}
		b.toolbar.Refresh(b.state.Active)
		return
	}
	b.state = b.inspector.Inspect(b.sel, b.root)
	b.toolbar.Refresh(b.state.Active)
}

func (b *Block) refreshActive() {
	b.state.Active = b.inspector.Inspect(b.sel, b.root).Active
	b.toolbar.Refresh(b.state.Active)
}

func (b *Block) resetSelection() {
	b.sel.RemoveAllRanges()
	b.toolbar.OnSelect("", format.ActiveFormats{})
	b.state.Active = format.ActiveFormats{}
	b.touch()
}

func (b *Block) touch() {
	b.UpdatedAt = time.Now()
}

func (b *Block) resolve(spec RangeSpec) (*dom.Range, error) {
	start, err := b.point(spec.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidRange, err)
	}
	end, err := b.point(spec.End)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidRange, err)
	}
	return dom.NewRange(start, end), nil
}

func (b *Block) point(p Point) (dom.Boundary, error) {
	n, err := dom.NodeAt(b.root, p.Path)
	if err != nil {
		return dom.Boundary{}, err
	}
	if p.Offset < 0 || p.Offset > dom.Length(n) {
		return dom.Boundary{}, fmt.Errorf("offset %d out of bounds (length %d)", p.Offset, dom.Length(n))
	}
	return dom.Boundary{Node: n, Offset: p.Offset}, nil
}

func (b *Block) spec() *RangeSpec {
	r := b.sel.RangeAt(0)
	if r == nil {
		return nil
	}
	start, err := dom.Path(b.root, r.Start.Node)
	if err != nil {
		return nil
	}
	end, err := dom.Path(b.root, r.End.Node)
	if err != nil {
		return nil
	}
	return &RangeSpec{
		Start: Point{Path: start, Offset: r.Start.Offset},
		End:   Point{Path: end, Offset: r.End.Offset},
	}
}

func (b *Block) snapshot() Snapshot {
	inner, err := dom.InnerHTML(b.root)
	if err != nil {
		b.log.Error("render block", "error", err)
	}
	vis, _ := b.toolbar.State()
	return Snapshot{
		ID:        b.ID,
		Title:     b.Title,
		HTML:      inner,
		Text:      dom.TextContent(b.root),
		Toolbar:   vis,
		State:     b.state,
		Selection: b.spec(),
		Selected:  b.sel.String(),
		UpdatedAt: b.UpdatedAt,
	}
}
