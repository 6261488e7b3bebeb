package format

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/editing"
	"golang.org/x/net/html"
)

// ErrStructure reports a DOM mutation that could not be completed. The root
// is restored to its state before the mutation when this is returned.
var ErrStructure = errors.New("structural mutation failed")

// Commander runs the host's built-in editing commands.
type Commander interface {
	Exec(cmd editing.Command, value string) error
}

// reapplyOrder is the order formats are restored in after removeFormat. It
// decides the nesting of the rebuilt elements.
var reapplyOrder = []Format{Bold, Italic, Underline}

var commandFor = map[Format]editing.Command{
	Bold:      editing.Bold,
	Italic:    editing.Italic,
	Underline: editing.Underline,
}

// Mutator applies formatting changes to one editable root. Mutations are
// synchronous: once a method returns the tree is final, and callers re-run
// the Inspector to refresh what they display.
type Mutator struct {
	Root      *html.Node
	Selection *dom.Selection
	Commands  Commander
	Inspector Inspector
	Log       *slog.Logger
}

// ToggleFormat turns f off when it is active at the selection and on
// otherwise. Empty or whitespace-only selections are left alone, except that
// a caret inside inline code may still remove it.
func (m *Mutator) ToggleFormat(f Format) error {
	r := m.Selection.RangeAt(0)
	if r == nil {
		return nil
	}
	if f == Code && m.Inspector.IsActive(Code, m.Selection, m.Root) {
		return m.guard("remove code", m.removeCode)
	}
	if strings.TrimSpace(r.String()) == "" {
		return nil
	}
	if f == Code {
		return m.guard("apply code", m.applyCode)
	}

	cmd, ok := commandFor[f]
	if !ok {
		return fmt.Errorf("%w: %s", editing.ErrUnsupported, f)
	}
	state := m.Inspector.Inspect(m.Selection, m.Root)
	if !state.Active.Has(f) {
		return m.exec(cmd, "")
	}

	if err := m.exec(editing.RemoveFormat, ""); err != nil {
		return err
	}
	for _, other := range reapplyOrder {
		if other == f || !state.Active.Has(other) {
			continue
		}
		if err := m.exec(commandFor[other], ""); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFont sets the font family of the selection and returns the name to
// display, or "" when nothing was applied.
func (m *Mutator) ApplyFont(family string) (string, error) {
	if strings.TrimSpace(m.Selection.String()) == "" {
		return "", nil
	}
	if err := m.exec(editing.FontName, family); err != nil {
		return "", err
	}
	return DisplayName(family), nil
}

// ApplyColor sets the text colour of the selection and returns the applied
// value, or "" when nothing was applied.
func (m *Mutator) ApplyColor(color string) (string, error) {
	if strings.TrimSpace(m.Selection.String()) == "" {
		return "", nil
	}
	if err := m.exec(editing.ForeColor, color); err != nil {
		return "", err
	}
	return color, nil
}

func (m *Mutator) exec(cmd editing.Command, value string) error {
	err := m.Commands.Exec(cmd, value)
	if errors.Is(err, editing.ErrNoSelection) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}

// applyCode moves the selected content into a new inline-code marker.
func (m *Mutator) applyCode() error {
	r := m.Selection.RangeAt(0)
	if r.Collapsed() || strings.TrimSpace(r.String()) == "" {
		return nil
	}
	top := r.CommonAncestor()
	if dom.IsText(top) {
		top = top.Parent
	}
	first, last, err := r.SplitTo(top)
	if err != nil {
		return err
	}
	if first == nil {
		return nil
	}

	code := dom.NewElement("code")
	dom.SetAttr(code, "class", CodeClass)
	top.InsertBefore(code, first)
	for n := first; ; {
		next := n.NextSibling
		top.RemoveChild(n)
		code.AppendChild(n)
		if n == last {
			break
		}
		n = next
	}
	flattenCode(code)

	sel := &dom.Range{}
	sel.SelectNodeContents(code)
	m.Selection.RemoveAllRanges()
	m.Selection.AddRange(sel)
	return nil
}

// removeCode replaces the enclosing marker with its plain text.
func (m *Mutator) removeCode() error {
	code := FindCodeElement(startNode(m.Selection), m.Root)
	if code == nil || code == m.Root {
		return nil
	}
	if code.Parent == nil {
		return fmt.Errorf("inline code element is detached")
	}
	text := dom.NewText(dom.TextContent(code))
	dom.ReplaceWith(code, text)

	sel := &dom.Range{}
	sel.SelectNodeContents(text)
	m.Selection.RemoveAllRanges()
	m.Selection.AddRange(sel)
	return nil
}

// flattenCode unwraps markers nested inside a new marker.
func flattenCode(code *html.Node) {
	var nested []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if IsCodeMarker(c) {
				nested = append(nested, c)
			}
		}
	}
	walk(code)
	for _, n := range nested {
		dom.Unwrap(n)
	}
}

// guard runs a structural mutation. A failure or panic restores the root from
// a snapshot, so no half-applied change survives, and leaves no selection.
func (m *Mutator) guard(op string, fn func() error) (err error) {
	snapshot := dom.Clone(m.Root)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err == nil {
			return
		}
		dom.RemoveChildren(m.Root)
		dom.MoveChildren(m.Root, snapshot)
		m.Selection.RemoveAllRanges()
		if m.Log != nil {
			m.Log.Error("formatting failed", "op", op, "error", err)
		}
		err = fmt.Errorf("%w: %s: %v", ErrStructure, op, err)
	}()
	return fn()
}
