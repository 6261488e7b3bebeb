// Package toolbar tracks whether the floating format toolbar is shown.
package toolbar

import (
	"slices"
	"strings"
	"sync"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"golang.org/x/net/html"
)

// Visibility is the toolbar state.
type Visibility string

const (
	Hidden  Visibility = "hidden"
	Visible Visibility = "visible"
)

// Area is a region that can hold focus.
type Area interface {
	Contains(target any) bool
}

// NodeArea is an Area backed by an element of the page tree.
type NodeArea struct {
	Node *html.Node
}

// Contains reports whether target is a node inside the area.
func (a NodeArea) Contains(target any) bool {
	n, ok := target.(*html.Node)
	return ok && n != nil && a.Node != nil && dom.Contains(a.Node, n)
}

// Change is delivered to subscribers on every transition.
type Change struct {
	From, To Visibility
	Active   format.ActiveFormats
}

// Machine is the Hidden/Visible state machine. Focus may move between the
// editable region, the toolbar and the colour picker without hiding it.
type Machine struct {
	mu        sync.Mutex
	state     Visibility
	active    format.ActiveFormats
	areas     []Area
	listeners []func(Change)
}

// New returns a hidden toolbar whose focus areas are areas.
func New(areas ...Area) *Machine {
	return &Machine{state: Hidden, areas: areas}
}

// Subscribe registers fn for state changes. fn runs synchronously and must not
// call back into the machine.
func (m *Machine) Subscribe(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the visibility and the active formats shown.
func (m *Machine) State() (Visibility, format.ActiveFormats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.active
}

// OnSelect handles a selection change. A non-blank selection shows the toolbar
// with active; a blank one hides it.
func (m *Machine) OnSelect(text string, active format.ActiveFormats) Visibility {
	if strings.TrimSpace(text) != "" {
		m.transition(Visible, active)
	} else {
		m.transition(Hidden, format.ActiveFormats{})
	}
	return m.current()
}

// Refresh updates the active formats shown without changing visibility.
func (m *Machine) Refresh(active format.ActiveFormats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Visible {
		m.active = active
	}
}

// OnBlur handles focus leaving one of the areas. The toolbar stays up when
// related, the element receiving focus, is inside any area.
func (m *Machine) OnBlur(related any) Visibility {
	m.mu.Lock()
	areas := m.areas
	m.mu.Unlock()
	for _, a := range areas {
		if related != nil && a.Contains(related) {
			return m.current()
		}
	}
	m.transition(Hidden, format.ActiveFormats{})
	return m.current()
}

func (m *Machine) current() Visibility {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) transition(to Visibility, active format.ActiveFormats) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.active = active
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	if from == to {
		return
	}
	ch := Change{From: from, To: to, Active: active}
	for _, fn := range listeners {
		fn(ch)
	}
}
