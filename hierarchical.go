package hostui

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DataUpdatedEvent carries a data patch (args[0], a map[string]any) that a
// composite merges into its own store.
const DataUpdatedEvent = "data-updated"

// Hierarchical is a composite widget. It owns an ordered set of children,
// fans lifecycle calls out to them, and relays events both up toward its
// parent and down toward its children.
//
// A child is owned by exactly one composite. Destroying the composite
// destroys every child.
type Hierarchical struct {
	*Component
	children []Widget
}

// NewHierarchical creates a composite. CSS scoping is off unless an option
// turns it on.
func NewHierarchical(h *Host, opts ...Option) *Hierarchical {
	cfg := defaultConfig()
	cfg.cssScoping = false
	for _, opt := range opts {
		opt(&cfg)
	}

	hc := &Hierarchical{Component: newComponent(h, cfg)}
	hc.SetOuter(hc)
	hc.On(DataUpdatedEvent, func(evt *Event, args ...any) {
		if len(args) == 0 {
			return
		}
		if patch, ok := args[0].(map[string]any); ok {
			hc.UpdateData(maps.Clone(patch))
		}
	})
	return hc
}

// AddChild takes ownership of w. It fails with ErrNotComponent when w is
// not a Widget and with ErrChildOwned when another composite owns it.
// Adding a child twice is a no-op.
func (h *Hierarchical) AddChild(w any) error {
	child, ok := w.(Widget)
	if !ok || child == nil || child.Base() == nil {
		return fmt.Errorf("%w: %T", ErrNotComponent, w)
	}
	base := child.Base()
	if p := base.Parent(); p != nil {
		if p.Base() == h.Component {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrChildOwned, base.ID())
	}
	// Data and event lookups walk the parent chain, so it must stay acyclic.
	for anc := h.Component; anc != nil; {
		if anc == base {
			return fmt.Errorf("%w: %s", ErrCycle, base.ID())
		}
		p := anc.Parent()
		if p == nil {
			break
		}
		anc = p.Base()
	}

	base.setParent(h.Outer())
	h.mu.Lock()
	h.children = append(h.children, child)
	h.mu.Unlock()
	return nil
}

// MustAddChild is AddChild that panics on error, for composition code
// where a failure is a programming mistake.
func (h *Hierarchical) MustAddChild(w any) {
	if err := h.AddChild(w); err != nil {
		panic(err)
	}
}

// Children returns the children in the order they were added.
func (h *Hierarchical) Children() []Widget {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.children)
}

// Child returns the i-th child, or nil.
func (h *Hierarchical) Child(i int) Widget {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.children) {
		return nil
	}
	return h.children[i]
}

// Contains reports whether id names a component anywhere below h.
func (h *Hierarchical) Contains(id string) bool {
	return h.branch(id) != nil
}

// branch returns the direct child whose subtree holds id.
func (h *Hierarchical) branch(id string) Widget {
	for _, child := range h.Children() {
		if child.Base().ID() == id {
			return child
		}
		if sub, ok := child.(interface{ Contains(string) bool }); ok && sub.Contains(id) {
			return child
		}
	}
	return nil
}

// Load loads h, then all children concurrently. It succeeds only if every
// child loads; children that did load are left loaded.
func (h *Hierarchical) Load(ctx context.Context) bool {
	if !h.Component.Load(ctx) {
		return false
	}

	var g errgroup.Group
	for _, child := range h.Children() {
		g.Go(func() error {
			if !child.Load(ctx) {
				return fmt.Errorf("child %s: %w", child.Base().ID(), child.Base().Err())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.fail("load", err)
		return false
	}
	return true
}

// Mount mounts h, then each child in order. A child that fails to mount is
// logged and skipped; the result reflects h alone.
func (h *Hierarchical) Mount() bool {
	if !h.Component.Mount() {
		return false
	}
	for _, child := range h.Children() {
		if !child.Mount() {
			h.Logger().Info("child mount failed",
				zap.String("child", child.Base().ID()),
				zap.Error(child.Base().Err()))
		}
	}
	return true
}

// Unmount unmounts all children concurrently, then h.
func (h *Hierarchical) Unmount() bool {
	var g errgroup.Group
	for _, child := range h.Children() {
		g.Go(func() error {
			child.Unmount()
			return nil
		})
	}
	_ = g.Wait()
	return h.Component.Unmount()
}

// Destroy destroys every child, forgets them, then destroys h.
func (h *Hierarchical) Destroy() {
	for _, child := range h.Children() {
		child.Destroy()
	}
	h.mu.Lock()
	h.children = nil
	h.mu.Unlock()
	h.Component.Destroy()
}

// Call dispatches evt locally, bubbles it if h is the source, and fans it
// out to every child that is not the source.
func (h *Hierarchical) Call(evt *Event, args ...any) {
	h.Component.Call(evt, args...)
	relay := evt.via(h.ID())
	for _, child := range h.Children() {
		if child.Base().ID() == evt.Source {
			continue
		}
		child.OnEvent(relay, args...)
	}
}

// OnEvent dispatches evt locally and relays it by provenance. An event
// arriving from the parent continues down to the children. An event
// arriving from a child's subtree goes to the other children and on up to
// the parent, unless the parent is the source. Events of unknown
// provenance are treated as coming from above.
func (h *Hierarchical) OnEvent(evt *Event, args ...any) {
	h.dispatch(evt, args)

	from := evt.From()
	relay := evt.via(h.ID())
	parent := h.Parent()

	var branch Widget
	if parent == nil || parent.Base().ID() != from {
		branch = h.branch(from)
	}

	for _, child := range h.Children() {
		if child == branch || child.Base().ID() == evt.Source {
			continue
		}
		child.OnEvent(relay, args...)
	}

	if branch != nil && parent != nil && parent.Base().ID() != evt.Source {
		parent.OnEvent(relay, args...)
	}
}
