package hostui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/beachspainc/hostui/lib/dom"
	"github.com/beachspainc/hostui/lib/markup"
)

// hits counts event deliveries per component label.
type hits struct {
	mu     sync.Mutex
	counts map[string]int
	events []*Event
}

func newHits() *hits {
	return &hits{counts: make(map[string]int)}
}

func (h *hits) watch(label string, c *Component, name string) {
	c.On(name, func(evt *Event, args ...any) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.counts[label]++
		h.events = append(h.events, evt)
	})
}

func (h *hits) get(label string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[label]
}

func TestEventPropagationDirection(t *testing.T) {
	th := newTestHost(t, BlankPage)
	r := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	a := NewComponent(th.Host, WithHTML(`<div></div>`))
	b := NewComponent(th.Host, WithHTML(`<div></div>`))
	r.MustAddChild(a)
	r.MustAddChild(b)

	t.Run("child emits", func(t *testing.T) {
		h := newHits()
		h.watch("r", r.Component, "ping")
		h.watch("a", a, "ping")
		h.watch("b", b, "ping")

		a.Emit("ping")

		for label, want := range map[string]int{"r": 1, "a": 1, "b": 1} {
			if got := h.get(label); got != want {
				t.Errorf("%s received %d times, want %d", label, got, want)
			}
		}
		for _, evt := range h.events {
			if evt.Source != a.ID() || evt.Sender != a.ID() {
				t.Errorf("event source/sender = %q/%q, want %q", evt.Source, evt.Sender, a.ID())
			}
		}
	})

	t.Run("root emits", func(t *testing.T) {
		h := newHits()
		h.watch("r", r.Component, "pong")
		h.watch("a", a, "pong")
		h.watch("b", b, "pong")

		r.Emit("pong")

		for label, want := range map[string]int{"r": 1, "a": 1, "b": 1} {
			if got := h.get(label); got != want {
				t.Errorf("%s received %d times, want %d", label, got, want)
			}
		}
	})
}

func TestEventPropagationDeepTree(t *testing.T) {
	th := newTestHost(t, BlankPage)
	r := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	m := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	g := NewComponent(th.Host, WithHTML(`<div></div>`))
	g2 := NewComponent(th.Host, WithHTML(`<div></div>`))
	b := NewComponent(th.Host, WithHTML(`<div></div>`))
	m.MustAddChild(g)
	m.MustAddChild(g2)
	r.MustAddChild(m)
	r.MustAddChild(b)

	all := map[string]*Component{"r": r.Component, "m": m.Component, "g": g, "g2": g2, "b": b}

	emitters := []struct {
		name string
		emit func(string)
	}{
		{"grandchild", func(n string) { g.Emit(n) }},
		{"middle", func(n string) { m.Emit(n) }},
		{"root", func(n string) { r.Emit(n) }},
		{"leaf sibling", func(n string) { b.Emit(n) }},
	}

	for i, tt := range emitters {
		t.Run(tt.name, func(t *testing.T) {
			name := fmt.Sprintf("evt-%d", i)
			h := newHits()
			for label, c := range all {
				h.watch(label, c, name)
			}
			tt.emit(name)
			for label := range all {
				if got := h.get(label); got != 1 {
					t.Errorf("%s received %d times, want 1", label, got)
				}
			}
		})
	}
}

func TestOnEventWithoutHopUsesSubtreeMembership(t *testing.T) {
	th := newTestHost(t, BlankPage)
	r := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	m := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	g := NewComponent(th.Host, WithHTML(`<div></div>`))
	b := NewComponent(th.Host, WithHTML(`<div></div>`))
	m.MustAddChild(g)
	r.MustAddChild(m)
	r.MustAddChild(b)

	h := newHits()
	h.watch("m", m.Component, "relay")
	h.watch("b", b, "relay")

	// Delivered straight to the root with only the grandchild as source.
	r.OnEvent(g.NewEvent("relay"))

	if h.get("b") != 1 {
		t.Errorf("sibling branch received %d, want 1", h.get("b"))
	}
	if h.get("m") != 0 {
		t.Errorf("source branch received %d, want 0", h.get("m"))
	}
	if !r.Contains(g.ID()) || r.Contains("unknown") {
		t.Error("Contains() should test whole-subtree membership")
	}
}

func TestAddChild(t *testing.T) {
	th := newTestHost(t, BlankPage)
	p1 := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	p2 := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	c := NewComponent(th.Host, WithHTML(`<div></div>`))

	if err := p1.AddChild("not a component"); !errors.Is(err, ErrNotComponent) {
		t.Errorf("AddChild(string) error = %v, want ErrNotComponent", err)
	}
	if err := p1.AddChild(c); err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	if err := p1.AddChild(c); err != nil {
		t.Errorf("AddChild() twice error = %v, want nil", err)
	}
	if len(p1.Children()) != 1 {
		t.Errorf("Children() = %d, want 1", len(p1.Children()))
	}
	if err := p2.AddChild(c); !errors.Is(err, ErrChildOwned) {
		t.Errorf("AddChild() to second parent error = %v, want ErrChildOwned", err)
	}
	if c.Parent().Base() != p1.Component {
		t.Error("child parent reference should point at its owner")
	}
	if p1.Child(0) != Widget(c) || p1.Child(1) != nil {
		t.Error("Child() returned the wrong widget")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustAddChild(non-component) should panic")
		}
	}()
	p1.MustAddChild(42)
}

func TestAddChildRejectsCycles(t *testing.T) {
	th := newTestHost(t, BlankPage)
	a := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	b := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	c := NewHierarchical(th.Host, WithHTML(`<div></div>`))

	if err := a.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("AddChild(self) error = %v, want ErrCycle", err)
	}
	if a.Parent() != nil || len(a.Children()) != 0 {
		t.Error("rejected self add should leave the tree unchanged")
	}
	if err := a.AddChild(b); err != nil {
		t.Fatalf("AddChild(b) error = %v", err)
	}
	if err := b.AddChild(c); err != nil {
		t.Fatalf("AddChild(c) error = %v", err)
	}
	if err := b.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("AddChild(parent) error = %v, want ErrCycle", err)
	}
	if err := c.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("AddChild(grandparent) error = %v, want ErrCycle", err)
	}
	if a.Parent() != nil {
		t.Error("rejected cycle should not reparent the ancestor")
	}

	done := make(chan struct{})
	go func() {
		c.Data().Get("missing")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Data().Get() did not return after a rejected cycle")
	}
}

func TestHierarchicalLoad(t *testing.T) {
	var mu sync.Mutex
	inflight, peak := 0, 0
	slow := markup.FetcherFunc(func(ctx context.Context, url string) (string, error) {
		mu.Lock()
		inflight++
		peak = max(peak, inflight)
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		inflight--
		mu.Unlock()
		return `<div class="child"></div>`, nil
	})
	th := newTestHost(t, BlankPage, WithFetcher(slow))

	t.Run("children load concurrently", func(t *testing.T) {
		p := NewHierarchical(th.Host, WithHTML(`<div></div>`))
		for i := range 5 {
			p.MustAddChild(NewComponent(th.Host, WithURL(fmt.Sprintf("https://widgets.test/%d", i))))
		}
		if !p.Load(context.Background()) {
			t.Fatalf("Load() = false, err = %v", p.Err())
		}
		for _, c := range p.Children() {
			if !c.IsLoaded() {
				t.Error("child not loaded")
			}
		}
		if peak < 2 {
			t.Errorf("peak concurrent child loads = %d, want > 1", peak)
		}
	})

	t.Run("one failing child fails the composite", func(t *testing.T) {
		p := NewHierarchical(th.Host, WithHTML(`<div></div>`))
		good := NewComponent(th.Host, WithHTML(`<div></div>`))
		bad := NewComponent(th.Host)
		p.MustAddChild(good)
		p.MustAddChild(bad)

		if p.Load(context.Background()) {
			t.Fatal("Load() = true, want false")
		}
		if !errors.Is(p.Err(), ErrConfiguration) {
			t.Errorf("Err() = %v, want wrapped ErrConfiguration", p.Err())
		}
		if !p.IsLoaded() || !good.IsLoaded() {
			t.Error("successfully loaded parts should stay loaded")
		}
	})

	t.Run("failing self skips children", func(t *testing.T) {
		p := NewHierarchical(th.Host)
		child := NewComponent(th.Host, WithHTML(`<div></div>`))
		p.MustAddChild(child)
		if p.Load(context.Background()) {
			t.Fatal("Load() = true, want false")
		}
		if child.IsLoaded() {
			t.Error("child loaded under an unloaded parent")
		}
	})
}

func TestHierarchicalBestEffortMount(t *testing.T) {
	th := newTestHost(t, BlankPage)
	c := NewHierarchical(th.Host, WithHTML(`<div id="c"></div>`))
	x := NewComponent(th.Host, WithHTML(`<span id="x"></span>`), WithCSSScoping(false), WithParentSelector("#missing"))
	y := NewComponent(th.Host, WithHTML(`<span id="y"></span>`), WithCSSScoping(false))
	c.MustAddChild(x)
	c.MustAddChild(y)

	if !c.Load(context.Background()) {
		t.Fatalf("Load() = false, err = %v", c.Err())
	}
	if !c.Mount() {
		t.Fatalf("Mount() = false, err = %v", c.Err())
	}
	if x.IsMounted() {
		t.Error("x should have failed to mount")
	}
	if !errors.Is(x.Err(), ErrParentNotFound) {
		t.Errorf("x.Err() = %v, want ErrParentNotFound", x.Err())
	}
	if !y.IsMounted() {
		t.Error("y should be mounted despite x failing")
	}
	if th.Document().QuerySelector("#y").Parent != c.Element() {
		t.Error("children without a parent locator mount into the composite")
	}
}

func TestHierarchicalUnmountAndDestroy(t *testing.T) {
	th := newTestHost(t, BlankPage)
	c := NewHierarchical(th.Host, WithHTML(`<div id="c"></div>`))
	a := NewComponent(th.Host, WithHTML(`<span id="a"></span>`), WithCSSScoping(false))
	b := NewComponent(th.Host, WithHTML(`<span id="b"></span>`), WithCSSScoping(false))
	a.On("click", func(evt *Event, args ...any) {})
	c.MustAddChild(a)
	c.MustAddChild(b)

	c.Load(context.Background())
	c.Mount()
	doc := th.Document()
	aEl := a.Element()

	if !c.Unmount() {
		t.Fatalf("Unmount() = false, err = %v", c.Err())
	}
	if doc.ListenerCount(aEl) != 0 {
		t.Error("child listeners should be removed on composite unmount")
	}
	if aEl.Parent != nil {
		t.Error("child should be detached before its container")
	}

	c.Mount()
	if !a.IsMounted() || !b.IsMounted() {
		t.Fatal("remount should remount children")
	}

	c.Destroy()
	for _, sel := range []string{"#c", "#a", "#b"} {
		if doc.QuerySelector(sel) != nil {
			t.Errorf("%s still in document after destroy", sel)
		}
	}
	if len(c.Children()) != 0 {
		t.Error("child collection not cleared")
	}
	if !a.Destroyed() || !b.Destroyed() || !c.Destroyed() {
		t.Error("destroy should reach every component")
	}
}

func TestDataViewAndDataUpdated(t *testing.T) {
	th := newTestHost(t, BlankPage)
	r := NewHierarchical(th.Host, WithHTML(`<div></div>`), WithInitialData(map[string]any{"click_info": "evt-1", "shared": "root"}))
	a := NewComponent(th.Host, WithHTML(`<div></div>`), WithInitialData(map[string]any{"shared": "local"}))
	r.MustAddChild(a)

	if v, ok := a.Data().Get("click_info"); !ok || v != "evt-1" {
		t.Errorf("Data().Get(click_info) = %v, %v; want inherited value", v, ok)
	}
	if v, _ := a.Data().Get("shared"); v != "local" {
		t.Errorf("Data().Get(shared) = %v, want local shadow", v)
	}
	if _, ok := a.Data().Get("missing"); ok {
		t.Error("missing key should not resolve")
	}
	all := a.Data().All()
	if all["click_info"] != "evt-1" || all["shared"] != "local" {
		t.Errorf("Data().All() = %v", all)
	}

	a.Data().Set("mine", 1)
	if r.HasLocal("mine") || !a.HasLocal("mine") {
		t.Error("Data().Set should write to the viewing component")
	}

	a.Emit(DataUpdatedEvent, map[string]any{"click_info": "evt-2"})
	if v, _ := r.GetLocal("click_info"); v != "evt-2" {
		t.Errorf("root click_info = %v, want evt-2 after data-updated", v)
	}
}

func TestChildRendersInheritedData(t *testing.T) {
	th := newTestHost(t, BlankPage)
	r := NewHierarchical(th.Host, WithHTML(`<div></div>`))
	a := NewComponent(th.Host, WithHTML(`<p><span data-bind-data="booking"></span></p>`))
	r.MustAddChild(a)
	r.Load(context.Background())
	r.Mount()

	r.UpdateData(map[string]any{"booking": "b-9"})
	a.Render()
	if got := dom.Text(a.Element()); got != "b-9" {
		t.Errorf("child text = %q, want %q", got, "b-9")
	}
}
