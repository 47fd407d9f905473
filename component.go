package hostui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui/lib/cssscope"
	"github.com/beachspainc/hostui/lib/dom"
)

// StateAttr holds a component's encoded local data on its root element.
const StateAttr = "data-hostui-state"

type handlerEntry struct {
	fn       Handler
	listener *dom.Listener // non-nil while bound to the element
}

// Component is the leaf widget: one element with a lifecycle, a local data
// store, render state and named event handlers.
//
// Specialised widgets embed *Component (or *Hierarchical, *Stateful) and
// call SetOuter with themselves so that Render, Call, OnEvent and the
// lifecycle methods dispatch to the outermost type:
//
//	type Badge struct {
//	    *hostui.Component
//	}
//
//	func NewBadge(h *hostui.Host) *Badge {
//	    b := &Badge{Component: hostui.NewComponent(h, hostui.WithHTML(`<span data-bind="count"></span>`))}
//	    b.SetOuter(b)
//	    return b
//	}
//
// The lifecycle is unloaded, loaded, mounted, destroyed. Load resolves
// markup into an element, Mount attaches it and binds handlers as DOM
// listeners, Unmount reverses Mount, Destroy releases everything.
type Component struct {
	id   string
	host *Host
	cfg  componentConfig

	mu        sync.Mutex
	outer     Widget
	parent    Widget
	element   *html.Node
	scopeID   string
	loaded    bool
	listening bool
	destroyed bool
	data      map[string]any
	state     map[string]any
	handlers  map[string][]*handlerEntry
	names     []string // handler names in registration order
	err       error
}

// NewComponent creates an unloaded component. No document work happens
// until Load.
func NewComponent(h *Host, opts ...Option) *Component {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newComponent(h, cfg)
}

func newComponent(h *Host, cfg componentConfig) *Component {
	c := &Component{
		id:       uuid.NewString(),
		host:     h,
		cfg:      cfg,
		data:     make(map[string]any),
		state:    make(map[string]any),
		handlers: make(map[string][]*handlerEntry),
	}
	maps.Copy(c.data, cfg.initialData)
	maps.Copy(c.state, cfg.initialState)
	c.outer = c
	return c
}

// ID returns the component's stable identifier.
func (c *Component) ID() string { return c.id }

// Host returns the host the component was built for.
func (c *Component) Host() *Host { return c.host }

// Base returns c. It lets any Widget reach its embedded component.
func (c *Component) Base() *Component { return c }

// SetOuter registers the outermost widget embedding c. The engine calls
// Render, Call, OnEvent and lifecycle methods through it.
func (c *Component) SetOuter(w Widget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outer = w
}

// Outer returns the outermost widget embedding c.
func (c *Component) Outer() Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outer
}

// Parent returns the composite that owns c, or nil.
func (c *Component) Parent() Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent
}

func (c *Component) setParent(p Widget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parent = p
}

// Element returns the root element, nil before Load and after Destroy.
func (c *Component) Element() *html.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.element
}

// ScopeID returns the id generated for CSS scoping, or "".
func (c *Component) ScopeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scopeID
}

// IsLoaded reports whether Load has succeeded.
func (c *Component) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// IsMounted reports whether the element is attached to the host document.
// It is derived from the tree on every call.
func (c *Component) IsMounted() bool {
	el := c.Element()
	return el != nil && c.host.doc.Attached(el)
}

// Destroyed reports whether Destroy has run.
func (c *Component) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Err returns the last lifecycle failure.
func (c *Component) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Logger returns the host logger annotated with the component id.
func (c *Component) Logger() *zap.Logger {
	return c.host.logger.With(zap.String("component", c.id))
}

func (c *Component) fail(op string, err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	c.host.logger.Warn("component "+op+" failed",
		zap.String("component", c.id),
		zap.Error(err))
}

// Load resolves the configured markup source into the root element.
// Sources are tried in priority order: element, html, template, url.
// Loading a loaded component succeeds without doing any work.
func (c *Component) Load(ctx context.Context) bool {
	if err := c.load(ctx); err != nil {
		c.fail("load", err)
		return false
	}
	return true
}

func (c *Component) load(ctx context.Context) error {
	c.mu.Lock()
	destroyed, loaded := c.destroyed, c.loaded
	c.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	if loaded {
		return nil
	}

	el, err := c.resolveElement(ctx)
	if err != nil {
		return err
	}

	var scopeID string
	if c.cfg.cssScoping {
		scopeID = c.host.scopeIDs()
		var scopeErr error
		c.host.doc.Edit(func() {
			dom.SetAttr(el, "id", scopeID)
			scopeErr = scopeStyles(el, scopeID)
		})
		if scopeErr != nil {
			c.Logger().Warn("stylesheet left unscoped", zap.Error(scopeErr))
		}
	}

	c.hydrate(el)

	c.mu.Lock()
	c.element = el
	c.scopeID = scopeID
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *Component) resolveElement(ctx context.Context) (*html.Node, error) {
	var source string
	switch cfg := c.cfg; {
	case cfg.element != nil:
		return cfg.element, nil
	case cfg.elementSelector != "":
		n := c.host.doc.QuerySelector(cfg.elementSelector)
		if n == nil {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, cfg.elementSelector)
		}
		return n, nil
	case cfg.markup != "":
		source = cfg.markup
	case cfg.template != nil:
		var buf bytes.Buffer
		if err := cfg.template.Render(ctx, &buf); err != nil {
			return nil, fmt.Errorf("hostui: render template: %w", err)
		}
		source = buf.String()
	case cfg.url != "":
		body, err := c.fetch(ctx, cfg.url)
		if err != nil {
			return nil, err
		}
		source = body
	default:
		return nil, ErrConfiguration
	}

	root, err := dom.ParseMarkup(source, c.cfg.rootSelector)
	if errors.Is(err, dom.ErrNoRoot) {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, c.cfg.rootSelector)
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (c *Component) fetch(ctx context.Context, url string) (string, error) {
	if t := c.host.fetchTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	body, err := c.host.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return body, nil
}

func scopeStyles(el *html.Node, id string) error {
	for _, style := range dom.Find(el, "style") {
		scoped, err := cssscope.Scope(dom.Text(style), id)
		if err != nil {
			return err
		}
		dom.SetText(style, scoped)
	}
	return nil
}

// hydrate merges a persisted snapshot into the local data. Persisted
// values win over initial data.
func (c *Component) hydrate(el *html.Node) {
	enc := c.host.encoder
	if enc == nil {
		return
	}
	var raw string
	var ok bool
	c.host.doc.Edit(func() { raw, ok = dom.Attr(el, StateAttr) })
	if !ok {
		return
	}
	data, err := enc.Decode(raw, c.host.sensitive)
	if err != nil {
		c.Logger().Warn("ignoring persisted state", zap.Error(wrapEncodingError(err)))
		return
	}
	c.mu.Lock()
	maps.Copy(c.data, data)
	c.mu.Unlock()
}

// Snapshot encodes the local data onto the element so it survives
// serialisation of the host page. A later Load of the same element
// restores it.
func (c *Component) Snapshot() error {
	enc := c.host.encoder
	if enc == nil {
		return ErrNoEncoder
	}
	c.mu.Lock()
	el := c.element
	data := maps.Clone(c.data)
	c.mu.Unlock()
	if el == nil {
		return ErrNotLoaded
	}

	encoded, err := enc.Encode(data, c.host.sensitive)
	if err != nil {
		return wrapEncodingError(err)
	}
	c.host.doc.Edit(func() { dom.SetAttr(el, StateAttr, encoded) })
	return nil
}

// Mount attaches the element under the parent resolved now, binds every
// handler as a DOM listener and renders. Mounting a mounted, listening
// component succeeds without doing any work. An element that is already
// attached (adopted from the host page) only gets its listeners bound and
// one render.
func (c *Component) Mount() bool {
	if err := c.mount(); err != nil {
		c.fail("mount", err)
		return false
	}
	return true
}

func (c *Component) mount() error {
	c.mu.Lock()
	destroyed, loaded, el, listening := c.destroyed, c.loaded, c.element, c.listening
	c.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	if !loaded {
		return ErrNotLoaded
	}

	if c.host.doc.Attached(el) {
		if !listening {
			c.bind()
			c.Outer().Render()
		}
		return nil
	}

	ref := c.resolveParent()
	if ref == nil || !c.host.doc.Contains(ref) {
		return ErrParentNotFound
	}
	if err := c.host.doc.Insert(ref, el, c.cfg.placement.position()); err != nil {
		return fmt.Errorf("%w: %w", ErrParentNotFound, err)
	}
	c.bind()
	c.Outer().Render()
	return nil
}

func (c *Component) resolveParent() *html.Node {
	switch {
	case c.cfg.parentNode != nil:
		return c.cfg.parentNode
	case c.cfg.parentSelector != "":
		return c.host.doc.QuerySelector(c.cfg.parentSelector)
	}
	if p := c.Parent(); p != nil {
		if el := p.Base().Element(); el != nil {
			return el
		}
	}
	return c.host.doc.Body()
}

// SetParentSelector changes where the next Mount attaches the element.
func (c *Component) SetParentSelector(sel string) {
	WithParentSelector(sel)(&c.cfg)
}

// SetParentNode changes where the next Mount attaches the element.
func (c *Component) SetParentNode(n *html.Node) {
	WithParentNode(n)(&c.cfg)
}

type binding struct {
	name     string
	listener *dom.Listener
}

func (c *Component) bind() {
	c.mu.Lock()
	el := c.element
	var add []binding
	for _, name := range c.names {
		for _, e := range c.handlers[name] {
			if e.listener == nil {
				e.listener = c.listenerFor(name, e.fn)
				add = append(add, binding{name, e.listener})
			}
		}
	}
	c.listening = true
	c.mu.Unlock()

	for _, b := range add {
		c.host.doc.AddEventListener(el, b.name, b.listener)
	}
}

func (c *Component) unbind() {
	c.mu.Lock()
	el := c.element
	var remove []binding
	for _, name := range c.names {
		for _, e := range c.handlers[name] {
			if e.listener != nil {
				remove = append(remove, binding{name, e.listener})
				e.listener = nil
			}
		}
	}
	c.listening = false
	c.mu.Unlock()

	for _, b := range remove {
		c.host.doc.RemoveEventListener(el, b.name, b.listener)
	}
}

func (c *Component) listenerFor(name string, fn Handler) *dom.Listener {
	return dom.NewListener(func(e *dom.Event) {
		fn(c.NewEvent(name), e)
	})
}

// Unmount removes every DOM listener and detaches the element. The element
// is kept for a later Mount.
func (c *Component) Unmount() bool {
	if err := c.unmount(); err != nil {
		c.fail("unmount", err)
		return false
	}
	return true
}

func (c *Component) unmount() error {
	c.mu.Lock()
	destroyed, el := c.destroyed, c.element
	c.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	if el == nil || !c.host.doc.Attached(el) {
		return ErrNotMounted
	}
	c.unbind()
	c.host.doc.Detach(el)
	return nil
}

// Destroy unmounts, drops every handler and all local data, and releases
// the element. A destroyed component cannot be loaded or mounted again.
func (c *Component) Destroy() {
	if c.Destroyed() {
		return
	}
	if err := c.unmount(); err != nil && !errors.Is(err, ErrNotMounted) {
		c.fail("destroy", err)
	}
	c.unbind()

	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.handlers)
	c.names = nil
	clear(c.data)
	c.element = nil
	c.loaded = false
	c.destroyed = true
}

// On registers h for events named name. If the component is mounted the
// handler is bound to the element immediately.
func (c *Component) On(name string, h Handler) *Component {
	c.mu.Lock()
	if _, ok := c.handlers[name]; !ok {
		c.names = append(c.names, name)
	}
	entry := &handlerEntry{fn: h}
	c.handlers[name] = append(c.handlers[name], entry)
	el := c.element
	if c.listening {
		entry.listener = c.listenerFor(name, h)
	}
	c.mu.Unlock()

	if entry.listener != nil {
		c.host.doc.AddEventListener(el, name, entry.listener)
	}
	return c
}

// HandlerCount returns the number of registered handlers.
func (c *Component) HandlerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, list := range c.handlers {
		n += len(list)
	}
	return n
}

// NewEvent returns an event sent by and originating from c.
func (c *Component) NewEvent(name string) *Event {
	return &Event{Name: name, Sender: c.id, Source: c.id}
}

// Emit wraps name into an event originating from c and calls it.
func (c *Component) Emit(name string, args ...any) {
	c.Outer().Call(c.NewEvent(name), args...)
}

// Call runs the local handlers for evt, then bubbles it to the parent if
// c is the event's source.
func (c *Component) Call(evt *Event, args ...any) {
	c.dispatch(evt, args)
	if p := c.Parent(); p != nil && evt.Source == c.id {
		p.OnEvent(evt.via(c.id), args...)
	}
}

// OnEvent runs the local handlers for an event relayed to c and keeps it
// travelling upward, unless it came from the parent or the parent is its
// source.
func (c *Component) OnEvent(evt *Event, args ...any) {
	c.dispatch(evt, args)
	p := c.Parent()
	if p == nil {
		return
	}
	pid := p.Base().ID()
	if evt.From() == pid || evt.Source == pid {
		return
	}
	p.OnEvent(evt.via(c.id), args...)
}

func (c *Component) dispatch(evt *Event, args []any) {
	c.mu.Lock()
	entries := slices.Clone(c.handlers[evt.Name])
	c.mu.Unlock()
	for _, e := range entries {
		e.fn(evt, args...)
	}
}

// UpdateData merges patch into the local data, last write wins, and
// renders if mounted.
func (c *Component) UpdateData(patch map[string]any) *Component {
	c.mu.Lock()
	maps.Copy(c.data, patch)
	c.mu.Unlock()
	if c.IsMounted() {
		c.Outer().Render()
	}
	return c
}

// SetLocal stores one value without rendering.
func (c *Component) SetLocal(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// GetLocal returns a value from c's own store.
func (c *Component) GetLocal(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// HasLocal reports whether c's own store holds key.
func (c *Component) HasLocal(key string) bool {
	_, ok := c.GetLocal(key)
	return ok
}

// LocalData returns a copy of c's own store.
func (c *Component) LocalData() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.data)
}

// Data returns a view that resolves keys through c and its ancestors.
func (c *Component) Data() DataView {
	return DataView{c: c}
}

// State returns a copy of the render state.
func (c *Component) State() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.state)
}

// SetState merges patch into the render state and renders if mounted.
func (c *Component) SetState(patch map[string]any) {
	c.mu.Lock()
	maps.Copy(c.state, patch)
	c.mu.Unlock()
	if c.IsMounted() {
		c.Outer().Render()
	}
}

// Render projects state and data onto the element's bound descendants.
func (c *Component) Render() {
	el := c.Element()
	if el == nil {
		return
	}
	state := c.State()
	data := c.Data().All()
	c.host.doc.Edit(func() {
		bindNodes(el, state, data)
	})
}

// Edit runs fn on the element while holding the document lock. fn must
// not call locking Document methods. Edit reports false before Load.
func (c *Component) Edit(fn func(el *html.Node)) bool {
	el := c.Element()
	if el == nil {
		return false
	}
	c.host.doc.Edit(func() { fn(el) })
	return true
}
