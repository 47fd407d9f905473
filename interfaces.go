package hostui

import "context"

// Loadable is implemented by widgets that resolve their markup.
//
// Load never returns an error: failures are logged and recorded on the
// component (see Component.Err), and reported as false, so one broken
// widget cannot disturb the host page or its siblings.
type Loadable interface {
	Load(ctx context.Context) bool
	IsLoaded() bool
}

// Mountable is implemented by widgets that attach to the host document.
type Mountable interface {
	Mount() bool
	Unmount() bool
	IsMounted() bool
	Destroy()
}

// EventEmitter is implemented by widgets that take part in tree-scoped
// event propagation.
//
// Call emits evt from the receiver; OnEvent receives an event relayed by a
// neighbour in the tree and decides where it travels next.
type EventEmitter interface {
	On(name string, h Handler) *Component
	Emit(name string, args ...any)
	Call(evt *Event, args ...any)
	OnEvent(evt *Event, args ...any)
}

// Renderable is implemented by widgets that project their data onto their
// element. Render must be idempotent.
type Renderable interface {
	Render()
}

// Widget is the full capability set the lifecycle and event engine drives.
// Every widget embeds a *Component (directly or through Hierarchical or
// Stateful) and Base returns it.
type Widget interface {
	Loadable
	Mountable
	EventEmitter
	Renderable
	Base() *Component
}
