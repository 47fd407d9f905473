package hostui

// Event is one occurrence travelling through a component tree. Sender and
// Source hold component IDs: Sender is the component that emitted it,
// Source is the origin used to decide propagation direction. Events are
// created at emission, consumed synchronously, and never stored.
type Event struct {
	Name   string
	Sender string
	Source string

	// hop is the ID of the component that relayed the event to the current
	// receiver. Empty for events delivered directly by the caller.
	hop string
}

// Handler receives an event and the extra arguments passed to Emit or Call.
// Handlers bound to DOM events receive the *dom.Event as args[0].
type Handler func(evt *Event, args ...any)

// From returns the ID of the component that handed the event to the
// current receiver, falling back to the source.
func (e *Event) From() string {
	if e.hop != "" {
		return e.hop
	}
	return e.Source
}

func (e *Event) via(id string) *Event {
	next := *e
	next.hop = id
	return &next
}
