package dom

import "golang.org/x/net/html"

// Event is a DOM event travelling from its target up to the document.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Detail        any

	stopped          bool
	defaultPrevented bool
}

// StopPropagation prevents delivery to the remaining ancestors. Listeners
// on the current node still run.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// PreventDefault marks the event as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener is a registered callback. Listeners are compared by pointer, so
// the same *Listener must be passed to RemoveEventListener.
type Listener struct {
	fn func(*Event)
}

// NewListener wraps fn.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// AddEventListener registers l for typ on n. Registering the same listener
// twice for the same node and type is a no-op.
func (d *Document) AddEventListener(n *html.Node, typ string, l *Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]*Listener)
		d.listeners[n] = byType
	}
	for _, existing := range byType[typ] {
		if existing == l {
			return
		}
	}
	byType[typ] = append(byType[typ], l)
}

// RemoveEventListener unregisters l for typ on n.
func (d *Document) RemoveEventListener(n *html.Node, typ string, l *Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byType, ok := d.listeners[n]
	if !ok {
		return
	}
	list := byType[typ]
	for i, existing := range list {
		if existing != l {
			continue
		}
		byType[typ] = append(list[:i:i], list[i+1:]...)
		break
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(d.listeners, n)
	}
}

// ListenerCount returns how many listeners are registered on n.
func (d *Document) ListenerCount(n *html.Node) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, list := range d.listeners[n] {
		count += len(list)
	}
	return count
}

// Dispatch fires an event of type typ at target and bubbles it through the
// target's ancestors. Listeners run without the document lock held, so
// they may mutate the tree. Returns false if a listener called
// PreventDefault.
func (d *Document) Dispatch(target *html.Node, typ string, detail any) bool {
	evt := &Event{Type: typ, Target: target, Detail: detail}

	for n := target; n != nil; {
		d.mu.Lock()
		list := append([]*Listener(nil), d.listeners[n][typ]...)
		next := n.Parent
		d.mu.Unlock()

		evt.CurrentTarget = n
		for _, l := range list {
			l.fn(evt)
		}
		if evt.stopped {
			break
		}
		n = next
	}
	return !evt.defaultPrevented
}
