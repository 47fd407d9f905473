// Package hostui injects self-contained widgets into HTML host pages it
// does not control.
//
// A widget is a tree of components. Each component owns one element and
// moves through a small lifecycle: Load resolves markup into an element,
// Mount attaches it to the host document and binds its event handlers,
// Unmount reverses that, and Destroy releases it for good. Lifecycle
// methods never return errors; they log, record the failure on the
// component (Err), and report false, so one broken widget cannot disturb
// the page or its siblings.
//
// # Hosts
//
// Every component is built against a Host: the parsed page plus the
// collaborators the engine needs (logger, markup fetcher, notifier,
// prompter, state encoder). There are no globals.
//
//	doc, _ := dom.ParseString(page)
//	h := hostui.NewHost(doc, hostui.WithLogger(logger))
//	badge := hostui.NewComponent(h, hostui.WithHTML(`<span id="b">hi</span>`))
//	badge.Load(ctx)
//	badge.Mount()
//
// # Markup Sources
//
// A component's element comes from exactly one source, in priority order:
//   - an existing node (WithElement, WithElementSelector)
//   - inline markup (WithHTML)
//   - a templ component (WithTemplate)
//   - a remote document (WithURL), bounded by the host's fetch timeout
//
// Stylesheets found anywhere in parsed markup are moved into the root.
// With CSS scoping (the default for leaf components) the root gets a fresh
// id and every selector is prefixed with it.
//
// # Composition
//
// Hierarchical owns ordered children. Load is self first, then children
// concurrently; Mount is self first, then children in order, tolerating
// child failures; Unmount is children first; Destroy destroys the subtree.
//
// Widgets embed *Component, *Hierarchical or *Stateful and call SetOuter
// with themselves, so the engine reaches their overrides:
//
//	type Panel struct {
//	    *hostui.Hierarchical
//	}
//
//	func NewPanel(h *hostui.Host) *Panel {
//	    p := &Panel{Hierarchical: hostui.NewHierarchical(h, hostui.WithHTML(`<div></div>`))}
//	    p.SetOuter(p)
//	    p.MustAddChild(NewBadge(h))
//	    return p
//	}
//
// # Events
//
// Emit runs the emitter's handlers and then travels the tree: up through
// every ancestor and down into every other branch, reaching each component
// once. Event sources are compared by component ID.
//
//	child.On("saved", func(evt *hostui.Event, args ...any) { ... })
//	sibling.Emit("saved", record)
//
// Handlers registered with On are also bound as DOM listeners while the
// component is mounted; they then receive the *dom.Event as args[0].
//
// # Data Binding
//
// Render walks the element's descendants:
//   - data-bind="key" sets text from the render state
//   - data-class='{"active":"key"}' toggles classes on truthy state keys
//   - data-bind-data="key" sets a form value or text from the data store
//
// Data lookups resolve through ancestors, so children can read data that a
// composite holds. UpdateData and SetState re-render mounted components.
package hostui
