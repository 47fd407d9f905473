package hostui

import (
	"maps"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// componentConfig is the construction-time configuration of a component.
// Nothing in it touches the document until Load or Mount.
type componentConfig struct {
	parentSelector   string
	parentNode       *html.Node
	cssScoping       bool
	initialData      map[string]any
	element          *html.Node
	elementSelector  string
	markup           string
	template         templ.Component
	url              string
	rootSelector     string
	loadingAnimation bool
	initialState     map[string]any
	placement        Placement
}

func defaultConfig() componentConfig {
	return componentConfig{
		cssScoping: true,
		placement:  PlaceBeforeEnd,
	}
}

// Option configures a component.
type Option func(*componentConfig)

// WithParentSelector sets the selector resolved against the host document
// at mount time. Without a parent, a child mounts into its parent
// component's element and a top-level component into <body>.
func WithParentSelector(sel string) Option {
	return func(c *componentConfig) {
		c.parentSelector = sel
		c.parentNode = nil
	}
}

// WithParentNode mounts into a specific node.
func WithParentNode(n *html.Node) Option {
	return func(c *componentConfig) {
		c.parentNode = n
		c.parentSelector = ""
	}
}

// WithCSSScoping turns stylesheet scoping on or off.
func WithCSSScoping(on bool) Option {
	return func(c *componentConfig) { c.cssScoping = on }
}

// WithInitialData seeds the local data store.
func WithInitialData(data map[string]any) Option {
	return func(c *componentConfig) { c.initialData = maps.Clone(data) }
}

// WithInitialState seeds the render state.
func WithInitialState(state map[string]any) Option {
	return func(c *componentConfig) { c.initialState = maps.Clone(state) }
}

// WithElement uses an existing node as the component's element. It has
// the highest source priority.
func WithElement(n *html.Node) Option {
	return func(c *componentConfig) { c.element = n }
}

// WithElementSelector adopts the first host-document element matching sel
// at load time. It shares the priority of WithElement.
func WithElementSelector(sel string) Option {
	return func(c *componentConfig) { c.elementSelector = sel }
}

// WithHTML parses markup into the component's element.
func WithHTML(markup string) Option {
	return func(c *componentConfig) { c.markup = markup }
}

// WithTemplate renders a templ component into the element's markup.
func WithTemplate(t templ.Component) Option {
	return func(c *componentConfig) { c.template = t }
}

// WithURL fetches the element's markup from url.
func WithURL(url string) Option {
	return func(c *componentConfig) { c.url = url }
}

// WithRootSelector picks the root element out of parsed markup. Without
// it the first element of the markup's body is used.
func WithRootSelector(sel string) Option {
	return func(c *componentConfig) { c.rootSelector = sel }
}

// WithLoadingAnimation shows an overlay while a stateful component is
// loading.
func WithLoadingAnimation(on bool) Option {
	return func(c *componentConfig) { c.loadingAnimation = on }
}

// WithPlacement chooses where Mount inserts the element.
func WithPlacement(p Placement) Option {
	return func(c *componentConfig) { c.placement = p }
}
