package hostui

import "github.com/beachspainc/hostui/lib/dom"

// Placement defines where Mount inserts a component's element relative to
// the resolved parent node.
//
// The names follow insertAdjacentElement. For the sibling placements the
// resolved parent is the reference node, not the eventual DOM parent.
type Placement string

const (
	// PlaceBeforeEnd appends the element as the last child. This is the
	// default placement.
	PlaceBeforeEnd Placement = "beforeend"

	// PlaceAfterBegin prepends the element as the first child.
	PlaceAfterBegin Placement = "afterbegin"

	// PlaceBeforeBegin inserts the element as the previous sibling.
	PlaceBeforeBegin Placement = "beforebegin"

	// PlaceAfterEnd inserts the element as the next sibling.
	PlaceAfterEnd Placement = "afterend"
)

func (p Placement) position() dom.Position {
	switch p {
	case PlaceAfterBegin:
		return dom.AfterBegin
	case PlaceBeforeBegin:
		return dom.BeforeBegin
	case PlaceAfterEnd:
		return dom.AfterEnd
	default:
		return dom.BeforeEnd
	}
}
