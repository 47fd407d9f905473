// Package dom is a small document model over golang.org/x/net/html trees.
//
// A Document owns one parsed page and provides the handful of browser
// primitives widgets rely on: selector lookup, attachment and detachment,
// connectedness checks, and an event-listener table with bubbling dispatch.
// Every tree mutation that may touch shared nodes goes through the
// Document so concurrent lifecycle fan-out never races on the tree.
package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoParent is returned when a sibling insertion targets a detached node.
var ErrNoParent = errors.New("dom: reference node has no parent")

// Position selects where Insert places a node relative to its reference.
type Position int

const (
	BeforeEnd Position = iota
	AfterBegin
	BeforeBegin
	AfterEnd
)

// Document is a parsed HTML page plus its listener table.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	listeners map[*html.Node]map[string][]*Listener
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]*Listener),
	}
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page string) (*Document, error) {
	return Parse(strings.NewReader(page))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return d.QuerySelector("body")
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *html.Node {
	return d.QuerySelector("head")
}

// QuerySelector returns the first element matching sel, or nil. Invalid
// selectors match nothing.
func (d *Document) QuerySelector(sel string) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return First(d.root, sel)
}

// Contains reports whether n is the document node or one of its descendants.
func (d *Document) Contains(n *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.contains(n)
}

// Attached reports whether n has a parent node and is connected to the
// document.
func (d *Document) Attached(n *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return n != nil && n.Parent != nil && d.contains(n)
}

func (d *Document) contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Insert places child relative to ref. The child is detached from any
// previous parent first.
func (d *Document) Insert(ref, child *html.Node, pos Position) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if (pos == BeforeBegin || pos == AfterEnd) && ref.Parent == nil {
		return ErrNoParent
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	switch pos {
	case AfterBegin:
		ref.InsertBefore(child, ref.FirstChild)
	case BeforeBegin:
		ref.Parent.InsertBefore(child, ref)
	case AfterEnd:
		ref.Parent.InsertBefore(child, ref.NextSibling)
	default:
		ref.AppendChild(child)
	}
	return nil
}

// Append adds child as the last child of parent.
func (d *Document) Append(parent, child *html.Node) {
	_ = d.Insert(parent, child, BeforeEnd)
}

// Detach removes n from its parent. Detached nodes keep their subtree.
func (d *Document) Detach(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Edit runs fn while holding the document lock. fn must not call back
// into locking Document methods.
func (d *Document) Edit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Render writes the page as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the page, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// First returns the first descendant of root matching sel, or nil.
func First(root *html.Node, sel string) *html.Node {
	nodes := Find(root, sel)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Find returns every descendant of root matching sel, in document order.
func Find(root *html.Node, sel string) []*html.Node {
	if root == nil || sel == "" {
		return nil
	}
	return goquery.NewDocumentFromNode(root).Find(sel).Nodes
}
