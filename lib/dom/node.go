package dom

import (
	"bytes"
	"errors"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoRoot is returned by ParseMarkup when no root element can be picked.
var ErrNoRoot = errors.New("dom: markup has no root element")

// The helpers below do not lock. Use Document.Edit when the node is
// attached to a shared document.

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// ParseMarkup parses a widget's markup as a full document and returns its
// root element, detached. The root is the first match of rootSelector, or
// the first element child of <body> when rootSelector is empty. Stylesheets
// found outside the root (for example in <head>) are copied into it.
func ParseMarkup(markup, rootSelector string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	var root *html.Node
	if rootSelector != "" {
		root = First(doc, rootSelector)
	} else {
		root = firstElementChild(First(doc, "body"))
	}
	if root == nil || root.Parent == nil {
		return nil, ErrNoRoot
	}

	var sheets []string
	for _, style := range Find(doc, "style") {
		if !isWithin(style, root) {
			sheets = append(sheets, Text(style))
		}
	}

	root.Parent.RemoveChild(root)
	for _, sheet := range sheets {
		style := NewElement("style")
		style.AppendChild(NewText(sheet))
		root.AppendChild(style)
	}
	return root, nil
}

func firstElementChild(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func isWithin(n, ancestor *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the class attribute lists cls.
func HasClass(n *html.Node, cls string) bool {
	v, _ := Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}

// ToggleClass adds cls when on is true and removes it otherwise.
func ToggleClass(n *html.Node, cls string, on bool) {
	v, _ := Attr(n, "class")
	fields := strings.Fields(v)
	kept := fields[:0]
	found := false
	for _, c := range fields {
		if c == cls {
			found = true
			if !on {
				continue
			}
		}
		kept = append(kept, c)
	}
	if on && !found {
		kept = append(kept, cls)
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Text returns the concatenated text of n and its descendants.
func Text(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(NewText(text))
}

// IsFormControl reports whether n is an input, textarea or select element.
func IsFormControl(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Input, atom.Textarea, atom.Select:
		return true
	}
	return false
}

// SetValue writes a form control's value: the value attribute of an input,
// the text of a textarea, the selected option of a select.
func SetValue(n *html.Node, value string) {
	switch n.DataAtom {
	case atom.Textarea:
		SetText(n, value)
	case atom.Select:
		for _, opt := range Find(n, "option") {
			v, ok := Attr(opt, "value")
			if !ok {
				v = strings.TrimSpace(Text(opt))
			}
			if v == value {
				SetAttr(opt, "selected", "")
			} else {
				RemoveAttr(opt, "selected")
			}
		}
	default:
		SetAttr(n, "value", value)
	}
}

// Style returns the inline value of a CSS property.
func Style(n *html.Node, property string) string {
	raw, _ := Attr(n, "style")
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return ""
	}
	for _, d := range decls {
		if d.Property == property {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets an inline CSS property; an empty value removes it. The
// remaining declarations keep their order.
func SetStyle(n *html.Node, property, value string) error {
	raw, _ := Attr(n, "style")
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return err
	}

	var parts []string
	replaced := false
	for _, d := range decls {
		if d.Property == property {
			replaced = true
			if value != "" {
				parts = append(parts, property+": "+value)
			}
			continue
		}
		decl := d.Property + ": " + d.Value
		if d.Important {
			decl += " !important"
		}
		parts = append(parts, decl)
	}
	if !replaced && value != "" {
		parts = append(parts, property+": "+value)
	}

	if len(parts) == 0 {
		RemoveAttr(n, "style")
		return nil
	}
	SetAttr(n, "style", strings.Join(parts, "; ")+";")
	return nil
}

// OuterHTML renders n and its subtree.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
