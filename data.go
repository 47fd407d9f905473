package hostui

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"

	"golang.org/x/net/html"

	"github.com/beachspainc/hostui/lib/dom"
)

// Binding attributes read by Render.
const (
	// BindAttr binds an element's text to a state key.
	BindAttr = "data-bind"
	// ClassAttr maps class names to state keys, as a JSON object. Each
	// class is present while its key is truthy.
	ClassAttr = "data-class"
	// BindDataAttr binds a form control's value, or an element's text, to
	// a data key.
	BindDataAttr = "data-bind-data"
)

// DataView reads a component's data through its ancestors: a key missing
// locally is looked up in the parent, then the grandparent. Writes always
// go to the component itself.
type DataView struct {
	c *Component
}

// Get resolves key from the nearest component in the chain holding it.
func (v DataView) Get(key string) (any, bool) {
	for c := v.c; c != nil; {
		if val, ok := c.GetLocal(key); ok {
			return val, true
		}
		p := c.Parent()
		if p == nil {
			break
		}
		c = p.Base()
	}
	return nil, false
}

// Set stores key on the viewing component.
func (v DataView) Set(key string, val any) {
	v.c.SetLocal(key, val)
}

// All flattens the chain, nearer components shadowing ancestors.
func (v DataView) All() map[string]any {
	var chain []*Component
	for c := v.c; c != nil; {
		chain = append(chain, c)
		p := c.Parent()
		if p == nil {
			break
		}
		c = p.Base()
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		maps.Copy(out, chain[i].LocalData())
	}
	return out
}

func bindNodes(el *html.Node, state, data map[string]any) {
	for _, n := range dom.Find(el, "["+BindAttr+"]") {
		key, _ := dom.Attr(n, BindAttr)
		if v, ok := state[key]; ok {
			setTextIfChanged(n, format(v))
		}
	}

	for _, n := range dom.Find(el, "["+ClassAttr+"]") {
		raw, _ := dom.Attr(n, ClassAttr)
		var classes map[string]string
		if err := json.Unmarshal([]byte(raw), &classes); err != nil {
			continue
		}
		for cls, key := range classes {
			dom.ToggleClass(n, cls, truthy(state[key]))
		}
	}

	for _, n := range dom.Find(el, "["+BindDataAttr+"]") {
		key, _ := dom.Attr(n, BindDataAttr)
		v, ok := data[key]
		if !ok {
			continue
		}
		if dom.IsFormControl(n) {
			dom.SetValue(n, format(v))
		} else {
			setTextIfChanged(n, format(v))
		}
	}
}

func setTextIfChanged(n *html.Node, text string) {
	if dom.Text(n) != text {
		dom.SetText(n, text)
	}
}

func format(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// truthy reports false for false, zero, "", nil and empty collections.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Map, reflect.Slice:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
