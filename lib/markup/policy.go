package markup

import "github.com/microcosm-cc/bluemonday"

// WidgetPolicy allows what widget markup needs on top of the user-generated
// content policy: embedded stylesheets, form controls, and the data-*
// attributes used for binding. Scripts are still removed.
func WidgetPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowAttrs("id", "class", "style").Globally()
	p.AllowElements("style", "button", "form", "label", "select", "option", "textarea")
	p.AllowAttrs("type", "name", "value", "placeholder", "disabled").OnElements("input", "button", "select", "textarea")
	p.AllowAttrs("selected").OnElements("option")
	p.AllowElements("input")
	p.AllowUnsafe(true)
	return p
}
