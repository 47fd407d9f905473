// Package widgets holds the booking-page widgets: a tip tag and a payment
// button inside the booking form, owned by a payment controller, owned in
// turn by a calendar adopted from the page's scheduler element.
//
//	reg := hostui.NewRegistry()
//	widgets.Register(reg, widgets.DefaultConfig())
//	w, err := reg.Build("calendar", host)
package widgets
