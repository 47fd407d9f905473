package widgets

import "github.com/beachspainc/hostui"

// Register adds every booking widget to reg.
func Register(reg *hostui.Registry, cfg Config) {
	reg.Add("calendar", func(h *hostui.Host) (hostui.Widget, error) {
		return NewCalendar(h, cfg), nil
	})
	reg.Add("payment-controller", func(h *hostui.Host) (hostui.Widget, error) {
		return NewPaymentController(h, cfg), nil
	})
	reg.Add("payment-button", func(h *hostui.Host) (hostui.Widget, error) {
		return NewPaymentButton(h, cfg), nil
	})
	reg.Add("tip-tag", func(h *hostui.Host) (hostui.Widget, error) {
		return NewTipTag(h), nil
	})
}
