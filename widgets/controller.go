package widgets

import (
	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/dom"
)

// FormShownDOMEvent is the DOM event the booking form fires when it opens.
const FormShownDOMEvent = "formShown"

// PaymentController adopts the booking form body and owns the payment
// button and the tip tag.
type PaymentController struct {
	*hostui.Hierarchical

	button *PaymentButton
	tip    *TipTag
}

// NewPaymentController creates the controller and its children.
func NewPaymentController(h *hostui.Host, cfg Config) *PaymentController {
	pc := &PaymentController{
		Hierarchical: hostui.NewHierarchical(h, hostui.WithElementSelector(cfg.FormBody)),
		button:       NewPaymentButton(h, cfg),
		tip:          NewTipTag(h),
	}
	pc.SetOuter(pc)
	pc.MustAddChild(pc.button)
	pc.MustAddChild(pc.tip)

	pc.On(FormShownDOMEvent, func(evt *hostui.Event, args ...any) {
		var options any
		if len(args) > 0 {
			if de, ok := args[0].(*dom.Event); ok {
				options = de.Detail
			}
		}
		pc.FormShown(options)
	})
	pc.On(TipAddedEvent, func(evt *hostui.Event, args ...any) {
		if len(args) == 0 {
			return
		}
		if amount, ok := args[0].(float64); ok {
			pc.UpdateData(map[string]any{TipKey: amount})
		}
	})
	return pc
}

// Button returns the payment button.
func (pc *PaymentController) Button() *PaymentButton { return pc.button }

// Tip returns the tip tag.
func (pc *PaymentController) Tip() *TipTag { return pc.tip }

// FormShown announces that the booking form opened.
func (pc *PaymentController) FormShown(options any) {
	pc.Emit(FormShownEvent, options)
}
