package widgets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/dom"
)

// PaymentButton starts a payment for the booking selected in the calendar.
// It reads the selection through its ancestors' data and runs the payment
// under the loading state.
type PaymentButton struct {
	*hostui.Stateful
	cfg Config
}

// NewPaymentButton creates an unloaded payment button mounted into the
// form footer.
func NewPaymentButton(h *hostui.Host, cfg Config) *PaymentButton {
	source := hostui.WithURL(cfg.ButtonURL)
	if cfg.ButtonHTML != "" {
		source = hostui.WithHTML(cfg.ButtonHTML)
	}
	b := &PaymentButton{
		Stateful: hostui.NewStateful(h,
			source,
			hostui.WithRootSelector(ButtonRoot),
			hostui.WithCSSScoping(false),
			hostui.WithParentSelector(cfg.FormFooter),
			hostui.WithLoadingAnimation(true),
		),
		cfg: cfg,
	}
	b.SetOuter(b)
	b.On("click", func(*hostui.Event, ...any) { b.Pay(context.Background()) })
	return b
}

// Render disables the button while a payment is in flight.
func (b *PaymentButton) Render() {
	b.Stateful.Render()
	loading := b.IsLoading()
	opacity, cursor := "1", "pointer"
	if loading {
		opacity, cursor = "0.7", "not-allowed"
	}
	b.Edit(func(el *html.Node) {
		if loading {
			dom.SetAttr(el, "disabled", "")
		} else {
			dom.RemoveAttr(el, "disabled")
		}
		err := errors.Join(
			dom.SetStyle(el, "opacity", opacity),
			dom.SetStyle(el, "cursor", cursor),
		)
		if err != nil {
			b.Logger().Warn("button style", zap.Error(err))
		}
	})
}

// Selected returns the booking chosen in the calendar.
func (b *PaymentButton) Selected() (Booking, bool) {
	v, ok := b.Data().Get(ClickInfoKey)
	if !ok {
		return Booking{}, false
	}
	return bookingFrom(v)
}

// Pay settles the selected booking. Without a selection the user is told
// to pick one. Clicks while a payment runs are ignored.
func (b *PaymentButton) Pay(ctx context.Context) {
	if b.IsLoading() {
		return
	}
	booking, ok := b.Selected()
	if !ok {
		b.Host().Notify(hostui.Notification{
			Title: "No Event Selected",
			Text:  "Please select an appointment first",
			Level: hostui.LevelWarning,
		})
		return
	}

	if t := b.cfg.PayTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	err := b.Execute(ctx, func(ctx context.Context) error {
		if b.cfg.Pay != nil {
			if err := b.cfg.Pay(ctx, booking); err != nil {
				return fmt.Errorf("payment for %s: %w", booking.ID, err)
			}
		}
		b.Host().Notify(hostui.Notification{
			Title: "Payment Processing",
			Text:  "Processing payment for: " + booking.Text,
			Level: hostui.LevelInfo,
		})
		return nil
	})
	if err != nil {
		b.Logger().Warn("payment failed", zap.String("booking", booking.ID), zap.Error(err))
	}
}
