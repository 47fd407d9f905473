package widgets

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/dom"
)

// Calendar adopts the page's scheduler element. It turns clicks on booking
// elements into SchedulerClickedEvent and keeps the last selection as
// click_info for its descendants.
type Calendar struct {
	*hostui.Hierarchical
	controller *PaymentController
}

// NewCalendar creates the calendar and the payment widgets below it.
func NewCalendar(h *hostui.Host, cfg Config) *Calendar {
	c := &Calendar{
		Hierarchical: hostui.NewHierarchical(h, hostui.WithElementSelector(cfg.Scheduler)),
		controller:   NewPaymentController(h, cfg),
	}
	c.SetOuter(c)
	c.MustAddChild(c.controller)
	c.On("click", c.onClick)
	return c
}

// Controller returns the payment controller.
func (c *Calendar) Controller() *PaymentController { return c.controller }

func (c *Calendar) onClick(evt *hostui.Event, args ...any) {
	if len(args) == 0 {
		return
	}
	de, ok := args[0].(*dom.Event)
	if !ok {
		return
	}
	var booking Booking
	var found bool
	c.Edit(func(el *html.Node) {
		booking, found = bookingAt(de.Target, el)
	})
	if found {
		c.Click(booking.ID, &booking)
	}
}

// Click selects a booking. The event is always emitted; click_info is
// only replaced when b is non-nil.
func (c *Calendar) Click(id string, b *Booking) {
	c.Logger().Debug("scheduler click", zap.String("booking", id))
	c.Emit(SchedulerClickedEvent, id, b)
	if b != nil {
		c.UpdateData(map[string]any{ClickInfoKey: *b})
	}
}

// Selected returns the current selection.
func (c *Calendar) Selected() (Booking, bool) {
	v, ok := c.GetLocal(ClickInfoKey)
	if !ok {
		return Booking{}, false
	}
	return bookingFrom(v)
}
