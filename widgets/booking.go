package widgets

import (
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui/lib/dom"
)

// Attributes the scheduler puts on booking elements.
const (
	BookingIDAttr    = "data-booking-id"
	BookingTextAttr  = "data-booking-text"
	BookingUnitAttr  = "data-booking-unit"
	BookingStartAttr = "data-booking-start"
	BookingEndAttr   = "data-booking-end"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}

// Booking is the appointment a user selected in the scheduler.
type Booking struct {
	ID    string    `msgpack:"id"`
	Text  string    `msgpack:"text"`
	Unit  string    `msgpack:"unit,omitempty"`
	Start time.Time `msgpack:"start,omitempty"`
	End   time.Time `msgpack:"end,omitempty"`
}

// bookingFrom accepts a Booking as stored by the calendar or as decoded
// from a persisted snapshot, where it is a plain map.
func bookingFrom(v any) (Booking, bool) {
	switch b := v.(type) {
	case Booking:
		return b, b.ID != ""
	case *Booking:
		if b == nil {
			return Booking{}, false
		}
		return *b, b.ID != ""
	case map[string]any:
		raw, err := msgpack.Marshal(b)
		if err != nil {
			return Booking{}, false
		}
		var out Booking
		if err := msgpack.Unmarshal(raw, &out); err != nil {
			return Booking{}, false
		}
		return out, out.ID != ""
	}
	return Booking{}, false
}

// bookingAt walks up from n to the nearest element carrying a booking id,
// stopping at limit. Callers must hold the document lock.
func bookingAt(n, limit *html.Node) (Booking, bool) {
	for ; n != nil; n = n.Parent {
		if id, ok := dom.Attr(n, BookingIDAttr); ok && id != "" {
			return bookingFromNode(n, id), true
		}
		if n == limit {
			break
		}
	}
	return Booking{}, false
}

func bookingFromNode(n *html.Node, id string) Booking {
	b := Booking{ID: id}
	if text, ok := dom.Attr(n, BookingTextAttr); ok {
		b.Text = text
	} else {
		b.Text = strings.TrimSpace(dom.Text(n))
	}
	b.Unit, _ = dom.Attr(n, BookingUnitAttr)
	if v, ok := dom.Attr(n, BookingStartAttr); ok {
		b.Start = parseTime(v)
	}
	if v, ok := dom.Attr(n, BookingEndAttr); ok {
		b.End = parseTime(v)
	}
	return b
}

func parseTime(v string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
