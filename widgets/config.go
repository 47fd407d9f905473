package widgets

import (
	"context"
	"time"

	"github.com/beachspainc/hostui/lib/config"
)

// DefaultButtonURL serves the payment button markup.
const DefaultButtonURL = "https://raw.githubusercontent.com/beachspainc/SimplyBookEnhancement/main/resources/components/payment_button.html"

// ButtonRoot selects the button inside the fetched markup.
const ButtonRoot = "#sb-payment-button"

// PayFunc settles the payment for a booking.
type PayFunc func(ctx context.Context, b Booking) error

// Config locates the host page elements the widgets attach to.
type Config struct {
	Scheduler  string // element the calendar adopts
	FormBody   string // element the payment controller adopts
	FormFooter string // where the payment button is mounted

	// ButtonHTML, when set, replaces the markup fetched from ButtonURL.
	ButtonURL  string
	ButtonHTML string

	Pay        PayFunc
	PayTimeout time.Duration
}

// DefaultConfig targets the stock booking page.
func DefaultConfig() Config {
	return Config{
		Scheduler:  "#sb_booking_scheduler",
		FormBody:   "#sb_booking_form .modal-body",
		FormFooter: "#sb_booking_form .modal-footer",
		ButtonURL:  DefaultButtonURL,
		PayTimeout: 30 * time.Second,
	}
}

// ConfigFrom maps environment configuration onto a widget Config.
// Empty fields keep their defaults.
func ConfigFrom(wc config.WidgetConfig) Config {
	cfg := DefaultConfig()
	if wc.Scheduler != "" {
		cfg.Scheduler = wc.Scheduler
	}
	if wc.FormBody != "" {
		cfg.FormBody = wc.FormBody
	}
	if wc.FormFooter != "" {
		cfg.FormFooter = wc.FormFooter
	}
	if wc.ButtonURL != "" {
		cfg.ButtonURL = wc.ButtonURL
	}
	return cfg
}
