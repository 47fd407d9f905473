package widgets

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/config"
	"github.com/beachspainc/hostui/lib/dom"
)

const bookingPage = `<!DOCTYPE html><html><head><title>Bookings</title></head><body>
<div id="sb_booking_scheduler">
  <div class="dhx_cal_event" data-booking-id="b-1" data-booking-text="Massage 60" data-booking-unit="Anna" data-booking-start="2026-10-17 10:00:00"><span class="label">Massage</span></div>
  <div class="dhx_cal_empty"><span class="label">free</span></div>
</div>
<div id="sb_booking_form"><div class="modal-body"><p>Details</p></div><div class="modal-footer"></div></div>
</body></html>`

const buttonHTML = `<div class="wrap"><button id="sb-payment-button" type="button">Pay</button></div>`

func newHost(t *testing.T, page string, opts ...hostui.HostOption) *hostui.TestHost {
	t.Helper()
	th, err := hostui.NewTestHost(page, opts...)
	if err != nil {
		t.Fatalf("NewTestHost() error = %v", err)
	}
	return th
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ButtonHTML = buttonHTML
	return cfg
}

func mountCalendar(t *testing.T, th *hostui.TestHost, cfg Config) *Calendar {
	t.Helper()
	c := NewCalendar(th.Host, cfg)
	if !c.Load(context.Background()) {
		t.Fatalf("Load() failed: %v", c.Err())
	}
	if !c.Mount() {
		t.Fatalf("Mount() failed: %v", c.Err())
	}
	return c
}

func TestCalendarMountsWidgets(t *testing.T) {
	th := newHost(t, bookingPage)
	c := mountCalendar(t, th, testConfig())
	doc := th.Document()

	if c.Element() != doc.QuerySelector("#sb_booking_scheduler") {
		t.Error("calendar should adopt the scheduler element")
	}
	if c.Controller().Element() != doc.QuerySelector(".modal-body") {
		t.Error("controller should adopt the form body")
	}
	if doc.QuerySelector(".modal-footer #sb-payment-button") == nil {
		t.Error("payment button not mounted into the footer")
	}
	if doc.QuerySelector(".modal-body .tip-tag") == nil {
		t.Error("tip tag not mounted into the form body")
	}
	if doc.QuerySelector("#"+hostui.LoadingStylesID) == nil {
		t.Error("loading styles not installed")
	}
}

func TestPaymentWithoutSelection(t *testing.T) {
	th := newHost(t, bookingPage)
	mountCalendar(t, th, testConfig())

	th.Click("#sb-payment-button")

	last, ok := th.Notifications.Last()
	if !ok || last.Title != "No Event Selected" {
		t.Errorf("Last() = %+v, want No Event Selected", last)
	}
}

func TestCalendarClickSelectsBooking(t *testing.T) {
	th := newHost(t, bookingPage)
	cfg := testConfig()
	var paid []Booking
	cfg.Pay = func(ctx context.Context, b Booking) error {
		paid = append(paid, b)
		return nil
	}
	c := mountCalendar(t, th, cfg)

	var clicked []string
	c.Controller().Button().On(SchedulerClickedEvent, func(evt *hostui.Event, args ...any) {
		if id, ok := args[0].(string); ok {
			clicked = append(clicked, id)
		}
	})

	th.Click(".dhx_cal_empty .label")
	if len(clicked) != 0 {
		t.Errorf("click outside a booking emitted %v", clicked)
	}

	th.Click(".dhx_cal_event .label")
	if !slices.Equal(clicked, []string{"b-1"}) {
		t.Errorf("clicked = %v, want [b-1]", clicked)
	}

	sel, ok := c.Controller().Button().Selected()
	if !ok {
		t.Fatal("button should see the selection through its ancestors")
	}
	if sel.Text != "Massage 60" || sel.Unit != "Anna" {
		t.Errorf("Selected() = %+v", sel)
	}
	if want := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC); !sel.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", sel.Start, want)
	}

	th.Click("#sb-payment-button")
	if len(paid) != 1 || paid[0].ID != "b-1" {
		t.Fatalf("paid = %+v", paid)
	}
	last, _ := th.Notifications.Last()
	if last.Title != "Payment Processing" || !strings.Contains(last.Text, "Massage 60") {
		t.Errorf("Last() = %+v", last)
	}

	btn := c.Controller().Button()
	if btn.IsLoading() {
		t.Error("loading should be cleared")
	}
	if _, ok := dom.Attr(btn.Element(), "disabled"); ok {
		t.Error("button should be enabled again")
	}
	if got := dom.Style(btn.Element(), "opacity"); got != "1" {
		t.Errorf("opacity = %q, want 1", got)
	}
}

func TestPaymentButtonDisabledWhileLoading(t *testing.T) {
	th := newHost(t, bookingPage)
	cfg := testConfig()
	calls := 0
	var c *Calendar
	cfg.Pay = func(ctx context.Context, b Booking) error {
		calls++
		btn := c.Controller().Button()
		btn.Edit(func(el *html.Node) {
			if _, ok := dom.Attr(el, "disabled"); !ok {
				t.Error("button should be disabled while paying")
			}
			if got := dom.Style(el, "cursor"); got != "not-allowed" {
				t.Errorf("cursor = %q, want not-allowed", got)
			}
		})
		th.Click("#sb-payment-button")
		return nil
	}
	c = mountCalendar(t, th, cfg)
	c.Click("b-9", &Booking{ID: "b-9", Text: "Facial"})

	th.Click("#sb-payment-button")
	if calls != 1 {
		t.Errorf("Pay calls = %d, want 1", calls)
	}
}

func TestPaymentFailure(t *testing.T) {
	th := newHost(t, bookingPage)
	cfg := testConfig()
	cfg.Pay = func(ctx context.Context, b Booking) error { return errors.New("card declined") }
	c := mountCalendar(t, th, cfg)
	c.Click("b-1", &Booking{ID: "b-1", Text: "Massage"})

	btn := c.Controller().Button()
	btn.Pay(context.Background())

	if !th.Notifications.HasLevel(hostui.LevelError) {
		t.Error("failure should raise an error notice")
	}
	if th.Notifications.Has("Payment Processing") {
		t.Error("failed payment should not report processing")
	}
	if !dom.HasClass(btn.Element(), hostui.ErrorClass) {
		t.Error("button should carry the error class")
	}
	if msg := btn.State()[hostui.StateErrorMessage]; !strings.Contains(msg.(string), "card declined") {
		t.Errorf("error message = %v", msg)
	}
}

func TestPaymentButtonFetchesMarkup(t *testing.T) {
	th := newHost(t, hostui.BlankPage)
	th.Markup[DefaultButtonURL] = `<html><body>` + buttonHTML + `</body></html>`

	b := NewPaymentButton(th.Host, DefaultConfig())
	if !b.Load(context.Background()) {
		t.Fatalf("Load() failed: %v", b.Err())
	}
	if id, _ := dom.Attr(b.Element(), "id"); id != "sb-payment-button" {
		t.Errorf("root id = %q", id)
	}
	if b.Mount() {
		t.Error("Mount() should fail without a form footer")
	}
	if !errors.Is(b.Err(), hostui.ErrParentNotFound) {
		t.Errorf("Err() = %v, want ErrParentNotFound", b.Err())
	}
}

func TestTipTagPrompt(t *testing.T) {
	tests := []struct {
		name      string
		answers   []string
		wantLabel string
		wantTitle string
		wantSet   bool
	}{
		{"valid", []string{"5"}, "Tip: $5.00", "Tip Added", true},
		{"dollar sign", []string{"$7.5"}, "Tip: $7.50", "Tip Added", true},
		{"not a number", []string{"abc"}, "Add Tip", "Invalid Amount", false},
		{"negative", []string{"-3"}, "Add Tip", "Invalid Amount", false},
		{"blank", []string{"  "}, "Add Tip", "", false},
		{"cancelled", nil, "Add Tip", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newHost(t, hostui.BlankPage)
			tip := NewTipTag(th.Host)
			if !tip.Load(context.Background()) || !tip.Mount() {
				t.Fatalf("lifecycle failed: %v", tip.Err())
			}
			th.Prompts.Answer(tt.answers...)

			th.Click(".tip-label")

			label := dom.Text(dom.First(tip.Element(), ".tip-label"))
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			last, ok := th.Notifications.Last()
			if tt.wantTitle == "" && ok {
				t.Errorf("unexpected notification %+v", last)
			}
			if tt.wantTitle != "" && last.Title != tt.wantTitle {
				t.Errorf("notification = %q, want %q", last.Title, tt.wantTitle)
			}
			if _, set := tip.Amount(); set != tt.wantSet {
				t.Errorf("Amount() set = %v, want %v", set, tt.wantSet)
			}
			if dom.HasClass(tip.Element(), TipSetClass) != tt.wantSet {
				t.Errorf("tip-tag-set class mismatch")
			}
		})
	}
}

func TestTipTagScopedStyles(t *testing.T) {
	th := newHost(t, hostui.BlankPage)
	tip := NewTipTag(th.Host)
	if !tip.Load(context.Background()) {
		t.Fatalf("Load() failed: %v", tip.Err())
	}
	css := dom.Text(dom.First(tip.Element(), "style"))
	if !strings.Contains(css, "#"+tip.ScopeID()+".tip-tag-set") {
		t.Errorf("style not scoped to the tag: %s", css)
	}
}

func TestTipTagHover(t *testing.T) {
	th := newHost(t, hostui.BlankPage)
	tip := NewTipTag(th.Host)
	if !tip.Load(context.Background()) || !tip.Mount() {
		t.Fatalf("lifecycle failed: %v", tip.Err())
	}
	el := tip.Element()

	th.Document().Dispatch(el, "mouseover", nil)
	if got := dom.Style(el, "background"); got != "#f0f7ff" {
		t.Errorf("hover background = %q", got)
	}
	if got := dom.Style(el, "text-decoration"); got != "underline" {
		t.Errorf("hover text-decoration = %q", got)
	}

	th.Document().Dispatch(el, "mouseout", nil)
	if got := dom.Style(el, "background"); got != "" {
		t.Errorf("background after mouseout = %q", got)
	}
}

func TestTipReachesControllerAndCalendar(t *testing.T) {
	th := newHost(t, bookingPage)
	c := mountCalendar(t, th, testConfig())

	seen := 0
	c.On(TipAddedEvent, func(evt *hostui.Event, args ...any) { seen++ })

	c.Controller().Tip().SetTip(12.5)

	if v, _ := c.Controller().GetLocal(TipKey); v != 12.5 {
		t.Errorf("controller tip = %v, want 12.5", v)
	}
	if seen != 1 {
		t.Errorf("calendar saw tip-added %d times, want 1", seen)
	}
	if v, ok := c.Controller().Button().Data().Get(TipKey); !ok || v != 12.5 {
		t.Errorf("button data tip = %v, %v", v, ok)
	}
}

func TestFormShown(t *testing.T) {
	th := newHost(t, bookingPage)
	c := mountCalendar(t, th, testConfig())

	var got []any
	c.Controller().Tip().On(FormShownEvent, func(evt *hostui.Event, args ...any) {
		got = append(got, args[0])
	})
	calendarSaw := 0
	c.On(FormShownEvent, func(evt *hostui.Event, args ...any) { calendarSaw++ })

	th.Document().Dispatch(th.Document().QuerySelector(".modal-body"), FormShownDOMEvent, map[string]any{"mode": "edit"})

	if len(got) != 1 {
		t.Fatalf("tip received form-shown %d times, want 1", len(got))
	}
	if opts, ok := got[0].(map[string]any); !ok || opts["mode"] != "edit" {
		t.Errorf("options = %v", got[0])
	}
	if calendarSaw != 1 {
		t.Errorf("calendar received form-shown %d times, want 1", calendarSaw)
	}
}

func TestSelectionSurvivesSnapshot(t *testing.T) {
	enc, err := hostui.NewEncoder([]byte("booking-key"))
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	th := newHost(t, bookingPage, hostui.WithEncoder(enc, false))
	c := mountCalendar(t, th, testConfig())
	th.Click(".dhx_cal_event .label")
	if err := c.Snapshot(); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	reloaded := newHost(t, th.HTML(), hostui.WithEncoder(enc, false))
	c2 := NewCalendar(reloaded.Host, testConfig())
	if !c2.Load(context.Background()) {
		t.Fatalf("Load() failed: %v", c2.Err())
	}
	b, ok := c2.Controller().Button().Selected()
	if !ok || b.ID != "b-1" || b.Text != "Massage 60" {
		t.Errorf("Selected() after reload = %+v, %v", b, ok)
	}
}

func TestBookingFrom(t *testing.T) {
	start := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	booking := Booking{ID: "b-1", Text: "Massage", Start: start}

	raw, err := msgpack.Marshal(map[string]any{"b": booking})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := msgpack.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	tests := []struct {
		name   string
		in     any
		wantID string
		wantOK bool
	}{
		{"value", booking, "b-1", true},
		{"pointer", &booking, "b-1", true},
		{"decoded map", decoded["b"], "b-1", true},
		{"nil pointer", (*Booking)(nil), "", false},
		{"empty", Booking{}, "", false},
		{"other", "b-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bookingFrom(tt.in)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("bookingFrom() = %+v, %v; want ID %q, %v", got, ok, tt.wantID, tt.wantOK)
			}
			if tt.name == "decoded map" && !got.Start.Equal(start) {
				t.Errorf("Start = %v, want %v", got.Start, start)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	reg := hostui.NewRegistry()
	Register(reg, testConfig())

	want := []string{"calendar", "payment-button", "payment-controller", "tip-tag"}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	th := newHost(t, bookingPage)
	w, err := reg.Build("calendar", th.Host)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := w.(*Calendar); !ok {
		t.Errorf("Build(calendar) = %T", w)
	}
}

func TestConfigFrom(t *testing.T) {
	wc := config.Default().Widgets
	wc.FormFooter = "#footer"
	wc.ButtonURL = ""

	cfg := ConfigFrom(wc)
	if cfg.FormFooter != "#footer" {
		t.Errorf("FormFooter = %q", cfg.FormFooter)
	}
	if cfg.ButtonURL != DefaultButtonURL {
		t.Errorf("ButtonURL = %q, want default", cfg.ButtonURL)
	}
	if cfg.Scheduler != "#sb_booking_scheduler" {
		t.Errorf("Scheduler = %q", cfg.Scheduler)
	}
}
