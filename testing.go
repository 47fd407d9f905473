package hostui

import (
	"slices"
	"strings"
	"sync"

	"github.com/beachspainc/hostui/lib/dom"
	"github.com/beachspainc/hostui/lib/markup"
)

// BlankPage is a minimal host page for tests.
const BlankPage = `<!DOCTYPE html><html><head><title>host</title></head><body></body></html>`

// TestHost is a Host wired with in-memory collaborators for tests.
//
//	th, err := hostui.NewTestHost(hostui.BlankPage)
//	th.Markup["https://widgets.test/tip.html"] = `<span>tip</span>`
//	th.Prompts.Answer("5")
//	w := widgets.NewTipTag(th.Host)
//	...
//	if !th.Notifications.Has("Tip Added") { ... }
type TestHost struct {
	*Host
	Notifications *RecordingNotifier
	Prompts       *StaticPrompter
	Markup        markup.StaticFetcher
}

// NewTestHost parses page and builds a host around it. Options are applied
// after the test collaborators, so they can replace them.
func NewTestHost(page string, opts ...HostOption) (*TestHost, error) {
	doc, err := dom.ParseString(page)
	if err != nil {
		return nil, err
	}
	th := &TestHost{
		Notifications: &RecordingNotifier{},
		Prompts:       NewStaticPrompter(),
		Markup:        markup.StaticFetcher{},
	}
	base := []HostOption{
		WithNotifier(th.Notifications),
		WithPrompter(th.Prompts),
		WithFetcher(th.Markup),
	}
	th.Host = NewHost(doc, append(base, opts...)...)
	return th, nil
}

// HTML renders the host page.
func (th *TestHost) HTML() string {
	return th.doc.String()
}

// HTMLContains checks if the rendered page contains a substring.
func (th *TestHost) HTMLContains(substr string) bool {
	return strings.Contains(th.HTML(), substr)
}

// HTMLContainsAll checks if the rendered page contains all the substrings.
func (th *TestHost) HTMLContainsAll(substrs ...string) bool {
	page := th.HTML()
	for _, s := range substrs {
		if !strings.Contains(page, s) {
			return false
		}
	}
	return true
}

// Click dispatches a click at the first element matching sel. It reports
// false when nothing matches.
func (th *TestHost) Click(sel string) bool {
	n := th.doc.QuerySelector(sel)
	if n == nil {
		return false
	}
	th.doc.Dispatch(n, "click", nil)
	return true
}

// RecordingNotifier keeps every notification it receives.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n.
func (r *RecordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns everything recorded so far.
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Has checks if a notification with the given title was recorded.
func (r *RecordingNotifier) Has(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.Title == title {
			return true
		}
	}
	return false
}

// HasLevel checks if any notification was recorded at level.
func (r *RecordingNotifier) HasLevel(level Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.Level == level {
			return true
		}
	}
	return false
}

// Last returns the most recent notification.
func (r *RecordingNotifier) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
