package hostui

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/beachspainc/hostui/lib/config"
	"github.com/beachspainc/hostui/lib/cssscope"
	"github.com/beachspainc/hostui/lib/dom"
	"github.com/beachspainc/hostui/lib/markup"
)

// DefaultFetchTimeout bounds a component's remote markup load.
const DefaultFetchTimeout = 30 * time.Second

// Host is the page components are injected into, together with every
// collaborator they need. Components never reach for globals; they are
// always constructed against a Host.
type Host struct {
	doc          *dom.Document
	logger       *zap.Logger
	fetcher      markup.Fetcher
	notifier     Notifier
	prompter     Prompter
	encoder      *Encoder
	sensitive    bool
	scopeIDs     func() string
	fetchTimeout time.Duration
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger used for lifecycle diagnostics. A nil logger
// keeps the default.
func WithLogger(l *zap.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithFetcher sets the markup fetcher used for URL sources.
func WithFetcher(f markup.Fetcher) HostOption {
	return func(h *Host) { h.fetcher = f }
}

// WithNotifier sets where user-facing notifications go.
func WithNotifier(n Notifier) HostOption {
	return func(h *Host) { h.notifier = n }
}

// WithPrompter sets the source of single-value user input.
func WithPrompter(p Prompter) HostOption {
	return func(h *Host) { h.prompter = p }
}

// WithEncoder enables state snapshots. When sensitive is true snapshots
// are encrypted rather than signed.
func WithEncoder(enc *Encoder, sensitive bool) HostOption {
	return func(h *Host) {
		h.encoder = enc
		h.sensitive = sensitive
	}
}

// WithScopeIDs replaces the CSS scope id generator.
func WithScopeIDs(fn func() string) HostOption {
	return func(h *Host) { h.scopeIDs = fn }
}

// WithFetchTimeout bounds each remote markup load. Zero disables the bound.
func WithFetchTimeout(d time.Duration) HostOption {
	return func(h *Host) { h.fetchTimeout = d }
}

// NewHost wraps doc.
func NewHost(doc *dom.Document, opts ...HostOption) *Host {
	h := &Host{
		doc:          doc,
		logger:       zap.NewNop(),
		scopeIDs:     cssscope.NewID,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.fetcher == nil {
		h.fetcher = markup.NewHTTPFetcher(markup.DefaultOptions())
	}
	if h.notifier == nil {
		h.notifier = &LogNotifier{Logger: h.logger}
	}
	if h.prompter == nil {
		h.prompter = &StaticPrompter{}
	}
	return h
}

// NewHostFromConfig builds a Host whose fetcher and encoder follow cfg.
// Notifications are rendered as toasts into doc.
func NewHostFromConfig(doc *dom.Document, cfg *config.Config, logger *zap.Logger, opts ...HostOption) (*Host, error) {
	fetchOpts := markup.Options{
		Timeout:   cfg.Fetch.Timeout,
		Retries:   cfg.Fetch.Retries,
		UserAgent: cfg.Fetch.UserAgent,
		RateLimit: cfg.Fetch.RateLimit,
	}
	if cfg.Fetch.Sanitize {
		fetchOpts.Sanitizer = markup.WidgetPolicy()
	}

	base := []HostOption{
		WithLogger(logger),
		WithFetcher(markup.NewHTTPFetcher(fetchOpts)),
		WithFetchTimeout(cfg.Fetch.Timeout),
		WithNotifier(NewToastNotifier(doc, logger)),
	}
	if cfg.State.Key != "" {
		enc, err := NewEncoder([]byte(cfg.State.Key))
		if err != nil {
			return nil, fmt.Errorf("hostui: state encoder: %w", err)
		}
		base = append(base, WithEncoder(enc, cfg.State.Sensitive))
	}
	return NewHost(doc, append(base, opts...)...), nil
}

// Document returns the host page.
func (h *Host) Document() *dom.Document { return h.doc }

// Logger returns the host logger.
func (h *Host) Logger() *zap.Logger { return h.logger }

// Fetcher returns the markup fetcher.
func (h *Host) Fetcher() markup.Fetcher { return h.fetcher }

// Encoder returns the state encoder, or nil.
func (h *Host) Encoder() *Encoder { return h.encoder }

// Notify shows n to the user.
func (h *Host) Notify(n Notification) {
	h.notifier.Notify(n)
}

// Prompt asks the user for a single value. ok is false when the user
// declined.
func (h *Host) Prompt(message, def string) (string, bool) {
	return h.prompter.Prompt(message, def)
}
