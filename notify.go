package hostui

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui/lib/dom"
)

// Level classifies a notification.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultToastTimeout applies when a notification sets no timeout.
const DefaultToastTimeout = 3 * time.Second

// Notification is a short desktop-style message shown to the user.
type Notification struct {
	Title   string
	Text    string
	Timeout time.Duration
	Level   Level
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a logger only.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs n.
func (l *LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("notification",
		zap.String("title", n.Title),
		zap.String("text", n.Text),
		zap.String("level", string(n.Level)),
		zap.Duration("timeout", n.Timeout))
}

// ToastNotifier renders notifications as toasts appended to the #toasts
// container of a document, creating the container on first use.
//
// The data-auto-dismiss attribute carries the timeout in milliseconds for
// whatever script on the page removes toasts.
type ToastNotifier struct {
	doc    *dom.Document
	logger *zap.Logger
	once   sync.Once
}

// NewToastNotifier creates a notifier writing into doc.
func NewToastNotifier(doc *dom.Document, logger *zap.Logger) *ToastNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToastNotifier{doc: doc, logger: logger}
}

// Notify appends a toast for n.
func (t *ToastNotifier) Notify(n Notification) {
	(&LogNotifier{Logger: t.logger}).Notify(n)

	container := t.container()
	if container == nil {
		t.logger.Warn("toast container unavailable")
		return
	}
	t.doc.Append(container, toastNode(n))
}

func (t *ToastNotifier) container() *html.Node {
	t.once.Do(func() {
		if t.doc.QuerySelector("#toasts") != nil {
			return
		}
		var buf bytes.Buffer
		if err := ToastContainer().Render(context.Background(), &buf); err != nil {
			t.logger.Warn("render toast container", zap.Error(err))
			return
		}
		node, err := dom.ParseMarkup(buf.String(), "#toasts")
		if err != nil {
			t.logger.Warn("parse toast container", zap.Error(err))
			return
		}
		if body := t.doc.Body(); body != nil {
			t.doc.Append(body, node)
		}
	})
	return t.doc.QuerySelector("#toasts")
}

func toastNode(n Notification) *html.Node {
	level := n.Level
	if level == "" {
		level = LevelInfo
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultToastTimeout
	}

	toast := dom.NewElement("div")
	dom.SetAttr(toast, "class", "toast toast-"+string(level))
	dom.SetAttr(toast, "data-auto-dismiss", strconv.FormatInt(timeout.Milliseconds(), 10))
	if n.Title != "" {
		title := dom.NewElement("strong")
		dom.SetAttr(title, "class", "toast-title")
		title.AppendChild(dom.NewText(n.Title))
		toast.AppendChild(title)
	}
	text := dom.NewElement("span")
	dom.SetAttr(text, "class", "toast-text")
	text.AppendChild(dom.NewText(n.Text))
	toast.AppendChild(text)
	return toast
}

// ToastContainer returns a templ component for the toast container.
//
// Add it to a layout template (typically near the end of <body>) to
// control where toasts appear:
//
//	@hostui.ToastContainer()
//
// ToastNotifier creates it itself when the page has none.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container"></div>`)
		return err
	})
}
