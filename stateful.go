package hostui

import (
	"context"
	"time"

	"golang.org/x/net/html"

	"github.com/beachspainc/hostui/lib/dom"
)

// State keys maintained by Stateful.
const (
	StateLoading      = "is_loading"
	StateHasError     = "has_error"
	StateErrorMessage = "error_message"
)

// Class names and ids used by the loading visuals.
const (
	LoadingClass     = "stateful-loading"
	ErrorClass       = "stateful-error"
	OverlayClass     = "stateful-loading-overlay"
	SpinnerClass     = "stateful-loading-spinner"
	LoadingStylesID  = "stateful-loading-styles"
	errorNoticeTitle = "Error"
)

const loadingStyles = `.stateful-loading { position: relative; pointer-events: none; }
.stateful-loading-overlay { position: absolute; inset: 0; display: flex; align-items: center; justify-content: center; background: rgba(255, 255, 255, 0.6); pointer-events: all; z-index: 10; }
.stateful-loading-spinner { width: 1.25em; height: 1.25em; border: 2px solid #ccc; border-top-color: #007bff; border-radius: 50%; animation: stateful-spin 0.8s linear infinite; }
@keyframes stateful-spin { to { transform: rotate(360deg); } }`

// Stateful is a component with a loading and error state machine. While
// loading, the element carries LoadingClass and, with
// WithLoadingAnimation, an overlay that swallows clicks.
type Stateful struct {
	*Component

	overlay      *html.Node
	overlayClick *dom.Listener
}

// NewStateful creates a stateful component. WithInitialState values are
// merged over the default state.
func NewStateful(h *Host, opts ...Option) *Stateful {
	s := &Stateful{Component: NewComponent(h, opts...)}
	s.mu.Lock()
	defaults := map[string]any{
		StateLoading:      false,
		StateHasError:     false,
		StateErrorMessage: "",
	}
	for k, v := range defaults {
		if _, ok := s.state[k]; !ok {
			s.state[k] = v
		}
	}
	s.mu.Unlock()
	s.SetOuter(s)
	return s
}

// IsLoading reports the loading flag.
func (s *Stateful) IsLoading() bool {
	return truthy(s.State()[StateLoading])
}

// Mount installs the shared loading stylesheet once per document, then
// mounts the component.
func (s *Stateful) Mount() bool {
	s.ensureLoadingStyles()
	return s.Component.Mount()
}

func (s *Stateful) ensureLoadingStyles() {
	doc := s.host.doc
	if doc.QuerySelector("#"+LoadingStylesID) != nil {
		return
	}
	head := doc.Head()
	if head == nil {
		return
	}
	style := dom.NewElement("style")
	dom.SetAttr(style, "id", LoadingStylesID)
	style.AppendChild(dom.NewText(loadingStyles))
	doc.Append(head, style)
}

// Render runs the data-binding pass and reflects the error flag as a class.
func (s *Stateful) Render() {
	s.Component.Render()
	hasError := truthy(s.State()[StateHasError])
	s.Edit(func(el *html.Node) {
		dom.ToggleClass(el, ErrorClass, hasError)
	})
}

// SetLoading switches the loading state and its visuals.
func (s *Stateful) SetLoading(loading bool) {
	s.SetState(map[string]any{StateLoading: loading})
	el := s.Element()
	if el == nil {
		return
	}
	s.host.doc.Edit(func() {
		dom.ToggleClass(el, LoadingClass, loading)
	})
	if !s.cfg.loadingAnimation {
		return
	}
	if loading {
		s.showOverlay(el)
	} else {
		s.hideOverlay()
	}
}

func (s *Stateful) showOverlay(el *html.Node) {
	s.mu.Lock()
	if s.overlay != nil {
		s.mu.Unlock()
		return
	}
	overlay := dom.NewElement("div")
	dom.SetAttr(overlay, "class", OverlayClass)
	spinner := dom.NewElement("div")
	dom.SetAttr(spinner, "class", SpinnerClass)
	overlay.AppendChild(spinner)
	click := dom.NewListener(func(e *dom.Event) {
		e.StopPropagation()
		e.PreventDefault()
	})
	s.overlay, s.overlayClick = overlay, click
	s.mu.Unlock()

	s.host.doc.Append(el, overlay)
	s.host.doc.AddEventListener(overlay, "click", click)
}

func (s *Stateful) hideOverlay() {
	s.mu.Lock()
	overlay, click := s.overlay, s.overlayClick
	s.overlay, s.overlayClick = nil, nil
	s.mu.Unlock()
	if overlay == nil {
		return
	}
	s.host.doc.RemoveEventListener(overlay, "click", click)
	s.host.doc.Detach(overlay)
}

// SetError clears loading, records err in the state and notifies the user.
func (s *Stateful) SetError(err error) {
	s.SetLoading(false)
	s.SetState(map[string]any{
		StateHasError:     true,
		StateErrorMessage: err.Error(),
	})
	s.host.Notify(Notification{
		Title:   errorNoticeTitle,
		Text:    err.Error(),
		Timeout: 5 * time.Second,
		Level:   LevelError,
	})
}

// ClearError resets the error state.
func (s *Stateful) ClearError() {
	s.SetState(map[string]any{
		StateHasError:     false,
		StateErrorMessage: "",
	})
}

// Execute runs op with the component in the loading state. A failure is
// reported through SetError and returned.
func (s *Stateful) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	s.ClearError()
	s.SetLoading(true)
	if err := op(ctx); err != nil {
		s.SetError(err)
		return err
	}
	s.SetLoading(false)
	return nil
}

// Destroy removes the loading overlay, then destroys the component.
func (s *Stateful) Destroy() {
	s.hideOverlay()
	s.Component.Destroy()
}
