package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/dom"
)

// Event names and data keys shared by the booking widgets.
const (
	FormShownEvent        = "form-shown"
	SchedulerClickedEvent = "scheduler_clicked"
	TipAddedEvent         = "tip-added"

	ClickInfoKey = "click_info"
	TipKey       = "tip_amount"
)

// TipSetClass marks a tip tag once an amount was entered.
const TipSetClass = "tip-tag-set"

const tipMarkup = `<span class="tip-tag"><style>
:scope { display: inline-block; margin-left: 8px; color: #007bff; cursor: pointer; text-decoration: none; transition: all 0.3s ease; padding: 2px 6px; border-radius: 4px; }
:scope.tip-tag-set { color: #28a745; font-weight: bold; }
</style><span class="tip-label" data-bind="label">Add Tip</span></span>`

var hoverStyles = map[string]string{
	"background":      "#f0f7ff",
	"text-decoration": "underline",
	"transform":       "translateY(-1px)",
}

// TipTag is an inline "Add Tip" link. Clicking it prompts for an amount;
// a valid amount replaces the label and is emitted as TipAddedEvent.
type TipTag struct {
	*hostui.Component

	mu     sync.Mutex
	amount float64
	set    bool
}

// NewTipTag creates an unloaded tip tag.
func NewTipTag(h *hostui.Host) *TipTag {
	t := &TipTag{Component: hostui.NewComponent(h,
		hostui.WithHTML(tipMarkup),
		hostui.WithInitialState(map[string]any{"label": "Add Tip"}),
	)}
	t.SetOuter(t)

	t.On(FormShownEvent, t.onFormShown)
	t.On("mouseover", func(*hostui.Event, ...any) { t.hover(true) })
	t.On("mouseout", func(*hostui.Event, ...any) { t.hover(false) })
	t.On("click", func(*hostui.Event, ...any) { t.PromptTip() })
	return t
}

// Amount returns the entered tip, if any.
func (t *TipTag) Amount() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.amount, t.set
}

func (t *TipTag) onFormShown(evt *hostui.Event, args ...any) {
	t.Logger().Debug("form shown", zap.String("component", t.ID()), zap.Any("options", args))
}

func (t *TipTag) hover(on bool) {
	t.Edit(func(el *html.Node) {
		for prop, val := range hoverStyles {
			if !on {
				val = ""
			}
			if err := dom.SetStyle(el, prop, val); err != nil {
				t.Logger().Warn("hover style", zap.String("property", prop), zap.Error(err))
			}
		}
	})
}

// PromptTip asks for a tip amount and applies it. Cancelling leaves the
// tag unchanged; an invalid amount raises a warning notice.
func (t *TipTag) PromptTip() {
	raw, ok := t.Host().Prompt("Enter tip amount (e.g. 5.00):", "5.00")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return
	}

	amount, err := parseAmount(raw)
	if err != nil {
		t.Host().Notify(hostui.Notification{
			Title: "Invalid Amount",
			Text:  "Please enter a valid number",
			Level: hostui.LevelWarning,
		})
		return
	}
	t.SetTip(amount)
}

// SetTip records amount, updates the label and announces it.
func (t *TipTag) SetTip(amount float64) {
	t.mu.Lock()
	t.amount, t.set = amount, true
	t.mu.Unlock()

	t.SetLocal(TipKey, amount)
	t.Edit(func(el *html.Node) { dom.ToggleClass(el, TipSetClass, true) })
	t.SetState(map[string]any{"label": fmt.Sprintf("Tip: $%.2f", amount)})

	t.Host().Notify(hostui.Notification{
		Title: "Tip Added",
		Text:  fmt.Sprintf("$%.2f tip added to order", amount),
		Level: hostui.LevelSuccess,
	})
	t.Emit(TipAddedEvent, amount)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("amount out of range: %q", s)
	}
	return v, nil
}
