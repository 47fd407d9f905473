package hostui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/beachspainc/hostui/lib/dom"
)

// HostFunc builds the Host for a freshly parsed page.
type HostFunc func(doc *dom.Document) (*Host, error)

// Injector patches host pages: it builds the named widgets from a
// registry, loads them concurrently, mounts them in order and returns the
// resulting HTML.
//
// A widget that fails to load or mount is logged and left out; the page
// is still returned. Only unknown names and host construction fail the
// injection.
type Injector struct {
	registry *Registry
	names    []string
	newHost  HostFunc
}

// NewInjector creates an injector for names. A nil newHost builds plain
// hosts with NewHost.
func NewInjector(reg *Registry, names []string, newHost HostFunc) *Injector {
	if newHost == nil {
		newHost = func(doc *dom.Document) (*Host, error) { return NewHost(doc), nil }
	}
	return &Injector{registry: reg, names: names, newHost: newHost}
}

// Inject parses page, injects the widgets and renders the patched page.
func (inj *Injector) Inject(ctx context.Context, page string) (string, error) {
	doc, err := dom.ParseString(page)
	if err != nil {
		return "", fmt.Errorf("hostui: parse page: %w", err)
	}
	if _, err := inj.InjectDocument(ctx, doc); err != nil {
		return "", err
	}
	return doc.String(), nil
}

// InjectDocument injects the widgets into doc and returns the ones that
// mounted.
func (inj *Injector) InjectDocument(ctx context.Context, doc *dom.Document) ([]Widget, error) {
	h, err := inj.newHost(doc)
	if err != nil {
		return nil, fmt.Errorf("hostui: build host: %w", err)
	}

	widgets := make([]Widget, 0, len(inj.names))
	for _, name := range inj.names {
		w, err := inj.registry.Build(name, h)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}

	loaded := make([]bool, len(widgets))
	var g errgroup.Group
	for i, w := range widgets {
		g.Go(func() error {
			loaded[i] = w.Load(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var mounted []Widget
	for i, w := range widgets {
		name := inj.names[i]
		if !loaded[i] || !w.Mount() {
			h.Logger().Warn("widget not injected",
				zap.String("widget", name),
				zap.Error(w.Base().Err()))
			continue
		}
		if err := snapshotTree(w); err != nil && !errors.Is(err, ErrNoEncoder) {
			h.Logger().Warn("widget state not persisted", zap.String("widget", name), zap.Error(err))
		}
		mounted = append(mounted, w)
	}
	h.Logger().Info("widgets injected",
		zap.Int("requested", len(widgets)),
		zap.Int("mounted", len(mounted)))
	return mounted, nil
}

// snapshotTree persists the data of w and every descendant. Children that
// never loaded are skipped.
func snapshotTree(w Widget) error {
	if err := w.Base().Snapshot(); err != nil {
		return err
	}
	p, ok := w.(interface{ Children() []Widget })
	if !ok {
		return nil
	}
	var errs []error
	for _, child := range p.Children() {
		if err := snapshotTree(child); err != nil && !errors.Is(err, ErrNotLoaded) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
