// Package hostuiecho serves host pages with widgets injected, using the
// Echo framework.
//
// Proxy an upstream site through an Echo instance:
//
//	e := echo.New()
//	inj := hostui.NewInjector(reg, []string{"calendar"}, nil)
//	hostuiecho.Mount(e, "https://booking.example.com", inj)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/book", authMiddleware)
//	hostuiecho.MountGroup(g, upstream, inj)
package hostuiecho

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/markup"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	fetcher markup.Fetcher
	path    string
}

// WithFetcher sets how upstream pages are retrieved. Defaults to an
// unsanitised HTTP fetcher.
func WithFetcher(f markup.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithPath sets the route pattern. Defaults to "/*".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Mount proxies every GET on e to upstream and injects the widgets.
func Mount(e *echo.Echo, upstream string, inj *hostui.Injector, opts ...Option) {
	o := newOptions(opts)
	e.GET(o.path, Handler(upstream, inj, o.fetcher))
}

// MountGroup is Mount on an Echo group, so the proxy shares the group's
// middleware. Request paths are taken relative to the group prefix.
func MountGroup(g *echo.Group, upstream string, inj *hostui.Injector, opts ...Option) {
	o := newOptions(opts)
	g.GET(o.path, Handler(upstream, inj, o.fetcher))
}

func newOptions(opts []Option) *options {
	o := &options{path: "/*"}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = markup.NewHTTPFetcher(markup.DefaultOptions())
	}
	return o
}

// Handler fetches the upstream page matching the request and renders it
// with the widgets injected. Upstream failures map to 502.
func Handler(upstream string, inj *hostui.Injector, fetcher markup.Fetcher) echo.HandlerFunc {
	base := strings.TrimRight(upstream, "/")
	return func(c echo.Context) error {
		target := base + "/" + strings.TrimLeft(c.Param("*"), "/")
		if q := c.QueryString(); q != "" {
			target += "?" + q
		}

		ctx := c.Request().Context()
		page, err := fetcher.Fetch(ctx, target)
		if err != nil {
			var status *markup.StatusError
			if errors.As(err, &status) && status.Code == http.StatusNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "page not found").SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusBadGateway, "upstream unavailable").SetInternal(err)
		}

		out, err := inj.Inject(ctx, page)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "injection failed").SetInternal(err)
		}
		return Render(c, templ.Raw(out))
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hostuiecho.Render(c, hostui.ToastContainer())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return component.Render(c.Request().Context(), c.Response())
}
