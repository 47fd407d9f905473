package hostuiecho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/beachspainc/hostui"
	"github.com/beachspainc/hostui/lib/markup"
)

const upstream = "https://booking.test"

func newInjector() *hostui.Injector {
	reg := hostui.NewRegistry()
	reg.Add("badge", func(h *hostui.Host) (hostui.Widget, error) {
		return hostui.NewComponent(h, hostui.WithHTML(`<span class="badge">hi</span>`), hostui.WithCSSScoping(false)), nil
	})
	return hostui.NewInjector(reg, []string{"badge"}, nil)
}

func pages() markup.StaticFetcher {
	f := markup.StaticFetcher{}
	f[upstream+"/"] = `<html><body><h1>home</h1></body></html>`
	f[upstream+"/book?day=mon"] = `<html><body><h1>monday</h1></body></html>`
	return f
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMount(t *testing.T) {
	e := echo.New()
	Mount(e, upstream+"/", newInjector(), WithFetcher(pages()))

	tests := []struct {
		path     string
		wantCode int
		want     []string
	}{
		{"/", http.StatusOK, []string{"<h1>home</h1>", `<span class="badge">hi</span>`}},
		{"/book?day=mon", http.StatusOK, []string{"<h1>monday</h1>", "badge"}},
		{"/missing", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(e, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			for _, w := range tt.want {
				if !strings.Contains(rec.Body.String(), w) {
					t.Errorf("body missing %q: %s", w, rec.Body.String())
				}
			}
		})
	}
}

func TestMountUpstreamFailure(t *testing.T) {
	e := echo.New()
	failing := markup.FetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "", &markup.StatusError{URL: url, Code: http.StatusServiceUnavailable}
	})
	Mount(e, upstream, newInjector(), WithFetcher(failing))

	if rec := serve(e, "/"); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/proxy")
	MountGroup(g, upstream, newInjector(), WithFetcher(pages()))

	rec := serve(e, "/proxy/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "<h1>home</h1>") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Render(c, hostui.ToastContainer()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), `id="toasts"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
