// Package markup loads widget markup from remote URLs.
package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// ErrFetch wraps every failure returned by a Fetcher.
var ErrFetch = errors.New("markup: fetch failed")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("markup: GET %s: status %d", e.URL, e.Code)
}

// Unwrap lets errors.Is(err, ErrFetch) match status failures.
func (e *StatusError) Unwrap() error { return ErrFetch }

// Fetcher resolves a URL to a markup string.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
	// Sanitizer, when set, filters every fetched document.
	Sanitizer *bluemonday.Policy
}

// DefaultOptions returns the fetcher defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		Retries:   3,
		UserAgent: "hostui/1.0",
	}
}

// HTTPFetcher fetches markup over HTTP with retries.
type HTTPFetcher struct {
	client    *resty.Client
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
}

// NewHTTPFetcher creates a fetcher. Retries are handled by the
// retryablehttp transport; 5xx and connection errors are retried.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(retryClient.StandardClient())
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeader("Accept", "text/html")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	return &HTTPFetcher{
		client:    client,
		limiter:   limiter,
		sanitizer: opts.Sanitizer,
	}
}

// Fetch GETs url and returns the body decoded to UTF-8.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", &StatusError{URL: url, Code: resp.StatusCode()}
	}

	body := decode(resp.Body(), resp.Header().Get("Content-Type"))
	if f.sanitizer != nil {
		body = f.sanitizer.Sanitize(body)
	}
	return body, nil
}

// decode converts body to UTF-8. The Content-Type charset wins; without
// one, invalid UTF-8 is run through charset detection.
func decode(body []byte, contentType string) string {
	if !strings.Contains(strings.ToLower(contentType), "charset=") && !utf8.Valid(body) {
		if res, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && res != nil {
			contentType = "text/html; charset=" + strings.ToLower(res.Charset)
		}
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(out)
}

// StaticFetcher serves markup from a map. Unknown URLs fail with a 404
// StatusError.
type StaticFetcher map[string]string

// Fetch looks url up.
func (s StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	body, ok := s[url]
	if !ok {
		return "", &StatusError{URL: url, Code: http.StatusNotFound}
	}
	return body, nil
}
