package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/geraldpeng6/sks-installer/internal/logger"
)

const (
	// DefaultMaxRedirects caps the redirect chain of a single fetch.
	DefaultMaxRedirects = 10

	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "sks-installer"
)

var (
	// ErrTooManyRedirects is returned when the redirect chain exceeds the cap.
	ErrTooManyRedirects = errors.New("stopped after too many redirects")
	// ErrNoLocation is returned when a redirect response carries no usable Location header.
	ErrNoLocation = errors.New("redirect without a usable location header")
)

// StatusError reports a response that was neither a success nor a redirect.
type StatusError struct {
	// URL is the request URL that produced the status (after redirects).
	URL string
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error renders the status with its standard text and the offending URL.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d (%s) from %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Fetcher downloads release artifacts over HTTP, one attempt per call.
type Fetcher struct {
	// client is the underlying HTTP client; it never follows redirects itself.
	client *http.Client
	// userAgent is sent with every request.
	userAgent string
	// maxRedirects caps the redirect chain.
	maxRedirects int
}

// Option configures fetcher behaviour.
type Option func(*Fetcher)

// WithTimeout bounds the whole transfer, connection setup included.
// A non-positive duration keeps the default of no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with each request.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithMaxRedirects overrides the redirect cap.
func WithMaxRedirects(limit int) Option {
	return func(f *Fetcher) {
		if limit > 0 {
			f.maxRedirects = limit
		}
	}
}

// New creates a Fetcher. Redirects are handled by Fetch itself, so the
// underlying client is told to return responses as-is.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads rawURL into destPath in a single attempt.
//
// The destination file is created (truncated) before the first request goes
// out. Redirects are followed in a bounded loop up to the configured cap. On
// success the file is flushed and closed before Fetch returns. Cleanup
// depends on the failure class: transport errors remove the destination,
// while a non-success HTTP status leaves it on disk for inspection.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destPath string) error {
	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	currentURL := rawURL

	for hop := 0; ; hop++ {
		if hop > f.maxRedirects {
			discard(out)
			return fmt.Errorf("%s: %w", rawURL, ErrTooManyRedirects)
		}

		response, err := f.get(ctx, currentURL)
		if err != nil {
			discard(out)
			return err
		}

		if next, redirected := redirectTarget(response); redirected {
			closeBody(response)

			if next == "" {
				discard(out)
				return fmt.Errorf("%s: %w", currentURL, ErrNoLocation)
			}

			logger.DebugKV(ctx, "Following redirect", "from", currentURL, "to", next)
			currentURL = next

			continue
		}

		if response.StatusCode != http.StatusOK {
			closeBody(response)
			// The file stays behind so the operator can inspect what the
			// server sent before this point.
			_ = out.Close()

			return &StatusError{URL: currentURL, StatusCode: response.StatusCode}
		}

		_, err = io.Copy(out, response.Body)
		closeBody(response)

		if err != nil {
			discard(out)
			return fmt.Errorf("stream %s: %w", currentURL, err)
		}

		if err = out.Close(); err != nil {
			_ = os.Remove(out.Name())
			return fmt.Errorf("close destination file: %w", err)
		}

		return nil
	}
}

// get issues one GET request without following redirects.
func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	request.Header.Set("User-Agent", f.userAgent)

	response, err := f.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}

	return response, nil
}

// redirectTarget reports whether the response is a redirect and resolves its
// Location header against the request URL, since Location may be relative.
// An empty target on a redirect means the header was missing or unusable.
func redirectTarget(response *http.Response) (string, bool) {
	switch response.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return "", false
	}

	location := response.Header.Get("Location")
	if location == "" {
		return "", true
	}

	next, err := response.Request.URL.Parse(location)
	if err != nil {
		return "", true
	}

	return next.String(), true
}

// discard closes and removes the destination; removal is best-effort.
func discard(out *os.File) {
	_ = out.Close()
	_ = os.Remove(out.Name())
}

// closeBody drains and closes a response body so the connection can be reused.
func closeBody(response *http.Response) {
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
}
