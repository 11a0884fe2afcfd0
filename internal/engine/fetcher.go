package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// VCardFetcher retrieves a remote vCard. It exists so tests can stub the network.
type VCardFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher using the standard net/http library.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch downloads targetURL, refusing anything but http(s) and capping the body size.
// Query strings are stripped from logs since they may carry tokens.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	// Parse first, both to validate and to build a log-safe form.
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	// Security check: strictly HTTP or HTTPS, no file:// or other handlers.
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Scheme, host and path only: the query may carry an access token.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Some CardDAV servers reject requests without a User-Agent.
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close() // the body is not returned, so release the connection here
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// Cap the read side against oversized or endless responses.
	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser keeps the original Closer so the connection is released while reads are capped.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// LoadBirthDate reads a birth date from a vCard source: an http(s) URL when fetcher is
// set, otherwise a local file path.
func LoadBirthDate(ctx context.Context, source string, fetcher VCardFetcher, now time.Time) (BirthDate, error) {
	start := time.Now()

	var (
		rc  io.ReadCloser
		err error
	)
	// Only http(s) goes to the network. Anything else is a path on disk.
	if fetcher != nil && (strings.HasPrefix(source, config.SchemeHTTP+"://") || strings.HasPrefix(source, config.SchemeHTTPS+"://")) {
		rc, err = fetcher.Fetch(ctx, source)
	} else {
		rc, err = os.Open(source)
	}
	if err != nil {
		// Report cancellation as such rather than as an unreadable source.
		if ctx.Err() != nil {
			return BirthDate{}, ctx.Err()
		}
		return BirthDate{}, fmt.Errorf("%s: %w", config.ErrVCardOpen, err)
	}
	defer func() { _ = rc.Close() }()

	birth, err := BirthDateFromVCard(rc, now)
	if err == nil {
		slog.Debug("vCard birth date loaded",
			config.LogKeyComponent, config.CompFetcher,
			config.LogKeySource, source,
			config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return birth, err
}
