package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// VCardFetcher retrieves vCard data from a remote address book.
// It is an interface so imports can be tested without a network.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// Source describes where an import reads its vCards from: a local file, or a
// CardDAV/WebDAV URL when WebURL is set.
type Source struct {
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Open returns a stream over the source's vCard data.
func (s Source) Open(ctx context.Context, fetcher VCardFetcher) (io.ReadCloser, error) {
	if s.WebURL != "" {
		if fetcher == nil {
			fetcher = NewHTTPFetcher()
		}
		return fetcher.Fetch(ctx, s.WebURL, s.WebUser, s.WebPass)
	}
	if s.LocalPath == "" {
		return nil, errors.New(config.ErrVCardParse + ": no source given")
	}
	return os.Open(s.LocalPath)
}

// HTTPFetcher implements VCardFetcher with net/http.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with the configured timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch downloads targetURL with optional Basic Auth. Only http and https are
// accepted, and the body is capped at config.MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query parameters may carry tokens; keep them out of the logs.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	log.Debug("vCards downloading", slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}
