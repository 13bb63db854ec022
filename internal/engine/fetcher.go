package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// VCardFetcher retrieves remote vCard data for a web Source.
type VCardFetcher interface {
	Fetch(ctx context.Context, src Source) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher over plain HTTP(S) with optional basic auth.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch downloads src.URL. The body is capped at config.MaxHTTPResponseSize
// and query strings are never logged.
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (io.ReadCloser, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if src.User != "" || src.Password != "" {
		req.SetBasicAuth(src.User, src.Password)
	}

	log.Debug("Downloading vCards")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	log.Info("vCards downloading", slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	return limitedBody{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedBody reads through the size limit but closes the real connection.
type limitedBody struct {
	io.Reader
	io.Closer
}
