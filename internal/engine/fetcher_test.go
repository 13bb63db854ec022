package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

func remote(url string) engine.Source {
	return engine.Source{Mode: config.SourceModeWeb, URL: url}
}

// TestHTTPFetcher_Fetch_Success checks headers (User-Agent, Basic Auth) and body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	const body = "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nEND:VCARD"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "securepass", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))

		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	src := remote(ts.URL)
	src.User, src.Password = "testuser", "securepass"

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), src)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestHTTPFetcher_Fetch_NoCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok, "No auth header without credentials")
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), remote(ts.URL))
	require.NoError(t, err)
	_ = rc.Close()
}

// TestHTTPFetcher_Fetch_Errors verifies proper error handling for non-200 statuses.
func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, "404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"Unauthorized", http.StatusUnauthorized, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), remote(ts.URL))

			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, remote(ts.URL))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), remote(string([]byte{0x7f})))

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), remote("ftp://example.com/file.vcf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

// TestImporter_WithHTTPFetcher runs the whole web pipeline against a local server.
func TestImporter_WithHTTPFetcher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, strings.NewReader("BEGIN:VCARD\nVERSION:3.0\nFN:Web Person\nBDAY:--03-14\nEND:VCARD\n"))
	}))
	defer ts.Close()

	im := &engine.Importer{Fetcher: engine.NewHTTPFetcher()}
	cards, err := im.Import(context.Background(), remote(ts.URL))

	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Web Person", cards[0].Name)
	assert.Equal(t, "14.03", cards[0].Birthday)
}
