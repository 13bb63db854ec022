// Package server publishes the birthday feeds of the address book over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// document is one rendered feed with the metadata needed for HTTP caching.
type document struct {
	data         []byte
	contentType  string
	etag         string
	lastModified string // RFC1123, as required by HTTP headers
}

// FeedServer serves the iCalendar export and the plain-text upcoming digest.
// Both documents are swapped atomically, readers never take a lock.
type FeedServer struct {
	calendar atomic.Pointer[document]
	upcoming atomic.Pointer[document]
	Port     string
}

// NewFeedServer creates a server bound to 127.0.0.1:port once started.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port: port,
	}
}

// Handler routes "/" and "/birthdays.ics" to the calendar and "/upcoming" to the digest.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot+"{$}", s.serve(&s.calendar))
	mux.HandleFunc(config.RouteCalendar, s.serve(&s.calendar))
	mux.HandleFunc(config.RouteUpcoming, s.serve(&s.upcoming))
	return mux
}

// Start runs the HTTP server and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateCalendar replaces the served iCalendar document.
func (s *FeedServer) UpdateCalendar(data []byte) {
	s.calendar.Store(newDocument(data, config.MimeTextCalendar))
	logUpdate(config.RouteCalendar, s.calendar.Load())
}

// UpdateUpcoming replaces the served upcoming-birthdays digest.
func (s *FeedServer) UpdateUpcoming(text string) {
	s.upcoming.Store(newDocument([]byte(text), config.MimeTextPlain))
	logUpdate(config.RouteUpcoming, s.upcoming.Load())
}

func newDocument(data []byte, contentType string) *document {
	hash := sha256.Sum256(data)
	return &document{
		data:         data,
		contentType:  contentType,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
}

func logUpdate(route string, doc *document) {
	slog.Debug(config.MsgFeedUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(doc.data),
		config.LogKeyETag, doc.etag,
	)
}

// serve returns a handler for one document with conditional GET support.
func (s *FeedServer) serve(slot *atomic.Pointer[document]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		doc := slot.Load()
		if doc == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set(config.HeaderContentType, doc.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, doc.etag)
		w.Header().Set(config.HeaderLastModified, doc.lastModified)

		// If-Modified-Since is only consulted when no If-None-Match was sent (RFC 9110 13.1.3).
		if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
			if match == doc.etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		} else if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
			if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
				if serverTime, err := time.Parse(http.TimeFormat, doc.lastModified); err == nil {
					if !serverTime.After(clientTime) {
						w.WriteHeader(http.StatusNotModified)
						return
					}
				}
			}
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(doc.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyRoute, r.URL.Path,
					config.LogKeyError, err,
				)
			}
		}
	}
}
