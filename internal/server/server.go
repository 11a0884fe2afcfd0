package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CalendarServer serves the life calendar over HTTP: the iCalendar feed, JSON view
// snapshots and Prometheus metrics.
type CalendarServer struct {
	Port     string
	Clock    engine.Clock
	Exporter *engine.Exporter

	// Both pointers are written rarely (on intake) and read on every request.
	cache atomic.Pointer[cacheItem]
	birth atomic.Pointer[engine.BirthDate]

	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	feedBytes prometheus.Gauge
	router    chi.Router
}

// NewCalendarServer creates a server with its own metrics registry.
func NewCalendarServer(port string, clock engine.Clock) *CalendarServer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	s := &CalendarServer{
		Port:  port,
		Clock: clock,
		Exporter: &engine.Exporter{
			Clock:           clock,
			ReminderTrigger: config.DefaultReminder,
		},
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: config.MetricRequests,
			Help: config.MetricRequestsHelp,
		}, []string{config.MetricLabelRoute, config.MetricLabelStatus}),
		feedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: config.MetricFeedBytes,
			Help: config.MetricFeedHelp,
		}),
	}
	s.router = s.newRouter()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *CalendarServer) Handler() http.Handler {
	return s.router
}

func (s *CalendarServer) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.SetHeader(config.HeaderServer, config.UserAgent))
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", config.HeaderIfNoneMatch, config.HeaderIfModifiedSince},
		ExposedHeaders: []string{config.HeaderETag, config.HeaderLastModified},
		MaxAge:         config.CORSMaxAge,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	})

	r.Get(config.RouteCalendar, s.handleCalendarRequest)
	r.Head(config.RouteCalendar, s.handleCalendarRequest)
	r.Route(config.RouteAPI, func(r chi.Router) {
		r.Get(config.RouteView, s.handleViewRequest)
	})
	r.Method(http.MethodGet, config.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	// Bind to localhost only: the feed exposes a birth date.
	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	// Buffered so the listener goroutine can exit even if nobody reads the error.
	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		// A fresh context: the parent is already cancelled.
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

// Publish exports the lifetime of birth and makes it the served session.
// The previous feed stays in place if the export fails.
func (s *CalendarServer) Publish(ctx context.Context, birth engine.BirthDate) error {
	p := engine.NewProjector(s.Clock).Project(birth.Time(), config.LifeExpectancyYears)
	data, err := s.Exporter.Export(ctx, p)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrExportFailed, err)
	}
	s.birth.Store(&birth)
	s.Update(data)
	return nil
}

// Update atomically replaces the served content.
func (s *CalendarServer) Update(data []byte) {
	// Strong ETag derived from the content, so identical exports keep the same tag.
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	// Readers see either the old or the new complete item, never a partial one.
	s.cache.Store(item)
	s.feedBytes.Set(float64(len(data)))

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	// Nothing published yet: the intake has not completed.
	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// Private: a birth date must not land in shared caches.
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// If-None-Match takes precedence over If-Modified-Since (RFC 9110).
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				// Not newer than the client's copy. Unparseable dates fall through to a full response.
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// HEAD gets the headers only.
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleViewRequest renders one view for the published birth date.
// Query: view (defaults to the month view) and anchor as YYYY-MM-DD (defaults to today).
func (s *CalendarServer) handleViewRequest(w http.ResponseWriter, r *http.Request) {
	birth := s.birth.Load()
	if birth == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, config.HTTPMsgInitializing, nil)
		return
	}

	q := r.URL.Query()
	viewName := q.Get(config.QueryView)
	if viewName == "" {
		viewName = config.DefaultView
	}
	view, err := engine.ParseViewMode(viewName)
	if err != nil {
		writeError(w, http.StatusBadRequest, config.ErrUnknownView, err)
		return
	}

	ctrl := engine.NewController(s.Clock, *birth, view)
	if raw := q.Get(config.QueryAnchor); raw != "" {
		anchor, err := engine.ParseDay(raw, ctrl.State().Anchor.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, config.ErrInvalidAnchor, err)
			return
		}
		// Days before birth are not selectable, so the anchor cannot be moved there.
		if !ctrl.SelectDate(anchor) {
			writeError(w, http.StatusBadRequest, config.ErrAnchorPreBirth, nil)
			return
		}
	}

	writeJSON(w, http.StatusOK, ctrl.Render())
}

// instrument counts requests per route pattern and status.
func (s *CalendarServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Label by pattern, not raw path, to keep the metric's cardinality bounded.
		route := config.MetricUnmatched
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		// A handler that never called WriteHeader answered 200.
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		slog.Debug(config.MsgRequestServed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyRoute, route,
			config.LogKeyStatus, status,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
