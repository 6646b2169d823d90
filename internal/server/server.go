// Package server exposes the enrollment wizard over HTTP. Every step is a
// server-rendered form; submissions are answered with a 303 redirect to the
// next step.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-enrollment/components/subjects"
	"github.com/goliatone/go-enrollment/internal/auth"
	"github.com/goliatone/go-enrollment/internal/metrics"
	"github.com/goliatone/go-enrollment/internal/middleware"
	"github.com/goliatone/go-enrollment/internal/session"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
)

// CSRFField is the form field carrying the session token. Controllers must be
// built with pages.WithCSRF(CSRFField).
const CSRFField = "_csrf"

// DefaultCookieName names the session cookie.
const DefaultCookieName = "enroll_sid"

// maxFormBytes bounds submitted form bodies.
const maxFormBytes = 64 << 10

type Option func(*Server)

// WithLogger sets the logger; defaults to the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request and funnel metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLimiter throttles submissions per session.
func WithLimiter(l *middleware.MapLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithCookie configures the session cookie.
func WithCookie(name string, secure bool, ttl time.Duration) Option {
	return func(s *Server) {
		if name = strings.TrimSpace(name); name != "" {
			s.cookieName = name
		}
		s.cookieSecure = secure
		s.cookieTTL = ttl
	}
}

// WithAuthChecker replaces the member token checker.
func WithAuthChecker(c auth.Checker) Option {
	return func(s *Server) {
		s.checker = c
	}
}

// WithSubjects serves the subject typeahead at subjects.Route to callers
// with a session.
func WithSubjects(ix *subjects.Index) Option {
	return func(s *Server) {
		s.subjects = ix
	}
}

// WithHomeURL sets where a reset without a flow lands.
func WithHomeURL(u string) Option {
	return func(s *Server) {
		if u = strings.TrimSpace(u); u != "" {
			s.homeURL = u
		}
	}
}

// Server wires the page controller, renderer and session store to a router.
type Server struct {
	controller *pages.Controller
	renderer   *html.Renderer
	sessions   session.Store

	logger       logrus.FieldLogger
	metrics      *metrics.Metrics
	limiter      *middleware.MapLimiter
	checker      auth.Checker
	subjects     *subjects.Index
	cookieName   string
	cookieSecure bool
	cookieTTL    time.Duration
	homeURL      string

	locks  *keyedMutex
	router *mux.Router
}

// New builds the server and its routes.
func New(controller *pages.Controller, renderer *html.Renderer, sessions session.Store, opts ...Option) (*Server, error) {
	if controller == nil || renderer == nil || sessions == nil {
		return nil, errors.New("server: controller, renderer and session store are required")
	}
	s := &Server{
		controller:   controller,
		renderer:     renderer,
		sessions:     sessions,
		logger:       logrus.StandardLogger(),
		checker:      auth.NewChecker(),
		cookieName:   DefaultCookieName,
		cookieSecure: true,
		cookieTTL:    2 * time.Hour,
		homeURL:      "/",
		locks:        newKeyedMutex(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("enrollment server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("enrollment server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
