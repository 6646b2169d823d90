package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-enrollment/components/subjects"
	"github.com/goliatone/go-enrollment/internal/middleware"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
)

func (s *Server) routes() {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	r.Use(middleware.Recover(s.logger, http.HandlerFunc(s.internalError)))
	r.Use(middleware.Logging(s.logger))
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	if s.limiter != nil {
		r.Use(middleware.RateLimit(s.limiter, middleware.CookieOrIP(s.cookieName), s.rateLimited))
	}

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet, http.MethodHead)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.PathPrefix(html.DefaultAssetsURL+"/").
		Handler(http.StripPrefix(html.DefaultAssetsURL+"/", http.FileServer(http.FS(html.AssetsFS())))).
		Methods(http.MethodGet, http.MethodHead)
	if s.subjects != nil {
		r.Handle(subjects.Route, s.requireSession(s.subjects)).Methods(http.MethodGet, http.MethodHead)
	}

	base := s.controller.Flows().BasePath()
	r.HandleFunc(base+"/reset", s.reset).Methods(http.MethodPost)
	r.HandleFunc(base+"/{slug}", s.start).Methods(http.MethodGet)
	r.HandleFunc(base+"/{slug}/{step}/back", s.back).Methods(http.MethodGet)
	r.HandleFunc(base+"/{slug}/{step}", s.view).Methods(http.MethodGet)
	r.HandleFunc(base+"/{slug}/{step}", s.submit).Methods(http.MethodPost)

	s.router = r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) rateLimited(r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordRateLimited()
	}
	s.logger.WithField("path", r.URL.Path).Warn("submission rate limited")
}
