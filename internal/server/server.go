// Package server is the HTTP dashboard: a home page, an analysis page and a
// small JSON/PNG API over the same collector the CLI uses.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/logger"
	"StockLens/internal/quotes"
	"StockLens/internal/recorder"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home.html", "analysis.html"}

// Deps are the collaborators the server needs. Quotes may be nil to hide the
// quote board; Recorder may be nil to skip the run log.
type Deps struct {
	Config    *config.Config
	Collector *collector.Collector
	Quotes    quotes.Service
	Recorder  recorder.Recorder
	Now       func() time.Time
}

// Server wraps the HTTP server and its handlers.
type Server struct {
	cfg       *config.Config
	collector *collector.Collector
	quotes    quotes.Service
	recorder  recorder.Recorder
	now       func() time.Time
	templates map[string]*template.Template
	server    *http.Server
}

// New builds the server and parses the embedded templates.
func New(d Deps) (*Server, error) {
	s := &Server{
		cfg:       d.Config,
		collector: d.Collector,
		quotes:    d.Quotes,
		recorder:  d.Recorder,
		now:       d.Now,
		templates: make(map[string]*template.Template, len(pages)),
	}
	if s.recorder == nil {
		s.recorder = recorder.NewNoopRecorder()
	}
	if s.now == nil {
		s.now = time.Now
	}

	for _, page := range pages {
		t, err := template.New(page).Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		s.templates[page] = t
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         d.Config.Server.Addr,
		Handler:      applyMiddleware(mux),
		ReadTimeout:  d.Config.Server.ReadTimeout,
		WriteTimeout: d.Config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking). It returns nil after Shutdown.
func (s *Server) Start() error {
	logger.Log.Infof("dashboard listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
