package server

import "net/http"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /analysis", s.handleAnalysis)

	mux.HandleFunc("GET /api/analysis", s.handleAPIAnalysis)
	mux.HandleFunc("GET /api/chart.png", s.handleChartPNG)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}
