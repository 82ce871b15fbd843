package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/logger"
	"StockLens/internal/model"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Warnf("encode response: %v", err)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// statusFor maps collector errors to HTTP status codes and user-facing text.
// Provider failures never leak their details to the page.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, collector.ErrInvalidSymbol), errors.Is(err, model.ErrInvalidRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, collector.ErrFetch):
		return http.StatusBadGateway, dashboard.FetchErrorMessage
	}
	return http.StatusInternalServerError, "Internal server error"
}

var funcMap = template.FuncMap{
	"rawJS": func(s string) template.JS { return template.JS(s) },
}

// render executes a page into a buffer so template errors still produce a 500.
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.templates[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Log.Errorf("render %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
