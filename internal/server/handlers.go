package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"StockLens/internal/chart"
	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/logger"
	"StockLens/internal/model"
	"StockLens/internal/quotes"
	"StockLens/internal/recorder"
)

// Chart size bounds for /api/chart.png.
const (
	minChartSide = 200
	maxChartSide = 4000
)

type homePage struct {
	Title string
	Home  dashboard.HomeView
}

type analysisPage struct {
	Title    string
	Analysis dashboard.AnalysisView
}

// analysisResponse is the body of /api/analysis.
type analysisResponse struct {
	Symbol    string                 `json:"symbol"`
	Range     model.Range            `json:"range"`
	Table     *model.IndicatorTable  `json:"table"`
	Metadata  *model.StockMetadata   `json:"metadata"`
	News      []model.NewsItem       `json:"news"`
	View      dashboard.AnalysisView `json:"view"`
	Figure    json.RawMessage        `json:"figure,omitempty"`
	FetchedAt time.Time              `json:"fetched_at"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := dashboard.HomeInput{
		Title:          s.cfg.Title,
		Tickers:        s.cfg.Tickers,
		SelectedSymbol: strings.ToUpper(q.Get("symbol")),
		SelectedPeriod: model.Period(s.cfg.DefaultPeriod),
		Custom:         q.Get("custom") == "on" || q.Get("period") == string(model.PeriodCustom),
		Error:          q.Get("error"),
		Now:            s.now(),
	}
	if p := model.Period(q.Get("period")); p.Valid() {
		in.SelectedPeriod = p
	}
	if t, err := time.Parse(model.DateLayout, q.Get("start")); err == nil {
		in.Start = t
	}
	if t, err := time.Parse(model.DateLayout, q.Get("end")); err == nil {
		in.End = t
	}
	if s.quotes != nil {
		in.Quotes = quotes.Board(r.Context(), s.quotes, s.cfg.Tickers)
	}

	s.render(w, http.StatusOK, "home.html", homePage{Title: s.cfg.Title, Home: dashboard.NewHomeView(in)})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol, rng, err := s.parseRequest(r)
	if err != nil {
		status, msg := statusFor(err)
		s.record(recorder.NewAnalysisEvent(symbol, r.URL.Query().Get("period"), recorder.SourceWeb), nil, err)
		s.render(w, status, "analysis.html", analysisPage{Title: s.cfg.Title, Analysis: dashboard.ErrorAnalysisView(symbol, msg)})
		return
	}

	rep, err := s.analyze(r.Context(), symbol, rng)
	if err != nil {
		status, msg := statusFor(err)
		s.render(w, status, "analysis.html", analysisPage{Title: s.cfg.Title, Analysis: dashboard.ErrorAnalysisView(symbol, msg)})
		return
	}

	view, err := dashboard.NewAnalysisView(rep.Analysis, rep.Figure, s.now())
	if err != nil {
		logger.Log.Errorf("build view for %s: %v", rep.Symbol, err)
		s.render(w, http.StatusInternalServerError, "analysis.html", analysisPage{Title: s.cfg.Title, Analysis: dashboard.ErrorAnalysisView(symbol, "Internal server error")})
		return
	}
	s.render(w, http.StatusOK, "analysis.html", analysisPage{Title: s.cfg.Title, Analysis: view})
}

func (s *Server) handleAPIAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol, rng, err := s.parseRequest(r)
	if err != nil {
		status, msg := statusFor(err)
		WriteError(w, status, msg)
		return
	}

	rep, err := s.analyze(r.Context(), symbol, rng)
	if err != nil {
		status, msg := statusFor(err)
		WriteError(w, status, msg)
		return
	}

	view, err := dashboard.NewAnalysisView(rep.Analysis, rep.Figure, s.now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, analysisResponse{
		Symbol:    rep.Symbol,
		Range:     rep.Range,
		Table:     rep.Table,
		Metadata:  rep.Metadata,
		News:      rep.News,
		View:      view,
		Figure:    json.RawMessage(view.ChartJSON),
		FetchedAt: rep.FetchedAt,
	})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	symbol, rng, err := s.parseRequest(r)
	if err != nil {
		status, msg := statusFor(err)
		WriteError(w, status, msg)
		return
	}
	width, err := sizeParam(r, "width", 1200)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := sizeParam(r, "height", chart.FigureHeight)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	evt := recorder.NewAnalysisEvent(symbol, rng.String(), recorder.SourceWeb)
	tbl, err := s.collector.History(r.Context(), symbol, rng)
	s.record(evt, tbl, err)
	if err != nil {
		status, msg := statusFor(err)
		WriteError(w, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(chart.Build(tbl, strings.ToUpper(symbol)), &buf, width, height); err != nil {
		if errors.Is(err, chart.ErrTooFewBars) {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Log.Errorf("render chart for %s: %v", symbol, err)
		WriteError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": s.collector.Fetcher.Name(),
		"time":     s.now().Format(time.RFC3339),
	})
}

// parseRequest reads symbol, period, start and end. The configured default
// period applies when neither a period nor dates are given.
func (s *Server) parseRequest(r *http.Request) (string, model.Range, error) {
	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("symbol"))
	if symbol == "" {
		return "", model.Range{}, fmt.Errorf("%w: symbol is required", collector.ErrInvalidSymbol)
	}
	period := q.Get("period")
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	rng, err := model.ParseRange(period, q.Get("start"), q.Get("end"))
	if err != nil {
		return symbol, model.Range{}, err
	}
	return symbol, rng, nil
}

// analyze runs the collector and records the outcome.
func (s *Server) analyze(ctx context.Context, symbol string, rng model.Range) (*collector.Report, error) {
	evt := recorder.NewAnalysisEvent(symbol, rng.String(), recorder.SourceWeb)
	rep, err := s.collector.Analyze(ctx, symbol, rng)
	if err != nil {
		s.record(evt, nil, err)
		return nil, err
	}
	evt.Symbol = rep.Symbol
	s.record(evt, rep.Table, nil)
	return rep, nil
}

func (s *Server) record(evt *recorder.AnalysisEvent, tbl *model.IndicatorTable, err error) {
	evt.Duration = time.Since(evt.At)
	evt.Bars = tbl.Len()
	switch status, _ := statusFor(err); {
	case err == nil:
		evt.Status = recorder.StatusOK
	case status == http.StatusBadRequest:
		evt.Status, evt.Error = recorder.StatusInvalidInput, err.Error()
	default:
		evt.Status, evt.Error = recorder.StatusFetchError, err.Error()
	}
	if rerr := s.recorder.RecordAnalysis(evt); rerr != nil {
		logger.Log.Errorf("record analysis: %v", rerr)
	}
}

func sizeParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minChartSide || n > maxChartSide {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, minChartSide, maxChartSide)
	}
	return n, nil
}
