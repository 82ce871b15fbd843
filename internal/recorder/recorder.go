package recorder

import (
	"time"

	"github.com/google/uuid"
)

// Sources of an analysis request.
const (
	SourceWeb      = "web"
	SourceCLI      = "cli"
	SourceTelegram = "telegram"
	SourceDigest   = "digest"
)

// Outcome of an analysis request.
const (
	StatusOK           = "ok"
	StatusFetchError   = "fetch_error"
	StatusInvalidInput = "invalid_input"
)

// AnalysisEvent is one analyze request. Only the outcome is kept, never prices.
type AnalysisEvent struct {
	ID       string
	At       time.Time
	Symbol   string
	Range    string
	Source   string
	Bars     int
	Status   string
	Error    string
	Duration time.Duration
}

// DigestEvent is one symbol's signal outcome in a digest run. It carries
// classifications only, never prices or indicator values.
type DigestEvent struct {
	RunID     string
	At        time.Time
	Symbol    string
	RSIState  string
	MACDState string
	BandState string
	Alert     string
}

// NewAnalysisEvent stamps an event with a fresh ID and the current time.
func NewAnalysisEvent(symbol, rng, source string) *AnalysisEvent {
	return &AnalysisEvent{ID: uuid.NewString(), At: time.Now(), Symbol: symbol, Range: rng, Source: source}
}

// NewRunID returns an identifier shared by all rows of one digest run.
func NewRunID() string { return uuid.NewString() }

// Recorder keeps an operational log of analyses and digest runs.
type Recorder interface {
	RecordAnalysis(evt *AnalysisEvent) error
	RecordDigest(evt *DigestEvent) error
	Close() error
}
