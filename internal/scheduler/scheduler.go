// Package scheduler runs the periodic technical digest and answers chat
// commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/logger"
	"StockLens/internal/model"
	"StockLens/internal/notifier"
	"StockLens/internal/recorder"
	"StockLens/internal/strategy"
)

// SendRetries is the retry budget for outgoing notifications.
const SendRetries = 3

// Options configures the digest.
type Options struct {
	Symbols           []string
	Tickers           []string
	Period            model.Period
	RequestsPerMinute int
}

// Scheduler manages the digest cron task and command handling.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Limiter   *rate.Limiter
	Ctx       context.Context

	Symbols []string
	Tickers []string
	Period  model.Period

	now func() time.Time
}

// NewScheduler creates a new Scheduler. A nil notifier or recorder is replaced
// with its no-op implementation.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	period := opts.Period
	if !period.Valid() {
		period = model.Period6mo
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Limiter:   NewLimiter(opts.RequestsPerMinute),
		Ctx:       ctx,
		Symbols:   opts.Symbols,
		Tickers:   opts.Tickers,
		Period:    period,
		now:       time.Now,
	}
}

// NewLimiter allows rpm provider requests per minute; rpm <= 0 disables throttling.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// Register schedules the digest. An empty spec leaves the digest disabled.
func (s *Scheduler) Register(spec string) error {
	if strings.TrimSpace(spec) == "" {
		logger.Log.Info("digest cron not configured, scheduler idle")
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	logger.Log.Infof("digest scheduled: %s (%d symbols, %s)", spec, len(s.Symbols), s.Period)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

func (s *Scheduler) digestTask() {
	if _, err := s.RunDigest(s.Ctx); err != nil {
		logger.Log.Errorf("digest run: %v", err)
	}
}

// BuildDigest analyses every digest symbol in order without sending anything.
// Per-symbol failures are kept in the row; only cancellation aborts the run.
func (s *Scheduler) BuildDigest(ctx context.Context) (*model.Digest, error) {
	d := &model.Digest{
		RunID:   recorder.NewRunID(),
		At:      s.now(),
		Period:  s.Period,
		Signals: make([]model.TechnicalSignal, 0, len(s.Symbols)),
	}
	r := model.Range{Period: s.Period}

	for _, sym := range s.Symbols {
		if err := s.Limiter.Wait(ctx); err != nil {
			return d, fmt.Errorf("digest aborted: %w", err)
		}
		tbl, err := s.Collector.History(ctx, sym, r)
		if err != nil {
			if ctx.Err() != nil {
				return d, fmt.Errorf("digest aborted: %w", ctx.Err())
			}
			logger.Log.Warnf("digest %s: %v", sym, err)
			d.Signals = append(d.Signals, model.TechnicalSignal{Symbol: sym, Err: rowError(err)})
			continue
		}
		d.Signals = append(d.Signals, *strategy.Evaluate(sym, tbl))
	}
	return d, nil
}

// RunDigest builds the digest, sends it through the notifier and records each row.
func (s *Scheduler) RunDigest(ctx context.Context) (*model.Digest, error) {
	start := time.Now()
	logger.Log.Infof("running digest for %d symbols", len(s.Symbols))

	d, err := s.BuildDigest(ctx)
	if err != nil {
		return d, err
	}

	for i := range d.Signals {
		sig := &d.Signals[i]
		evt := &recorder.DigestEvent{
			RunID:     d.RunID,
			At:        d.At,
			Symbol:    sig.Symbol,
			RSIState:  string(sig.RSIState),
			MACDState: string(sig.MACDState),
			BandState: string(sig.BandState),
			Alert:     sig.Alert(),
		}
		if sig.Err != "" {
			evt.Alert = sig.Err
		}
		if err := s.Recorder.RecordDigest(evt); err != nil {
			logger.Log.Errorf("record digest row %s: %v", sig.Symbol, err)
		}
	}

	s.trySend(ctx, notifier.FormatDigest(d))
	logger.Log.Infof("digest %s finished in %v", d.RunID, time.Since(start).Round(time.Millisecond))
	return d, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address commands as /cmd@botname.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/analyze":
		return s.analyzeCommand(ctx, fields[1:])
	case "/digest":
		d, err := s.BuildDigest(ctx)
		if err != nil {
			return "Digest interrupted."
		}
		return notifier.FormatDigest(d)
	case "/tickers":
		if len(s.Tickers) == 0 {
			return "No tickers configured."
		}
		return "Tickers:\n" + strings.Join(s.Tickers, "\n")
	default:
		return helpText
	}
}

const helpText = "Available commands:\n" +
	"/analyze SYMBOL [period] - technical summary\n" +
	"/digest - run the digest now\n" +
	"/tickers - list configured tickers"

func (s *Scheduler) analyzeCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze SYMBOL [period]"
	}
	token := string(s.Period)
	if len(args) > 1 {
		token = args[1]
	}

	evt := recorder.NewAnalysisEvent(args[0], token, recorder.SourceTelegram)
	defer func() {
		evt.Duration = time.Since(evt.At)
		if err := s.Recorder.RecordAnalysis(evt); err != nil {
			logger.Log.Errorf("record analysis: %v", err)
		}
	}()

	r, err := model.NamedRange(token)
	if err != nil {
		evt.Status, evt.Error = recorder.StatusInvalidInput, err.Error()
		return fmt.Sprintf("Unknown period %q. Use one of: %s", token, periodList())
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		evt.Status, evt.Error = recorder.StatusFetchError, err.Error()
		return dashboard.FetchErrorMessage
	}

	rep, err := s.Collector.Analyze(ctx, args[0], r)
	if err != nil {
		evt.Error = err.Error()
		if errors.Is(err, collector.ErrInvalidSymbol) {
			evt.Status = recorder.StatusInvalidInput
			return fmt.Sprintf("Invalid symbol %q.", args[0])
		}
		evt.Status = recorder.StatusFetchError
		return dashboard.FetchErrorMessage
	}

	evt.Symbol = rep.Symbol
	evt.Status = recorder.StatusOK
	evt.Bars = rep.Table.Len()
	return notifier.FormatAnalysisSummary(rep.Analysis, strategy.Evaluate(rep.Symbol, rep.Table))
}

func periodList() string {
	names := make([]string, len(model.Periods))
	for i, p := range model.Periods {
		names[i] = string(p)
	}
	return strings.Join(names, " ")
}

func rowError(err error) string {
	if errors.Is(err, collector.ErrInvalidSymbol) {
		return "invalid symbol"
	}
	return "data unavailable"
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, SendRetries); err != nil {
		logger.Log.Errorf("send notification: %v", err)
	}
}
