package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"StockLens/internal/logger"
)

// SQLiteRecorder persists the run log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			range_spec  TEXT,
			source      TEXT,
			bars        INTEGER,
			status      TEXT,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol ON analysis_runs(symbol)`,

		// digest_rows held closing prices; drop it along with that history.
		`DROP TABLE IF EXISTS digest_rows`,
		`CREATE TABLE IF NOT EXISTS digest_signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			rsi_state  TEXT,
			macd_state TEXT,
			band_state TEXT,
			alert      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_digest_run ON digest_signals(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(evt *AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(id, timestamp, symbol, range_spec, source, bars, status, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.At.Unix(), evt.Symbol, evt.Range, evt.Source,
		evt.Bars, evt.Status, evt.Error, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordDigest(evt *DigestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO digest_signals
		(run_id, timestamp, symbol, rsi_state, macd_state, band_state, alert)
		VALUES (?,?,?,?,?,?,?)`,
		evt.RunID, evt.At.Unix(), evt.Symbol, evt.RSIState,
		evt.MACDState, evt.BandState, evt.Alert,
	)
	return err
}

// RecentAnalyses returns up to limit analysis events, newest first.
func (r *SQLiteRecorder) RecentAnalyses(limit int) ([]AnalysisEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, symbol, range_spec, source, bars, status, error, duration_ms
		FROM analysis_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisEvent
	for rows.Next() {
		var e AnalysisEvent
		var ts, ms int64
		if err := rows.Scan(&e.ID, &ts, &e.Symbol, &e.Range, &e.Source, &e.Bars, &e.Status, &e.Error, &ms); err != nil {
			return nil, err
		}
		e.At = time.Unix(ts, 0)
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// DigestRows returns the rows recorded for one digest run in insertion order.
func (r *SQLiteRecorder) DigestRows(runID string) ([]DigestEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, symbol, rsi_state, macd_state, band_state, alert
		FROM digest_signals WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DigestEvent
	for rows.Next() {
		var e DigestEvent
		var ts int64
		if err := rows.Scan(&e.RunID, &ts, &e.Symbol, &e.RSIState, &e.MACDState, &e.BandState, &e.Alert); err != nil {
			return nil, err
		}
		e.At = time.Unix(ts, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Log.Info("closing sqlite recorder")
	return r.db.Close()
}
