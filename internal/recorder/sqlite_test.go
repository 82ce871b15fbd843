package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_AnalysisRoundTrip(t *testing.T) {
	r := openTemp(t)

	first := NewAnalysisEvent("AAPL", "1y", SourceWeb)
	first.At = time.Unix(1_700_000_000, 0)
	first.Bars = 251
	first.Status = StatusOK
	first.Duration = 1500 * time.Millisecond
	require.NoError(t, r.RecordAnalysis(first))

	second := &AnalysisEvent{Symbol: "TCS.NS", Range: "6mo", Source: SourceCLI, Status: StatusFetchError, Error: "fetch failed"}
	require.NoError(t, r.RecordAnalysis(second))
	assert.NotEmpty(t, second.ID, "missing IDs are generated")

	got, err := r.RecentAnalyses(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "TCS.NS", got[0].Symbol)
	assert.Equal(t, StatusFetchError, got[0].Status)
	assert.Equal(t, "fetch failed", got[0].Error)

	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, 251, got[1].Bars)
	assert.Equal(t, 1500*time.Millisecond, got[1].Duration)
	assert.Equal(t, int64(1_700_000_000), got[1].At.Unix())
}

func TestSQLiteRecorder_DigestRows(t *testing.T) {
	r := openTemp(t)
	run := NewRunID()

	require.NoError(t, r.RecordDigest(&DigestEvent{RunID: run, Symbol: "INFY.NS", RSIState: "overbought", MACDState: "above", BandState: "inside", Alert: "RSI overbought (72.5)"}))
	require.NoError(t, r.RecordDigest(&DigestEvent{RunID: run, Symbol: "SBIN.NS"}))
	require.NoError(t, r.RecordDigest(&DigestEvent{RunID: NewRunID(), Symbol: "OTHER"}))

	rows, err := r.DigestRows(run)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "INFY.NS", rows[0].Symbol)
	assert.Equal(t, "overbought", rows[0].RSIState)
	assert.Equal(t, "above", rows[0].MACDState)
	assert.Equal(t, "RSI overbought (72.5)", rows[0].Alert)
	assert.Empty(t, rows[1].RSIState)
}

func TestSQLiteRecorder_DigestSchemaHoldsNoPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE digest_rows (run_id TEXT, symbol TEXT, last_close REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO digest_rows VALUES ('old', 'AAPL', 189.5)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	var legacy int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'digest_rows'`).Scan(&legacy))
	assert.Zero(t, legacy, "old price-bearing table must be dropped")

	rows, err := r.db.Query(`SELECT name, type FROM pragma_table_info('digest_signals')`)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		assert.NotEqual(t, "REAL", typ, "column %s stores a number", name)
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"id", "run_id", "timestamp", "symbol", "rsi_state", "macd_state", "band_state", "alert"}, cols)
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordAnalysis(NewAnalysisEvent("AAPL", "1mo", SourceTelegram)))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.RecentAnalyses(5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, SourceTelegram, got[0].Source)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordAnalysis(&AnalysisEvent{}))
	assert.NoError(t, r.RecordDigest(&DigestEvent{}))
	assert.NoError(t, r.Close())
}
