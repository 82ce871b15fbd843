package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/logger"
	"StockLens/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--offline", "--no-color", "--log-level", "error"))
	err := root.Execute()
	return buf.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	return dir
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{fmt.Errorf("wrap: %w", collector.ErrInvalidSymbol), exitUsage},
		{fmt.Errorf("wrap: %w", model.ErrInvalidRange), exitUsage},
		{fmt.Errorf("%w: boom", collector.ErrFetch), exitError},
		{errors.New("other"), exitError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, dashboard.FetchErrorMessage, userMessage(fmt.Errorf("%w: upstream 500", collector.ErrFetch)))
	assert.Equal(t, "other", userMessage(errors.New("other")))
}

func TestTickersCommand(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "tickers")
	require.NoError(t, err)
	assert.Contains(t, out, "RELIANCE.NS")
	assert.Contains(t, out, "AXISBANK.NS")
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "analyze", "tcs.ns", "--period", "1mo", "--json")
	require.NoError(t, err)

	var body struct {
		View struct {
			Symbol     string            `json:"symbol"`
			KeyStats   []json.RawMessage `json:"key_statistics"`
			Indicators []json.RawMessage `json:"indicators"`
		} `json:"view"`
		Table struct {
			Bars []json.RawMessage `json:"bars"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "TCS.NS", body.View.Symbol)
	assert.Len(t, body.View.KeyStats, 5)
	assert.Len(t, body.View.Indicators, dashboard.IndicatorRowCount)
	assert.Len(t, body.Table.Bars, 21)
}

// captureStdio runs fn with the process stdout and stderr redirected to pipes.
func captureStdio(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	oldOut, oldErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	t.Cleanup(func() {
		os.Stdout, os.Stderr = oldOut, oldErr
		_ = logger.Init("error", "")
	})

	outCh, errCh := make(chan string, 1), make(chan string, 1)
	go func() { b, _ := io.ReadAll(outR); outCh <- string(b) }()
	go func() { b, _ := io.ReadAll(errR); errCh <- string(b) }()

	fn()
	os.Stdout, os.Stderr = oldOut, oldErr
	_ = outW.Close()
	_ = errW.Close()
	return <-outCh, <-errCh
}

func TestAnalyzeCommand_JSONStdoutIsClean(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "runs.db"))

	var runErr error
	stdout, stderr := captureStdio(t, func() {
		root := newRootCmd()
		root.SetArgs([]string{"analyze", "AAPL", "--period", "1mo", "--json", "--offline", "--log-level", "info"})
		runErr = root.Execute()
	})
	require.NoError(t, runErr)

	assert.True(t, json.Valid([]byte(stdout)), "stdout must hold only the JSON document")
	assert.NotContains(t, stdout, "[INFO]")
	assert.Contains(t, stderr, "sqlite recorder opened")
}

func TestAnalyzeCommand_Tables(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "analyze", "AAPL", "--period", "3mo", "--rows", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Technical Indicators")
	assert.Contains(t, out, "Financial Metrics")
	assert.Contains(t, out, "$")
}

func TestAnalyzeCommand_InvalidInput(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "analyze", "AAPL", "--period", "7w")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = runCLI(t, "analyze", "$$$")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestChartCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "out.png")

	out, err := runCLI(t, "chart", "INFY.NS", "--period", "3mo", "-o", path, "--width", "640", "--height", "480")
	require.NoError(t, err)
	assert.Contains(t, out, "chart written to")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
}

func TestDigestCommand(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("digest:\n  symbols: [AAPL]\n  period: 3mo\n"), 0o644))

	out, err := runCLI(t, "digest", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Last 3 Months")
	assert.Contains(t, out, "AAPL")
}

func TestRunsCommand(t *testing.T) {
	dir := isolate(t)

	_, err := runCLI(t, "runs")
	require.Error(t, err)

	t.Setenv("SQLITE_PATH", filepath.Join(dir, "runs.db"))
	_, err = runCLI(t, "analyze", "WIPRO.NS", "--period", "1mo", "--json")
	require.NoError(t, err)

	out, err := runCLI(t, "runs", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "WIPRO.NS")
	assert.Contains(t, out, "cli")
	assert.Contains(t, out, "ok")
}
