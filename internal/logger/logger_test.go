package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(logrus.DebugLevel, &buf)
	l.WithField("symbol", "AAPL").Warn("fetch slow")

	line := buf.String()
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[WARN\] \[logger_test\.go:\d+\] fetch slow symbol=AAPL\n$`, line)
}

func TestInit_LevelAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stocklens.log")
	require.NoError(t, Init("warn", path))
	t.Cleanup(func() { Log = newLogger(logrus.InfoLevel, os.Stderr) })

	Log.Info("hidden")
	Log.Error("shown")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "[ERRO]")
}

func TestInit_UnknownLevel(t *testing.T) {
	require.NoError(t, Init("chatty", ""))
	t.Cleanup(func() { Log = newLogger(logrus.InfoLevel, os.Stderr) })
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestInit_WritesToStderr(t *testing.T) {
	oldErr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	t.Cleanup(func() {
		os.Stderr = oldErr
		Log = newLogger(logrus.InfoLevel, os.Stderr)
	})

	require.NoError(t, Init("info", ""))
	Log.Info("to stderr")
	os.Stderr = oldErr
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "to stderr")
}
