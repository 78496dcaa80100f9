package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NopBeforeInit(t *testing.T) {
	SetLogger(zap.NewNop())
	assert.NotPanics(t, func() {
		Info("msg")
		Debug("msg")
	})
}

func TestSetLogger_RoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Warn("внимание", zap.String("k", "v"))
	Error("ошибка")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "внимание", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}

func TestInit_WritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		File:     filepath.Join(dir, "app.log"),
		JSONFile: filepath.Join(dir, "app.json.log"),
		Level:    zapcore.InfoLevel,
		Truncate: true,
	}
	require.NoError(t, os.WriteFile(opts.JSONFile, []byte("old line\n"), 0644))

	require.NoError(t, Init(opts))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Info("hello")
	Sync()

	jsonData, err := os.ReadFile(opts.JSONFile)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), "old line")
	assert.Contains(t, string(jsonData), `"msg":"hello"`)

	text, err := os.ReadFile(opts.File)
	require.NoError(t, err)
	assert.Contains(t, string(text), "hello")
}

func TestInit_NoFilesIsNop(t *testing.T) {
	require.NoError(t, Init(Options{}))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	assert.NotPanics(t, func() { Info("dropped") })
}
