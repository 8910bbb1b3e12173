package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(dir, "logs", "image-compressor.log")

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	WithFileOperation(log, "images/a.png", "compress").Info("to file")

	b, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"to file"`)
	assert.Contains(t, string(b), `"operation":"compress"`)
	assert.Contains(t, string(b), `"file":"images/a.png"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilePath = ""
	cfg.Level = "debug"
	log, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestDefaultConfig_LogOutsideWorkingDir(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("HOME", cache)

	cfg := DefaultConfig()
	assert.False(t, cfg.Console)
	require.NotEmpty(t, cfg.FilePath)
	assert.True(t, filepath.IsAbs(cfg.FilePath), "got %s", cfg.FilePath)
	assert.Equal(t, "image-compressor.log", filepath.Base(cfg.FilePath))

	log, err := NewLogger(cfg)
	require.NoError(t, err)
	log.Info("cached")

	_, err = os.Stat(cfg.FilePath)
	assert.NoError(t, err)
	_, err = os.Stat("image-compressor.log")
	assert.True(t, os.IsNotExist(err))
}
