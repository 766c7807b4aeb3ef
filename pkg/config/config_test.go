package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/blelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bletap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "default", cfg.Flags)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, 10*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 256, cfg.BufferSize)
	assert.Equal(t, "off", cfg.Trace)
	assert.Equal(t, 16384, cfg.TraceBuffer)
	assert.NoError(t, cfg.Validate(), "defaults MUST be valid")

	flags, err := cfg.LogFlags()
	require.NoError(t, err)
	assert.Equal(t, blelog.DefaultFlags, flags)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
flags: device-status, characteristic-notify
format: json
scan_timeout: 3s
trace: stderr
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 3*time.Second, cfg.ScanTimeout)
	assert.Equal(t, "stderr", cfg.Trace)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout, "unset keys MUST keep defaults")
	assert.Equal(t, "auto", cfg.Color, "unset keys MUST keep defaults")

	flags, err := cfg.LogFlags()
	require.NoError(t, err)
	assert.Equal(t, blelog.DeviceStatus|blelog.CharacteristicNotify, flags)
}

func TestLoad_EmptyPathAndFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(writeConfig(t, ""))
	require.NoError(t, err, "empty file MUST yield defaults")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "unknown key", content: "colour: always\n", contains: "colour"},
		{name: "bad level", content: "log_level: chatty\n", contains: "log_level"},
		{name: "bad flags", content: "flags: device-status,bogus\n", contains: "flags"},
		{name: "bad format", content: "format: csv\n", contains: "format"},
		{name: "bad trace", content: "trace: file\n", contains: "trace"},
		{name: "bad duration", content: "scan_timeout: soon\n", contains: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Color = "sometimes"
	cfg.BufferSize = 0
	cfg.TraceBuffer = -1
	cfg.ConnectTimeout = -time.Second

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "color")
	assert.Contains(t, err.Error(), "buffer_size")
	assert.Contains(t, err.Error(), "trace_buffer")
	assert.Contains(t, err.Error(), "connect_timeout")
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected logrus.Level
	}{
		{name: "creates logger with debug level", level: "debug", expected: logrus.DebugLevel},
		{name: "creates logger with warn level", level: "warn", expected: logrus.WarnLevel},
		{name: "falls back to info", level: "", expected: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.expected, logger.GetLevel())

			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultConfig()
	}
}
