package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bletap/pkg/config"
	"github.com/srg/bletap/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "bluetooth off",
			err:      fmt.Errorf("open: %w", device.ErrBluetoothOff),
			expected: "Bluetooth is turned off; turn it on and try again",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("connect: %w", device.ErrTimeout),
			expected: "timed out: connect: " + device.ErrTimeout.Error(),
		},
		{
			name:     "invalid config",
			err:      fmt.Errorf("%w: format", config.ErrInvalidConfig),
			expected: config.ErrInvalidConfig.Error() + ": format (see --config)",
		},
		{
			name:     "other",
			err:      errors.New("boom"),
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUserError(tt.err))
		})
	}
}

func newLoggerCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Bool("verbose", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestConfigureLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	tests := []struct {
		name     string
		args     []string
		expected logrus.Level
	}{
		{name: "config level", expected: logrus.WarnLevel},
		{name: "verbose", args: []string{"--verbose"}, expected: logrus.DebugLevel},
		{name: "log level wins over verbose", args: []string{"--verbose", "--log-level", "error"}, expected: logrus.ErrorLevel},
		{name: "log level", args: []string{"--log-level", "info"}, expected: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := configureLogger(newLoggerCommand(t, tt.args...), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}

	_, err := configureLogger(newLoggerCommand(t, "--log-level", "trace"), cfg)
	assert.ErrorContains(t, err, "invalid log level: trace")
}
