package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{
			name:        "debug level with text format",
			level:       "debug",
			format:      "text",
			expectLevel: logrus.DebugLevel,
		},
		{
			name:        "info level with json format",
			level:       "info",
			format:      "json",
			expectLevel: logrus.InfoLevel,
		},
		{
			name:        "error level",
			level:       "error",
			format:      "text",
			expectLevel: logrus.ErrorLevel,
		},
		{
			name:        "invalid level defaults to info",
			level:       "invalid",
			format:      "text",
			expectLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)
		})
	}
}

func TestLogrusAdapterOutput(t *testing.T) {
	var buf bytes.Buffer
	underlying := logrus.New()
	underlying.SetOutput(&buf)
	underlying.SetLevel(logrus.DebugLevel)
	logger := NewLogrusAdapterFromLogger(underlying)

	logger.Info("transaction linked", Field{Key: "transaction", Value: "T1"})
	output := buf.String()
	assert.Contains(t, output, "transaction linked")
	assert.Contains(t, output, "T1")
}

func TestLogrusAdapterWithError(t *testing.T) {
	var buf bytes.Buffer
	underlying := logrus.New()
	underlying.SetOutput(&buf)
	logger := NewLogrusAdapterFromLogger(underlying)

	logger.WithError(errors.New("boom")).Warn("split failed")
	output := buf.String()
	assert.Contains(t, output, "split failed")
	assert.Contains(t, output, "boom")
}

func TestLogrusAdapterWithFieldsChaining(t *testing.T) {
	var buf bytes.Buffer
	underlying := logrus.New()
	underlying.SetOutput(&buf)
	logger := NewLogrusAdapterFromLogger(underlying)

	derived := logger.WithField("component", "matching").WithFields(Field{Key: "trip", Value: 4})
	derived.Info("suggestion built")

	output := buf.String()
	assert.Contains(t, output, "matching")
	assert.Contains(t, output, "suggestion built")
}

func TestMockLoggerSharedEntries(t *testing.T) {
	mock := NewMockLogger()

	derived := mock.WithField("component", "split")
	derived.Warn("split rejected")
	mock.Info("direct entry")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.True(t, mock.HasEntry("WARN", "split rejected"), "derived logger entries surface on the parent")
	assert.True(t, mock.HasEntry("INFO", "direct entry"))
	assert.Equal(t, []Field{{Key: "component", Value: "split"}}, entries[0].Fields)
}

func TestMockLoggerWithError(t *testing.T) {
	mock := NewMockLogger()
	err := errors.New("boom")

	mock.WithError(err).Error("save failed")

	entries := mock.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, err, entries[0].Error)
}
