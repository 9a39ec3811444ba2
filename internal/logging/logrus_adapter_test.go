package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level falls back to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.Level())

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_FieldsAndErrors(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.
		WithField(FieldParser, "csv").
		WithFields(Field{Key: FieldRows, Value: 3}).
		WithError(errors.New("boom")).
		Error("parse failed", Field{Key: FieldFile, Value: "export.csv"})

	out := buf.String()
	assert.Contains(t, out, "parse failed")
	assert.Contains(t, out, "parser=csv")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "file_path=export.csv")
	assert.Contains(t, out, "boom")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{
		{Key: "a", Value: "x"},
		{Key: "b", Value: 42},
	})
	assert.Len(t, fields, 2)
	assert.Equal(t, 42, fields["b"])
	assert.Empty(t, convertFields(nil))
}

func TestDefaultAndOrDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Same(t, Default(), OrDefault(nil))

	mock := NewMockLogger()
	assert.Same(t, Logger(mock), OrDefault(mock))
	assert.NotNil(t, Discard())
}

func TestMockLogger_SharesEntriesWithDerived(t *testing.T) {
	mock := NewMockLogger()
	derived := mock.WithField(FieldRowID, "row-1").WithError(errors.New("x"))

	derived.Warn("low confidence")
	mock.Info("done")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldRowID, Value: "row-1"}}, entries[0].Fields)
	assert.EqualError(t, entries[0].Error, "x")
	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.EntriesByLevel("WARN"), 1)
}

var _ Logger = (*LogrusAdapter)(nil)
var _ Logger = (*MockLogger)(nil)
