package logging

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", AdditionalWriters: []io.Writer{&buf}})
	sub := logger.Subscribe(context.Background())

	logger.Warn("ignoring saved column widths", "saved", 2, "columns", 4)

	got := logger.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "WARN", got[0].Level)
	assert.Equal(t, "ignoring saved column widths", got[0].Message)
	assert.Equal(t, []Attr{{Key: "saved", Value: "2"}, {Key: "columns", Value: "4"}}, got[0].Attributes)
	assert.Equal(t, "WARN ignoring saved column widths saved=2 columns=4", got[0].String())

	event := <-sub
	assert.Equal(t, got[0], event.Payload)
	assert.Contains(t, buf.String(), "ignoring saved column widths")
}

func TestLogger_Level(t *testing.T) {
	logger := NewLogger(Options{Level: "warn"})

	logger.Info("hidden")
	logger.Error("shown")

	got := logger.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0].Message)
}

func TestValidLevels(t *testing.T) {
	assert.Equal(t, []string{"info", "debug", "error", "warn"}, ValidLevels())
}
