package errorsink

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink_Capture(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	sink.Capture(errors.New("boom"), map[string]string{"handler": "propose_downstream", "branch": "f35"})

	out := buf.String()
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "handler=propose_downstream")
	assert.Contains(t, out, "branch=f35")
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, &LogSink{}, New("", logger))
	assert.IsType(t, &LogSink{}, New("not a dsn", logger))

	sink := New("https://public@sentry.example.com/1", logger)
	require.IsType(t, &SentrySink{}, sink)
	sink.Capture(errors.New("boom"), map[string]string{"task": "copr_build"})
}
