package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markis/gh-copilot-chat/internal/stream"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "key", "value")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "value")
	assert.Contains(t, buf.String(), prefix)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(nil, "loud")
	assert.Error(t, err)
}

func TestNew_ServesStreamDecoder(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug")
	require.NoError(t, err)

	assert.Nil(t, stream.ParseLine("data: [DONE]", logger))
	assert.Contains(t, buf.String(), "stream finished")

	buf.Reset()
	assert.Nil(t, stream.ParseLine("retry: 100", logger))
	assert.Contains(t, buf.String(), "unexpected line")
	assert.Contains(t, buf.String(), "retry: 100")
}
