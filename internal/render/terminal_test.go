package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markis/gh-copilot-chat/internal/stream"
)

func eventsFromLines(lines ...string) <-chan stream.Event {
	events := make(chan stream.Event, len(lines))
	for _, line := range lines {
		result := stream.Decode(line, nil)
		switch result.Kind {
		case stream.Parsed:
			events <- stream.Event{Chunk: result.Chunk}
		case stream.StreamEnded:
			events <- stream.Event{Done: true}
		}
	}
	close(events)
	return events
}

func TestRender_PlainText(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, true, 80)

	acc, err := r.Render(eventsFromLines(
		`data: {"choices":[{"delta":{"role":"assistant","content":null},"finish_reason":null}]}`,
		`data: {"choices":[{"delta":{"content":"Hello"},"finish_reason":null}]}`,
		`data: {"choices":[{"delta":{"content":"\n\nsecond"},"finish_reason":"stop"}]}`,
		`data: {"choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`,
		`data: [DONE]`,
	))
	require.NoError(t, err)

	assert.Equal(t, "Hello\n\nsecond\n", out.String())
	assert.Equal(t, "Hello\n\nsecond", acc.Content())
	require.NotNil(t, acc.Usage())
	assert.Equal(t, 6, acc.Usage().TotalTokens)
}

func TestRender_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, false, 80)

	_, err := r.Render(eventsFromLines(
		`data: {"choices":[{"delta":{"content":"some **bold** words\n\n"}}]}`,
		`data: {"choices":[{"delta":{"content":"tail"}}]}`,
	))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "bold")
	assert.Contains(t, out.String(), "tail")
}

func TestRender_StreamError(t *testing.T) {
	events := make(chan stream.Event, 1)
	events <- stream.Event{Error: errors.New("boom")}
	close(events)

	_, err := NewRenderer(&bytes.Buffer{}, true, 80).Render(events)
	assert.ErrorContains(t, err, "boom")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRender_WriteErrorDrainsEvents(t *testing.T) {
	events := make(chan stream.Event)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(events)
		for _, content := range []string{"one\\n\\n", "two\\n\\n", "three", "four"} {
			events <- stream.Event{Chunk: stream.ParseLine(`data: {"choices":[{"delta":{"content":"`+content+`"}}]}`, nil)}
		}
		events <- stream.Event{Done: true}
	}()

	_, err := NewRenderer(failingWriter{}, true, 80).Render(events)
	assert.ErrorContains(t, err, "broken pipe")

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked after render error")
	}
}

func TestFindMarkdownBreakPoint(t *testing.T) {
	assert.Equal(t, -1, findMarkdownBreakPoint("no break"))
	assert.Equal(t, 6, findMarkdownBreakPoint("a\n\nb\n\nc"))
}
