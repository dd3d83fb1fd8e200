package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	for _, line := range []string{
		`data: {"choices":[{"delta":{"role":"assistant","content":null},"finish_reason":null}]}`,
		`data: {"choices":[{"delta":{"role":null,"content":"Hello"},"finish_reason":null}]}`,
		`data: {"choices":[{"delta":{"content":", world"},"finish_reason":"stop"}]}`,
		`data: {"choices":[],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`,
		`data: [DONE]`,
	} {
		acc.Add(ParseLine(line, nil))
	}

	assert.Equal(t, "Hello, world", acc.Content())
	assert.Equal(t, []Message{{Role: "assistant", Content: "Hello, world", FinishReason: "stop"}}, acc.Messages())
	require.NotNil(t, acc.Usage())
	assert.Equal(t, 15, acc.Usage().TotalTokens)
}

func TestAccumulator_MultipleChoices(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(ParseLine(`data: {"choices":[{"delta":{"content":"a"}},{"delta":{"content":"x"}}]}`, nil))
	acc.Add(ParseLine(`data: {"choices":[{"delta":{"content":"b"}},{"delta":{"content":"y"}},{"delta":{"content":"1"}}]}`, nil))

	msgs := acc.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "ab", msgs[0].Content)
	assert.Equal(t, "xy", msgs[1].Content)
	assert.Equal(t, "1", msgs[2].Content)
}

func TestAccumulator_Empty(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(nil)

	assert.Empty(t, acc.Content())
	assert.Empty(t, acc.Messages())
	assert.Nil(t, acc.Usage())
}
