package stream

import "context"

// Chunk is one decoded unit of a streamed chat-completion response.
// Content chunks carry choices and no usage; the final chunk of a stream may
// carry usage and no choices.
type Chunk struct {
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is the incremental update for one candidate completion.
type ChunkChoice struct {
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta is the role/content fragment carried by a choice.
type ChunkDelta struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// Usage is the token accounting sent once, on the last chunk of a stream.
type Usage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	TotalTokens             int                      `json:"total_tokens"`
	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// IsUsage reports whether the chunk is a terminal usage-only chunk.
func (c *Chunk) IsUsage() bool {
	return c != nil && len(c.Choices) == 0 && c.Usage != nil
}

// Event is one item delivered by a Parser: a chunk, the end of the stream,
// or an error that stopped the stream.
type Event struct {
	Chunk *Chunk
	Done  bool
	Error error
}

// Parser turns a streaming response body into events
type Parser struct {
	ctx    context.Context
	logger Logger
	events chan Event
}

func NewParser(ctx context.Context, logger Logger) *Parser {
	return &Parser{
		ctx:    ctx,
		logger: logger,
		events: make(chan Event),
	}
}

func (p *Parser) Events() <-chan Event {
	return p.events
}
