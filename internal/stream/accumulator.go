package stream

import "strings"

// Message is the accumulated state of one choice.
type Message struct {
	Role         string
	Content      string
	FinishReason string
}

// Accumulator folds chunks into per-choice messages. Choices are matched by
// their position in the chunk's choices list.
type Accumulator struct {
	roles   []string
	content []*strings.Builder
	finish  []string
	usage   *Usage
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add folds chunk into the accumulated state. A nil chunk is ignored.
func (a *Accumulator) Add(chunk *Chunk) {
	if chunk == nil {
		return
	}

	for i, choice := range chunk.Choices {
		a.grow(i + 1)
		if choice.Delta.Role != nil {
			a.roles[i] = *choice.Delta.Role
		}
		if choice.Delta.Content != nil {
			a.content[i].WriteString(*choice.Delta.Content)
		}
		if choice.FinishReason != nil {
			a.finish[i] = *choice.FinishReason
		}
	}

	if chunk.Usage != nil {
		u := *chunk.Usage
		a.usage = &u
	}
}

func (a *Accumulator) grow(n int) {
	for len(a.roles) < n {
		a.roles = append(a.roles, "")
		a.content = append(a.content, &strings.Builder{})
		a.finish = append(a.finish, "")
	}
}

// Messages returns a snapshot of every choice seen so far.
func (a *Accumulator) Messages() []Message {
	msgs := make([]Message, len(a.roles))
	for i := range a.roles {
		msgs[i] = Message{
			Role:         a.roles[i],
			Content:      a.content[i].String(),
			FinishReason: a.finish[i],
		}
	}
	return msgs
}

// Content returns the text of the first choice.
func (a *Accumulator) Content() string {
	if len(a.content) == 0 {
		return ""
	}
	return a.content[0].String()
}

// Usage returns the usage reported by the stream, or nil if none arrived.
func (a *Accumulator) Usage() *Usage {
	return a.usage
}
