package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is a JSON object whose keys are matched exactly. encoding/json folds
// case when filling structs, so the chunk types decode through this instead.
type object map[string]json.RawMessage

func decodeObject(data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// optional decodes key into dst if the key is present.
func (o object) optional(key string, dst any) error {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// required decodes key into dst and fails if the key is missing or null.
func (o object) required(key string, dst any) error {
	raw, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("missing required field %q", key)
	}
	return o.optional(key, dst)
}

func (c *Chunk) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*c = Chunk{}
	if err := obj.required("choices", &c.Choices); err != nil {
		return err
	}
	return obj.optional("usage", &c.Usage)
}

// MarshalJSON always writes choices as an array so encoded chunks decode back.
func (c Chunk) MarshalJSON() ([]byte, error) {
	type wire Chunk
	w := wire(c)
	if w.Choices == nil {
		w.Choices = []ChunkChoice{}
	}
	return json.Marshal(w)
}

func (c *ChunkChoice) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*c = ChunkChoice{}
	if err := obj.required("delta", &c.Delta); err != nil {
		return err
	}
	return obj.optional("finish_reason", &c.FinishReason)
}

func (d *ChunkDelta) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*d = ChunkDelta{}
	if err := obj.optional("role", &d.Role); err != nil {
		return err
	}
	return obj.optional("content", &d.Content)
}

func (u *Usage) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*u = Usage{}
	for key, dst := range map[string]any{
		"prompt_tokens":             &u.PromptTokens,
		"completion_tokens":         &u.CompletionTokens,
		"total_tokens":              &u.TotalTokens,
		"prompt_tokens_details":     &u.PromptTokensDetails,
		"completion_tokens_details": &u.CompletionTokensDetails,
	} {
		if err := obj.optional(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *PromptTokensDetails) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*p = PromptTokensDetails{}
	return obj.optional("cached_tokens", &p.CachedTokens)
}

func (c *CompletionTokensDetails) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*c = CompletionTokensDetails{}
	return obj.optional("reasoning_tokens", &c.ReasoningTokens)
}
