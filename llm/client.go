package llm

import "context"

// Response is a single model completion. Thinking holds any reasoning
// content the model emitted separately from its answer; it may be empty.
type Response struct {
	Content  string `json:"content"`
	Thinking string `json:"thinking,omitempty"`
}

// Client generates completions from a language model.
type Client interface {
	// Generate sends prompt (and an optional system prompt; pass "" for
	// none) and returns the model's response. Errors are *TransientError
	// or *FatalError.
	Generate(ctx context.Context, prompt, systemPrompt string) (Response, error)

	// Model returns the model identifier used for metadata records.
	Model() string
}
