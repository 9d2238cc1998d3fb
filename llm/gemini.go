package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client. The API
// key is read from the environment (GEMINI_API_KEY / GOOGLE_API_KEY) by the
// genai SDK itself.
type GeminiClient struct {
	cli    *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a client for the given model.
func NewGeminiClient(ctx context.Context, model string, logger *zap.Logger) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model, logger: logger}, nil
}

// Model returns the model identifier.
func (g *GeminiClient) Model() string { return g.model }

// Generate sends one prompt and returns the model response.
func (g *GeminiClient) Generate(ctx context.Context, prompt, systemPrompt string) (Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}

	g.logger.Debug("llm request",
		zap.String("model", g.model),
		zap.Int("prompt_bytes", len(prompt)))

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
	if err != nil {
		return Response{}, classifyGenaiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, &TransientError{Err: errors.New("model returned no candidates")}
	}

	var content, thinking strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if part.Thought {
			thinking.WriteString(part.Text)
		} else {
			content.WriteString(part.Text)
		}
	}

	if content.Len() == 0 {
		return Response{}, &TransientError{Err: errors.New("model returned empty content")}
	}

	return Response{Content: content.String(), Thinking: thinking.String()}, nil
}

// classifyGenaiError maps API failures into the transient/fatal taxonomy.
func classifyGenaiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransientError{Err: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return &TransientError{Err: err}
		default:
			return &FatalError{Err: err}
		}
	}

	// Network-level failures without an API status are worth retrying.
	return &TransientError{Err: err}
}
