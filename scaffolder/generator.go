package scaffolder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/llm"
	"github.com/scaffoldlab/scaffbox/scaffold"
)

// Generator asks the scaffolder LLM for candidate programs.
type Generator struct {
	client     llm.Client
	logger     *zap.Logger
	domain     string
	timeoutSec int
}

// Option defines a functional option for Generator
type Option func(*Generator)

// WithDomain adds domain-specific instructions to every prompt
func WithDomain(domain string) Option {
	return func(g *Generator) {
		g.domain = domain
	}
}

// WithScaffoldTimeout sets the runtime budget advertised in prompts
func WithScaffoldTimeout(seconds int) Option {
	return func(g *Generator) {
		g.timeoutSec = seconds
	}
}

// New creates a Generator backed by the given LLM client.
func New(client llm.Client, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:     client,
		logger:     logger,
		timeoutSec: 120,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate produces an initial-population scaffold from training examples.
func (g *Generator) Generate(ctx context.Context, examples []dataset.Example, iteration int) (scaffold.Result, error) {
	if len(examples) == 0 {
		return scaffold.Result{}, fmt.Errorf("no training examples provided")
	}

	prompt := GeneratePrompt(examples, g.domain, g.timeoutSec)
	return g.request(ctx, prompt, "", iteration)
}

// Evolve produces a child scaffold from a parent's execution feedback. All
// runs must come from the same parent; parentID is recorded in the child's
// metadata.
func (g *Generator) Evolve(ctx context.Context, runs []scaffold.RunData, parentID string, iteration int) (scaffold.Result, error) {
	if len(runs) == 0 {
		return scaffold.Result{}, fmt.Errorf("no run data provided for parent %s", parentID)
	}

	prompt := EvolvePrompt(runs, g.domain, g.timeoutSec)
	return g.request(ctx, prompt, parentID, iteration)
}

func (g *Generator) request(ctx context.Context, prompt, parentID string, iteration int) (scaffold.Result, error) {
	resp, err := g.client.Generate(ctx, prompt, "")
	if err != nil {
		return scaffold.Result{}, fmt.Errorf("scaffolder call failed: %w", err)
	}

	code, err := ExtractCode(resp.Content)
	if err != nil {
		g.logger.Warn("scaffolder response contained no code",
			zap.String("parent_id", parentID),
			zap.Int("response_len", len(resp.Content)))
		return scaffold.Result{}, fmt.Errorf("extract scaffold code: %w", err)
	}

	g.logger.Debug("scaffold generated",
		zap.String("parent_id", parentID),
		zap.Int("iteration", iteration),
		zap.Int("code_len", len(code)))

	return scaffold.Result{
		Code: code,
		Metadata: scaffold.Metadata{
			CreatedAt:          time.Now().UTC(),
			Model:              g.client.Model(),
			ParentID:           parentID,
			Iteration:          iteration,
			ScaffolderPrompt:   prompt,
			ScaffolderResponse: &resp,
		},
	}, nil
}
