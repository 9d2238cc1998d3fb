package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scaffoldlab/scaffbox/sandbox"
)

// Func grades one scaffold output against an example's scoring data. The
// returned score lies in [0, 1]. An error means the grade could not be
// computed at all; callers decide whether that counts as zero.
type Func func(ctx context.Context, output string, scoringData map[string]any) (float64, error)

// Option defines a functional option for the scoring registry
type Option func(*options)

type options struct {
	runner        sandbox.Runner
	logger        *zap.Logger
	crosswordMode string
}

// WithRunner supplies the sandbox used by execution-based domains
func WithRunner(runner sandbox.Runner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// WithLogger attaches a logger to scoring functions that log
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCrosswordMode selects "strict" or "lenient" square scoring
func WithCrosswordMode(mode string) Option {
	return func(o *options) {
		o.crosswordMode = mode
	}
}

// New returns the scoring function for a domain.
func New(domain string, opts ...Option) (Func, error) {
	o := &options{
		logger:        zap.NewNop(),
		crosswordMode: ModeStrict,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch domain {
	case "crosswords":
		if o.crosswordMode != ModeStrict && o.crosswordMode != ModeLenient {
			return nil, fmt.Errorf("unknown crossword mode: %s", o.crosswordMode)
		}
		return Crosswords(o.crosswordMode), nil
	case "mcq", "gpqa", "human-preference":
		return MultipleChoice(), nil
	case "codeforces":
		if o.runner == nil {
			return nil, fmt.Errorf("codeforces scoring requires a sandbox runner")
		}
		return Codeforces(o.runner, o.logger), nil
	default:
		return nil, fmt.Errorf("unsupported domain: %s", domain)
	}
}
