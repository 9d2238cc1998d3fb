package executor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/sandbox"
	"github.com/scaffoldlab/scaffbox/scaffold"
	"github.com/scaffoldlab/scaffbox/scoring"
)

// Executor runs scaffolds in the sandbox and grades their outputs.
type Executor struct {
	runner  sandbox.Runner
	logger  *zap.Logger
	workers int
}

// New creates an Executor with a bounded worker pool.
func New(runner sandbox.Runner, logger *zap.Logger, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		runner:  runner,
		logger:  logger,
		workers: workers,
	}
}

// RunSpec names one scaffold and the batch of examples to grade it on.
type RunSpec struct {
	ScaffoldID    string
	ScaffoldDir   string
	Code          string
	ExecutorModel string
	Examples      []dataset.Example
	Score         scoring.Func
	// LogPath, when set, names the file the execution log for example i
	// is written to.
	LogPath func(i int) string
}

// Report aggregates one scaffold's batch evaluation.
type Report struct {
	// Score is the mean over all examples.
	Score  float64
	Scores []float64
	// Runs holds per-example feedback data in example order.
	Runs []scaffold.RunData
	// SampleOutput and SampleLog come from the first example.
	SampleOutput string
	SampleLog    string
}

// Run evaluates the scaffold against every example and returns the mean
// score. Per-example failures are logged and scored zero.
func (e *Executor) Run(ctx context.Context, spec RunSpec) (Report, error) {
	if len(spec.Examples) == 0 {
		return Report{}, fmt.Errorf("no examples to evaluate scaffold %s", spec.ScaffoldID)
	}

	runs := make([]scaffold.RunData, len(spec.Examples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, ex := range spec.Examples {
		g.Go(func() error {
			runs[i] = e.runOne(ctx, spec, i, ex)
			return nil
		})
	}

	// Workers never return errors; failures become zero scores.
	_ = g.Wait()

	report := Report{
		Scores:       make([]float64, len(runs)),
		Runs:         runs,
		SampleOutput: runs[0].ActualOutput,
		SampleLog:    runs[0].ExecutionLog,
	}

	total := 0.0
	for i, run := range runs {
		report.Scores[i] = run.Score
		total += run.Score
	}
	report.Score = total / float64(len(runs))

	e.logger.Info("scaffold evaluated",
		zap.String("scaffold_id", spec.ScaffoldID),
		zap.Int("examples", len(runs)),
		zap.Float64("mean_score", report.Score))

	return report, nil
}

func (e *Executor) runOne(ctx context.Context, spec RunSpec, idx int, ex dataset.Example) scaffold.RunData {
	run := scaffold.RunData{
		Code:    spec.Code,
		Example: ex,
	}

	result, err := e.runner.RunScaffold(ctx, sandbox.ScaffoldRequest{
		ScaffoldDir:   spec.ScaffoldDir,
		Input:         ex.Input,
		ExecutorModel: spec.ExecutorModel,
	})
	if err != nil {
		e.logger.Warn("scaffold launch failed",
			zap.String("scaffold_id", spec.ScaffoldID),
			zap.String("example_id", ex.ID),
			zap.Error(err))
		run.ExecutionLog = fmt.Sprintf("launch failed: %v", err)
		e.writeLog(spec, idx, ex, sandbox.ExecutionResult{}, run.ExecutionLog)
		return run
	}

	run.ActualOutput = strings.TrimSpace(result.Stdout)
	run.ExecutionLog = result.Stderr

	errMsg := ""
	switch result.Outcome {
	case sandbox.OutcomeSuccess:
		score, scoreErr := spec.Score(ctx, run.ActualOutput, ex.ScoringData)
		if scoreErr != nil {
			e.logger.Warn("scoring failed",
				zap.String("scaffold_id", spec.ScaffoldID),
				zap.String("example_id", ex.ID),
				zap.Error(scoreErr))
			errMsg = fmt.Sprintf("scoring failed: %v", scoreErr)
		} else {
			run.Score = score
		}
	default:
		e.logger.Warn("scaffold execution failed",
			zap.String("scaffold_id", spec.ScaffoldID),
			zap.String("example_id", ex.ID),
			zap.Stringer("outcome", result.Outcome),
			zap.String("error", result.ErrorMessage))
		errMsg = result.ErrorMessage
	}

	e.writeLog(spec, idx, ex, result, errMsg)
	return run
}

func (e *Executor) writeLog(spec RunSpec, idx int, ex dataset.Example, result sandbox.ExecutionResult, errMsg string) {
	if spec.LogPath == nil {
		return
	}
	path := spec.LogPath(idx)
	if err := WriteExecutionLog(path, spec.ExecutorModel, ex.Input, result, errMsg); err != nil {
		e.logger.Warn("failed to write execution log",
			zap.String("path", path), zap.Error(err))
	}
}
