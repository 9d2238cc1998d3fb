// Package sandbox provides secure execution of untrusted scaffold code.
//
// The LocalRunner runs scaffolds directly on the host with no isolation
// beyond the wall-clock timeout. It exists for development and tests only
// and must be explicitly enabled in configuration.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LocalRunner implements Runner by invoking the host python interpreter.
type LocalRunner struct {
	logger    *zap.Logger
	config    *Config
	cmdRunner CommandRunner
}

// LocalRunnerOption defines a functional option for LocalRunner
type LocalRunnerOption func(*LocalRunner)

// WithLocalCommandRunner sets the CommandRunner for LocalRunner
func WithLocalCommandRunner(cmdRunner CommandRunner) LocalRunnerOption {
	return func(l *LocalRunner) {
		l.cmdRunner = cmdRunner
	}
}

// NewLocalRunner creates a LocalRunner.
func NewLocalRunner(logger *zap.Logger, config *Config, opts ...LocalRunnerOption) *LocalRunner {
	l := &LocalRunner{
		logger:    logger,
		config:    config,
		cmdRunner: &RealCommandRunner{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// RunScaffold executes the scaffold with the host interpreter. The harness
// is the same script the container backends use, with the scaffold
// directory prepended to sys.path in place of the container mount point.
func (l *LocalRunner) RunScaffold(ctx context.Context, req ScaffoldRequest) (ExecutionResult, error) {
	timeoutSec := req.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = l.config.TimeoutSec
	}

	l.logger.Warn("running scaffold without isolation (local backend)")

	harness := fmt.Sprintf("import sys\nsys.path.insert(0, %s)\n%s",
		pyLiteral(req.ScaffoldDir), scaffoldHarness(req.Input))

	return l.run(ctx, harness, time.Duration(timeoutSec)*time.Second)
}

// RunTests judges a program with the host interpreter.
func (l *LocalRunner) RunTests(ctx context.Context, req TestRequest) (ExecutionResult, error) {
	if len(req.TestCases) == 0 {
		return ExecutionResult{}, fmt.Errorf("no test cases provided")
	}

	memoryMB := req.MemoryMB
	if memoryMB <= 0 {
		memoryMB = l.config.MemoryMB
	}
	timeLimit := req.TimeLimitSec
	if timeLimit <= 0 {
		timeLimit = 2.0
	}

	l.logger.Warn("judging code without isolation (local backend)")

	script := judgeScript(req.Code, req.TestCases, timeLimit, memoryMB)
	wallTimeout := time.Duration(timeLimit*float64(len(req.TestCases))+10) * time.Second

	result, err := l.run(ctx, script, wallTimeout)
	if err != nil {
		return ExecutionResult{}, err
	}
	if result.Outcome != OutcomeSuccess {
		return result, nil
	}

	classified := classifyJudgeOutput(result.Stdout, result.Stderr)
	classified.Duration = result.Duration
	return classified, nil
}

func (l *LocalRunner) run(ctx context.Context, script string, timeout time.Duration) (ExecutionResult, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := l.cmdRunner.RunCommand(ctxWithTimeout, []string{"python3", "-c", script})
	duration := time.Since(start)

	if ctxWithTimeout.Err() == context.DeadlineExceeded {
		return ExecutionResult{
			Outcome:      OutcomeTimeout,
			Stdout:       stdout,
			Stderr:       stderr,
			ErrorMessage: fmt.Sprintf("execution timed out after %s", timeout),
			Duration:     duration,
		}, nil
	}

	if err != nil {
		return ExecutionResult{}, fmt.Errorf("failed to execute python: %w", err)
	}

	if exitCode != 0 {
		return ExecutionResult{
			Outcome:      OutcomeRuntimeError,
			Stdout:       stdout,
			Stderr:       stderr,
			ErrorMessage: fmt.Sprintf("process exited with code %d", exitCode),
			Duration:     duration,
		}, nil
	}

	return ExecutionResult{
		Outcome:  OutcomeSuccess,
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: duration,
	}, nil
}
