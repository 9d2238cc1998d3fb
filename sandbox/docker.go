package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Environment variables forwarded into scaffold containers so the scaffold
// can reach its executor LLM.
var forwardedEnvKeys = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"}

// ContainerRunner implements Runner using the docker (or podman) CLI.
type ContainerRunner struct {
	logger    *zap.Logger
	config    *Config
	binary    string
	cmdRunner CommandRunner
	fs        FileSystem
	env       func(string) (string, bool)
}

// ContainerRunnerOption defines a functional option for ContainerRunner
type ContainerRunnerOption func(*ContainerRunner)

// WithCommandRunner sets the CommandRunner for ContainerRunner
func WithCommandRunner(cmdRunner CommandRunner) ContainerRunnerOption {
	return func(r *ContainerRunner) {
		r.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem for ContainerRunner
func WithFileSystem(fs FileSystem) ContainerRunnerOption {
	return func(r *ContainerRunner) {
		r.fs = fs
	}
}

// WithEnvLookup sets the environment lookup used for key forwarding
func WithEnvLookup(lookup func(string) (string, bool)) ContainerRunnerOption {
	return func(r *ContainerRunner) {
		r.env = lookup
	}
}

// NewContainerRunner creates a runner that shells out to the given
// container binary ("docker" or "podman").
func NewContainerRunner(logger *zap.Logger, config *Config, binary string, opts ...ContainerRunnerOption) *ContainerRunner {
	r := &ContainerRunner{
		logger:    logger,
		config:    config,
		binary:    binary,
		cmdRunner: &RealCommandRunner{},
		fs:        &RealFileSystem{},
		env:       os.LookupEnv,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunScaffold executes a scaffold against one input. The scaffold
// directory is mounted read-only; stdout carries the scaffold's answer and
// stderr its execution log.
func (r *ContainerRunner) RunScaffold(ctx context.Context, req ScaffoldRequest) (ExecutionResult, error) {
	timeoutSec := req.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = r.config.TimeoutSec
	}
	memoryMB := req.MemoryMB
	if memoryMB <= 0 {
		memoryMB = r.config.MemoryMB
	}

	containerName := fmt.Sprintf("scaffbox-run-%d", time.Now().UnixNano())

	cmdArgs := []string{
		r.binary, "run",
		"--rm",
		"--name", containerName,
		"-v", fmt.Sprintf("%s:/workspace/scaffold:ro", req.ScaffoldDir),
		// Double the requested memory: the in-sandbox limit fires first and
		// the container ceiling is only a backstop against measurement slack.
		"--memory", fmt.Sprintf("%dm", memoryMB*2),
		"--memory-swap", fmt.Sprintf("%dm", memoryMB*2),
		"--cpus", fmt.Sprintf("%g", r.config.CPUs),
		"--pids-limit", "100",
		"--security-opt", "no-new-privileges",
		"--cap-drop", "ALL",
	}

	if r.config.NetworkEnabled {
		cmdArgs = append(cmdArgs, "--network", "bridge")
	} else {
		cmdArgs = append(cmdArgs, "--network", "none")
	}

	// Forward .env and API keys so the scaffold can call its executor LLM.
	if exists, _ := r.fs.FileExists(".env"); exists {
		cmdArgs = append(cmdArgs, "--env-file", ".env")
	}
	for _, key := range forwardedEnvKeys {
		if value, ok := r.env(key); ok {
			cmdArgs = append(cmdArgs, "-e", fmt.Sprintf("%s=%s", key, value))
		}
	}
	cmdArgs = append(cmdArgs, "-e", fmt.Sprintf("EXECUTOR_MODEL_SPEC=%s", req.ExecutorModel))

	cmdArgs = append(cmdArgs, r.config.Image, "python", "-c", scaffoldHarness(req.Input))

	r.logger.Debug("launching scaffold container",
		zap.String("container", containerName),
		zap.Int("timeout_sec", timeoutSec),
		zap.Int("memory_mb", memoryMB))

	result, err := r.execute(ctx, cmdArgs, containerName, time.Duration(timeoutSec)*time.Second)
	if err != nil {
		return ExecutionResult{}, err
	}
	if result.Outcome == OutcomeTimeout {
		return result.ExecutionResult, nil
	}

	// Exit status classifies the scaffold run: the harness exits non-zero on
	// any exception, with the traceback on stderr.
	if result.exitCode != 0 {
		return ExecutionResult{
			Outcome:      OutcomeRuntimeError,
			Stdout:       result.Stdout,
			Stderr:       result.Stderr,
			ErrorMessage: fmt.Sprintf("scaffold exited with code %d", result.exitCode),
			Duration:     result.Duration,
		}, nil
	}

	return ExecutionResult{
		Outcome:  OutcomeSuccess,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Duration: result.Duration,
	}, nil
}

// RunTests judges a program against a test suite inside a locked-down
// container (no network, read-only rootfs). The judge prints one JSON
// report on stdout.
func (r *ContainerRunner) RunTests(ctx context.Context, req TestRequest) (ExecutionResult, error) {
	if len(req.TestCases) == 0 {
		return ExecutionResult{}, fmt.Errorf("no test cases provided")
	}

	memoryMB := req.MemoryMB
	if memoryMB <= 0 {
		memoryMB = r.config.MemoryMB
	}
	timeLimit := req.TimeLimitSec
	if timeLimit <= 0 {
		timeLimit = 2.0
	}

	// Budget for the whole suite plus container startup.
	wallTimeout := time.Duration(timeLimit*float64(len(req.TestCases))+10) * time.Second
	containerName := fmt.Sprintf("scaffbox-judge-%d", time.Now().UnixNano())

	cmdArgs := []string{
		r.binary, "run",
		"--rm",
		"--name", containerName,
		"--read-only",
		"--tmpfs", "/tmp:size=100M,noexec",
		"--memory", fmt.Sprintf("%dm", memoryMB*2),
		"--memory-swap", fmt.Sprintf("%dm", memoryMB*2),
		"--cpus", "1.0",
		"--pids-limit", "100",
		"--security-opt", "no-new-privileges",
		"--cap-drop", "ALL",
		"--user", "nobody",
		"--network", "none",
		r.config.JudgeImage,
		"python", "-c", judgeScript(req.Code, req.TestCases, timeLimit, memoryMB),
	}

	r.logger.Debug("launching judge container",
		zap.String("container", containerName),
		zap.Int("test_cases", len(req.TestCases)),
		zap.Float64("time_limit_sec", timeLimit))

	result, err := r.execute(ctx, cmdArgs, containerName, wallTimeout)
	if err != nil {
		return ExecutionResult{}, err
	}
	if result.Outcome == OutcomeTimeout {
		return result.ExecutionResult, nil
	}

	// 124 is the conventional timed-out exit status.
	if result.exitCode == 124 {
		return ExecutionResult{
			Outcome:      OutcomeTimeout,
			Stdout:       result.Stdout,
			Stderr:       result.Stderr,
			ErrorMessage: "judge timed out inside the container",
			Duration:     result.Duration,
		}, nil
	}

	if result.exitCode != 0 {
		return ExecutionResult{
			Outcome:      OutcomeRuntimeError,
			Stdout:       result.Stdout,
			Stderr:       result.Stderr,
			ErrorMessage: fmt.Sprintf("judge exited with code %d", result.exitCode),
			Duration:     result.Duration,
		}, nil
	}

	classified := classifyJudgeOutput(result.Stdout, result.Stderr)
	classified.Duration = result.Duration
	return classified, nil
}

// rawResult carries the process outcome before classification.
type rawResult struct {
	ExecutionResult
	exitCode int
}

// execute runs the container command under a wall-clock deadline enforced
// here, independent of any in-container timeout, so a hung container
// cannot block the run. On deadline the container is force-stopped.
func (r *ContainerRunner) execute(ctx context.Context, cmdArgs []string, containerName string, timeout time.Duration) (rawResult, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := r.cmdRunner.RunCommand(ctxWithTimeout, cmdArgs)
	duration := time.Since(start)

	if ctxWithTimeout.Err() == context.DeadlineExceeded {
		// The CLI process was killed; make sure the container is too.
		stopCmd := exec.CommandContext(ctx, r.binary, "stop", containerName) //nolint:gosec // binary is docker or podman
		if stopErr := stopCmd.Run(); stopErr != nil {
			r.logger.Warn("failed to stop container after timeout",
				zap.String("container", containerName), zap.Error(stopErr))
		}

		return rawResult{
			ExecutionResult: ExecutionResult{
				Outcome:      OutcomeTimeout,
				Stdout:       stdout,
				Stderr:       stderr,
				ErrorMessage: fmt.Sprintf("execution timed out after %s", timeout),
				Duration:     duration,
			},
		}, nil
	}

	if err != nil {
		// Launch failures propagate; retries are the caller's policy.
		return rawResult{}, fmt.Errorf("failed to execute container: %w", err)
	}

	return rawResult{
		ExecutionResult: ExecutionResult{Stdout: stdout, Stderr: stderr, Duration: duration},
		exitCode:        exitCode,
	}, nil
}
