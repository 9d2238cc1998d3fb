package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ScaffoldRequest asks for one scaffold execution against one input.
type ScaffoldRequest struct {
	// ScaffoldDir is mounted read-only into the container; it must contain
	// the scaffold.py source.
	ScaffoldDir string
	// Input is passed to the scaffold's process_input entry point.
	Input string
	// ExecutorModel is the model spec exposed to the scaffold at runtime.
	ExecutorModel string
	TimeoutSec    int
	MemoryMB      int
}

// TestCase is one input/expected-output pair for test-suite judging.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// TestRequest asks for a program to be judged against a test suite.
type TestRequest struct {
	Code         string
	TestCases    []TestCase
	TimeLimitSec float64
	MemoryMB     int
}

// Runner executes untrusted programs with enforced resource bounds. Each
// call spawns and tears down an isolated process; there is no shared
// mutable state between calls.
type Runner interface {
	RunScaffold(ctx context.Context, req ScaffoldRequest) (ExecutionResult, error)
	RunTests(ctx context.Context, req TestRequest) (ExecutionResult, error)
}

// Config holds resource limits and backend settings shared by runners.
type Config struct {
	// Image is the container image scaffolds run in.
	Image string
	// JudgeImage is the image used for test-suite judging.
	JudgeImage string
	TimeoutSec int
	MemoryMB   int
	CPUs       float64
	// NetworkEnabled permits scaffold containers to reach the executor
	// LLM API. Test judging always runs with networking disabled.
	NetworkEnabled bool
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Safe as this is controlled input

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// FileSystem defines an interface for the file system operations runners
// need, kept narrow so tests can substitute a fake.
type FileSystem interface {
	FileExists(path string) (bool, error)
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
