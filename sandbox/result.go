package sandbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Outcome discriminates the execution result variants. Exactly one payload
// group is populated per outcome; callers must handle every variant.
type Outcome int

const (
	// OutcomeSuccess: the program ran to completion. Stdout holds its
	// output; for test runs, Tests holds per-test detail with all passed.
	OutcomeSuccess Outcome = iota
	// OutcomeTestFailure: the program ran but failed at least one test
	// case. Tests holds per-test detail.
	OutcomeTestFailure
	// OutcomeTimeout: the wall-clock limit expired and the container was
	// force-killed. Stdout/Stderr hold partial output.
	OutcomeTimeout
	// OutcomeSyntaxError: the program failed to even load. ErrorMessage
	// holds the load error.
	OutcomeSyntaxError
	// OutcomeRuntimeError: the program loaded but crashed. ErrorMessage
	// and Stderr hold the failure detail.
	OutcomeRuntimeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTestFailure:
		return "test_failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeSyntaxError:
		return "syntax_error"
	case OutcomeRuntimeError:
		return "runtime_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TestResult is one entry of the judge's per-test report.
type TestResult struct {
	TestCase int    `json:"test_case"`
	Passed   bool   `json:"passed"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ExecutionResult is the classified outcome of one sandbox execution.
type ExecutionResult struct {
	Outcome      Outcome
	Stdout       string
	Stderr       string
	Tests        []TestResult
	ErrorMessage string
	Duration     time.Duration
}

// Failed reports whether the execution did not produce usable output.
func (r ExecutionResult) Failed() bool {
	switch r.Outcome {
	case OutcomeTimeout, OutcomeSyntaxError, OutcomeRuntimeError:
		return true
	default:
		return false
	}
}

// Score returns the fraction of passed tests. Zero total tests is a caller
// bug, not a score of zero, and fails loudly.
func (r ExecutionResult) Score() (float64, error) {
	if len(r.Tests) == 0 {
		return 0, fmt.Errorf("no test results to score (outcome %s)", r.Outcome)
	}

	passed := 0
	for _, t := range r.Tests {
		if t.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(r.Tests)), nil
}

// judgeReport is the JSON document the in-sandbox judge prints.
type judgeReport struct {
	Results []TestResult `json:"results"`
	Error   string       `json:"error"`
}

// classifyJudgeOutput maps the judge's stdout into an ExecutionResult.
// A top-level "error" means the program failed to load (syntax error); a
// "results" array means it ran; anything unparsable means the program
// loaded but corrupted its output channel, which is a runtime failure.
func classifyJudgeOutput(stdout, stderr string) ExecutionResult {
	trimmed := strings.TrimSpace(stdout)

	var report judgeReport
	if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
		return ExecutionResult{
			Outcome:      OutcomeRuntimeError,
			Stdout:       stdout,
			Stderr:       stderr,
			ErrorMessage: fmt.Sprintf("judge output is not valid JSON: %v", err),
		}
	}

	if report.Error != "" {
		return ExecutionResult{
			Outcome:      OutcomeSyntaxError,
			Stdout:       stdout,
			Stderr:       stderr,
			ErrorMessage: report.Error,
		}
	}

	if report.Results == nil {
		return ExecutionResult{
			Outcome:      OutcomeRuntimeError,
			Stdout:       stdout,
			Stderr:       stderr,
			ErrorMessage: "judge output has neither results nor error",
		}
	}

	outcome := OutcomeSuccess
	for _, t := range report.Results {
		if !t.Passed {
			outcome = OutcomeTestFailure
			break
		}
	}

	return ExecutionResult{
		Outcome: outcome,
		Stdout:  stdout,
		Stderr:  stderr,
		Tests:   report.Results,
	}
}
