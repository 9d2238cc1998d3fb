package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyJudgeOutput(t *testing.T) {
	t.Run("AllPassed", func(t *testing.T) {
		stdout := `{"results": [{"test_case": 0, "passed": true, "input": "1", "expected": "2", "actual": "2"}, {"test_case": 1, "passed": true, "input": "3", "expected": "4", "actual": "4"}]}`

		result := classifyJudgeOutput(stdout, "")
		assert.Equal(t, OutcomeSuccess, result.Outcome)
		require.Len(t, result.Tests, 2)

		score, err := result.Score()
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("PartialFailure", func(t *testing.T) {
		stdout := `{"results": [
			{"test_case": 0, "passed": true, "input": "1", "expected": "2", "actual": "2"},
			{"test_case": 1, "passed": false, "input": "3", "expected": "4", "actual": "5"},
			{"test_case": 2, "passed": false, "input": "5", "expected": "6", "error": "ZeroDivisionError: division by zero"},
			{"test_case": 3, "passed": true, "input": "7", "expected": "8", "actual": "8"}
		]}`

		result := classifyJudgeOutput(stdout, "")
		assert.Equal(t, OutcomeTestFailure, result.Outcome)
		require.Len(t, result.Tests, 4)
		assert.Equal(t, "ZeroDivisionError: division by zero", result.Tests[2].Error)

		score, err := result.Score()
		require.NoError(t, err)
		assert.Equal(t, 0.5, score)
	})

	t.Run("LoadErrorIsSyntaxError", func(t *testing.T) {
		stdout := `{"error": "invalid syntax (<user_code>, line 3)"}`

		result := classifyJudgeOutput(stdout, "")
		assert.Equal(t, OutcomeSyntaxError, result.Outcome)
		assert.Contains(t, result.ErrorMessage, "invalid syntax")
		assert.True(t, result.Failed())
	})

	t.Run("GarbageIsRuntimeError", func(t *testing.T) {
		result := classifyJudgeOutput("Segmentation fault\n", "core dumped")
		assert.Equal(t, OutcomeRuntimeError, result.Outcome)
		assert.Equal(t, "core dumped", result.Stderr)
		assert.True(t, result.Failed())
	})

	t.Run("EmptyReportIsRuntimeError", func(t *testing.T) {
		result := classifyJudgeOutput("{}", "")
		assert.Equal(t, OutcomeRuntimeError, result.Outcome)
	})
}

func TestScoreRequiresTests(t *testing.T) {
	result := ExecutionResult{Outcome: OutcomeSuccess}
	_, err := result.Score()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test results")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "test_failure", OutcomeTestFailure.String())
	assert.Equal(t, "timeout", OutcomeTimeout.String())
	assert.Equal(t, "syntax_error", OutcomeSyntaxError.String())
	assert.Equal(t, "runtime_error", OutcomeRuntimeError.String())
}

func TestFailed(t *testing.T) {
	assert.False(t, ExecutionResult{Outcome: OutcomeSuccess}.Failed())
	assert.False(t, ExecutionResult{Outcome: OutcomeTestFailure}.Failed())
	assert.True(t, ExecutionResult{Outcome: OutcomeTimeout}.Failed())
	assert.True(t, ExecutionResult{Outcome: OutcomeSyntaxError}.Failed())
	assert.True(t, ExecutionResult{Outcome: OutcomeRuntimeError}.Failed())
}
