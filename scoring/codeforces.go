package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scaffoldlab/scaffbox/sandbox"
	"github.com/scaffoldlab/scaffbox/scaffolder"
)

// Codeforces judges the output as a program: the scaffold returns Python
// source, which is executed in the sandbox against the held-out test
// cases from scoring_data. All tests must pass for a score of 1; anything
// less scores 0.
func Codeforces(runner sandbox.Runner, logger *zap.Logger) Func {
	return func(ctx context.Context, output string, scoringData map[string]any) (float64, error) {
		code, err := scaffolder.ExtractCode(output)
		if err != nil {
			// No fence found; the output may already be bare code.
			code = output
		}

		testCases, err := parseTestCases(scoringData["held_out_tests"])
		if err != nil {
			return 0, err
		}

		req := sandbox.TestRequest{
			Code:         code,
			TestCases:    testCases,
			TimeLimitSec: floatField(scoringData, "time_limit", 2.0),
			MemoryMB:     int(floatField(scoringData, "memory_limit", 256.0)),
		}

		result, err := runner.RunTests(ctx, req)
		if err != nil {
			return 0, fmt.Errorf("judge solution: %w", err)
		}

		if result.Outcome == sandbox.OutcomeSuccess {
			return 1, nil
		}

		logger.Debug("solution failed judging",
			zap.Stringer("outcome", result.Outcome),
			zap.String("error", result.ErrorMessage))
		return 0, nil
	}
}

func parseTestCases(raw any) ([]sandbox.TestCase, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("scoring data has no held_out_tests list")
	}

	cases := make([]sandbox.TestCase, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("test case %d is not an object", i)
		}
		input, _ := m["input"].(string)
		output, _ := m["output"].(string)
		cases = append(cases, sandbox.TestCase{Input: input, Output: output})
	}
	return cases, nil
}

func floatField(data map[string]any, key string, fallback float64) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}
