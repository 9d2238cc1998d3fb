package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	answerStmtRe = regexp.MustCompile(`(?i)(?:final\s+answer|answer)\s*(?:is|:)?\s*\(?([A-D])\)?\b`)
	bareLetterRe = regexp.MustCompile(`\b([A-D])\b`)
	letterOnlyRe = regexp.MustCompile(`^\(?([A-Da-d])\)?[.)]?$`)
)

// MultipleChoice scores an answer-letter response against
// scoring_data["correct_answer"]. The attempt may be a bare letter or
// prose ending in an answer statement; the last stated answer wins.
func MultipleChoice() Func {
	return func(_ context.Context, output string, scoringData map[string]any) (float64, error) {
		correct, ok := scoringData["correct_answer"]
		if !ok {
			return 0, fmt.Errorf("scoring data has no correct_answer field")
		}

		letter := extractAnswerLetter(output)
		if letter == "" {
			return 0, nil
		}
		if letter == strings.ToUpper(strings.TrimSpace(fmt.Sprint(correct))) {
			return 1, nil
		}
		return 0, nil
	}
}

func extractAnswerLetter(output string) string {
	trimmed := strings.TrimSpace(output)

	if m := letterOnlyRe.FindStringSubmatch(trimmed); m != nil {
		return strings.ToUpper(m[1])
	}

	if ms := answerStmtRe.FindAllStringSubmatch(trimmed, -1); len(ms) > 0 {
		return strings.ToUpper(ms[len(ms)-1][1])
	}

	if ms := bareLetterRe.FindAllStringSubmatch(trimmed, -1); len(ms) > 0 {
		return ms[len(ms)-1][1]
	}

	return ""
}
