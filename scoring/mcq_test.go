package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreMCQ(t *testing.T, output string, correct any) float64 {
	t.Helper()
	fn := MultipleChoice()
	score, err := fn(context.Background(), output, map[string]any{"correct_answer": correct})
	require.NoError(t, err)
	return score
}

func TestMultipleChoice(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   float64
	}{
		{"BareLetter", "A", 1.0},
		{"LowercaseParenthesized", "a)", 1.0},
		{"AnswerStatement", "The answer is A.", 1.0},
		{"FinalAnswerWins", "Maybe B? No. Final answer: A", 1.0},
		{"WrongLetter", "C", 0.0},
		{"NoLetter", "I'm not sure about this one.", 0.0},
		{"Empty", "", 0.0},
		{"TrailingBareLetter", "Between the choices I pick A", 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoreMCQ(t, tc.output, "A"))
		})
	}
}

func TestMultipleChoiceLowercaseExpected(t *testing.T) {
	assert.Equal(t, 1.0, scoreMCQ(t, "B", "b"))
}

func TestMultipleChoiceMissingCorrectAnswer(t *testing.T) {
	fn := MultipleChoice()
	_, err := fn(context.Background(), "A", map[string]any{})
	assert.ErrorContains(t, err, "no correct_answer field")
}
