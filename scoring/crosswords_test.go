package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniSolution = "A B\nC D\n\nAcross:\n1. AB\n\nDown:\n1. AC"

func scoreCrossword(t *testing.T, mode, attempt string) float64 {
	t.Helper()
	fn := Crosswords(mode)
	score, err := fn(context.Background(), attempt, map[string]any{"solution": miniSolution})
	require.NoError(t, err)
	return score
}

func TestCrosswordsPerfectMatch(t *testing.T) {
	assert.Equal(t, 1.0, scoreCrossword(t, ModeStrict, miniSolution))
}

func TestCrosswordsPartialStrict(t *testing.T) {
	attempt := "A X\nC D\n\nAcross:\n1. AX\n\nDown:\n1. AC"
	assert.Equal(t, 0.75, scoreCrossword(t, ModeStrict, attempt))
}

func TestCrosswordsConflictingPieces(t *testing.T) {
	// The grid fills every square correctly but the across clue
	// contradicts the top-left square.
	attempt := "A B\nC D\n\nAcross:\n1. XB"

	assert.Equal(t, 0.75, scoreCrossword(t, ModeStrict, attempt))
	assert.Equal(t, 1.0, scoreCrossword(t, ModeLenient, attempt))
}

func TestCrosswordsGridOnly(t *testing.T) {
	assert.Equal(t, 1.0, scoreCrossword(t, ModeStrict, "A B\nC D"))
}

func TestCrosswordsCluesOnly(t *testing.T) {
	// Across 1 and Down 1 together cover three of the four squares.
	attempt := "Across:\n1. AB\n\nDown:\n1. AC"
	assert.Equal(t, 0.75, scoreCrossword(t, ModeStrict, attempt))
}

func TestCrosswordsCaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, scoreCrossword(t, ModeStrict, "a b\nc d"))
}

func TestCrosswordsEmptyAttempt(t *testing.T) {
	assert.Equal(t, 0.0, scoreCrossword(t, ModeStrict, "   \n  "))
}

func TestCrosswordsUnknownClueNumberIgnored(t *testing.T) {
	attempt := "Across:\n9. ZZ"
	assert.Equal(t, 0.0, scoreCrossword(t, ModeStrict, attempt))
}

func TestCrosswordsBlackSquaresNotCounted(t *testing.T) {
	solution := "A .\n. D"
	fn := Crosswords(ModeStrict)
	score, err := fn(context.Background(), "A .\n. D", map[string]any{"solution": solution})
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestCrosswordsMissingSolution(t *testing.T) {
	fn := Crosswords(ModeStrict)
	_, err := fn(context.Background(), "A B", map[string]any{})
	assert.ErrorContains(t, err, "no solution field")
}
