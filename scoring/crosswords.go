package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Crossword scoring modes. Strict counts a square only if no piece of the
// attempt ever filled it incorrectly; lenient counts it if any piece
// filled it correctly.
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

var clueLineRe = regexp.MustCompile(`^\s*(\d+)\.\s*(.+)`)

type gridPos struct {
	row, col int
}

type crosswordSolution struct {
	grid   [][]string
	across map[int]string
	down   map[int]string
}

// Crosswords scores an attempted crossword solution square by square. The
// expected solution lives in scoring_data["solution"] as a grid followed
// by optional "Across:" and "Down:" clue sections; the attempt may repeat
// the fill in any combination of those three formats.
func Crosswords(mode string) Func {
	return func(_ context.Context, output string, scoringData map[string]any) (float64, error) {
		expected, ok := scoringData["solution"].(string)
		if !ok {
			return 0, fmt.Errorf("scoring data has no solution field")
		}

		sol := parseCrosswordSolution(expected)
		if len(sol.grid) == 0 || len(sol.grid[0]) == 0 {
			return 0, fmt.Errorf("expected solution has an empty grid")
		}

		content := strings.TrimSpace(output)
		if content == "" {
			return 0, nil
		}

		correct := map[gridPos]bool{}
		incorrect := map[gridPos]bool{}

		for _, piece := range strings.Split(content, "\n\n") {
			piece = strings.TrimSpace(piece)
			switch {
			case piece == "":
			case strings.HasPrefix(piece, "Across:"):
				markClueSection(piece, sol, "across", correct, incorrect)
			case strings.HasPrefix(piece, "Down:"):
				markClueSection(piece, sol, "down", correct, incorrect)
			default:
				markGridSection(piece, sol.grid, correct, incorrect)
			}
		}

		fillable := 0
		correctCount := 0
		for row := range sol.grid {
			for col := range sol.grid[row] {
				if sol.grid[row][col] == "." {
					continue
				}
				fillable++
				pos := gridPos{row, col}
				switch mode {
				case ModeLenient:
					if correct[pos] {
						correctCount++
					}
				default:
					if correct[pos] && !incorrect[pos] {
						correctCount++
					}
				}
			}
		}

		if fillable == 0 {
			return 0, nil
		}
		return float64(correctCount) / float64(fillable), nil
	}
}

// parseCrosswordSolution splits an expected solution into its grid and
// numbered clue answers.
func parseCrosswordSolution(expected string) crosswordSolution {
	lines := strings.Split(strings.TrimSpace(expected), "\n")

	sol := crosswordSolution{
		across: map[int]string{},
		down:   map[int]string{},
	}

	idx := 0
	for ; idx < len(lines); idx++ {
		line := strings.TrimSpace(lines[idx])
		if line == "" || strings.HasPrefix(line, "Across:") || strings.HasPrefix(line, "Down:") {
			break
		}
		sol.grid = append(sol.grid, strings.Fields(line))
	}

	section := ""
	for ; idx < len(lines); idx++ {
		line := strings.TrimSpace(lines[idx])
		switch {
		case strings.HasPrefix(line, "Across:"):
			section = "across"
		case strings.HasPrefix(line, "Down:"):
			section = "down"
		case line != "" && section != "":
			if num, answer, ok := parseClueLine(line); ok {
				if section == "across" {
					sol.across[num] = answer
				} else {
					sol.down[num] = answer
				}
			}
		}
	}

	return sol
}

func parseClueLine(line string) (int, string, bool) {
	m := clueLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return num, strings.ToUpper(strings.TrimSpace(m[2])), true
}

func markGridSection(piece string, grid [][]string, correct, incorrect map[gridPos]bool) {
	height := len(grid)
	width := len(grid[0])

	for rowIdx, line := range strings.Split(strings.TrimSpace(piece), "\n") {
		if rowIdx >= height {
			break
		}
		for colIdx, cell := range strings.Fields(line) {
			if colIdx >= width {
				break
			}
			expected := strings.ToUpper(grid[rowIdx][colIdx])
			if expected == "." {
				continue
			}
			pos := gridPos{rowIdx, colIdx}
			if strings.ToUpper(cell) == expected {
				correct[pos] = true
			} else {
				incorrect[pos] = true
			}
		}
	}
}

func markClueSection(piece string, sol crosswordSolution, direction string, correct, incorrect map[gridPos]bool) {
	height := len(sol.grid)
	width := len(sol.grid[0])

	expectedAnswers := sol.across
	if direction == "down" {
		expectedAnswers = sol.down
	}

	lines := strings.Split(piece, "\n")[1:]
	for _, line := range lines {
		num, answer, ok := parseClueLine(strings.TrimSpace(line))
		if !ok {
			continue
		}
		expectedAnswer, ok := expectedAnswers[num]
		if !ok {
			continue
		}
		start, found := findCluePosition(num, sol.grid)
		if !found {
			continue
		}

		for i := 0; i < len(answer); i++ {
			if i >= len(expectedAnswer) {
				break
			}
			pos := gridPos{start.row, start.col + i}
			if direction == "down" {
				pos = gridPos{start.row + i, start.col}
			}
			if pos.row >= height || pos.col >= width {
				break
			}
			if sol.grid[pos.row][pos.col] == "." {
				continue
			}
			if answer[i] == expectedAnswer[i] {
				correct[pos] = true
			} else {
				incorrect[pos] = true
			}
		}
	}
}

// findCluePosition locates the start square of a clue number using
// standard crossword numbering: squares that begin an across or down word
// are numbered left to right, top to bottom.
func findCluePosition(clueNum int, grid [][]string) (gridPos, bool) {
	height := len(grid)
	width := len(grid[0])

	currentNum := 1
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if grid[row][col] == "." {
				continue
			}

			startsAcross := (col == 0 || grid[row][col-1] == ".") &&
				col+1 < width && grid[row][col+1] != "."
			startsDown := (row == 0 || grid[row-1][col] == ".") &&
				row+1 < height && grid[row+1][col] != "."

			if startsAcross || startsDown {
				if currentNum == clueNum {
					return gridPos{row, col}, true
				}
				currentNum++
			}
		}
	}

	return gridPos{}, false
}
