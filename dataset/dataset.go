package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Example is a single immutable dataset example. ScoringData always
// includes the original input plus any domain-specific expected-solution
// fields (e.g. "solution" or "correct_answer").
type Example struct {
	ID          string         `json:"id"`
	Input       string         `json:"input"`
	ScoringData map[string]any `json:"scoring_data"`
}

// maxLineBytes bounds a single JSONL line; crossword inputs with full
// clue lists run well past bufio's default 64K.
const maxLineBytes = 16 * 1024 * 1024

// LoadSplit reads one JSONL split file (e.g. train.jsonl) into a slice of
// examples.
func LoadSplit(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	var examples []Example

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ex Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("invalid example at %s:%d: %w", path, lineNum, err)
		}
		if ex.ID == "" {
			return nil, fmt.Errorf("example at %s:%d has no id", path, lineNum)
		}

		if ex.ScoringData == nil {
			ex.ScoringData = make(map[string]any)
		}
		// Scoring functions get the original input alongside the expected
		// solution fields.
		if _, ok := ex.ScoringData["input"]; !ok {
			ex.ScoringData["input"] = ex.Input
		}

		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}

	return examples, nil
}

// LoadSplits loads the named splits ("train", "valid", ...) from dir,
// expecting one <split>.jsonl file per split.
func LoadSplits(dir string, splits []string) (map[string][]Example, error) {
	datasets := make(map[string][]Example, len(splits))
	for _, split := range splits {
		path := filepath.Join(dir, split+".jsonl")
		examples, err := LoadSplit(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s split: %w", split, err)
		}
		datasets[split] = examples
	}
	return datasets, nil
}
