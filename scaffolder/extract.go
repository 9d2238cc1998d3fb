package scaffolder

import (
	"errors"
	"strings"
)

// ErrNoCode reports that the model's response contains no recognizable
// program. The candidate is dropped; callers must never substitute empty
// code.
var ErrNoCode = errors.New("response contains no python code")

const entryPoint = "def process_input"

// ExtractCode pulls the scaffold source out of a model response. It
// prefers a ```python fence, then any ``` fence, then accepts the bare
// response if it already contains the entry-point definition.
func ExtractCode(response string) (string, error) {
	if i := strings.Index(response, "```python"); i >= 0 {
		rest := response[i+len("```python"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		if code := strings.TrimSpace(rest); code != "" {
			return code, nil
		}
		return "", ErrNoCode
	}

	if i := strings.Index(response, "```"); i >= 0 {
		rest := response[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		if code := strings.TrimSpace(rest); code != "" {
			return code, nil
		}
		return "", ErrNoCode
	}

	if strings.Contains(response, entryPoint) {
		return strings.TrimSpace(response), nil
	}

	return "", ErrNoCode
}
