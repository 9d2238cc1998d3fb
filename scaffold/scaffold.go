package scaffold

import (
	"time"

	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/llm"
)

// Metadata is the provenance record attached to every scaffold. Records
// form a tree rooted at initial-population members; ParentID is a
// back-reference for lookup, empty for initial scaffolds.
type Metadata struct {
	CreatedAt          time.Time     `json:"created_at"`
	Model              string        `json:"model,omitempty"`
	ParentID           string        `json:"parent_scaffold_id,omitempty"`
	Iteration          int           `json:"iteration"`
	ScaffolderPrompt   string        `json:"scaffolder_prompt,omitempty"`
	ScaffolderResponse *llm.Response `json:"scaffolder_response,omitempty"`
}

// Result is the output of one generation call: the program source plus its
// provenance. Immutable once created.
type Result struct {
	Code     string
	Metadata Metadata
}

// RunData captures one scaffold execution against one example. It feeds
// the evolution prompt and is not persisted beyond the iteration that
// produced it unless the scaffold is selected.
type RunData struct {
	Code         string
	Example      dataset.Example
	ActualOutput string
	ExecutionLog string
	Score        float64
}
