package scaffolder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/llm"
	"github.com/scaffoldlab/scaffbox/scaffold"
)

// scriptedClient implements llm.Client for testing, replaying canned
// responses and recording prompts.
type scriptedClient struct {
	responses []llm.Response
	err       error
	prompts   []string
}

func (c *scriptedClient) Generate(_ context.Context, prompt, _ string) (llm.Response, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return llm.Response{}, c.err
	}
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp, nil
}

func (c *scriptedClient) Model() string { return "test-model" }

func trainingExamples() []dataset.Example {
	return []dataset.Example{
		{
			ID:    "train-0",
			Input: "2 + 2",
			ScoringData: map[string]any{
				"input":    "2 + 2",
				"solution": "4",
			},
		},
		{
			ID:    "train-1",
			Input: "3 + 5",
			ScoringData: map[string]any{
				"input":    "3 + 5",
				"solution": "8",
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: "```python\ndef process_input(s):\n    return '4'\n```", Thinking: "arithmetic"},
	}}
	gen := New(client, zaptest.NewLogger(t))

	result, err := gen.Generate(context.Background(), trainingExamples(), 0)
	require.NoError(t, err)
	assert.Equal(t, "def process_input(s):\n    return '4'", result.Code)
	assert.Equal(t, "test-model", result.Metadata.Model)
	assert.Empty(t, result.Metadata.ParentID)
	assert.Equal(t, 0, result.Metadata.Iteration)
	assert.False(t, result.Metadata.CreatedAt.IsZero())
	require.NotNil(t, result.Metadata.ScaffolderResponse)
	assert.Equal(t, "arithmetic", result.Metadata.ScaffolderResponse.Thinking)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "<timeout>120</timeout>")
	assert.Contains(t, prompt, "<example-1>")
	assert.Contains(t, prompt, "<input>2 + 2</input>")
	assert.Contains(t, prompt, "<expected_output>4</expected_output>")
	assert.Contains(t, prompt, "<example-2>")
	assert.Contains(t, prompt, "def process_input(input_string: str) -> str")
	assert.Equal(t, prompt, result.Metadata.ScaffolderPrompt)
	// Generation prompts carry no parent code or evolution framing.
	assert.NotContains(t, prompt, "<code>")
	assert.NotContains(t, prompt, "attempted Python scaffold")
}

func TestGenerateRequiresExamples(t *testing.T) {
	gen := New(&scriptedClient{}, zaptest.NewLogger(t))
	_, err := gen.Generate(context.Background(), nil, 0)
	assert.ErrorContains(t, err, "no training examples")
}

func TestGenerateNoCodeInResponse(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{{Content: "I would rather discuss poetry."}}}
	gen := New(client, zaptest.NewLogger(t))

	_, err := gen.Generate(context.Background(), trainingExamples(), 0)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestEvolve(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: "```python\ndef process_input(s):\n    return '8'\n```"},
	}}
	gen := New(client, zaptest.NewLogger(t), WithScaffoldTimeout(60))

	runs := []scaffold.RunData{
		{
			Code:         "def process_input(s):\n    return '4'",
			Example:      trainingExamples()[1],
			ActualOutput: "4",
			ExecutionLog: "INFO guessed four",
			Score:        0.5,
		},
	}

	result, err := gen.Evolve(context.Background(), runs, "0-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "0-1", result.Metadata.ParentID)
	assert.Equal(t, 2, result.Metadata.Iteration)

	prompt := client.prompts[0]
	assert.Contains(t, prompt, "<code>```python\ndef process_input(s):\n    return '4'\n```</code>")
	assert.Contains(t, prompt, "<timeout>60</timeout>")
	assert.Contains(t, prompt, "<actual_output>4</actual_output>")
	assert.Contains(t, prompt, "<execution_log>INFO guessed four</execution_log>")
	assert.Contains(t, prompt, "<score>0.5</score>")
	assert.Contains(t, prompt, "attempted Python scaffold")
}

func TestEvolveRequiresRuns(t *testing.T) {
	gen := New(&scriptedClient{}, zaptest.NewLogger(t))
	_, err := gen.Evolve(context.Background(), nil, "0", 1)
	assert.ErrorContains(t, err, "no run data")
}

func TestDomainInstructions(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: "```python\nx = 1\n```"},
	}}
	gen := New(client, zaptest.NewLogger(t), WithDomain("codeforces"))

	_, err := gen.Generate(context.Background(), trainingExamples(), 0)
	require.NoError(t, err)
	assert.Contains(t, client.prompts[0], "MUST return Python code")
}

func TestGenerateClientFailure(t *testing.T) {
	client := &scriptedClient{err: &llm.FatalError{Err: errors.New("invalid request")}}
	gen := New(client, zaptest.NewLogger(t))

	_, err := gen.Generate(context.Background(), trainingExamples(), 0)
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
}
