package scaffold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaffoldlab/scaffbox/llm"
)

func testResult(parentID string, iteration int) Result {
	return Result{
		Code: "def process_input(input_string):\n    return input_string\n",
		Metadata: Metadata{
			CreatedAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Model:            "test-model",
			ParentID:         parentID,
			Iteration:        iteration,
			ScaffolderPrompt: "write a scaffold",
			ScaffolderResponse: &llm.Response{
				Content: "```python\ndef process_input(input_string):\n    return input_string\n```",
			},
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	original := testResult("", 0)
	require.NoError(t, store.Save("0", original))

	loaded, err := store.Load("0")
	require.NoError(t, err)

	assert.Equal(t, original.Code, loaded.Code)
	assert.Equal(t, original.Metadata.Model, loaded.Metadata.Model)
	assert.Equal(t, original.Metadata.Iteration, loaded.Metadata.Iteration)
	assert.Equal(t, original.Metadata.ScaffolderPrompt, loaded.Metadata.ScaffolderPrompt)
	require.NotNil(t, loaded.Metadata.ScaffolderResponse)
	assert.Equal(t, original.Metadata.ScaffolderResponse.Content, loaded.Metadata.ScaffolderResponse.Content)
	assert.True(t, original.Metadata.CreatedAt.Equal(loaded.Metadata.CreatedAt))
}

func TestStoreAppendOnly(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("0", testResult("", 0)))
	err = store.Save("0", testResult("", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	require.Error(t, err)

	_, err = store.Dir("nope")
	require.Error(t, err)
}

func TestStoreList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("1", testResult("", 0)))
	require.NoError(t, store.Save("0", testResult("", 0)))
	require.NoError(t, store.Save("0-0", testResult("0", 1)))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0-0", "1"}, ids)
}

func TestStoreLineage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("0", testResult("", 0)))
	require.NoError(t, store.Save("0-0", testResult("0", 1)))
	require.NoError(t, store.Save("0-0-1", testResult("0-0", 2)))

	chain, err := store.Lineage("0-0-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0-0", "0-0-1"}, chain)

	chain, err = store.Lineage("0")
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, chain)
}
