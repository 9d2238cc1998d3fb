package scaffolder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode(t *testing.T) {
	t.Run("PythonFence", func(t *testing.T) {
		code, err := ExtractCode("Here is my solution:\n```python\ndef process_input(s):\n    return s\n```\nGood luck!")
		require.NoError(t, err)
		assert.Equal(t, "def process_input(s):\n    return s", code)
	})

	t.Run("PlainFence", func(t *testing.T) {
		code, err := ExtractCode("```\nprint('hi')\n```")
		require.NoError(t, err)
		assert.Equal(t, "print('hi')", code)
	})

	t.Run("UnterminatedFenceTakesRemainder", func(t *testing.T) {
		code, err := ExtractCode("```python\ndef process_input(s):\n    return s")
		require.NoError(t, err)
		assert.Equal(t, "def process_input(s):\n    return s", code)
	})

	t.Run("BareCodeWithEntryPoint", func(t *testing.T) {
		code, err := ExtractCode("import logging\n\ndef process_input(input_string: str) -> str:\n    return input_string")
		require.NoError(t, err)
		assert.Contains(t, code, "def process_input")
	})

	t.Run("ProseOnly", func(t *testing.T) {
		_, err := ExtractCode("I'm sorry, I can't write that program.")
		assert.ErrorIs(t, err, ErrNoCode)
	})

	t.Run("EmptyFence", func(t *testing.T) {
		_, err := ExtractCode("```python\n```")
		assert.ErrorIs(t, err, ErrNoCode)
	})

	t.Run("PreferPythonFenceOverEarlierPlainFence", func(t *testing.T) {
		code, err := ExtractCode("```python\nx = 1\n```")
		require.NoError(t, err)
		assert.Equal(t, "x = 1", code)
	})
}
