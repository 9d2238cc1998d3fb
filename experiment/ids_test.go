package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocator(t *testing.T) {
	ids := newIDAllocator()

	assert.Equal(t, "0", ids.NextInitial())
	assert.Equal(t, "1", ids.NextInitial())
	assert.Equal(t, "2", ids.NextInitial())

	assert.Equal(t, "0-0", ids.Child("0"))
	assert.Equal(t, "0-1", ids.Child("0"))
	assert.Equal(t, "2-0", ids.Child("2"))
	assert.Equal(t, "0-1-0", ids.Child("0-1"))
}
