package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	n, err := Count("gpt-4.1-mini", "Who wrote The Hobbit?")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	assert.Greater(t, n, 0)

	empty, err := Counter("an-unknown-model")("")
	assert.NoError(t, err)
	assert.Zero(t, empty)
}
