package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-legopi/model"
)

func TestHandleRecordsCommits(t *testing.T) {
	h := New("sim")
	h.SetColor(0, model.ColorRed)
	h.SetBrightness(0, 10)
	require.NoError(t, h.Commit())
	h.SetBrightness(0, 20)
	require.NoError(t, h.Commit())

	assert.Equal(t, []Frame{{0: 10}, {0: 20}}, h.Frames())
	c, ok := h.Color(0)
	assert.True(t, ok)
	assert.Equal(t, model.ColorRed, c)
	_, ok = h.Color(1)
	assert.False(t, ok)
}

func TestHandleKeep(t *testing.T) {
	h := New("sim")
	h.Keep = 2
	for i := uint8(1); i <= 5; i++ {
		h.SetBrightness(0, i)
		require.NoError(t, h.Commit())
	}
	assert.Equal(t, 5, h.Commits())
	assert.Equal(t, []Frame{{0: 4}, {0: 5}}, h.Frames())
}

func TestHandleFailAfter(t *testing.T) {
	h := New("sim")
	h.CommitErr = assert.AnError
	h.FailAfter = 1
	assert.NoError(t, h.Commit())
	assert.ErrorIs(t, h.Commit(), assert.AnError)
	assert.Len(t, h.Frames(), 1)
	assert.Nil(t, New("x").Last())
}
