package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsIsInclusive(t *testing.T) {
	r := Standard88()

	assert := assert.New(t)
	assert.True(r.Contains(21))
	assert.True(r.Contains(108))
	assert.True(r.Contains(60))
	assert.False(r.Contains(20))
	assert.False(r.Contains(109))
}

func TestNewSwapsReversedBounds(t *testing.T) {
	r := New(80, 40)
	assert.Equal(t, Range{Start: 40, End: 80}, r)
	assert.Equal(t, 41, r.Count())
}

func TestRaiseStartKeepsMinimumSpan(t *testing.T) {
	r := Range{Start: 40, End: 66}
	r = r.RaiseStart()
	assert.Equal(t, uint8(41), r.Start)

	// 42 + 24 == 66 is not strictly below End, so no change.
	r = r.RaiseStart()
	assert.Equal(t, uint8(41), r.Start)
}

func TestLowerStartSaturatesAtZero(t *testing.T) {
	r := Range{Start: 0, End: 127}
	assert.Equal(t, uint8(0), r.LowerStart().Start)
}

func TestRaiseEndSaturatesAtMaxNote(t *testing.T) {
	r := Range{Start: 0, End: 127}
	assert.Equal(t, MaxNote, r.RaiseEnd().End)
}

func TestLowerEndKeepsMinimumSpan(t *testing.T) {
	r := Range{Start: 40, End: 66}
	r = r.LowerEnd()
	assert.Equal(t, uint8(65), r.End)

	r = r.LowerEnd()
	assert.Equal(t, uint8(65), r.End)
}
