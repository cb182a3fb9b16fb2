package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipSequenceIsDeterministic(t *testing.T) {
	a := FlipSequence("match-1", 0, 10)
	b := FlipSequence("match-1", 0, 10)
	assert.Equal(t, a, b, "same match and offset must reproduce the stream")

	c := FlipSequence("match-2", 0, 10)
	assert.NotEqual(t, a, c, "different matches should diverge")
}

func TestFlipSequenceOffsetContinuesTheStream(t *testing.T) {
	full := FlipSequence("match-1", 0, 10)
	head := FlipSequence("match-1", 0, 4)
	tail := FlipSequence("match-1", 4, 6)

	assert.Equal(t, full[:4], head)
	assert.Equal(t, full[4:], tail)
}

func TestFlipUntilTailsEndsOnTails(t *testing.T) {
	flips := FlipUntilTails("match-1", 0, 64)
	require.NotEmpty(t, flips)

	for i, f := range flips[:len(flips)-1] {
		assert.True(t, f, "flip %d before the end must be heads", i)
	}
	if len(flips) < 64 {
		assert.False(t, flips[len(flips)-1], "a terminated stream ends on tails")
	}
}

func TestFlipUntilTailsMatchesSequence(t *testing.T) {
	until := FlipUntilTails("match-1", 3, 64)
	seq := FlipSequence("match-1", 3, len(until))
	assert.Equal(t, seq, until, "until-tails consumes the same underlying stream")
}
