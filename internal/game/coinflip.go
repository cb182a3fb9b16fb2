package game

import "hash/fnv"

// Coin flips are deterministic: the sequence is seeded from the match
// id and advanced with a linear congruential step, so replaying a match
// reproduces every flip. This is a determinism contract, not a fairness
// one — a client that knows the match id can predict the sequence.

const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// flipSeed derives the initial LCG state from the match id.
func flipSeed(matchID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(matchID))
	return h.Sum64()
}

// FlipSequence returns n deterministic coin flips for the match,
// starting at the given offset into the match's flip stream. true is
// heads.
func FlipSequence(matchID string, offset, n int) []bool {
	s := flipSeed(matchID)
	for i := 0; i < offset; i++ {
		s = s*lcgMultiplier + lcgIncrement
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		s = s*lcgMultiplier + lcgIncrement
		out[i] = (s>>32)&1 == 1
	}
	return out
}

// FlipUntilTails returns deterministic flips up to and including the
// first tails, starting at offset. maxFlips bounds the sequence against
// degenerate streams.
func FlipUntilTails(matchID string, offset, maxFlips int) []bool {
	s := flipSeed(matchID)
	for i := 0; i < offset; i++ {
		s = s*lcgMultiplier + lcgIncrement
	}
	out := make([]bool, 0, 4)
	for i := 0; i < maxFlips; i++ {
		s = s*lcgMultiplier + lcgIncrement
		heads := (s>>32)&1 == 1
		out = append(out, heads)
		if !heads {
			break
		}
	}
	return out
}
