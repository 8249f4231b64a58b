// Package splitmix provides the deterministic splitmix64 sequence that
// supplies per-item pseudo-random bits to the signature generators.
//
// The sequence for a given seed is part of the signature format: two
// processes running the same version over the same seed must observe the
// same words, so the constants here must never change.
package splitmix

const (
	golden64 = 0x9E3779B97F4A7C15
	mix1     = 0xBF58476D1CE4E5B9
	mix2     = 0x94D049BB133111EB
)

// Stream is a splitmix64 generator. The zero value is a valid stream with
// seed 0.
type Stream struct {
	state uint64
}

// New returns a stream seeded with seed.
func New(seed uint64) Stream {
	return Stream{state: seed}
}

// Next returns the next 64-bit word of the sequence.
func (s *Stream) Next() uint64 {
	s.state += golden64
	z := s.state
	z = (z ^ (z >> 30)) * mix1
	z = (z ^ (z >> 27)) * mix2
	return z ^ (z >> 31)
}
