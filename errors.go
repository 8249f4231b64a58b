package simsig

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWidth is returned when a generator is constructed with a
	// non-positive signature width.
	ErrInvalidWidth = errors.New("width must be a positive number of bits")
)

// ErrBlockSize indicates a SuperBit block size that does not evenly divide
// the signature width. It is returned at construction time only; a
// constructed generator can never hit it.
type ErrBlockSize struct {
	Width int
	Block int
}

func (e *ErrBlockSize) Error() string {
	return fmt.Sprintf("block size %d does not divide signature width %d", e.Block, e.Width)
}

// ErrNonFiniteWeight indicates a NaN or infinite weight at the weighted
// entry point. Weights are validated at the boundary so a poisoned
// accumulator can never silently flip output bits.
type ErrNonFiniteWeight struct {
	Index  int // position of the offending item in the stream
	Weight float64
}

func (e *ErrNonFiniteWeight) Error() string {
	return fmt.Sprintf("non-finite weight %v for item %d", e.Weight, e.Index)
}
