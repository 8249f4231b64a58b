package simsig

import (
	"iter"
	"math"

	"github.com/hupe1980/simsig/bitvec"
	"github.com/hupe1980/simsig/hasher"
	"github.com/hupe1980/simsig/internal/splitmix"
)

// Options configures Classic and Fast constructors.
type Options struct {
	// Seed is mixed into every per-item bit stream. Two generators with the
	// same hasher but different seeds produce unrelated signatures.
	Seed uint64
}

// WithSeed sets the generator seed.
func WithSeed(seed uint64) func(o *Options) {
	return func(o *Options) {
		o.Seed = seed
	}
}

// Classic is the baseline random-hyperplane signature generator: for every
// token, each output bit accumulates +w or -w depending on one pseudo-random
// bit derived from the token's keyed hash, and the final bit is the sign of
// the accumulated sum.
//
// A Classic instance is immutable after construction and safe for concurrent
// use.
type Classic struct {
	h     hasher.Hasher
	width int
	seed  uint64
}

// NewClassic creates a Classic generator emitting width-bit signatures.
func NewClassic(h hasher.Hasher, width int, optFns ...func(o *Options)) (*Classic, error) {
	if width < 1 {
		return nil, ErrInvalidWidth
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Classic{h: h, width: width, seed: opts.Seed}, nil
}

// Width returns the signature width in bits.
func (c *Classic) Width() int {
	return c.width
}

// CreateSignature computes the signature of an unweighted token stream.
// Repeated tokens accumulate, each occurrence contributing weight 1.
func (c *Classic) CreateSignature(items iter.Seq[[]byte]) *bitvec.Vector {
	counts := make([]float64, c.width)
	for item := range items {
		accumulateStream(counts, c.h.Sum64(item)^c.seed, 1)
	}
	return signOf(counts)
}

// CreateSignatureWeighted computes the signature of a weighted token stream;
// repeated tokens accumulate additively. NaN and infinite weights are
// rejected with ErrNonFiniteWeight.
func (c *Classic) CreateSignatureWeighted(items iter.Seq2[[]byte, float64]) (*bitvec.Vector, error) {
	counts := make([]float64, c.width)
	idx := 0
	for item, w := range items {
		if !isFinite(w) {
			return nil, &ErrNonFiniteWeight{Index: idx, Weight: w}
		}
		accumulateStream(counts, c.h.Sum64(item)^c.seed, w)
		idx++
	}
	return signOf(counts), nil
}

// accumulateStream adds ±w to every cell of counts, the sign of cell i drawn
// from bit i%64 of word i/64 of the splitmix64 stream seeded with base.
//
// This derivation is shared by Classic, Fast (through the packed engine) and
// SuperBit with block size 1; changing it changes the signature format.
func accumulateStream(counts []float64, base uint64, w float64) {
	st := splitmix.New(base)
	var word uint64
	for i := range counts {
		if i%64 == 0 {
			word = st.Next()
		}
		if word&1 != 0 {
			counts[i] += w
		} else {
			counts[i] -= w
		}
		word >>= 1
	}
}

func signOf(counts []float64) *bitvec.Vector {
	return bitvec.FromThreshold(len(counts), func(i int) float64 {
		return counts[i]
	})
}

func isFinite(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0)
}
