package simsig

import (
	"iter"

	"github.com/hupe1980/simsig/bitvec"
	"github.com/hupe1980/simsig/hasher"
	"github.com/hupe1980/simsig/internal/packed"
	"github.com/hupe1980/simsig/internal/splitmix"
)

// Fast computes the same signatures as Classic using the packed counter
// engine: eight 8-bit accumulator lanes share one machine word and every
// token updates 64 output bits per word-sized arithmetic step instead of one
// bit per loop iteration.
//
// The engine widens its lanes into a float64 accumulator before they can
// saturate, so Fast output is bit-identical to Classic for every token
// stream and weight assignment — there is no precision-loss mode. The packed
// path serves the unweighted entry point; weighted streams accumulate
// directly (see CreateSignatureWeighted).
//
// A Fast instance is immutable after construction and safe for concurrent
// use.
type Fast struct {
	h      hasher.Hasher
	width  int
	seed   uint64
	nwords int
}

// NewFast creates a Fast generator emitting width-bit signatures.
func NewFast(h hasher.Hasher, width int, optFns ...func(o *Options)) (*Fast, error) {
	if width < 1 {
		return nil, ErrInvalidWidth
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Fast{h: h, width: width, seed: opts.Seed, nwords: (width + 63) / 64}, nil
}

// Width returns the signature width in bits.
func (f *Fast) Width() int {
	return f.width
}

// CreateSignature computes the signature of an unweighted token stream.
func (f *Fast) CreateSignature(items iter.Seq[[]byte]) *bitvec.Vector {
	acc := packed.New(f.width)
	words := make([]uint64, f.nwords)

	for item := range items {
		f.streamWords(item, words)
		acc.Add(words)
	}

	return signOf(acc.Sums())
}

// CreateSignatureWeighted computes the signature of a weighted token stream.
// NaN and infinite weights are rejected with ErrNonFiniteWeight.
//
// Weighted streams bypass the packed lanes: fractional weights have no packed
// representation, and mixing packed and direct updates would reorder float
// additions relative to the baseline. Applying every ±w in stream order keeps
// the output bit-identical to Classic for arbitrary weights.
func (f *Fast) CreateSignatureWeighted(items iter.Seq2[[]byte, float64]) (*bitvec.Vector, error) {
	acc := packed.New(f.width)
	words := make([]uint64, f.nwords)

	idx := 0
	for item, w := range items {
		if !isFinite(w) {
			return nil, &ErrNonFiniteWeight{Index: idx, Weight: w}
		}

		f.streamWords(item, words)
		acc.AddWeighted(words, w)
		idx++
	}

	return signOf(acc.Sums()), nil
}

// streamWords fills words with the item's direction bits, using the same
// derivation as Classic (see accumulateStream).
func (f *Fast) streamWords(item []byte, words []uint64) {
	st := splitmix.New(f.h.Sum64(item) ^ f.seed)
	for i := range words {
		words[i] = st.Next()
	}
}
