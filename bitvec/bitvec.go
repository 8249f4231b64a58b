package bitvec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
)

const wordBits = 64

var (
	// ErrNoVectors is returned by Centroid when no input vectors are given.
	ErrNoVectors = errors.New("at least one vector is required")

	// ErrPaddingBits is returned by FromBytes when bits beyond the declared
	// width are set in the input.
	ErrPaddingBits = errors.New("nonzero padding bits beyond vector width")
)

// ErrWidthMismatch indicates an operation combined two vectors of different
// widths. Widths are fixed at construction; the operation is refused rather
// than truncated or padded.
type ErrWidthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrWidthMismatch) Error() string {
	return fmt.Sprintf("width mismatch: expected %d bits, got %d", e.Expected, e.Actual)
}

// ErrInvalidLength indicates a byte slice of the wrong size was passed to
// FromBytes for the declared width.
type ErrInvalidLength struct {
	Expected int
	Actual   int
}

func (e *ErrInvalidLength) Error() string {
	return fmt.Sprintf("invalid encoding length: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Vector is an immutable fixed-width bit vector.
type Vector struct {
	width int
	words []uint64
}

// wordCount returns the number of uint64 words needed for width bits.
func wordCount(width int) int {
	return (width + wordBits - 1) / wordBits
}

// FromThreshold builds a width-bit vector from a sign function: bit i is set
// iff sign(i) >= 0. An exactly-zero value maps to a set bit; there is no
// natural sign for zero, so the boundary is fixed here once and relied on by
// every signature generator.
func FromThreshold(width int, sign func(i int) float64) *Vector {
	words := make([]uint64, wordCount(width))
	for i := 0; i < width; i++ {
		if sign(i) >= 0 {
			words[i/wordBits] |= 1 << (i % wordBits)
		}
	}
	return &Vector{width: width, words: words}
}

// FromWords builds a vector over a copy of the given words. Padding bits
// above width are cleared to maintain the vector invariant.
func FromWords(width int, words []uint64) (*Vector, error) {
	if len(words) != wordCount(width) {
		return nil, &ErrInvalidLength{Expected: wordCount(width), Actual: len(words)}
	}
	cp := make([]uint64, len(words))
	copy(cp, words)
	maskPadding(width, cp)
	return &Vector{width: width, words: cp}, nil
}

// FromBytes reconstructs a vector from its Bytes encoding. The slice must be
// exactly (width+7)/8 bytes, little-endian, and any bits beyond width must
// be zero.
func FromBytes(width int, data []byte) (*Vector, error) {
	n := (width + 7) / 8
	if len(data) != n {
		return nil, &ErrInvalidLength{Expected: n, Actual: len(data)}
	}

	words := make([]uint64, wordCount(width))
	for i, b := range data {
		words[i/8] |= uint64(b) << (8 * (i % 8))
	}

	// Reject encodings that violate the zero-padding invariant instead of
	// silently masking: a set padding bit means the caller's bytes do not
	// describe a width-bit vector.
	for i, w := range words {
		masked := w
		if hi := width - i*wordBits; hi < wordBits {
			masked &= (uint64(1) << hi) - 1
		}
		if masked != w {
			return nil, ErrPaddingBits
		}
	}

	return &Vector{width: width, words: words}, nil
}

func maskPadding(width int, words []uint64) {
	if rem := width % wordBits; rem != 0 && len(words) > 0 {
		words[len(words)-1] &= (uint64(1) << rem) - 1
	}
}

// Width returns the number of bits in the vector.
func (v *Vector) Width() int {
	return v.width
}

// Bit reports whether bit i is set. It panics if i is out of range, like a
// slice index.
func (v *Vector) Bit(i int) bool {
	if i < 0 || i >= v.width {
		panic(fmt.Sprintf("bitvec: bit index %d out of range [0,%d)", i, v.width))
	}
	return v.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// OnesCount returns the number of set bits.
func (v *Vector) OnesCount() int {
	var n int
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// HammingDistance returns the number of bit positions in which v and o
// differ. Both vectors must have the same width.
//
// This is the hot path of any duplicate-detection workload: one XOR and one
// popcount per word, no branching per bit.
func (v *Vector) HammingDistance(o *Vector) (int, error) {
	if v.width != o.width {
		return 0, &ErrWidthMismatch{Expected: v.width, Actual: o.width}
	}
	var dist int
	for i := range v.words {
		dist += bits.OnesCount64(v.words[i] ^ o.words[i])
	}
	return dist, nil
}

// Equal reports whether v and o have the same width and bits.
func (v *Vector) Equal(o *Vector) bool {
	if v.width != o.width {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Bytes returns the little-endian encoding of the vector, (width+7)/8 bytes.
// The result round-trips through FromBytes.
func (v *Vector) Bytes() []byte {
	buf := make([]byte, len(v.words)*8)
	for i, w := range v.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf[:(v.width+7)/8]
}

// Words returns a copy of the packed words. The last word has its padding
// bits zero.
func (v *Vector) Words() []uint64 {
	cp := make([]uint64, len(v.words))
	copy(cp, v.words)
	return cp
}

// String returns the hex encoding of Bytes.
func (v *Vector) String() string {
	return hex.EncodeToString(v.Bytes())
}

// Centroid combines equal-width vectors by per-bit majority vote: bit i of
// the result is set iff at least half of the inputs have bit i set (ties map
// to a set bit, consistent with the FromThreshold zero boundary).
func Centroid(vectors []*Vector) (*Vector, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}

	width := vectors[0].width
	counts := make([]int, width)
	for _, v := range vectors {
		if v.width != width {
			return nil, &ErrWidthMismatch{Expected: width, Actual: v.width}
		}
		for i := 0; i < width; i++ {
			if v.words[i/wordBits]&(1<<(i%wordBits)) != 0 {
				counts[i]++
			}
		}
	}

	n := len(vectors)
	return FromThreshold(width, func(i int) float64 {
		return float64(2*counts[i] - n)
	}), nil
}
