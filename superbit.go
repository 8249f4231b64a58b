package simsig

import (
	"encoding/binary"
	"iter"
	"math"

	"github.com/zeebo/xxh3"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/simsig/bitvec"
	"github.com/hupe1980/simsig/hasher"
	"github.com/hupe1980/simsig/internal/splitmix"
)

// golden32 separates per-block sub-seeds.
const golden32 = 0x9E3779B9

// SuperBit is the batch-orthogonalized signature generator: the width
// hyperplane directions are generated in width/block batches, and within
// each batch the directions are made mutually orthonormal by Gram-Schmidt.
// Orthogonalizing small batches lowers the variance of the Hamming-based
// angle estimator compared to fully independent directions, at the cost of
// one orthogonalization pass at construction time.
//
// A block size of 1 degenerates to Classic exactly: a singleton batch
// carries no orthogonality information, so SuperBit(h, w, 1, seed) produces
// bit-identical output to Classic(h, w, WithSeed(seed)). A block size equal
// to the width orthogonalizes all directions globally.
//
// A SuperBit instance is immutable after construction and safe for
// concurrent use.
type SuperBit struct {
	h     hasher.Hasher
	width int
	block int
	seed  uint64

	// blocks[b][j] is the j-th orthonormal column of batch b, length block.
	// nil when block == 1.
	blocks [][][]float64
}

// NewSuperBit creates a SuperBit generator emitting width-bit signatures
// with the given batch size and seed. It fails with ErrBlockSize unless
// 1 <= block and block divides width.
func NewSuperBit(h hasher.Hasher, width, block int, seed uint64) (*SuperBit, error) {
	if width < 1 {
		return nil, ErrInvalidWidth
	}
	if block < 1 || width%block != 0 {
		return nil, &ErrBlockSize{Width: width, Block: block}
	}

	sb := &SuperBit{h: h, width: width, block: block, seed: seed}

	if block > 1 {
		sb.blocks = make([][][]float64, width/block)
		for b := range sb.blocks {
			sb.blocks[b] = orthonormalBlock(block, seed^(uint64(b)*golden32))
		}
	}

	return sb, nil
}

// Width returns the signature width in bits.
func (s *SuperBit) Width() int {
	return s.width
}

// BlockSize returns the orthogonalization batch size.
func (s *SuperBit) BlockSize() int {
	return s.block
}

// CreateSignature computes the signature of an unweighted token stream.
func (s *SuperBit) CreateSignature(items iter.Seq[[]byte]) *bitvec.Vector {
	counts := make([]float64, s.width)
	for item := range items {
		s.accumulate(counts, item, 1)
	}
	return signOf(counts)
}

// CreateSignatureWeighted computes the signature of a weighted token stream.
// NaN and infinite weights are rejected with ErrNonFiniteWeight.
func (s *SuperBit) CreateSignatureWeighted(items iter.Seq2[[]byte, float64]) (*bitvec.Vector, error) {
	counts := make([]float64, s.width)
	idx := 0
	for item, w := range items {
		if !isFinite(w) {
			return nil, &ErrNonFiniteWeight{Index: idx, Weight: w}
		}
		if w != 0 {
			s.accumulate(counts, item, w)
		}
		idx++
	}
	return signOf(counts), nil
}

func (s *SuperBit) accumulate(counts []float64, item []byte, w float64) {
	base := s.h.Sum64(item)

	if s.block == 1 {
		accumulateStream(counts, base^s.seed, w)
		return
	}

	r := s.block
	for b, cols := range s.blocks {
		// One sign stream per (item, batch); the derivation is part of the
		// signature format.
		st := splitmix.New(s.seed ^ base ^ (uint64(b) << 32))

		seg := counts[b*r : (b+1)*r]
		for j := 0; j < r; j++ {
			g := w
			if st.Next()>>63 != 0 {
				g = -w
			}
			floats.AddScaled(seg, g, cols[j])
		}
	}
}

// orthonormalBlock draws an r×r matrix of N(0,1) entries and orthonormalizes
// its columns with modified Gram-Schmidt. The returned columns satisfy
// |dot(col_i, col_j)| ≈ 0 for i != j and |col_i| = 1.
func orthonormalBlock(r int, seed uint64) [][]float64 {
	cols := make([][]float64, r)
	var k uint64
	for j := range cols {
		col := make([]float64, r)
		for i := range col {
			col[i] = gaussian(seed, k)
			k++
		}
		cols[j] = col
	}

	for j := range cols {
		for p := 0; p < j; p++ {
			d := floats.Dot(cols[j], cols[p])
			floats.AddScaled(cols[j], -d, cols[p])
		}
		n := floats.Norm(cols[j], 2)
		if n < 1e-12 {
			n = 1e-12
		}
		floats.Scale(1/n, cols[j])
	}

	return cols
}

// gaussian draws the k-th N(0,1) value of the seed's sequence via hashed
// Box-Muller.
func gaussian(seed, k uint64) float64 {
	u1 := u01(seed, 2*k)
	u2 := u01(seed, 2*k+1)
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// u01 maps a counter to (0,1), exclusive on both ends so the Box-Muller log
// stays finite.
func u01(seed, x uint64) float64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	v := xxh3.HashSeed(buf[:], seed)
	return (float64(v>>11) + 0.5) / (1 << 53)
}
