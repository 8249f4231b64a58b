package packed

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference applies the same update to a plain per-lane accumulator.
func reference(wide []float64, words []uint64, w float64) {
	for i := range wide {
		if words[i/64]&(1<<(i%64)) != 0 {
			wide[i] += w
		} else {
			wide[i] -= w
		}
	}
}

func randomWords(rng *rand.Rand, lanes int) []uint64 {
	words := make([]uint64, (lanes+63)/64)
	for i := range words {
		words[i] = rng.Uint64()
	}
	return words
}

func TestSpread(t *testing.T) {
	tests := []struct {
		b        byte
		expected uint64
	}{
		{0x00, 0x0000000000000000},
		{0xFF, 0x0101010101010101},
		{0x01, 0x0000000000000001},
		{0x80, 0x0100000000000000},
		{0xA5, 0x0100010000010001}, // 1010_0101
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.expected, spread(tt.b), "spread(%#02x)", tt.b)
	}
}

func TestSpreadExhaustive(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := spread(byte(b))
		for k := 0; k < 8; k++ {
			lane := byte(got >> (8 * k))
			if b&(1<<k) != 0 {
				require.Equalf(t, byte(1), lane, "b=%#02x lane %d", b, k)
			} else {
				require.Equalf(t, byte(0), lane, "b=%#02x lane %d", b, k)
			}
		}
	}
}

func TestAddMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, lanes := range []int{64, 128, 100, 8, 1, 1024} {
		t.Run(fmt.Sprintf("Lanes%d", lanes), func(t *testing.T) {
			acc := New(lanes)
			want := make([]float64, lanes)

			// Cross the flush boundary several times.
			for u := 0; u < 400; u++ {
				words := randomWords(rng, lanes)
				acc.Add(words)
				reference(want, words, 1)
			}

			assert.Equal(t, want, acc.Sums())
			assert.Positive(t, acc.Flushes())
		})
	}
}

func TestFlushBoundary(t *testing.T) {
	// All-clear direction bits drive every lane down by 1 per update: the
	// worst case for the lower lane bound.
	down := make([]uint64, 1)

	t.Run("ExactlyAtThreshold", func(t *testing.T) {
		acc := New(64)
		for u := 0; u < flushEvery; u++ {
			acc.Add(down)
		}
		assert.Zero(t, acc.Flushes(), "no flush needed until the threshold is exceeded")

		sums := acc.Sums()
		assert.Equal(t, 1, acc.Flushes())
		for _, s := range sums {
			assert.Equal(t, float64(-flushEvery), s)
		}
	})

	t.Run("OnePastThreshold", func(t *testing.T) {
		acc := New(64)
		for u := 0; u < flushEvery+1; u++ {
			acc.Add(down)
		}
		assert.Equal(t, 1, acc.Flushes(), "the 127th update must trigger a flush first")

		sums := acc.Sums()
		for _, s := range sums {
			assert.Equal(t, float64(-(flushEvery + 1)), s)
		}
	})

	t.Run("AllUp", func(t *testing.T) {
		up := []uint64{^uint64(0)}
		acc := New(64)
		for u := 0; u < 3*flushEvery; u++ {
			acc.Add(up)
		}
		for _, s := range acc.Sums() {
			assert.Equal(t, float64(3*flushEvery), s)
		}
	})
}

func TestAddWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const lanes = 128

	acc := New(lanes)
	want := make([]float64, lanes)

	for u := 0; u < 200; u++ {
		words := randomWords(rng, lanes)
		switch u % 3 {
		case 0:
			acc.Add(words)
			reference(want, words, 1)
		case 1:
			acc.AddWeighted(words, 2.5)
			reference(want, words, 2.5)
		default:
			acc.AddWeighted(words, -0.75)
			reference(want, words, -0.75)
		}
	}

	got := acc.Sums()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}

func TestSumsIdempotent(t *testing.T) {
	acc := New(64)
	acc.Add([]uint64{0xF0F0F0F0F0F0F0F0})

	first := append([]float64(nil), acc.Sums()...)
	second := acc.Sums()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, acc.Flushes())
}
