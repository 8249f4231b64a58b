package packed

const (
	lanesPerWord = 8

	// flushEvery is the number of ±1 updates a lane can absorb before it
	// must be flushed into the wide accumulator. See the package doc for
	// the bound derivation.
	flushEvery = 126

	bias        = 128
	biasPattern = 0x8080808080808080

	// lsbMask has the low bit of every lane set.
	lsbMask = 0x0101010101010101

	// diagMask has bit k of lane k set; it isolates one direction bit per
	// lane after byte replication.
	diagMask = 0x8040201008040201
)

// Accumulator accumulates signed per-lane sums for a fixed number of lanes.
// It is not safe for concurrent use; each signature computation owns one.
type Accumulator struct {
	lanes   int
	packed  []uint64
	wide    []float64
	pending int
	flushes int
}

// New creates an accumulator with the given number of lanes (output bits).
func New(lanes int) *Accumulator {
	a := &Accumulator{
		lanes:  lanes,
		packed: make([]uint64, (lanes+lanesPerWord-1)/lanesPerWord),
		wide:   make([]float64, lanes),
	}
	a.resetPacked()
	return a
}

// Lanes returns the number of lanes.
func (a *Accumulator) Lanes() int {
	return a.lanes
}

// Flushes returns how many times the packed lanes have been widened into
// the float64 accumulator.
func (a *Accumulator) Flushes() int {
	return a.flushes
}

// Add applies one ±1 update to every lane: bit i of words (little-endian bit
// order across words) selects +1 when set and -1 when clear for lane i.
// words must hold at least ceil(lanes/64) entries; bits beyond the lane
// count are ignored.
func (a *Accumulator) Add(words []uint64) {
	if a.pending == flushEvery {
		a.flush()
	}
	for j := range a.packed {
		b := byte(words[j/8] >> (8 * (j % 8)))
		a.packed[j] = a.packed[j] - lsbMask + (spread(b) << 1)
	}
	a.pending++
}

// AddWeighted applies one ±w update to every lane directly on the wide
// accumulator. This is the fallback for non-unit weights, which have no
// packed representation.
func (a *Accumulator) AddWeighted(words []uint64, w float64) {
	for i := range a.wide {
		if words[i/64]&(1<<(i%64)) != 0 {
			a.wide[i] += w
		} else {
			a.wide[i] -= w
		}
	}
}

// Sums flushes any pending packed updates and returns the wide per-lane
// sums. The returned slice is owned by the accumulator.
func (a *Accumulator) Sums() []float64 {
	if a.pending > 0 {
		a.flush()
	}
	return a.wide
}

// spread distributes the 8 bits of b across the 8 lanes of a word: lane k
// holds 1 if bit k of b is set, else 0.
func spread(b byte) uint64 {
	x := uint64(b) * lsbMask // replicate b into every lane
	x &= diagMask            // lane k keeps only bit k
	x |= x >> 4              // smear the surviving bit down to the lane LSB;
	x |= x >> 2              // spill into lane k-1 stays above its LSB, so
	x |= x >> 1              // the final mask discards it
	return x & lsbMask
}

func (a *Accumulator) flush() {
	for i := range a.wide {
		lane := byte(a.packed[i/lanesPerWord] >> (8 * (i % lanesPerWord)))
		a.wide[i] += float64(int(lane) - bias)
	}
	a.resetPacked()
	a.pending = 0
	a.flushes++
}

func (a *Accumulator) resetPacked() {
	for i := range a.packed {
		a.packed[i] = biasPattern
	}
}
