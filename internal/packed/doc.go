// Package packed implements the word-parallel counter engine behind the
// fast signature generator.
//
// Eight 8-bit lanes share one uint64 word; lane i of the accumulator tracks
// the running ±1 sum for output bit i. One Add call updates every lane from
// a stream of direction bits using two word-wide operations per packed word:
// subtract the per-lane LSB mask, then add twice the spread direction bits
// (net effect +1 for a set bit, -1 for a clear bit). Lanes are stored with a
// bias so that negatives stay representable without sign handling.
//
// Invariants:
//
//	lane width        8 bits, 8 lanes per uint64
//	bias              128 (0x80), lane value = bias + partial sum
//	update delta      ±1 per lane per Add
//	flush threshold   126 Adds per epoch
//	lane range        [2, 254] before an Add, [1, 255] transiently during it
//
// The -1 step can never borrow into the neighbouring lane because a lane is
// at least 1 at that point, and the +2 step can never carry out because a
// lane is at most 253 before it. The flush threshold is what enforces both
// bounds: after 126 updates every lane is flushed into a float64 wide
// accumulator and reset to the bias, so saturation is unreachable and the
// packed engine is exact for streams of any length.
package packed
