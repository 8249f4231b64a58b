// Package bitvec provides the fixed-width bit vector that signature
// generators emit and compare.
//
// A Vector packs its bits into uint64 words (bit i lives in word i/64 at
// position i%64, matching little-endian byte serialization). Hamming
// distance is computed as the population count of the word-wise XOR, so a
// comparison costs ceil(width/64) word operations with no per-bit branching.
//
// Vectors are immutable once constructed. Padding bits above the width in
// the last word are always zero; FromBytes rejects input that violates this.
package bitvec
