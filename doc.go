// Package simsig computes compact binary fingerprints of weighted token
// multisets whose Hamming distance estimates the angle between the
// underlying token-weight vectors (sign random projection, a.k.a. SimHash).
//
// Three generators share one output type, bitvec.Vector:
//
//   - Classic: the baseline random-hyperplane estimator.
//   - Fast: the same estimator computed with word-parallel packed counters;
//     its output is bit-identical to Classic for every input.
//   - SuperBit: generates hyperplanes in mutually orthogonal batches, which
//     lowers the variance of the angle estimate for the same width.
//
// # Quick start
//
//	h := hasher.NewXXH3(42)
//	sh, _ := simsig.NewFast(h, 64)
//
//	a := sh.CreateSignature(slices.Values(tokensA))
//	b := sh.CreateSignature(slices.Values(tokensB))
//
//	d, _ := a.HammingDistance(b)
//
// # Interpreting distances
//
// For signatures of width L, each bit position differs with probability
// θ/π, where θ is the angle between the two implicit token-weight vectors.
// Callers recover similarity estimates as
//
//	θ ≈ d/L · π
//	cosine ≈ cos(θ)
//
// The estimate is statistical; its error shrinks as L grows. The library
// deliberately computes only d — converting it into angles or cosines, and
// any indexing or nearest-neighbor retrieval over many fingerprints, belongs
// to the caller.
//
// # Determinism and concurrency
//
// A generator is bound at construction to a width, a keyed hasher, and a
// seed; identical inputs always produce identical signatures, across runs
// and processes. Generators hold no mutable state between calls, so a single
// instance may be shared by any number of goroutines (see BatchSignatures).
package simsig
