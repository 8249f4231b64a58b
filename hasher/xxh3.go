package hasher

import "github.com/zeebo/xxh3"

// XXH3 is a seeded XXH3 hasher with a 64-bit output.
type XXH3 struct {
	seed uint64
}

// NewXXH3 creates an XXH3 hasher with the given seed.
func NewXXH3(seed uint64) *XXH3 {
	return &XXH3{seed: seed}
}

// Sum64 implements Hasher.
func (h *XXH3) Sum64(item []byte) uint64 {
	return xxh3.HashSeed(item, h.seed)
}

// XXH3128 is a seeded XXH3 hasher with a 128-bit output.
type XXH3128 struct {
	seed uint64
}

// NewXXH3128 creates an XXH3128 hasher with the given seed.
func NewXXH3128(seed uint64) *XXH3128 {
	return &XXH3128{seed: seed}
}

// Sum128 implements Hasher128.
func (h *XXH3128) Sum128(item []byte) (hi, lo uint64) {
	v := xxh3.Hash128Seed(item, h.seed)
	return v.Hi, v.Lo
}

// Sum64 implements Hasher by folding the two output halves.
func (h *XXH3128) Sum64(item []byte) uint64 {
	hi, lo := h.Sum128(item)
	return hi ^ lo
}
