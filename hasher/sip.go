package hasher

import "github.com/dchest/siphash"

// Sip64 is a SipHash-2-4 keyed hasher with a 64-bit output.
type Sip64 struct {
	k0, k1 uint64
}

// NewSip64 creates a Sip64 with the given 128-bit key halves.
func NewSip64(k0, k1 uint64) *Sip64 {
	return &Sip64{k0: k0, k1: k1}
}

// Sum64 implements Hasher.
func (h *Sip64) Sum64(item []byte) uint64 {
	return siphash.Hash(h.k0, h.k1, item)
}

// Sip128 is a SipHash-2-4 keyed hasher with a 128-bit output.
type Sip128 struct {
	k0, k1 uint64
}

// NewSip128 creates a Sip128 with the given 128-bit key halves.
func NewSip128(k0, k1 uint64) *Sip128 {
	return &Sip128{k0: k0, k1: k1}
}

// Sum128 implements Hasher128.
func (h *Sip128) Sum128(item []byte) (hi, lo uint64) {
	lo, hi = siphash.Hash128(h.k0, h.k1, item)
	return hi, lo
}

// Sum64 implements Hasher by folding the two output halves. Folding keeps
// the value decorrelated from Sip64 under the same key.
func (h *Sip128) Sum64(item []byte) uint64 {
	hi, lo := h.Sum128(item)
	return hi ^ lo
}
