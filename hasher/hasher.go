package hasher

// Hasher is the keyed 64-bit hash capability. Sum64 must be deterministic
// for a fixed key and uniform across its output bits.
type Hasher interface {
	Sum64(item []byte) uint64
}

// Hasher128 extends Hasher with a 128-bit output for callers that need the
// wider value (e.g. 128-bit external fingerprints).
type Hasher128 interface {
	Hasher
	Sum128(item []byte) (hi, lo uint64)
}
