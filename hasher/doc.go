// Package hasher defines the keyed-hash capability consumed by the signature
// generators, plus SipHash and XXH3 implementations of it.
//
// The contract is small: for a fixed key or seed, Sum64 must be
// deterministic and distribute its bits uniformly. Any primitive satisfying
// that — a keyed universal hash, a fast non-cryptographic hash — can be
// plugged into a generator without touching the accumulation code.
//
// Implementations hold only their key and are safe for concurrent use after
// construction.
package hasher
