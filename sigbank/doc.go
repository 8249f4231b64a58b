// Package sigbank stores signatures keyed by document ID.
//
// A Bank is an in-memory map from uint64 IDs to fixed-width signatures, with
// a roaring bitmap tracking membership. It exists to hold the output of the
// simsig generators between computation and whatever retrieval layer the
// application builds on top; it deliberately offers no similarity search of
// its own.
//
// Banks snapshot to a single checksummed blob (optionally LZ4- or
// ZSTD-compressed) and load back with Read. The snapshot layout is
// deterministic: entries are written in ascending ID order, so two banks
// with the same contents produce identical bytes.
package sigbank
