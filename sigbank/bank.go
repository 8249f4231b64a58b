package sigbank

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/simsig"
	"github.com/hupe1980/simsig/bitvec"
)

var (
	// ErrBadMagic is returned when snapshot data does not start with the
	// expected magic bytes.
	ErrBadMagic = errors.New("not a signature bank snapshot")

	// ErrCorruptSnapshot is returned when snapshot data is truncated or
	// internally inconsistent.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrChecksumMismatch is returned when the snapshot body does not match
	// its stored checksum.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrUnknownCompression is returned for an unrecognized compression type.
	ErrUnknownCompression = errors.New("unknown compression type")
)

// snapshotMagic identifies bank snapshots. The trailing byte is the format
// version.
var snapshotMagic = [4]byte{'S', 'B', 'K', '1'}

// Snapshot header layout, all integers little-endian:
//
//	magic            [4]byte
//	compression      uint8
//	width            uint32
//	count            uint64
//	uncompressedLen  uint64
//	compressedLen    uint64
//	checksum         uint32  crc32c over the (compressed) body
//	body             count × (id uint64 + (width+7)/8 signature bytes)
const headerSize = 4 + 1 + 4 + 8 + 8 + 8 + 4

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Options configures a Bank.
type Options struct {
	// Logger receives snapshot logs. Defaults to NoopLogger.
	Logger *simsig.Logger

	// Compression selects the snapshot body compression.
	// Defaults to CompressionNone.
	Compression CompressionType
}

// Bank is an in-memory store of equal-width signatures keyed by document ID.
// All methods are safe for concurrent use.
type Bank struct {
	mu      sync.RWMutex
	width   int
	ids     *roaring64.Bitmap
	sigs    map[uint64]*bitvec.Vector
	logger  *simsig.Logger
	compr   CompressionType
	sigSize int
}

// New creates an empty Bank holding width-bit signatures.
func New(width int, optFns ...func(o *Options)) (*Bank, error) {
	if width < 1 {
		return nil, simsig.ErrInvalidWidth
	}

	opts := Options{
		Logger:      simsig.NoopLogger(),
		Compression: CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Bank{
		width:   width,
		ids:     roaring64.New(),
		sigs:    make(map[uint64]*bitvec.Vector),
		logger:  opts.Logger,
		compr:   opts.Compression,
		sigSize: (width + 7) / 8,
	}, nil
}

// WithLogger sets the bank logger.
func WithLogger(logger *simsig.Logger) func(o *Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCompression sets the snapshot compression type.
func WithCompression(ct CompressionType) func(o *Options) {
	return func(o *Options) {
		o.Compression = ct
	}
}

// Width returns the signature width in bits.
func (b *Bank) Width() int {
	return b.width
}

// Put stores sig under id, replacing any previous signature. The signature
// width must match the bank width.
func (b *Bank) Put(id uint64, sig *bitvec.Vector) error {
	if sig.Width() != b.width {
		return &bitvec.ErrWidthMismatch{Expected: b.width, Actual: sig.Width()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.ids.Add(id)
	b.sigs[id] = sig

	return nil
}

// Get returns the signature stored under id.
func (b *Bank) Get(id uint64) (*bitvec.Vector, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sig, ok := b.sigs[id]
	return sig, ok
}

// Delete removes id and reports whether it was present.
func (b *Bank) Delete(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sigs[id]; !ok {
		return false
	}

	b.ids.Remove(id)
	delete(b.sigs, id)

	return true
}

// Contains reports whether id is stored.
func (b *Bank) Contains(id uint64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.ids.Contains(id)
}

// Len returns the number of stored signatures.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.sigs)
}

// IDs returns a copy of the membership bitmap.
func (b *Bank) IDs() *roaring64.Bitmap {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.ids.Clone()
}

// ForEach calls fn for every stored signature in ascending ID order until fn
// returns false.
func (b *Bank) ForEach(fn func(id uint64, sig *bitvec.Vector) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	it := b.ids.Iterator()
	for it.HasNext() {
		id := it.Next()
		if !fn(id, b.sigs[id]) {
			return
		}
	}
}

// WriteTo writes a snapshot of the bank. Entries are written in ascending ID
// order, so the output is a deterministic function of the contents.
func (b *Bank) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()

	body := make([]byte, 0, b.ids.GetCardinality()*uint64(8+b.sigSize))
	it := b.ids.Iterator()
	for it.HasNext() {
		id := it.Next()
		body = binary.LittleEndian.AppendUint64(body, id)
		body = append(body, b.sigs[id].Bytes()...)
	}
	count := uint64(len(b.sigs))
	compr := b.compr

	b.mu.RUnlock()

	compressed, usedCompr, err := compressBody(body, compr)
	if err != nil {
		b.logger.LogSnapshot(context.Background(), int(count), err)
		return 0, err
	}

	buf := make([]byte, 0, headerSize+len(compressed))
	buf = append(buf, snapshotMagic[:]...)
	buf = append(buf, byte(usedCompr))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(b.width))
	buf = binary.LittleEndian.AppendUint64(buf, count)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(body)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(compressed)))
	buf = binary.LittleEndian.AppendUint32(buf, crc32.Checksum(compressed, crc32cTable))
	buf = append(buf, compressed...)

	n, err := w.Write(buf)
	b.logger.LogSnapshot(context.Background(), int(count), err)

	return int64(n), err
}

// Read loads a snapshot written by WriteTo.
func Read(r io.Reader, optFns ...func(o *Options)) (*Bank, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if [4]byte(header[:4]) != snapshotMagic {
		return nil, ErrBadMagic
	}

	compr := CompressionType(header[4])
	width := int(binary.LittleEndian.Uint32(header[5:]))
	count := binary.LittleEndian.Uint64(header[9:])
	uncompressedLen := binary.LittleEndian.Uint64(header[17:])
	compressedLen := binary.LittleEndian.Uint64(header[25:])
	checksum := binary.LittleEndian.Uint32(header[33:])

	if width < 1 {
		return nil, fmt.Errorf("%w: width %d", ErrCorruptSnapshot, width)
	}

	// The product count*entrySize must reproduce uncompressedLen without
	// wrapping: a crafted count near 2^64 could otherwise multiply to a
	// small value and pass the length check.
	entrySize := 8 + uint64((width+7)/8)
	if count > math.MaxInt64/entrySize || uncompressedLen != count*entrySize {
		return nil, fmt.Errorf("%w: body length %d for %d entries", ErrCorruptSnapshot, uncompressedLen, count)
	}

	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if crc32.Checksum(compressed, crc32cTable) != checksum {
		return nil, ErrChecksumMismatch
	}

	body, err := decompressBody(compressed, compr, int(uncompressedLen))
	if err != nil {
		return nil, err
	}

	bank, err := New(width, optFns...)
	if err != nil {
		return nil, err
	}

	for i := uint64(0); i < count; i++ {
		entry := body[i*entrySize : (i+1)*entrySize]
		id := binary.LittleEndian.Uint64(entry)

		sig, err := bitvec.FromBytes(width, entry[8:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptSnapshot, i, err)
		}

		bank.ids.Add(id)
		bank.sigs[id] = sig
	}

	return bank, nil
}
