package sigbank

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsig"
	"github.com/hupe1980/simsig/bitvec"
	"github.com/hupe1980/simsig/hasher"
)

func newTestBank(t *testing.T, width, n int, optFns ...func(o *Options)) *Bank {
	t.Helper()

	bank, err := New(width, optFns...)
	require.NoError(t, err)

	f, err := simsig.NewFast(hasher.NewXXH3(42), width)
	require.NoError(t, err)

	for i := range n {
		doc := [][]byte{[]byte(fmt.Sprintf("doc-%d-a", i)), []byte(fmt.Sprintf("doc-%d-b", i))}
		require.NoError(t, bank.Put(uint64(i*7), f.CreateSignature(slices.Values(doc))))
	}

	return bank
}

func TestBankCRUD(t *testing.T) {
	bank := newTestBank(t, 128, 10)
	require.Equal(t, 10, bank.Len())
	require.Equal(t, 128, bank.Width())

	sig, ok := bank.Get(7)
	require.True(t, ok)
	require.Equal(t, 128, sig.Width())

	_, ok = bank.Get(8)
	require.False(t, ok)

	require.True(t, bank.Contains(7))
	require.False(t, bank.Contains(8))

	require.True(t, bank.Delete(7))
	require.False(t, bank.Delete(7))
	require.False(t, bank.Contains(7))
	require.Equal(t, 9, bank.Len())
}

func TestBankPutWidthMismatch(t *testing.T) {
	bank, err := New(128)
	require.NoError(t, err)

	sig := bitvec.FromThreshold(64, func(int) float64 { return 1 })
	err = bank.Put(1, sig)

	var wErr *bitvec.ErrWidthMismatch
	require.ErrorAs(t, err, &wErr)
	require.Equal(t, 128, wErr.Expected)
	require.Equal(t, 64, wErr.Actual)
}

func TestBankInvalidWidth(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, simsig.ErrInvalidWidth)
}

func TestBankForEachAscending(t *testing.T) {
	bank := newTestBank(t, 64, 20)

	var ids []uint64
	bank.ForEach(func(id uint64, sig *bitvec.Vector) bool {
		require.NotNil(t, sig)
		ids = append(ids, id)
		return true
	})

	require.Len(t, ids, 20)
	require.True(t, slices.IsSorted(ids))
}

func TestBankForEachEarlyStop(t *testing.T) {
	bank := newTestBank(t, 64, 20)

	calls := 0
	bank.ForEach(func(uint64, *bitvec.Vector) bool {
		calls++
		return calls < 5
	})

	require.Equal(t, 5, calls)
}

func TestBankIDsIsCopy(t *testing.T) {
	bank := newTestBank(t, 64, 5)

	ids := bank.IDs()
	ids.Add(999)

	require.False(t, bank.Contains(999))
}

func TestBankSnapshotRoundTrip(t *testing.T) {
	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(fmt.Sprintf("Compression%d", ct), func(t *testing.T) {
			bank := newTestBank(t, 100, 50, WithCompression(ct))

			var buf bytes.Buffer
			n, err := bank.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(buf.Len()), n)

			loaded, err := Read(&buf)
			require.NoError(t, err)
			require.Equal(t, bank.Width(), loaded.Width())
			require.Equal(t, bank.Len(), loaded.Len())

			bank.ForEach(func(id uint64, sig *bitvec.Vector) bool {
				got, ok := loaded.Get(id)
				require.True(t, ok)
				require.True(t, sig.Equal(got))
				return true
			})
		})
	}
}

func TestBankSnapshotDeterministic(t *testing.T) {
	a := newTestBank(t, 128, 30)
	b := newTestBank(t, 128, 30)

	var bufA, bufB bytes.Buffer
	_, err := a.WriteTo(&bufA)
	require.NoError(t, err)
	_, err = b.WriteTo(&bufB)
	require.NoError(t, err)

	require.Equal(t, bufA.Bytes(), bufB.Bytes())
}

func TestBankSnapshotEmpty(t *testing.T) {
	bank, err := New(64)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = bank.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Len())
	require.Equal(t, 64, loaded.Width())
}

func TestBankReadBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	copy(data, "NOPE")

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestBankReadChecksumMismatch(t *testing.T) {
	bank := newTestBank(t, 64, 10)

	var buf bytes.Buffer
	_, err := bank.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	_, err = Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

// craftedHeader builds a snapshot header with the given fields and an empty
// body whose checksum is valid, so only the length consistency checks stand
// between the header and the entry loop.
func craftedHeader(width uint32, count, uncompressedLen uint64) []byte {
	data := make([]byte, 0, headerSize)
	data = append(data, snapshotMagic[:]...)
	data = append(data, byte(CompressionNone))
	data = binary.LittleEndian.AppendUint32(data, width)
	data = binary.LittleEndian.AppendUint64(data, count)
	data = binary.LittleEndian.AppendUint64(data, uncompressedLen)
	data = binary.LittleEndian.AppendUint64(data, 0) // compressedLen
	data = binary.LittleEndian.AppendUint32(data, 0) // crc32c of empty body
	return data
}

func TestBankReadCraftedCount(t *testing.T) {
	tests := []struct {
		name            string
		width           uint32
		count           uint64
		uncompressedLen uint64
	}{
		// 2^60 entries of 16 bytes wraps to 0 in uint64, matching the
		// declared empty body.
		{name: "CountOverflowWraps", width: 64, count: 1 << 60, uncompressedLen: 0},
		{name: "CountWithoutBody", width: 64, count: 1, uncompressedLen: 0},
		{name: "BodyWithoutCount", width: 64, count: 0, uncompressedLen: 16},
		{name: "MaxCount", width: 64, count: ^uint64(0), uncompressedLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(craftedHeader(tt.width, tt.count, tt.uncompressedLen)))
			require.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestBankReadTruncated(t *testing.T) {
	bank := newTestBank(t, 64, 10)

	var buf bytes.Buffer
	_, err := bank.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()

	for _, cut := range []int{0, 3, headerSize - 1, headerSize + 5, len(data) - 1} {
		t.Run(fmt.Sprintf("Cut%d", cut), func(t *testing.T) {
			_, err := Read(bytes.NewReader(data[:cut]))
			require.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}
