package sigbank

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the snapshot body compression algorithm.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD compression (better ratio).
	CompressionZSTD CompressionType = 2
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressBody compresses data with the requested algorithm. It returns the
// body and the type actually used: incompressible LZ4 input falls back to
// CompressionNone so the snapshot never grows past the raw body.
func compressBody(data []byte, compressionType CompressionType) ([]byte, CompressionType, error) {
	switch compressionType {
	case CompressionNone:
		return data, CompressionNone, nil

	case CompressionLZ4:
		compressed := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, compressed, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 || n >= len(data) {
			return data, CompressionNone, nil
		}
		return compressed[:n], CompressionLZ4, nil

	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)

		return enc.EncodeAll(data, nil), CompressionZSTD, nil

	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, compressionType)
	}
}

// decompressBody inverts compressBody. uncompressedLen comes from the
// snapshot header and must match the decoded size exactly.
func decompressBody(data []byte, compressionType CompressionType, uncompressedLen int) ([]byte, error) {
	switch compressionType {
	case CompressionNone:
		if len(data) != uncompressedLen {
			return nil, fmt.Errorf("%w: body length %d, header says %d", ErrCorruptSnapshot, len(data), uncompressedLen)
		}
		return data, nil

	case CompressionLZ4:
		result := make([]byte, uncompressedLen)
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, err
		}
		if n != uncompressedLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorruptSnapshot, n, uncompressedLen)
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(data, make([]byte, 0, uncompressedLen))
		if err != nil {
			return nil, err
		}
		if len(decoded) != uncompressedLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorruptSnapshot, len(decoded), uncompressedLen)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compressionType)
	}
}
