package pairs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of a binary pair export.
type Compression uint8

const (
	// CompressionNone stores the pair block as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio, good for archived pair sets).
	CompressionZSTD Compression = 2
)

// String returns the flag spelling of c.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, errors.New("unknown compression " + s)
	}
}

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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the data is stored uncompressed.
const blockHeaderSize = 8

// lz4MaxExpansion bounds the output of an LZ4 block relative to its input.
// Each match-length byte adds at most 255 output bytes; the extra unit
// covers token and offset overhead.
const lz4MaxExpansion = 256

// zstdInitialExpansion sizes the first zstd output buffer; it grows only as
// decoded bytes arrive.
const zstdInitialExpansion = 8

var (
	errShortBlock    = errors.New("pairs: block too small")
	errBlockTooLarge = errors.New("pairs: block exceeds 4 GiB")
	errSizeMismatch  = errors.New("pairs: decompressed size mismatch")
)

// checkBlockSize rejects streams whose length does not fit the uint32
// header field.
func checkBlockSize(n uint64) error {
	if n > math.MaxUint32 {
		return errBlockTooLarge
	}
	return nil
}

func compressBlock(data []byte, c Compression) ([]byte, error) {
	if err := checkBlockSize(uint64(len(data))); err != nil {
		return nil, err
	}

	var compressed []byte

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	// Incompressible (or no compression requested): store raw
	if len(compressed) == 0 || len(compressed) >= len(data) {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

func decompressBlock(data []byte, c Compression) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, errShortBlock
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	body := data[blockHeaderSize:]

	if compressedSize == 0 {
		if uint64(len(body)) < uint64(uncompressedSize) {
			return nil, errShortBlock
		}
		return body[:uncompressedSize], nil
	}
	if uint64(len(body)) < uint64(compressedSize) {
		return nil, errShortBlock
	}
	body = body[:compressedSize]

	switch c {
	case CompressionLZ4:
		if uint64(uncompressedSize) > uint64(len(body))*lz4MaxExpansion {
			return nil, errSizeMismatch
		}
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errSizeMismatch
		}
		return out, nil
	case CompressionZSTD:
		return decompressZstd(body, uncompressedSize)
	default:
		return nil, errors.New("pairs: compressed block without compression type")
	}
}

// decompressZstd streams body through a pooled decoder, reading at most one
// byte past the declared size so a lying header cannot force a large
// allocation up front.
func decompressZstd(body []byte, size uint32) ([]byte, error) {
	dec := getZstdDecoder()
	defer func() {
		_ = dec.Reset(nil)
		zstdDecoderPool.Put(dec)
	}()
	if err := dec.Reset(bytes.NewReader(body)); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(int(min(uint64(size), uint64(len(body))*zstdInitialExpansion)))
	if _, err := out.ReadFrom(io.LimitReader(dec, int64(size)+1)); err != nil {
		return nil, err
	}
	if uint64(out.Len()) != uint64(size) {
		return nil, errSizeMismatch
	}
	return out.Bytes(), nil
}
