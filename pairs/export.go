package pairs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/erbatch/blobstore"
	"github.com/hupe1980/erbatch/codec"
	"github.com/hupe1980/erbatch/core"
)

// Binary export layout:
//
//	magic   [4]byte "ERPS"
//	version uint8
//	comp    uint8 (Compression)
//	block   compressed block of the pair stream
//
// The pair stream is a uvarint count followed by, for each pair in
// ascending order, uvarint(A - previous A) and uvarint(B - A).
var binaryMagic = [4]byte{'E', 'R', 'P', 'S'}

const binaryVersion = 1

// ErrCorrupt is returned when an export cannot be decoded.
var ErrCorrupt = errors.New("pairs: corrupt export")

// MarshalJSON encodes the set as a sorted JSON list of [a, b] arrays.
func MarshalJSON(s *Set, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	list := make([][2]uint64, 0, s.Len())
	for _, p := range s.Sorted() {
		list = append(list, [2]uint64{uint64(p.A), uint64(p.B)})
	}
	return c.Marshal(list)
}

// UnmarshalJSON decodes a JSON list of [a, b] arrays.
// Self-pairs are rejected.
func UnmarshalJSON(data []byte, c codec.Codec) (*Set, error) {
	if c == nil {
		c = codec.Default
	}
	var list [][2]uint64
	if err := c.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s := NewSet()
	for _, p := range list {
		if p[0] == p[1] {
			return nil, fmt.Errorf("%w: self-pair (%d,%d)", ErrCorrupt, p[0], p[1])
		}
		s.Add(core.ID(p[0]), core.ID(p[1]))
	}
	return s, nil
}

// MarshalBinary encodes the set in the compact binary layout.
func MarshalBinary(s *Set, c Compression) ([]byte, error) {
	stream := binary.AppendUvarint(nil, uint64(s.Len()))
	var prev core.ID
	for _, p := range s.Sorted() {
		stream = binary.AppendUvarint(stream, uint64(p.A-prev))
		stream = binary.AppendUvarint(stream, uint64(p.B-p.A))
		prev = p.A
	}

	block, err := compressBlock(stream, c)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(binaryMagic) + 2 + len(block))
	buf.Write(binaryMagic[:])
	buf.WriteByte(binaryVersion)
	buf.WriteByte(byte(c))
	buf.Write(block)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a set written by MarshalBinary.
func UnmarshalBinary(data []byte) (*Set, error) {
	if len(data) < len(binaryMagic)+2 || !bytes.Equal(data[:4], binaryMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if data[4] != binaryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, data[4])
	}

	stream, err := decompressBlock(data[6:], Compression(data[5]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	count, n := binary.Uvarint(stream)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad count", ErrCorrupt)
	}
	stream = stream[n:]

	s := NewSet()
	var prev core.ID
	for i := uint64(0); i < count; i++ {
		da, n := binary.Uvarint(stream)
		if n <= 0 {
			return nil, fmt.Errorf("%w: truncated at pair %d", ErrCorrupt, i)
		}
		stream = stream[n:]
		db, n := binary.Uvarint(stream)
		if n <= 0 {
			return nil, fmt.Errorf("%w: truncated at pair %d", ErrCorrupt, i)
		}
		stream = stream[n:]
		if db == 0 {
			return nil, fmt.Errorf("%w: self-pair at %d", ErrCorrupt, i)
		}

		if da > uint64(core.MaxID-prev) || db > uint64(core.MaxID-prev-core.ID(da)) {
			return nil, fmt.Errorf("%w: ID overflow at pair %d", ErrCorrupt, i)
		}

		a := prev + core.ID(da)
		s.Add(a, a+core.ID(db))
		prev = a
	}
	return s, nil
}

// Write stores s under name. Names ending in ".json" are written as JSON
// with the default codec; everything else uses the binary layout.
func Write(ctx context.Context, bs blobstore.BlobStore, name string, s *Set, c Compression) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(name, ".json") {
		data, err = MarshalJSON(s, nil)
	} else {
		data, err = MarshalBinary(s, c)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return bs.Put(ctx, name, data)
}

// Read loads a set stored by Write.
func Read(ctx context.Context, bs blobstore.BlobStore, name string) (*Set, error) {
	data, err := blobstore.ReadAll(ctx, bs, name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, ".json") {
		return UnmarshalJSON(data, nil)
	}
	return UnmarshalBinary(data)
}
