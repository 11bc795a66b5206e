package pairs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/erbatch/blobstore"
	"github.com/hupe1980/erbatch/codec"
	"github.com/hupe1980/erbatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() *Set {
	s := NewSet()
	for i := core.ID(0); i < 500; i++ {
		s.Add(i*3, i*3+1)
		s.Add(i*3, i*3+2)
	}
	s.Add(1<<40, 1<<40+7)
	return s
}

func TestJSON(t *testing.T) {
	s := SetOf(Of(2, 1), Of(1, 3))

	data, err := MarshalJSON(s, codec.JSON{})
	require.NoError(t, err)
	assert.Equal(t, "[[1,2],[1,3]]", string(data))

	got, err := UnmarshalJSON(data, nil)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))

	_, err = UnmarshalJSON([]byte("[[4,4]]"), nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = UnmarshalJSON([]byte("{"), nil)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBinary(t *testing.T) {
	s := sampleSet()

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := MarshalBinary(s, c)
			require.NoError(t, err)

			got, err := UnmarshalBinary(data)
			require.NoError(t, err)
			assert.True(t, s.Equal(got))
		})
	}

	empty, err := MarshalBinary(NewSet(), CompressionZSTD)
	require.NoError(t, err)
	got, err := UnmarshalBinary(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestBinary_Corrupt(t *testing.T) {
	_, err := UnmarshalBinary([]byte("nope"))
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := MarshalBinary(sampleSet(), CompressionNone)
	require.NoError(t, err)

	_, err = UnmarshalBinary(data[:20])
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := append([]byte(nil), data...)
	bad[4] = 9
	_, err = UnmarshalBinary(bad)
	assert.ErrorIs(t, err, ErrCorrupt)
}

// rawExport frames stream as an uncompressed binary export.
func rawExport(stream []byte) []byte {
	out := append(binaryMagic[:], binaryVersion, byte(CompressionNone))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(stream)))
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, stream...)
}

func TestBinary_IDOverflow(t *testing.T) {
	maxA := binary.AppendUvarint(nil, 1)
	maxA = binary.AppendUvarint(maxA, uint64(core.MaxID-1))
	maxA = binary.AppendUvarint(maxA, 1)
	got, err := UnmarshalBinary(rawExport(maxA))
	require.NoError(t, err)
	assert.True(t, got.Contains(core.MaxID-1, core.MaxID))

	tests := map[string][]uint64{
		"first delta wraps":  {2, 5, 1, math.MaxUint64, 1},
		"second delta wraps": {1, math.MaxUint64 - 3, 4},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			var stream []byte
			for _, v := range values {
				stream = binary.AppendUvarint(stream, v)
			}
			_, err := UnmarshalBinary(rawExport(stream))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestBinary_OversizedHeader(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := MarshalBinary(sampleSet(), c)
			require.NoError(t, err)
			require.NotZero(t, binary.LittleEndian.Uint32(data[10:14]), "block must be compressed")

			bad := bytes.Clone(data)
			binary.LittleEndian.PutUint32(bad[6:10], math.MaxUint32)
			_, err = UnmarshalBinary(bad)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecompressBlock_HighlyCompressible(t *testing.T) {
	data := make([]byte, 1<<20)
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			block, err := compressBlock(data, c)
			require.NoError(t, err)
			require.Less(t, len(block), len(data)/100)

			got, err := decompressBlock(block, c)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCheckBlockSize(t *testing.T) {
	assert.NoError(t, checkBlockSize(math.MaxUint32))
	assert.ErrorIs(t, checkBlockSize(math.MaxUint32+1), errBlockTooLarge)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("snappy")
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	s := sampleSet()

	require.NoError(t, Write(ctx, bs, "pairs/train.json", s, CompressionNone))
	require.NoError(t, Write(ctx, bs, "pairs/train.bin", s, CompressionZSTD))

	for _, name := range []string{"pairs/train.json", "pairs/train.bin"} {
		got, err := Read(ctx, bs, name)
		require.NoError(t, err)
		assert.True(t, s.Equal(got), name)
	}

	_, err := Read(ctx, bs, "pairs/missing.bin")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}
