package piece_test

import (
	"crypto/sha1"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-ld/torrent-models/pkg/metainfo"
	"github.com/p2p-ld/torrent-models/pkg/piece"
)

func TestRangeV1SameLengthFilesNoAliasing(t *testing.T) {
	// Two files of identical length: a piece crossing the boundary must
	// still resolve to the correct file indices via subtraction, never
	// modulo (which would alias file 0 and file 1 at the same offset).
	lengths := []int64{10, 10}
	pieceLength := int64(6)

	spans := piece.RangeV1(lengths, pieceLength, 1) // covers bytes [6,12)
	require.Len(t, spans, 2)
	assert.Equal(t, piece.FileSpan{FileIndex: 0, FileOffset: 6, Length: 4}, spans[0])
	assert.Equal(t, piece.FileSpan{FileIndex: 1, FileOffset: 0, Length: 2}, spans[1])
}

func TestRangeV1LastPieceShort(t *testing.T) {
	lengths := []int64{25}
	pieceLength := int64(10)

	spans := piece.RangeV1(lengths, pieceLength, 2) // bytes [20,25)
	require.Len(t, spans, 1)
	assert.Equal(t, piece.FileSpan{FileIndex: 0, FileOffset: 20, Length: 5}, spans[0])
}

func TestNumPiecesV1(t *testing.T) {
	assert.Equal(t, 0, piece.NumPiecesV1(0, 10, 0))   // no files at all: no stream, no pieces
	assert.Equal(t, 1, piece.NumPiecesV1(0, 10, 1))   // a lone zero-byte file still hashes to one piece
	assert.Equal(t, 1, piece.NumPiecesV1(1, 10, 1))
	assert.Equal(t, 1, piece.NumPiecesV1(10, 10, 1))
	assert.Equal(t, 2, piece.NumPiecesV1(11, 10, 2))
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	var leaf [32]byte
	leaf[0] = 1
	assert.Equal(t, leaf, piece.MerkleRoot([][32]byte{leaf}))
}

func TestPadLeavesPowerOfTwo(t *testing.T) {
	leaves := [][32]byte{{1}, {2}, {3}}
	padded := piece.PadLeaves(leaves, 1)
	assert.Len(t, padded, 4)
	assert.Equal(t, leaves[0], padded[0])
	assert.Equal(t, leaves[2], padded[2])
}

func TestValidateDataV1(t *testing.T) {
	info := &metainfo.Info{
		PieceLength: 16,
		Files: []metainfo.FileEntry{
			{Path: []string{"a.bin"}, Length: 16},
		},
	}
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	sum := sha1.Sum(data)
	info.Pieces = sum[:]

	r := piece.LocateV1PieceRange(info, 0)
	result, err := r.ValidateData([][]byte{data})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, sum[:], result.Actual)

	corrupt := make([]byte, 16)
	badResult, err := r.ValidateData([][]byte{corrupt})
	require.NoError(t, err)
	assert.False(t, badResult.Valid)
}

func TestValidateDataV1WrongChunkCount(t *testing.T) {
	info := &metainfo.Info{
		PieceLength: 16,
		Files:       []metainfo.FileEntry{{Path: []string{"a.bin"}, Length: 16}},
		Pieces:      make([]byte, 20),
	}
	r := piece.LocateV1PieceRange(info, 0)
	_, err := r.ValidateData(nil)
	assert.Error(t, err)
}

func TestValidateDataV2(t *testing.T) {
	pieceLength := int64(16 * 1024)
	block := make([]byte, 16*1024)
	leaf := sha256.Sum256(block)

	file := metainfo.FileEntry{Length: 16 * 1024, PiecesRoot: leaf[:]}
	r := piece.LocateV2FileRange(file, pieceLength)

	result, err := r.ValidateData(0, [][]byte{block}, nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	other := make([]byte, 16*1024)
	other[0] = 0xFF
	badResult, err := r.ValidateData(0, [][]byte{other}, nil)
	require.NoError(t, err)
	assert.False(t, badResult.Valid)
}

// TestValidateDataV2MultiPiece covers a file spanning more than one
// piece, whose pieces validate against 32-byte slices of the file's
// piece layer rather than directly against the pieces root (§4.D's
// "otherwise" branch).
func TestValidateDataV2MultiPiece(t *testing.T) {
	pieceLength := int64(16 * 1024) // one leaf per piece
	block0 := make([]byte, 16*1024)
	block1 := make([]byte, 16*1024)
	block2 := make([]byte, 8*1024) // short final block
	for i := range block0 {
		block0[i] = 0x01
	}
	for i := range block1 {
		block1[i] = 0x02
	}
	for i := range block2 {
		block2[i] = 0x03
	}

	leaf0 := sha256.Sum256(block0)
	leaf1 := sha256.Sum256(block1)
	leaf2 := sha256.Sum256(block2)
	leaves := [][32]byte{leaf0, leaf1, leaf2}

	root := piece.RootFromLeaves(leaves, pieceLength)
	layer := piece.LayerFromLeaves(leaves, pieceLength)
	flatLayer := make([]byte, 0, 32*len(layer))
	for _, n := range layer {
		flatLayer = append(flatLayer, n[:]...)
	}

	file := metainfo.FileEntry{Length: int64(len(block0) + len(block1) + len(block2)), PiecesRoot: root[:]}
	r := piece.LocateV2FileRange(file, pieceLength)

	result0, err := r.ValidateData(0, [][]byte{block0}, flatLayer)
	require.NoError(t, err)
	assert.True(t, result0.Valid)

	result2, err := r.ValidateData(2, [][]byte{block2}, flatLayer)
	require.NoError(t, err)
	assert.True(t, result2.Valid)

	corrupt := make([]byte, 16*1024)
	copy(corrupt, block1)
	corrupt[0] = 0xFF
	badResult, err := r.ValidateData(1, [][]byte{corrupt}, flatLayer)
	require.NoError(t, err)
	assert.False(t, badResult.Valid)
}

func TestJoinWebseedURL(t *testing.T) {
	joined, err := piece.JoinWebseedURL("https://example.com/files/", "torrent-name", []string{"a", "b c.txt"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/files/torrent-name/a/b%20c.txt", joined)

	singleFile, err := piece.JoinWebseedURL("https://example.com/files/", "single.bin", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/files/single.bin", singleFile)

	direct, err := piece.JoinWebseedURL("https://example.com/single.bin", "ignored", []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/single.bin", direct)
}
