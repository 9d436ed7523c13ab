package piece

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/p2p-ld/torrent-models/internal/bitmath"
	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

// ValidationResult is the typed boolean-ish outcome of comparing a piece's
// actual hash against its declared one. A hash mismatch is expected,
// recoverable input data, not a program error, so validation never
// returns it as an error (§7 "HashMismatch").
type ValidationResult struct {
	Valid    bool
	Expected []byte
	Actual   []byte
}

// V1PieceRange is a located v1 piece: the file spans it covers, bound to
// the pieceIndex whose hash they must reproduce.
type V1PieceRange struct {
	Index  int
	Spans  []FileRange
	Pieces *metainfo.Info
}

// LocateV1PieceRange locates piece pieceIndex within info and returns it
// bundled with the spans needed to read its bytes back off disk.
func LocateV1PieceRange(info *metainfo.Info, pieceIndex int) V1PieceRange {
	return V1PieceRange{
		Index:  pieceIndex,
		Spans:  LocateV1(info, pieceIndex),
		Pieces: info,
	}
}

// ValidateData hashes chunks, one per span in r.Spans and in the same
// order, as the concatenated bytes of piece r.Index, and compares the
// result against the expected SHA-1 from the metainfo model.
func (r V1PieceRange) ValidateData(chunks [][]byte) (ValidationResult, error) {
	expected, ok := r.Pieces.PieceHash(r.Index)
	if !ok {
		return ValidationResult{}, fmt.Errorf("piece: index %d out of range (have %d pieces)", r.Index, r.Pieces.NumPieces())
	}
	if len(chunks) != len(r.Spans) {
		return ValidationResult{}, fmt.Errorf("piece: expected %d chunks for piece %d, got %d", len(r.Spans), r.Index, len(chunks))
	}

	h := sha1.New()
	for i, span := range r.Spans {
		if int64(len(chunks[i])) != span.Length {
			return ValidationResult{}, fmt.Errorf("piece: chunk %d has length %d, want %d", i, len(chunks[i]), span.Length)
		}
		h.Write(chunks[i])
	}

	var actual [20]byte
	copy(actual[:], h.Sum(nil))
	return ValidationResult{
		Valid:    actual == expected,
		Expected: expected[:],
		Actual:   actual[:],
	}, nil
}

// V2FileRange is a v2 file's declared pieces root, bound to the full set
// of block spans (§BlocksV2) needed to rebuild its Merkle tree from disk.
type V2FileRange struct {
	Blocks      []BlockSpan
	PiecesRoot  [32]byte
	PieceLength int64
}

// LocateV2FileRange returns the block spans and expected root for one v2
// file leaf.
func LocateV2FileRange(file metainfo.FileEntry, pieceLength int64) V2FileRange {
	var root [32]byte
	copy(root[:], file.PiecesRoot)
	return V2FileRange{
		Blocks:      BlocksV2(file.Length),
		PiecesRoot:  root,
		PieceLength: pieceLength,
	}
}

// leavesPerPiece returns how many 16 KiB leaves make up one piece of
// this file.
func (r V2FileRange) leavesPerPiece() int {
	return int(r.PieceLength / bitmath.BlockSize)
}

// PieceBlocks returns the block spans that belong to piece pieceIndex of
// this file, per §4.D's piece-layer indexing.
func (r V2FileRange) PieceBlocks(pieceIndex int) []BlockSpan {
	perPiece := r.leavesPerPiece()
	start := pieceIndex * perPiece
	if start >= len(r.Blocks) {
		return nil
	}
	end := start + perPiece
	if end > len(r.Blocks) {
		end = len(r.Blocks)
	}
	return r.Blocks[start:end]
}

// ValidateData hashes chunks, one per span in r.PieceBlocks(pieceIndex)
// and in the same order, as the file's 16 KiB leaves for that piece.
//
// A file no longer than one piece is validated directly against the
// file's declared pieces root (layer is unused, pieceIndex must be 0).
// A longer file's piece validates against the 32 bytes at offset
// 32*pieceIndex of layer — the "piece layers" entry for this file's
// pieces root (§4.D "otherwise" branch) — by rebuilding the padded
// subtree root over just that piece's leaves.
func (r V2FileRange) ValidateData(pieceIndex int, chunks [][]byte, layer []byte) (ValidationResult, error) {
	blocks := r.PieceBlocks(pieceIndex)
	if len(chunks) != len(blocks) {
		return ValidationResult{}, fmt.Errorf("piece: expected %d chunks for piece %d, got %d", len(blocks), pieceIndex, len(chunks))
	}

	leaves := make([][32]byte, len(chunks))
	for i, span := range blocks {
		if int64(len(chunks[i])) != span.Length {
			return ValidationResult{}, fmt.Errorf("piece: chunk %d has length %d, want %d", i, len(chunks[i]), span.Length)
		}
		leaves[i] = sha256.Sum256(chunks[i])
	}

	if len(r.Blocks) <= r.leavesPerPiece() {
		if pieceIndex != 0 {
			return ValidationResult{}, fmt.Errorf("piece: index %d out of range, file has only one piece", pieceIndex)
		}
		actual := RootFromLeaves(leaves, r.PieceLength)
		return ValidationResult{
			Valid:    actual == r.PiecesRoot,
			Expected: r.PiecesRoot[:],
			Actual:   actual[:],
		}, nil
	}

	if len(layer) < 32*(pieceIndex+1) {
		return ValidationResult{}, fmt.Errorf("piece: layer too short for piece %d", pieceIndex)
	}
	want := layer[32*pieceIndex : 32*(pieceIndex+1)]
	actual := PieceLayer(PadLeaves(leaves, int64(r.leavesPerPiece())), r.PieceLength)
	if len(actual) != 1 {
		return ValidationResult{}, fmt.Errorf("piece: piece layer reduction produced %d nodes, want 1", len(actual))
	}
	return ValidationResult{
		Valid:    bytes.Equal(actual[0][:], want),
		Expected: want,
		Actual:   actual[0][:],
	}, nil
}
