package piece

import "github.com/p2p-ld/torrent-models/internal/bitmath"

// BlockSpan is one 16 KiB (or shorter, for the final block) leaf range
// within a single v2 file.
type BlockSpan struct {
	Offset int64
	Length int64
}

// BlocksV2 returns the block spans a file of the given length splits
// into at BEP-52's fixed 16 KiB leaf size.
func BlocksV2(fileLength int64) []BlockSpan {
	if fileLength == 0 {
		return nil
	}
	n := bitmath.CeilDiv(fileLength, bitmath.BlockSize)
	spans := make([]BlockSpan, n)
	for i := int64(0); i < n; i++ {
		offset := i * bitmath.BlockSize
		length := int64(bitmath.BlockSize)
		if offset+length > fileLength {
			length = fileLength - offset
		}
		spans[i] = BlockSpan{Offset: offset, Length: length}
	}
	return spans
}

// RootFromLeaves pads leaves per BEP-52 (to a power of two at least as
// large as one piece's worth of blocks) and returns the Merkle root BEP-52
// calls the file's "pieces root".
func RootFromLeaves(leaves [][32]byte, pieceLength int64) [32]byte {
	minLeaves := pieceLength / bitmath.BlockSize
	return MerkleRoot(PadLeaves(leaves, minLeaves))
}

// LayerFromLeaves returns the piece-layer hashes (one per piece-length
// chunk of the file) for the "piece layers" dict entry keyed by this
// file's pieces root.
func LayerFromLeaves(leaves [][32]byte, pieceLength int64) [][32]byte {
	minLeaves := pieceLength / bitmath.BlockSize
	layer := PieceLayer(PadLeaves(leaves, minLeaves), pieceLength)
	if minLeaves < 1 {
		minLeaves = 1
	}
	// Drop the nodes that cover only padding past the end of the file.
	if n := bitmath.CeilDiv(int64(len(leaves)), minLeaves); n < int64(len(layer)) {
		layer = layer[:n]
	}
	return layer
}
