package piece

import (
	"crypto/sha256"

	"github.com/p2p-ld/torrent-models/internal/bitmath"
)

// zeroBlockHash is the SHA-256 of a 16 KiB block of zero bytes, the pad
// leaf value BEP-52 mandates for rounding a file's leaf count up to a
// power of two.
var zeroBlockHash = sha256.Sum256(make([]byte, bitmath.BlockSize))

// PadLeaves rounds leaves up to the next power of two at least as large
// as minLeaves (itself derived from the torrent's piece length, per
// BEP-52: every file's tree is padded to at least one piece's worth of
// leaves), appending zeroBlockHash as needed.
func PadLeaves(leaves [][32]byte, minLeaves int64) [][32]byte {
	n := int64(len(leaves))
	target := n
	if minLeaves > target {
		target = minLeaves
	}
	target = bitmath.NextPowerOfTwo(target)

	out := make([][32]byte, target)
	copy(out, leaves)
	for i := n; i < target; i++ {
		out[i] = zeroBlockHash
	}
	return out
}

// MerkleRoot builds the binary SHA-256 tree over leaves (which must
// already be padded to a power of two) and returns its root.
func MerkleRoot(leaves [][32]byte) [32]byte {
	level := leaves
	for len(level) > 1 {
		next := make([][32]byte, len(level)/2)
		for i := range next {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		level = next
	}
	if len(level) == 0 {
		return zeroBlockHash
	}
	return level[0]
}

// PieceLayer returns the Merkle node hashes at the layer corresponding to
// one piece per node — i.e. the layer BEP-52's "piece layers" dict stores
// for a file whose piece length is pieceLength. leaves must already be
// padded to a power of two.
func PieceLayer(leaves [][32]byte, pieceLength int64) [][32]byte {
	leavesPerPiece := pieceLength / bitmath.BlockSize
	level := leaves
	for leavesPerPiece > 1 && len(level) > 1 {
		next := make([][32]byte, len(level)/2)
		for i := range next {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		level = next
		leavesPerPiece /= 2
	}
	return level
}

func hashPair(a, b [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}
