package hash

import (
	"context"
	"crypto/sha256"
	"os"

	"github.com/p2p-ld/torrent-models/pkg/metainfo"
	"github.com/p2p-ld/torrent-models/pkg/piece"
)

// FileTreeResult is the BEP-52 Merkle output for one file: its pieces
// root and the piece-layer hashes stored in the outer "piece layers"
// dict under that root.
type FileTreeResult struct {
	PiecesRoot [32]byte
	Layer      [][32]byte // nil for files no longer than one piece
}

// HashV2 computes the per-file Merkle tree for every file in files,
// independently and concurrently — unlike v1, BEP-52 files do not share
// a byte stream, so there is no ordering constraint at all.
func (h *Hasher) HashV2(ctx context.Context, files []FileInput) ([]FileTreeResult, error) {
	out := make([]FileTreeResult, len(files))
	err := runBounded(ctx, len(files), h.workers, func(ctx context.Context, i int) error {
		res, err := h.hashFileV2(files[i])
		if err != nil {
			return err
		}
		out[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hasher) hashFileV2(f FileInput) (FileTreeResult, error) {
	var res FileTreeResult
	if f.Length == 0 {
		return res, nil
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return res, &metainfo.FilesystemMissingError{Path: f.Path, Err: err}
	}
	defer file.Close()

	blocks := piece.BlocksV2(f.Length)
	leaves := make([][32]byte, len(blocks))
	buf := make([]byte, blockSizeV2)

	for i, span := range blocks {
		if _, err := file.ReadAt(buf[:span.Length], span.Offset); err != nil {
			return res, err
		}
		leaves[i] = sha256.Sum256(buf[:span.Length])
	}

	res.PiecesRoot = piece.RootFromLeaves(leaves, h.pieceLength)
	if f.Length > h.pieceLength {
		res.Layer = piece.LayerFromLeaves(leaves, h.pieceLength)
	}
	return res, nil
}

const blockSizeV2 = 16 * 1024
