package hash

import (
	"context"
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/p2p-ld/torrent-models/pkg/metainfo"
	"github.com/p2p-ld/torrent-models/pkg/piece"
)

// HashV1 computes the concatenated SHA-1 piece hashes for files, in the
// order given, per BEP-3. Every piece's file spans are known up front
// from the file lengths, so pieces hash independently and concurrently
// (bounded by the Hasher's worker count) even though the logical stream
// is ordered — this is the "v1 strictly ordered" requirement satisfied
// by writing each result to its own slot rather than by serializing the
// work itself.
func (h *Hasher) HashV1(ctx context.Context, files []FileInput) ([]byte, error) {
	lengths := make([]int64, len(files))
	var total int64
	for i, f := range files {
		lengths[i] = f.Length
		total += f.Length
	}

	n := piece.NumPiecesV1(total, h.pieceLength, len(files))
	out := make([]byte, n*sha1.Size)

	err := runBounded(ctx, n, h.workers, func(ctx context.Context, i int) error {
		sum, err := h.hashPieceV1(files, lengths, i)
		if err != nil {
			return err
		}
		copy(out[i*sha1.Size:(i+1)*sha1.Size], sum[:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hasher) hashPieceV1(files []FileInput, lengths []int64, pieceIndex int) ([20]byte, error) {
	var sum [20]byte
	spans := piece.RangeV1(lengths, h.pieceLength, pieceIndex)

	hasher := sha1.New()
	for _, span := range spans {
		f := files[span.FileIndex]
		if err := readInto(hasher, f.Path, span.FileOffset, span.Length); err != nil {
			return sum, fmt.Errorf("hash: piece %d: %w", pieceIndex, err)
		}
	}
	copy(sum[:], hasher.Sum(nil))
	return sum, nil
}

func readInto(w interface{ Write([]byte) (int, error) }, path string, offset, length int64) error {
	if path == "" {
		return writeZeros(w, length)
	}

	f, err := os.Open(path)
	if err != nil {
		return &metainfo.FilesystemMissingError{Path: path, Err: err}
	}
	defer f.Close()

	buf := make([]byte, minInt(length, int64(blockChunk)))
	remaining := length
	pos := offset
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		read, err := f.ReadAt(buf[:n], pos)
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
		pos += int64(read)
		remaining -= int64(read)
	}
	return nil
}

// writeZeros feeds length zero bytes to w, for pad files (which occupy
// real space in the v1 piece stream but have no backing file on disk).
func writeZeros(w interface{ Write([]byte) (int, error) }, length int64) error {
	buf := make([]byte, minInt(length, int64(blockChunk)))
	remaining := length
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

const blockChunk = 1 << 20 // 1 MiB read buffer

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
