package metainfo

import (
	"crypto/sha1"

	"github.com/p2p-ld/torrent-models/internal/bitmath"
)

// validateInfo enforces the cross-field invariants of §4.B / §7 that
// cannot be expressed as a single field's schema: piece length shape,
// piece count vs. total length, and (for hybrid torrents) agreement
// between the v1 file list and the v2 file tree.
func validateInfo(info *Info) error {
	if info.PieceLength < bitmath.MinPieceLength {
		return &CrossFieldInvariantError{Reason: "piece length below the 16 KiB minimum"}
	}
	if !bitmath.IsPowerOfTwo(info.PieceLength) {
		return &CrossFieldInvariantError{Reason: "piece length is not a power of two"}
	}

	switch flavor := info.Flavor(); flavor {
	case FlavorV1, FlavorHybrid:
		if len(info.Pieces)%sha1.Size != 0 {
			return &CrossFieldInvariantError{Reason: "pieces field length is not a multiple of 20 bytes"}
		}
		total := info.totalLengthV1()
		var wantPieces int
		switch {
		case total != 0:
			wantPieces = int(bitmath.CeilDiv(total, info.PieceLength))
		case len(info.Files) > 0:
			// A lone zero-byte file still produces one piece: the SHA-1
			// of the empty string.
			wantPieces = 1
		}
		gotPieces := len(info.Pieces) / sha1.Size
		if gotPieces != wantPieces {
			return &CrossFieldInvariantError{Reason: "piece count does not match ceil(total length / piece length)"}
		}
	}

	if flavor := info.Flavor(); flavor == FlavorV2 || flavor == FlavorHybrid {
		if info.MetaVersion != 2 {
			return &CrossFieldInvariantError{Reason: "meta version must be 2 when a file tree is present"}
		}
		if err := validateFileTree(info.FileTree, info.PieceLength); err != nil {
			return err
		}
	}

	if info.Flavor() == FlavorHybrid {
		if err := crossValidateHybrid(info); err != nil {
			return err
		}
	}

	return nil
}

// validateFileTree walks the v2 file tree checking that every file leaf
// with Length > 0 carries a 32-byte pieces root, per §3 "InfoDict v2
// fields".
func validateFileTree(n *TreeNode, pieceLength int64) error {
	if n == nil {
		return &SchemaViolationError{Field: "file tree", Reason: "missing"}
	}
	var err error
	n.Walk(func(path []string, leaf *TreeNode) {
		if err != nil {
			return
		}
		if verr := validatePath(path); verr != nil {
			err = verr
			return
		}
		if leaf.Length > 0 && len(leaf.PiecesRoot) != 32 {
			err = &SchemaViolationError{Field: "pieces root", Reason: "must be exactly 32 bytes when file length > 0"}
		}
	})
	return err
}

// crossValidateHybrid checks the invariant from §4.B: the v1 file list
// (pad files excluded) and the v2 file tree must describe the same set
// of paths with the same lengths, in the same order.
func crossValidateHybrid(info *Info) error {
	var v2Files []FileEntry
	info.FileTree.Walk(func(path []string, leaf *TreeNode) {
		v2Files = append(v2Files, FileEntry{
			Path:       append([]string(nil), path...),
			Length:     leaf.Length,
			PiecesRoot: leaf.PiecesRoot,
		})
	})

	var v1Files []FileEntry
	for _, f := range info.Files {
		if !f.IsPad() {
			v1Files = append(v1Files, f)
		}
	}

	if len(v1Files) != len(v2Files) {
		return &CrossFieldInvariantError{Reason: "v1 file list and v2 file tree disagree on file count"}
	}
	for i, v1f := range v1Files {
		v2f := v2Files[i]
		if !samePath(v1f.Path, v2f.Path) {
			return &CrossFieldInvariantError{Reason: "v1 file list and v2 file tree disagree on file order or path"}
		}
		if v1f.Length != v2f.Length {
			return &CrossFieldInvariantError{Reason: "v1 file list and v2 file tree disagree on a file's length"}
		}
	}
	return nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// totalLengthV1 sums the lengths of every v1 file entry, pad files
// included, since pad files occupy real space in the piece stream.
func (info *Info) totalLengthV1() int64 {
	if info.SingleFile {
		var total int64
		for _, f := range info.Files {
			total += f.Length
		}
		return total
	}
	var total int64
	for _, f := range info.Files {
		total += f.Length
	}
	return total
}
