package metainfo

// TotalLength returns the sum of every v1 file entry's length, pad files
// included, i.e. the total number of bytes the piece stream covers.
func (info *Info) TotalLength() int64 {
	return info.totalLengthV1()
}

// NumPieces returns the number of v1 SHA-1 piece hashes in Pieces.
func (info *Info) NumPieces() int {
	const sha1Size = 20
	return len(info.Pieces) / sha1Size
}

// PieceHash returns the SHA-1 hash of piece i, or false if i is out of
// range.
func (info *Info) PieceHash(i int) ([20]byte, bool) {
	const sha1Size = 20
	var out [20]byte
	if i < 0 || i >= info.NumPieces() {
		return out, false
	}
	copy(out[:], info.Pieces[i*sha1Size:(i+1)*sha1Size])
	return out, true
}

// RealFiles returns the v1 file entries that are not pad files, in
// catenation order.
func (info *Info) RealFiles() []FileEntry {
	out := make([]FileEntry, 0, len(info.Files))
	for _, f := range info.Files {
		if !f.IsPad() {
			out = append(out, f)
		}
	}
	return out
}

// V2Files returns every file leaf of the v2 file tree in canonical
// (sorted) path order, alongside the path leading to it.
func (info *Info) V2Files() []FileEntry {
	if info.FileTree == nil {
		return nil
	}
	var out []FileEntry
	info.FileTree.Walk(func(path []string, leaf *TreeNode) {
		out = append(out, FileEntry{
			Path:       append([]string(nil), path...),
			Length:     leaf.Length,
			PiecesRoot: leaf.PiecesRoot,
		})
	})
	return out
}
