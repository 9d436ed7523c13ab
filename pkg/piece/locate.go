package piece

import "github.com/p2p-ld/torrent-models/pkg/metainfo"

// FileRange pairs a FileSpan with the FileEntry it falls in, so a caller
// can open the right path on disk. Info is the torrent the file belongs
// to, carried for WebseedURL's info.name prefix.
type FileRange struct {
	FileSpan
	File metainfo.FileEntry
	Info *metainfo.Info
}

// LocateV1 returns the on-disk ranges piece pieceIndex covers for info's
// v1 file list (pad files included, since they occupy real space in the
// piece stream).
func LocateV1(info *metainfo.Info, pieceIndex int) []FileRange {
	lengths := make([]int64, len(info.Files))
	for i, f := range info.Files {
		lengths[i] = f.Length
	}

	spans := RangeV1(lengths, info.PieceLength, pieceIndex)
	out := make([]FileRange, len(spans))
	for i, s := range spans {
		out[i] = FileRange{FileSpan: s, File: info.Files[s.FileIndex], Info: info}
	}
	return out
}
