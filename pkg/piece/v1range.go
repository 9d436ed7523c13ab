// Package piece implements component D: mapping v1 piece indices to
// file byte ranges, and the analogous v2 per-file
// block ranges, without ever using modulo arithmetic on piece boundaries
// — BitTorrent files can share a length, so a subtraction-based walk is
// the only way to avoid aliasing two distinct files at the same piece
// offset.
package piece

// FileSpan is the portion of one file that a given piece (or a byte
// range of the overall v1 stream) covers.
type FileSpan struct {
	FileIndex  int
	FileOffset int64
	Length     int64
}

// RangeV1 returns the file spans piece pieceIndex covers, given the
// ordered lengths of every file in the v1 stream (pad files included)
// and the piece length. It walks forward subtracting each file's length
// from the running piece offset, rather than using modulo, so pieces
// that start mid-file are split correctly regardless of how many
// same-length files precede them.
func RangeV1(fileLengths []int64, pieceLength int64, pieceIndex int) []FileSpan {
	pieceStart := int64(pieceIndex) * pieceLength
	pieceEnd := pieceStart + pieceLength

	var total int64
	for _, l := range fileLengths {
		total += l
	}
	if pieceEnd > total {
		pieceEnd = total
	}
	if pieceStart >= pieceEnd {
		return nil
	}

	var spans []FileSpan
	var fileStart int64 // absolute offset where the current file begins
	remaining := pieceEnd - pieceStart
	cursor := pieceStart

	for i, length := range fileLengths {
		fileEnd := fileStart + length
		if cursor >= fileEnd {
			fileStart = fileEnd
			continue
		}
		if remaining <= 0 {
			break
		}

		offsetInFile := cursor - fileStart
		avail := length - offsetInFile
		take := remaining
		if take > avail {
			take = avail
		}

		spans = append(spans, FileSpan{FileIndex: i, FileOffset: offsetInFile, Length: take})

		cursor += take
		remaining -= take
		fileStart = fileEnd
	}

	return spans
}

// NumPiecesV1 returns the number of pieces a v1 stream of totalLength
// bytes splits into at the given piece length. fileCount is the number
// of files contributing to the stream: a lone zero-byte file still
// produces exactly one piece (the SHA-1 of the empty string), so
// totalLength == 0 only means zero pieces when there are no files at
// all.
func NumPiecesV1(totalLength, pieceLength int64, fileCount int) int {
	if totalLength == 0 {
		if fileCount > 0 {
			return 1
		}
		return 0
	}
	n := totalLength / pieceLength
	if totalLength%pieceLength != 0 {
		n++
	}
	return int(n)
}
