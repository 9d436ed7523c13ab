package create

// planPads computes, for each real file in order, how many pad bytes
// must follow it so the next file starts at a piece boundary. The last
// file never gets a pad, since nothing follows it in the stream.
func planPads(lengths []int64, pieceLength int64) []int64 {
	pads := make([]int64, len(lengths))
	var cursor int64
	for i, l := range lengths {
		cursor += l
		if i == len(lengths)-1 {
			continue
		}
		rem := cursor % pieceLength
		if rem != 0 {
			pad := pieceLength - rem
			pads[i] = pad
			cursor += pad
		}
	}
	return pads
}
