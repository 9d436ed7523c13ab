// Package hash computes BEP-3 v1 piece hashes and BEP-52 v2 per-file
// Merkle trees over on-disk files, component C of the design.
//
// Hashing work fans out with a bounded worker pool built on
// golang.org/x/sync/errgroup, the same ctx-aware cancellation + SetLimit
// pattern as akashi's BackfillScoring (internal/conflicts/scorer.go):
// a g, gCtx := errgroup.WithContext(ctx) with g.SetLimit(workers), one
// g.Go per unit of work, checking gCtx.Done() before starting it.
package hash

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// FileInput is one file to be hashed, in the order it contributes bytes
// to the v1 piece stream. Path == "" marks a virtual all-zero source
// (a pad file), which HashV1 reads as Length zero bytes instead of
// opening a file.
type FileInput struct {
	Path   string
	Length int64
}

// Options configures a Hasher.
type Options struct {
	PieceLength int64

	// Workers bounds concurrent v2 per-file hashing and the v1 piece
	// hash pipeline's lookahead depth. Defaults to GOMAXPROCS if <= 0.
	Workers int

	Logger *logrus.Logger
}

// Hasher hashes a file set per the v1 and/or v2 schemes.
type Hasher struct {
	pieceLength int64
	workers     int
	log         *logrus.Logger
}

// New returns a Hasher configured by opts.
func New(opts Options) *Hasher {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hasher{
		pieceLength: opts.PieceLength,
		workers:     workers,
		log:         log,
	}
}
