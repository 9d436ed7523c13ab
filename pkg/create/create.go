// Package create implements component E, the façade that assembles a
// metainfo model from a directory on disk: enumerate files, pad them for
// v1, hash them per the requested flavor, and hand the result to the
// metainfo model.
package create

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/p2p-ld/torrent-models/internal/bitmath"
	"github.com/p2p-ld/torrent-models/pkg/hash"
	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

// Options configures Create, mirroring mtor's DownloadConfig option-struct
// shape rather than environment variables (§6).
type Options struct {
	Root        string
	Flavor      metainfo.Flavor
	PieceLength int64 // 0 selects bitmath.DefaultPieceLength

	Trackers     []string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	WebSeeds     []string
	Private      bool

	Workers int
	Logger  *logrus.Logger

	// nowFunc lets tests substitute a fixed creation timestamp; nil uses
	// time.Now.
	nowFunc func() time.Time
}

// Creator runs the assembly pipeline described by Options.
type Creator struct {
	opts Options
	log  *logrus.Logger
}

// Create returns a Creator ready to Generate a model from opts.
func Create(opts Options) *Creator {
	if opts.PieceLength == 0 {
		opts.PieceLength = bitmath.DefaultPieceLength
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Creator{opts: opts, log: log}
}

// Generate runs the full create pipeline (§4.E) and returns the resulting
// model, ready to be serialized via MetaInfo.Bytes/WritePath.
func (c *Creator) Generate(ctx context.Context) (*metainfo.MetaInfo, error) {
	entries, singleFile, err := walkRoot(c.opts.Root)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"root": c.opts.Root, "files": len(entries)}).Info("create: enumerated files")

	var files []metainfo.FileEntry
	var hashInputs []hash.FileInput // v1 stream: real files AND pad gaps, in order

	v2Inputs := make([]hash.FileInput, len(entries)) // v2 tree: real files only, 1:1 with entries

	lengths := make([]int64, len(entries))
	for i, e := range entries {
		lengths[i] = e.length
	}

	wantPads := c.opts.Flavor == metainfo.FlavorV1 || c.opts.Flavor == metainfo.FlavorHybrid
	var pads []int64
	if wantPads && len(entries) > 1 {
		pads = planPads(lengths, c.opts.PieceLength)
	}

	for i, e := range entries {
		files = append(files, metainfo.FileEntry{Path: e.rel, Length: e.length})
		hashInputs = append(hashInputs, hash.FileInput{Path: e.absPath, Length: e.length})
		v2Inputs[i] = hash.FileInput{Path: e.absPath, Length: e.length}

		if wantPads && i < len(pads) && pads[i] > 0 {
			padPath := []string{".pad", itoa(pads[i])}
			files = append(files, metainfo.FileEntry{Path: padPath, Length: pads[i], Attr: metainfo.AttrPad})
			// Pad files occupy real space in the v1 piece stream (all zero
			// bytes) but don't exist on disk; a FileInput with an empty
			// Path is the hasher's marker for a virtual all-zero source.
			// The v2 file tree never includes pad files, so v2Inputs
			// stays 1:1 with entries.
			hashInputs = append(hashInputs, hash.FileInput{Path: "", Length: pads[i]})
		}
	}

	hasher := hash.New(hash.Options{PieceLength: c.opts.PieceLength, Workers: c.opts.Workers, Logger: c.log})

	info := metainfo.Info{
		Name:        rootName(c.opts.Root),
		PieceLength: c.opts.PieceLength,
		Private:     c.opts.Private,
	}
	info.NameRaw = []byte(info.Name)

	m := metainfo.New()

	if c.opts.Flavor == metainfo.FlavorV1 || c.opts.Flavor == metainfo.FlavorHybrid {
		c.log.Info("create: hashing v1 pieces")
		pieces, err := hasher.HashV1(ctx, hashInputs)
		if err != nil {
			return nil, err
		}
		info.Pieces = pieces
		info.SingleFile = singleFile
		info.Files = files
	}

	if c.opts.Flavor == metainfo.FlavorV2 || c.opts.Flavor == metainfo.FlavorHybrid {
		c.log.Info("create: hashing v2 file trees")
		results, err := hasher.HashV2(ctx, v2Inputs)
		if err != nil {
			return nil, err
		}
		info.MetaVersion = 2
		info.FileTree = buildTree(entries, results)
		for _, r := range results {
			if r.Layer != nil {
				m.PieceLayers[string(r.PiecesRoot[:])] = flattenLayer(r.Layer)
			}
		}
	}

	m.Info = info
	m.AnnounceList = c.opts.AnnounceList
	if len(c.opts.Trackers) > 0 {
		m.Announce = c.opts.Trackers[0]
	}
	m.Comment = c.opts.Comment
	m.CreatedBy = c.opts.CreatedBy
	m.URLList = c.opts.WebSeeds

	now := time.Now
	if c.opts.nowFunc != nil {
		now = c.opts.nowFunc
	}
	m.CreationDate = now().Unix()

	// Force a full re-encode pass: a freshly assembled model has no
	// source byte span to begin with, so this also populates the cached
	// infohashes eagerly (§5 "computed eagerly on finalize").
	_ = m.Bytes()
	if c.opts.Flavor == metainfo.FlavorV1 || c.opts.Flavor == metainfo.FlavorHybrid {
		m.V1Hash()
	}
	if c.opts.Flavor == metainfo.FlavorV2 || c.opts.Flavor == metainfo.FlavorHybrid {
		m.V2Hash()
	}

	return m, nil
}

func rootName(root string) string {
	base := root
	for len(base) > 0 && (base[len(base)-1] == '/' || base[len(base)-1] == '\\') {
		base = base[:len(base)-1]
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' || base[i] == '\\' {
			return base[i+1:]
		}
	}
	return base
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func flattenLayer(layer [][32]byte) []byte {
	out := make([]byte, 0, len(layer)*32)
	for _, h := range layer {
		out = append(out, h[:]...)
	}
	return out
}
