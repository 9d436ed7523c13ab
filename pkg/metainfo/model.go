// Package metainfo implements component B from the design: a typed
// projection of a generic bencode dictionary into the v1/v2/hybrid
// metainfo model described in spec §3–§4.B, with validating coercions and
// cached infohashes.
//
// The model keeps the original decoded bencode.Dict around (m.raw) so that
// unknown keys at any level round-trip losslessly (§4.B), and so that the
// exact byte span the "info" sub-dictionary occupied in the source buffer
// is available for infohash computation without re-encoding (§9).
package metainfo

import (
	"sort"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
)

// Flavor is the sum type mtor's info/file split becomes once it has to
// express v1, v2, and hybrid at once (§9 "Flavor as a sum type").
type Flavor int

const (
	FlavorV1 Flavor = iota
	FlavorV2
	FlavorHybrid
)

func (f Flavor) String() string {
	switch f {
	case FlavorV1:
		return "v1"
	case FlavorV2:
		return "v2"
	case FlavorHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Attr is the file-entry attributes bitset from §3.
type Attr uint8

const (
	AttrExecutable Attr = 1 << iota
	AttrHidden
	AttrSymlink
	AttrPad
)

// FileEntry represents one payload file, pad file included, from the v1
// "files" list (or the synthetic single entry of a single-file torrent).
type FileEntry struct {
	// Path is the ordered, non-empty sequence of path components, decoded
	// as UTF-8 with replacement where necessary.
	Path []string
	// PathRaw is the same components as the undecoded bytes the
	// dictionary actually stored, so a non-UTF-8 name is never lost
	// (§9 open question on non-UTF-8 names).
	PathRaw [][]byte

	Length int64
	Attr   Attr

	// SymlinkPath holds the symlink target components when Attr has
	// AttrSymlink set.
	SymlinkPath []string

	// PiecesRoot cross-references the v2 file-tree leaf for this file in
	// a hybrid torrent; nil for v1-only models and for pad files.
	PiecesRoot []byte
}

// IsPad reports whether this entry is a pad file (§3).
func (f FileEntry) IsPad() bool { return f.Attr&AttrPad != 0 }

// TreeNode is one node of the v2 "file tree" (§3 InfoDict v2 fields): a
// recursive ordered mapping from a path component to either a
// subdirectory or a file leaf.
type TreeNode struct {
	IsFile bool

	// File leaf fields.
	Length     int64
	PiecesRoot []byte // nil when Length == 0

	// Directory fields. Order records insertion order so the node
	// round-trips the order it was decoded in; canonical encoding always
	// re-sorts by key regardless.
	Children map[string]*TreeNode
	Order    []string
}

func newDirNode() *TreeNode {
	return &TreeNode{Children: make(map[string]*TreeNode)}
}

// NewDirNode returns an empty directory TreeNode, for callers (such as
// the create façade) assembling a file tree from scratch.
func NewDirNode() *TreeNode {
	return newDirNode()
}

// Set inserts a child under name, preserving insertion order the first
// time name is seen.
func (n *TreeNode) Set(name string, child *TreeNode) {
	n.set(name, child)
}

// Child returns the child node stored under name, if any.
func (n *TreeNode) Child(name string) (*TreeNode, bool) {
	child, ok := n.Children[name]
	return child, ok
}

func (n *TreeNode) set(name string, child *TreeNode) {
	if _, ok := n.Children[name]; !ok {
		n.Order = append(n.Order, name)
	}
	n.Children[name] = child
}

// Walk calls fn for every file leaf in the tree, in canonical (sorted)
// path order, with the full path components leading to it.
func (n *TreeNode) Walk(fn func(path []string, leaf *TreeNode)) {
	n.walk(nil, fn)
}

func (n *TreeNode) walk(prefix []string, fn func(path []string, leaf *TreeNode)) {
	if n.IsFile {
		fn(prefix, n)
		return
	}
	keys := append([]string(nil), n.Order...)
	sort.Strings(keys)
	for _, k := range keys {
		child := n.Children[k]
		path := append(append([]string(nil), prefix...), k)
		child.walk(path, fn)
	}
}

// Info is the typed projection of the "info" dictionary (§3 "Info
// dictionary (common fields)", "InfoDict v1 fields", "InfoDict v2
// fields").
type Info struct {
	Name        string
	NameRaw     []byte
	PieceLength int64

	// MetaVersion is 0 when absent (pure v1), else must be 2 per §3.
	MetaVersion int64

	Private bool // BEP-27 private flag; not named by spec.md but present
	// in every real-world torrent client and in this corpus's mkbrr
	// example, so it is carried as a supplemented field (SPEC_FULL.md).

	// v1 fields. SingleFile distinguishes the single-file form (one
	// implicit FileEntry with no Path beyond Name) from the multi-file
	// form, per §3.
	SingleFile bool
	Pieces     []byte      // concatenated SHA-1 hashes, len%20==0
	Files      []FileEntry // real files AND pad files, in catenation order

	// v2 fields.
	FileTree *TreeNode

	// raw is the original (or last-synthesized) bencode form of this
	// info dict, carried so unknown keys round-trip (§4.B).
	raw *bencode.Dict
}

// Flavor reports which variant this Info represents, per §3's membership
// rule: "presence of pieces/files|length (v1) and meta version == 2 +
// file tree (v2)".
func (info *Info) Flavor() Flavor {
	hasV1 := info.Pieces != nil || len(info.Files) > 0 || info.SingleFile
	hasV2 := info.MetaVersion == 2 && info.FileTree != nil
	switch {
	case hasV1 && hasV2:
		return FlavorHybrid
	case hasV2:
		return FlavorV2
	default:
		return FlavorV1
	}
}

// MetaInfo is the outer metainfo model (§3 "Outer metainfo").
type MetaInfo struct {
	Info Info

	Announce     string
	AnnounceList [][]string
	CreationDate int64
	Comment      string
	CreatedBy    string
	URLList      []string

	// PieceLayers maps each v2 file's pieces root (raw 32 bytes, used as
	// a map key via string conversion) to the concatenated per-piece
	// SHA-256 hashes at the layer described in §3/§4.C step 5.
	PieceLayers map[string][]byte

	// raw is the full outer dict as read (or last written); it carries
	// unknown top-level keys so they round-trip losslessly.
	raw *bencode.Dict

	// source and infoSpan let V1Hash/V2Hash hash the exact bytes the
	// info dict occupied in the buffer this model was parsed from,
	// instead of re-encoding (§9 "Infohash caching"). infoSpanValid is
	// false for programmatically constructed or mutated models, which
	// re-encode the info dict once and cache the result.
	source        []byte
	infoStart     int
	infoEnd       int
	infoSpanValid bool

	cachedV1Hash *[20]byte
	cachedV2Hash *[32]byte
}

// New returns an empty MetaInfo ready for programmatic construction (used
// by the create façade, component E).
func New() *MetaInfo {
	return &MetaInfo{
		raw:         bencode.NewDict(),
		PieceLayers: make(map[string][]byte),
	}
}

// PieceLayer returns the piece-layer hashes for a file's pieces root, if
// present.
func (m *MetaInfo) PieceLayer(root []byte) ([]byte, bool) {
	v, ok := m.PieceLayers[string(root)]
	return v, ok
}
