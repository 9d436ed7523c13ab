package metainfo

import (
	"os"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
)

// Bytes canonically re-encodes the model, syncing every typed field back
// into the underlying raw dictionaries first so a round trip through
// Read/Bytes reproduces the same logical torrent even after programmatic
// edits, while any unrecognized keys in raw survive untouched (§4.B).
func (m *MetaInfo) Bytes() []byte {
	m.sync()
	return bencode.EncodeValue(bencode.NewDictValue(m.raw))
}

// WritePath canonically encodes the model and writes it to path.
func (m *MetaInfo) WritePath(path string) error {
	return os.WriteFile(path, m.Bytes(), 0o644)
}

// sync pushes typed field values into the raw dict trees and invalidates
// cached hashes, since the info dict's contents may have changed.
func (m *MetaInfo) sync() {
	if m.raw == nil {
		m.raw = bencode.NewDict()
	}
	if m.Info.raw == nil {
		m.Info.raw = bencode.NewDict()
	}

	syncInfoDict(&m.Info)
	m.raw.Set("info", bencode.NewDictValue(m.Info.raw))

	if m.Announce != "" {
		m.raw.Set("announce", bencode.NewString(m.Announce))
	}
	if len(m.AnnounceList) > 0 {
		tiers := make([]bencode.Value, len(m.AnnounceList))
		for i, tier := range m.AnnounceList {
			urls := make([]bencode.Value, len(tier))
			for j, u := range tier {
				urls[j] = bencode.NewString(u)
			}
			tiers[i] = bencode.NewList(urls...)
		}
		m.raw.Set("announce-list", bencode.NewList(tiers...))
	}
	if m.CreationDate != 0 {
		m.raw.Set("creation date", bencode.NewInt(m.CreationDate))
	}
	if m.Comment != "" {
		m.raw.Set("comment", bencode.NewString(m.Comment))
	}
	if m.CreatedBy != "" {
		m.raw.Set("created by", bencode.NewString(m.CreatedBy))
	}
	if len(m.URLList) > 0 {
		urls := make([]bencode.Value, len(m.URLList))
		for i, u := range m.URLList {
			urls[i] = bencode.NewString(u)
		}
		m.raw.Set("url-list", bencode.NewList(urls...))
	}
	if len(m.PieceLayers) > 0 {
		layers := bencode.NewDict()
		for root, hashes := range m.PieceLayers {
			layers.Set(root, bencode.NewBytes(hashes))
		}
		m.raw.Set("piece layers", bencode.NewDictValue(layers))
	}

	m.infoSpanValid = false
	m.cachedV1Hash = nil
	m.cachedV2Hash = nil
}

func syncInfoDict(info *Info) {
	if info.raw == nil {
		info.raw = bencode.NewDict()
	}
	d := info.raw

	name := info.NameRaw
	if name == nil {
		name = []byte(info.Name)
	}
	d.Set("name", bencode.NewBytes(name))
	d.Set("piece length", bencode.NewInt(info.PieceLength))
	if info.MetaVersion != 0 {
		d.Set("meta version", bencode.NewInt(info.MetaVersion))
	}
	if info.Private {
		d.Set("private", bencode.NewInt(1))
	} else {
		d.Delete("private")
	}

	switch {
	case info.SingleFile:
		d.Delete("files")
		if len(info.Files) == 1 {
			d.Set("length", bencode.NewInt(info.Files[0].Length))
		}
	case len(info.Files) > 0:
		d.Delete("length")
		items := make([]bencode.Value, len(info.Files))
		for i, f := range info.Files {
			items[i] = encodeFileEntry(f)
		}
		d.Set("files", bencode.NewList(items...))
	}

	if len(info.Pieces) > 0 {
		d.Set("pieces", bencode.NewBytes(info.Pieces))
	}

	if info.FileTree != nil {
		d.Set("file tree", encodeFileTree(info.FileTree))
	}
}

func encodeFileEntry(f FileEntry) bencode.Value {
	d := bencode.NewDict()
	path := make([]bencode.Value, len(f.Path))
	for i, c := range f.Path {
		if i < len(f.PathRaw) {
			path[i] = bencode.NewBytes(f.PathRaw[i])
		} else {
			path[i] = bencode.NewString(c)
		}
	}
	d.Set("path", bencode.NewList(path...))
	d.Set("length", bencode.NewInt(f.Length))

	if f.Attr != 0 {
		var s string
		if f.Attr&AttrExecutable != 0 {
			s += "x"
		}
		if f.Attr&AttrHidden != 0 {
			s += "h"
		}
		if f.Attr&AttrSymlink != 0 {
			s += "l"
		}
		if f.Attr&AttrPad != 0 {
			s += "p"
		}
		d.Set("attr", bencode.NewString(s))
	}
	if len(f.SymlinkPath) > 0 {
		items := make([]bencode.Value, len(f.SymlinkPath))
		for i, c := range f.SymlinkPath {
			items[i] = bencode.NewString(c)
		}
		d.Set("symlink path", bencode.NewList(items...))
	}
	if len(f.PiecesRoot) > 0 {
		d.Set("pieces root", bencode.NewBytes(f.PiecesRoot))
	}
	return bencode.NewDictValue(d)
}

func encodeFileTree(root *TreeNode) bencode.Value {
	return encodeTreeNode(root)
}

func encodeTreeNode(n *TreeNode) bencode.Value {
	if n.IsFile {
		leaf := bencode.NewDict()
		leaf.Set("length", bencode.NewInt(n.Length))
		if n.Length > 0 {
			leaf.Set("pieces root", bencode.NewBytes(n.PiecesRoot))
		}
		wrap := bencode.NewDict()
		wrap.Set("", bencode.NewDictValue(leaf))
		return bencode.NewDictValue(wrap)
	}

	d := bencode.NewDict()
	for _, name := range n.Order {
		d.Set(name, encodeTreeNode(n.Children[name]))
	}
	return bencode.NewDictValue(d)
}
