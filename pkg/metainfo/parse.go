package metainfo

import (
	"os"

	"github.com/p2p-ld/torrent-models/pkg/bencode"
)

// ReadPath reads and parses the metainfo file at path.
func ReadPath(path string) (*MetaInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FilesystemMissingError{Path: path, Err: err}
	}
	return Read(data)
}

// Read parses a complete .torrent file from data, validates its
// cross-field invariants, and returns the typed model. The returned
// MetaInfo retains data so V1Hash/V2Hash can hash the info dict's
// original byte span instead of re-encoding it.
func Read(data []byte) (*MetaInfo, error) {
	top, err := bencode.DecodeValue(data)
	if err != nil {
		return nil, err
	}
	raw, ok := top.AsDict()
	if !ok {
		return nil, &SchemaViolationError{Field: "<root>", Reason: "top-level value is not a dictionary"}
	}

	infoVal, ok := raw.Get("info")
	if !ok {
		return nil, &SchemaViolationError{Field: "info", Reason: "missing"}
	}
	infoDict, ok := infoVal.AsDict()
	if !ok {
		return nil, &SchemaViolationError{Field: "info", Reason: "not a dictionary"}
	}

	info, err := buildInfo(infoDict)
	if err != nil {
		return nil, err
	}

	m := &MetaInfo{
		Info:        *info,
		raw:         raw,
		PieceLayers: make(map[string][]byte),
	}

	if infoVal.Start >= 0 {
		m.source = data
		m.infoStart = infoVal.Start
		m.infoEnd = infoVal.End
		m.infoSpanValid = true
	}

	if v, ok := raw.Get("announce"); ok {
		m.Announce, _ = v.Text()
	}
	if v, ok := raw.Get("announce-list"); ok {
		tiers, iok := v.Items()
		if !iok {
			return nil, &SchemaViolationError{Field: "announce-list", Reason: "not a list"}
		}
		for _, tier := range tiers {
			items, tok := tier.Items()
			if !tok {
				return nil, &SchemaViolationError{Field: "announce-list", Reason: "tier is not a list"}
			}
			var urls []string
			for _, item := range items {
				s, sok := item.Text()
				if !sok {
					return nil, &SchemaViolationError{Field: "announce-list", Reason: "tier entry is not a string"}
				}
				urls = append(urls, s)
			}
			m.AnnounceList = append(m.AnnounceList, urls)
		}
	}
	if v, ok := raw.Get("creation date"); ok {
		m.CreationDate, _ = v.Int64()
	}
	if v, ok := raw.Get("comment"); ok {
		m.Comment, _ = v.Text()
	}
	if v, ok := raw.Get("created by"); ok {
		m.CreatedBy, _ = v.Text()
	}
	if v, ok := raw.Get("url-list"); ok {
		switch v.Kind {
		case bencode.KindString:
			if s, sok := v.Text(); sok {
				m.URLList = append(m.URLList, s)
			}
		case bencode.KindList:
			items, _ := v.Items()
			for _, item := range items {
				if s, sok := item.Text(); sok {
					m.URLList = append(m.URLList, s)
				}
			}
		}
	}
	if v, ok := raw.Get("piece layers"); ok {
		layers, lok := v.AsDict()
		if !lok {
			return nil, &SchemaViolationError{Field: "piece layers", Reason: "not a dictionary"}
		}
		for _, k := range layers.Keys() {
			lv, _ := layers.Get(k)
			b, bok := lv.Bytes()
			if !bok {
				return nil, &SchemaViolationError{Field: "piece layers", Reason: "value is not a byte string"}
			}
			m.PieceLayers[k] = b
		}
	}

	if err := validateInfo(&m.Info); err != nil {
		return nil, err
	}

	return m, nil
}

func buildInfo(d *bencode.Dict) (*Info, error) {
	info := &Info{raw: d}

	nameVal, ok := d.Get("name")
	if !ok {
		return nil, &SchemaViolationError{Field: "info.name", Reason: "missing"}
	}
	nameRaw, ok := nameVal.Bytes()
	if !ok {
		return nil, &SchemaViolationError{Field: "info.name", Reason: "not a string"}
	}
	info.NameRaw = nameRaw
	info.Name, _ = nameVal.Text()

	plVal, ok := d.Get("piece length")
	if !ok {
		return nil, &SchemaViolationError{Field: "info.piece length", Reason: "missing"}
	}
	pl, ok := plVal.Int64()
	if !ok {
		return nil, &SchemaViolationError{Field: "info.piece length", Reason: "not an integer"}
	}
	info.PieceLength = pl

	if v, ok := d.Get("meta version"); ok {
		mv, mok := v.Int64()
		if !mok {
			return nil, &SchemaViolationError{Field: "info.meta version", Reason: "not an integer"}
		}
		info.MetaVersion = mv
	}
	if v, ok := d.Get("private"); ok {
		p, pok := v.Int64()
		if !pok {
			return nil, &SchemaViolationError{Field: "info.private", Reason: "not an integer"}
		}
		info.Private = p != 0
	}

	if v, ok := d.Get("pieces"); ok {
		b, bok := v.Bytes()
		if !bok {
			return nil, &SchemaViolationError{Field: "info.pieces", Reason: "not a string"}
		}
		info.Pieces = b
	}

	lengthVal, hasLength := d.Get("length")
	filesVal, hasFiles := d.Get("files")

	switch {
	case hasLength && hasFiles:
		return nil, &CrossFieldInvariantError{Reason: "info dict has both length and files"}
	case hasLength:
		length, lok := lengthVal.Int64()
		if !lok {
			return nil, &SchemaViolationError{Field: "info.length", Reason: "not an integer"}
		}
		info.SingleFile = true
		info.Files = []FileEntry{{Path: []string{info.Name}, PathRaw: [][]byte{info.NameRaw}, Length: length}}
	case hasFiles:
		items, iok := filesVal.Items()
		if !iok {
			return nil, &SchemaViolationError{Field: "info.files", Reason: "not a list"}
		}
		for _, item := range items {
			fd, fok := item.AsDict()
			if !fok {
				return nil, &SchemaViolationError{Field: "info.files", Reason: "entry is not a dictionary"}
			}
			fe, err := buildFileEntry(fd)
			if err != nil {
				return nil, err
			}
			info.Files = append(info.Files, fe)
		}
	}

	if v, ok := d.Get("file tree"); ok {
		tree, err := buildFileTree(v)
		if err != nil {
			return nil, err
		}
		info.FileTree = tree
	}

	return info, nil
}

func buildFileEntry(d *bencode.Dict) (FileEntry, error) {
	var fe FileEntry

	pathVal, ok := d.Get("path")
	if !ok {
		return fe, &SchemaViolationError{Field: "files[].path", Reason: "missing"}
	}
	items, iok := pathVal.Items()
	if !iok {
		return fe, &SchemaViolationError{Field: "files[].path", Reason: "not a list"}
	}
	for _, item := range items {
		b, bok := item.Bytes()
		if !bok {
			return fe, &SchemaViolationError{Field: "files[].path", Reason: "component is not a string"}
		}
		s, _ := item.Text()
		fe.PathRaw = append(fe.PathRaw, b)
		fe.Path = append(fe.Path, s)
	}
	if !isPadPath(fe.Path) {
		if err := validatePath(fe.Path); err != nil {
			return fe, err
		}
	}

	lengthVal, ok := d.Get("length")
	if !ok {
		return fe, &SchemaViolationError{Field: "files[].length", Reason: "missing"}
	}
	length, lok := lengthVal.Int64()
	if !lok {
		return fe, &SchemaViolationError{Field: "files[].length", Reason: "not an integer"}
	}
	fe.Length = length

	if v, ok := d.Get("attr"); ok {
		s, sok := v.Text()
		if !sok {
			return fe, &SchemaViolationError{Field: "files[].attr", Reason: "not a string"}
		}
		for _, c := range s {
			switch c {
			case 'x':
				fe.Attr |= AttrExecutable
			case 'h':
				fe.Attr |= AttrHidden
			case 'l':
				fe.Attr |= AttrSymlink
			case 'p':
				fe.Attr |= AttrPad
			}
		}
	}
	if isPadPath(fe.Path) {
		fe.Attr |= AttrPad
	}

	if v, ok := d.Get("symlink path"); ok {
		items, iok := v.Items()
		if !iok {
			return fe, &SchemaViolationError{Field: "files[].symlink path", Reason: "not a list"}
		}
		for _, item := range items {
			s, sok := item.Text()
			if !sok {
				return fe, &SchemaViolationError{Field: "files[].symlink path", Reason: "component is not a string"}
			}
			fe.SymlinkPath = append(fe.SymlinkPath, s)
		}
	}

	if v, ok := d.Get("pieces root"); ok {
		b, bok := v.Bytes()
		if !bok {
			return fe, &SchemaViolationError{Field: "files[].pieces root", Reason: "not a string"}
		}
		fe.PiecesRoot = b
	}

	return fe, nil
}

// buildFileTree converts the raw "file tree" dict value into a TreeNode.
// A directory node's entries are nested dicts; a file leaf is recognized
// by having a single empty-string key whose value is the leaf dict
// carrying "length" and, for non-empty files, "pieces root" (§3 "InfoDict
// v2 fields").
func buildFileTree(v bencode.Value) (*TreeNode, error) {
	d, ok := v.AsDict()
	if !ok {
		return nil, &SchemaViolationError{Field: "file tree", Reason: "not a dictionary"}
	}
	return buildTreeDict(d)
}

func buildTreeDict(d *bencode.Dict) (*TreeNode, error) {
	if d.Len() == 1 && d.Keys()[0] == "" {
		leafVal, _ := d.Get("")
		leafDict, ok := leafVal.AsDict()
		if !ok {
			return nil, &SchemaViolationError{Field: "file tree leaf", Reason: "not a dictionary"}
		}
		return buildTreeLeaf(leafDict)
	}

	node := newDirNode()
	for _, key := range d.Keys() {
		childVal, _ := d.Get(key)
		childDict, ok := childVal.AsDict()
		if !ok {
			return nil, &SchemaViolationError{Field: "file tree", Reason: "entry is not a dictionary"}
		}
		child, err := buildTreeDict(childDict)
		if err != nil {
			return nil, err
		}
		if err := ValidatePathComponent(key); err != nil && !(key == ".pad") {
			return nil, err
		}
		node.set(key, child)
	}
	return node, nil
}

func buildTreeLeaf(d *bencode.Dict) (*TreeNode, error) {
	leaf := &TreeNode{IsFile: true}
	lengthVal, ok := d.Get("length")
	if !ok {
		return nil, &SchemaViolationError{Field: "file tree leaf.length", Reason: "missing"}
	}
	length, lok := lengthVal.Int64()
	if !lok {
		return nil, &SchemaViolationError{Field: "file tree leaf.length", Reason: "not an integer"}
	}
	leaf.Length = length

	if length > 0 {
		rootVal, ok := d.Get("pieces root")
		if !ok {
			return nil, &SchemaViolationError{Field: "file tree leaf.pieces root", Reason: "missing for non-empty file"}
		}
		root, bok := rootVal.Bytes()
		if !bok {
			return nil, &SchemaViolationError{Field: "file tree leaf.pieces root", Reason: "not a string"}
		}
		leaf.PiecesRoot = root
	}
	return leaf, nil
}
