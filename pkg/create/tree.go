package create

import (
	"github.com/p2p-ld/torrent-models/pkg/hash"
	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

// buildTree assembles the v2 file tree from the walked entries and their
// per-file Merkle results, in walk order (pad files are never part of
// the v2 tree, per §3).
func buildTree(entries []walkEntry, results []hash.FileTreeResult) *metainfo.TreeNode {
	root := metainfo.NewDirNode()
	for i, e := range entries {
		leaf := &metainfo.TreeNode{IsFile: true, Length: e.length}
		if e.length > 0 {
			pr := results[i].PiecesRoot
			leaf.PiecesRoot = pr[:]
		}
		insertLeaf(root, e.rel, leaf)
	}
	return root
}

func insertLeaf(root *metainfo.TreeNode, path []string, leaf *metainfo.TreeNode) {
	cur := root
	for i, c := range path {
		if i == len(path)-1 {
			cur.Set(c, leaf)
			return
		}
		next, ok := cur.Child(c)
		if !ok {
			next = metainfo.NewDirNode()
			cur.Set(c, next)
		}
		cur = next
	}
}
