package create

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/p2p-ld/torrent-models/pkg/metainfo"
)

// walkEntry is one real (non-pad) file discovered under a root, in the
// deterministic order step 1 of the create façade requires.
type walkEntry struct {
	absPath string   // path on the local filesystem
	rel     []string // path components relative to root
	length  int64
}

// walkRoot enumerates every regular file under root, rejecting unsafe
// path components before any hashing begins (§4.E step 1), and returns
// them sorted by path component in lexicographic byte order so the
// resulting torrent is reproducible regardless of directory iteration
// order.
func walkRoot(root string) (entries []walkEntry, singleFile bool, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, false, &metainfo.FilesystemMissingError{Path: root, Err: err}
	}

	if !info.IsDir() {
		rel := []string{filepath.Base(root)}
		return []walkEntry{{absPath: root, rel: rel, length: info.Size()}}, true, nil
	}

	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return &metainfo.FilesystemMissingError{Path: path, Err: err}
		}
		if fi.IsDir() {
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		components := splitPath(rel)
		for _, c := range components {
			if verr := metainfo.ValidatePathComponent(c); verr != nil {
				return verr
			}
		}

		entries = append(entries, walkEntry{absPath: path, rel: components, length: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return comparePath(entries[i].rel, entries[j].rel) < 0
	})
	return entries, false, nil
}

// splitPath splits an OS-relative path into its components, independent
// of platform separator.
func splitPath(rel string) []string {
	var out []string
	var cur string
	for _, r := range rel {
		if r == filepath.Separator {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out
}

func comparePath(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
