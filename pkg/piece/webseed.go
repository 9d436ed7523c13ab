package piece

import (
	"net/url"
	"strings"
)

// JoinWebseedURL builds the per-file URL for a BEP-19 webseed entry, per
// §4.D: <base>/<name>/<path components>, or just <base>/<name> when path
// is empty (the single-file case). A base URL not ending in "/" names
// the resource directly and is returned unchanged, per the "GetRight"
// webseed convention's distinction between a per-file base and a direct
// resource URL.
func JoinWebseedURL(base, name string, path []string) (string, error) {
	if !strings.HasSuffix(base, "/") {
		return base, nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	components := make([]string, 0, 1+len(path))
	components = append(components, name)
	components = append(components, path...)

	escaped := make([]string, len(components))
	for i, c := range components {
		escaped[i] = url.PathEscape(c)
	}
	u.RawPath = strings.TrimSuffix(u.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.Join(components, "/")
	return u.String(), nil
}

// WebseedURL resolves base against this range's file, per BEP-19 and
// §4.D: <base>/<info.name> for a single-file torrent (r.File.Path is
// already just [info.Name] in that case, so no path is appended), or
// <base>/<info.name>/<file.path components> otherwise.
func (r FileRange) WebseedURL(base string) (string, error) {
	name := ""
	var path []string
	if r.Info != nil {
		name = r.Info.Name
		if !r.Info.SingleFile {
			path = r.File.Path
		}
	}
	return JoinWebseedURL(base, name, path)
}

// WebseedURL resolves base against a v2 file, per BEP-19 and §4.D. path
// is the file's path within the torrent's file tree (as returned by
// metainfo.Info.V2Files or TreeNode.Walk), which never includes the
// torrent's own name, so it is always safe to append after name.
func (r V2FileRange) WebseedURL(base, name string, path []string) (string, error) {
	return JoinWebseedURL(base, name, path)
}
