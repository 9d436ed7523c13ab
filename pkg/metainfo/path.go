package metainfo

import (
	"fmt"
	"strings"
)

// PathUnsafeError is error kind 4 from spec §7: a path component is ".",
// "..", empty, or contains a path separator.
type PathUnsafeError struct {
	Component string
	Reason    string
}

func (e *PathUnsafeError) Error() string {
	return fmt.Sprintf("metainfo: unsafe path component %q: %s", e.Component, e.Reason)
}

// ValidatePathComponent checks a single path component against the rule
// in §3: "no path component equals '.', '..', or contains the platform
// path separator", extended to forbid the empty component and any
// embedded NUL or forward/back slash regardless of host platform, since
// metainfo files travel between platforms.
func ValidatePathComponent(c string) error {
	switch {
	case c == "":
		return &PathUnsafeError{Component: c, Reason: "empty path component"}
	case c == ".":
		return &PathUnsafeError{Component: c, Reason: `component is "."`}
	case c == "..":
		return &PathUnsafeError{Component: c, Reason: `component is ".."`}
	case strings.ContainsAny(c, "/\\"):
		return &PathUnsafeError{Component: c, Reason: "component contains a path separator"}
	case strings.ContainsRune(c, 0):
		return &PathUnsafeError{Component: c, Reason: "component contains a NUL byte"}
	}
	return nil
}

// validatePath checks every component of an ordered path.
func validatePath(components []string) error {
	if len(components) == 0 {
		return &PathUnsafeError{Reason: "path has no components"}
	}
	for _, c := range components {
		if err := ValidatePathComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// isPadPath reports whether path is the distinguished pad-file path
// [".pad", "<decimal length>"] from §3.
func isPadPath(path []string) bool {
	return len(path) == 2 && path[0] == ".pad"
}

// padPath returns the canonical pad-file path for a gap of the given
// length.
func padPath(length int64) []string {
	return []string{".pad", fmt.Sprintf("%d", length)}
}
