package metainfo

import "fmt"

// SchemaViolationError is error kind 2 from spec §7: a key is missing, or
// present with the wrong bencode type, or out of its allowed range.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("metainfo: schema violation in %q: %s", e.Field, e.Reason)
}

// CrossFieldInvariantError is error kind 3 from spec §7: every field is
// individually well-typed but two or more fields together violate an
// invariant (piece count vs. total length, v1/v2 file lists disagreeing
// in a hybrid torrent, etc).
type CrossFieldInvariantError struct {
	Reason string
}

func (e *CrossFieldInvariantError) Error() string {
	return fmt.Sprintf("metainfo: cross-field invariant violated: %s", e.Reason)
}

// FilesystemMissingError is error kind 5 from spec §7: a referenced local
// file does not exist or is not readable when the model needs disk access
// (hashing, validation against a download directory).
type FilesystemMissingError struct {
	Path string
	Err  error
}

func (e *FilesystemMissingError) Error() string {
	return fmt.Sprintf("metainfo: missing file %q: %v", e.Path, e.Err)
}

func (e *FilesystemMissingError) Unwrap() error { return e.Err }
