package reader

import "errors"

// Common errors returned by the reader. All of them are fatal: the read
// aborts immediately and no partial Document is returned. The only recovered
// condition is an unsupported extension that the document does not mark as
// required, which is logged as a warning instead.
var (
	// ErrUnsupportedVersion is returned when the document's asset version is
	// not the supported glTF major.minor.
	ErrUnsupportedVersion = errors.New("unsupported glTF version: must be 2.0")

	// ErrMissingRequiredExtension is returned when a required extension name
	// has no matching registered implementation.
	ErrMissingRequiredExtension = errors.New("missing required extension")

	// ErrDanglingReference is returned when an index is resolved before its
	// target kind's construction phase completed, or lies beyond list bounds.
	// Under the fixed pipeline phase order this indicates a programming error
	// or a document reference into a later-constructed kind.
	ErrDanglingReference = errors.New("dangling reference")
)
