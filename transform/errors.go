package transform

import "errors"

// Parse failures that abort a single file. The orchestrator logs them and
// continues with the next file.
var (
	// ErrMalformedInput marks a source file whose required top-level
	// structure is absent (no valueSet element, empty CSV).
	ErrMalformedInput = errors.New("malformed input")

	// ErrOutOfRange marks a CSV row that lacks a referenced column.
	ErrOutOfRange = errors.New("column out of range")

	// ErrNullText marks a description element without any text payload.
	// It aborts only that single description, not the file.
	ErrNullText = errors.New("description has no text")
)
