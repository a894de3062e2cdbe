package store

import "errors"

// Sentinel errors for the persistence engine. Callers classify failures with
// errors.Is; wrapped messages carry the operation detail.
var (
	// ErrNotFound means the id is unknown to the index or its payload file is
	// missing. Callers should treat the project as nonexistent.
	ErrNotFound = errors.New("project not found")

	// ErrCorrupted means a payload file exists but failed structural
	// validation. The next repair pass removes it; callers should treat the
	// project as nonexistent.
	ErrCorrupted = errors.New("project payload corrupted")

	// ErrIOFailure is a write, read, or rename failure at the file-system
	// boundary. The operation aborted with prior state untouched.
	ErrIOFailure = errors.New("store i/o failure")

	// ErrIndexWrite means the index document could not be persisted; the save
	// that triggered it was rolled back.
	ErrIndexWrite = errors.New("index write failure")

	// ErrValidation is an export-time sanity check failure (for example an
	// implausibly small encoded audio artifact).
	ErrValidation = errors.New("validation failure")

	// ErrVersionMismatch means an archive declares a format version this
	// build does not understand.
	ErrVersionMismatch = errors.New("unsupported format version")
)
