package snapshot

import "errors"

// Snapshot errors.
var (
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorrupt            = errors.New("corrupt snapshot")
	ErrTargetNotEmpty     = errors.New("restore target is not empty")
)
