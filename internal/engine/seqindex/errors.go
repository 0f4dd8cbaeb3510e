package seqindex

import "errors"

// Errors returned by index operations.
var (
	// ErrIndexOutOfBounds indicates a rank or range outside [0, Len()],
	// or a range whose start is after its end.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrOutOfMemory indicates the node budget cannot cover an insertion.
	// The index is left unchanged.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInvalidCapacity indicates a block capacity below MinBlockCapacity.
	ErrInvalidCapacity = errors.New("invalid block capacity")
)
