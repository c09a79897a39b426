package anvil

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the region-file engine. Callers should use
// errors.Is against these rather than comparing error strings.
var (
	// ErrChunkNotFound is returned by ReadData when a slot is empty or its
	// frame length is zero.
	ErrChunkNotFound = errors.New("anvil: chunk not found")

	// ErrChunkTooLarge is returned when an encoded frame would need more
	// than 255 sectors (roughly 1 MiB).
	ErrChunkTooLarge = errors.New("anvil: chunk too large")

	// ErrDuplicateChunk is returned by bulk writers that receive two
	// entries targeting the same coordinate.
	ErrDuplicateChunk = errors.New("anvil: duplicate chunk in bulk write")

	// ErrStreamSectorBoundary signals an internal invariant violation: a
	// write began at a file offset that was not a 4 KiB boundary.
	ErrStreamSectorBoundary = errors.New("anvil: stream write not on sector boundary")

	// ErrRegionAllocationFailure is returned by the sector manager when it
	// cannot honor an allocation request (n == 0 or n > 255).
	ErrRegionAllocationFailure = errors.New("anvil: sector allocation failure")

	// ErrOutOfRange is returned by range-check helpers on bad user input.
	ErrOutOfRange = errors.New("anvil: value out of range")

	// ErrInvalidRegionFile is returned by Open when the file exists but is
	// smaller than 8192 bytes or fails a header invariant.
	ErrInvalidRegionFile = errors.New("anvil: invalid region file")
)

// InvalidCompressionScheme is returned when a frame's scheme byte is not
// one of GZip(1)/Zlib(2)/Raw(3). It carries the offending byte for callers
// that want to report it.
type InvalidCompressionScheme struct {
	Scheme byte
}

func (e *InvalidCompressionScheme) Error() string {
	return fmt.Sprintf("anvil: invalid compression scheme %d", e.Scheme)
}
