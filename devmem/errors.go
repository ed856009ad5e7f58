package devmem

import "github.com/pkg/errors"

// ErrPowerOfTwo is the error returned from CheckPow2 or other methods if the number being
// tested is not a power of two
var ErrPowerOfTwo error = errors.New("number must be a power of two")

// ErrOutOfReservedSpace is returned when a metadata allocation does not fit in the free
// portion of a device's metadata reservation
var ErrOutOfReservedSpace error = errors.New("metadata reservation has insufficient free frames")

// ErrMismatchedFree is returned when a metadata free does not match the most recent live
// allocation- the reservation only supports freeing allocations in strict reverse order
var ErrMismatchedFree error = errors.New("free does not match the most recent metadata allocation")

// ErrRangeOverlap is returned when a registration's physical range overlaps a live region
var ErrRangeOverlap error = errors.New("physical range overlaps a registered region")

// ErrMissingFaultHandler is returned when a CPU-inaccessible memory type is registered
// without a fault handler to mediate CPU access
var ErrMissingFaultHandler error = errors.New("memory type requires a fault handler")

// ErrDevicePagesUnsupported is returned from registration when device-backed memory
// support is switched off- callers are expected to fall back to plain memory mapping
var ErrDevicePagesUnsupported error = errors.New("device-backed memory support is unavailable")

// ErrUnknownFrame is returned when a frame-table operation names a frame with no slot
var ErrUnknownFrame error = errors.New("frame has no frame-table slot")
