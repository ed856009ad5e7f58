package frametab

import (
	"github.com/devmemkit/pagemap/devmem"
)

//go:generate mockgen -source table.go -destination mocks/table.go

// Owner receives the free dispatch for frames it owns. A frame's ordinary
// reference count deliberately never reaches true zero while a region owns it-
// instead, when the last ordinary holder drops, the owner is told so that it can
// reclaim or recycle the frame under its own policy.
type Owner interface {
	// FreeFrame is invoked exactly once each time the frame's ordinary-holder
	// count falls back to zero while the owner still owns the frame.
	FreeFrame(f devmem.Frame)
}

// Table is the frame-table collaborator consumed by the region registry: it
// materializes a per-frame bookkeeping slot for each frame number and carries
// the back-reference from a frame to its owning region.
//
// The ordinary reference count managed here is two-tier: an ordinary-holder
// count moved by Get and Put, plus the owned flag implied by InitRange and
// ClearRange. "No ordinary holders but still owned" is a valid idle state,
// distinct from a cleared slot.
type Table interface {
	// InitRange materializes slots for every frame in rng and records owner as
	// their back-reference. It fails without mutating the table if any frame in
	// the range already has a slot.
	InitRange(rng devmem.FrameRange, owner Owner) error
	// ClearRange discards the slots for every frame in rng. Frames without a
	// slot are ignored.
	ClearRange(rng devmem.FrameRange) error
	// Owner returns the back-reference recorded for a frame, or false when the
	// frame has no slot.
	Owner(f devmem.Frame) (Owner, bool)
	// Get takes an ordinary reference on the frame. It fails with
	// devmem.ErrUnknownFrame when the frame has no slot.
	Get(f devmem.Frame) error
	// Put drops an ordinary reference on the frame. When the last ordinary
	// holder drops, the owner's FreeFrame is invoked. Put on a frame with no
	// ordinary holders panics: that is a reference-counting bug somewhere in
	// the caller.
	Put(f devmem.Frame) error
	// HolderCount reports the frame's current ordinary-holder count.
	HolderCount(f devmem.Frame) (int64, error)
	// HeldFrames reports how many frames in rng currently have at least one
	// ordinary holder.
	HeldFrames(rng devmem.FrameRange) int
}
