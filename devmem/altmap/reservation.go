package altmap

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// CreateInfo describes the device-supplied storage a Reservation will manage.
type CreateInfo struct {
	// BaseFrame is the first frame of the entire mapped device range
	BaseFrame devmem.Frame
	// TotalFrames is the number of frames in the mapped device range
	TotalFrames uint64
	// ReservedFrames is the number of frames at the start of the range that are
	// permanently set aside for driver use and never handed out for metadata
	ReservedFrames uint64
}

type allocation struct {
	frames  uint64
	padding uint64
}

// Reservation carves per-frame bookkeeping storage out of a fixed sub-range of a
// device's own physical allocation. Device-backed metadata cannot always spill to
// system memory, so running out of reserved capacity is an explicit, recoverable
// error rather than a general memory-exhaustion condition.
//
// Alloc and Free follow a strict stack discipline: Free only reclaims the most
// recently allocated tail, and a free that does not match it is rejected. A
// Reservation is not internally synchronized- allocation and the corresponding
// free must be serialized by the caller.
type Reservation struct {
	baseFrame   devmem.Frame
	totalFrames uint64
	reserve     uint64

	free  uint64
	align uint64
	alloc uint64

	allocations []allocation
}

var _ devmem.Validatable = &Reservation{}

// New creates a Reservation over the storage described by info. The reserved
// frame count may not exceed the total frame count of the backing range.
func New(info CreateInfo) (*Reservation, error) {
	if info.TotalFrames == 0 {
		return nil, errors.New("a metadata reservation requires at least one backing frame")
	}
	if info.ReservedFrames > info.TotalFrames {
		return nil, errors.Errorf("%d frames are reserved for driver use, but the backing range only has %d frames", info.ReservedFrames, info.TotalFrames)
	}

	return &Reservation{
		baseFrame:   info.BaseFrame,
		totalFrames: info.TotalFrames,
		reserve:     info.ReservedFrames,
		free:        info.TotalFrames - info.ReservedFrames,
	}, nil
}

// BaseFrame returns the first frame of the entire mapped device range.
func (r *Reservation) BaseFrame() devmem.Frame { return r.baseFrame }

// TotalFrames returns the number of frames in the mapped device range.
func (r *Reservation) TotalFrames() uint64 { return r.totalFrames }

// ReservedFrames returns the number of frames permanently set aside for driver use.
func (r *Reservation) ReservedFrames() uint64 { return r.reserve }

// FreeFrames returns the number of frames still available for metadata allocation.
func (r *Reservation) FreeFrames() uint64 { return r.free }

// AlignFrames returns the number of frames consumed purely to satisfy allocation
// alignment. Padding frames are recorded but never reused.
func (r *Reservation) AlignFrames() uint64 { return r.align }

// AllocatedFrames returns the running count of frames handed out by Alloc.
func (r *Reservation) AllocatedFrames() uint64 { return r.alloc }

// nextOffset is the reservation-relative frame at which the next allocation
// would begin, before alignment padding.
func (r *Reservation) nextOffset() uint64 {
	return r.reserve + r.align + r.alloc
}

// Alloc hands out contiguous frames of metadata storage and returns the
// reservation-relative offset of the first one. The allocation is aligned to the
// natural alignment of the request (the lowest set bit of the frame count),
// consuming padding frames as needed. Alloc fails with
// devmem.ErrOutOfReservedSpace when the request plus padding exceeds the
// remaining free frames.
func (r *Reservation) Alloc(frames uint64) (uint64, error) {
	if frames == 0 {
		return 0, errors.New("attempted a zero-frame metadata allocation")
	}

	alignment := uint64(1) << bits.TrailingZeros64(frames)
	nextFrame := uint64(r.baseFrame) + r.nextOffset()
	padding := devmem.AlignUp(nextFrame, alignment) - nextFrame

	if frames+padding > r.free {
		return 0, errors.Wrapf(devmem.ErrOutOfReservedSpace,
			"requested %d frames with %d padding frames, but only %d remain free", frames, padding, r.free)
	}

	r.align += padding
	offset := r.nextOffset()
	r.alloc += frames
	r.free -= frames + padding
	r.allocations = append(r.allocations, allocation{frames: frames, padding: padding})

	devmem.DebugValidate(r)
	return offset, nil
}

// Free reclaims the most recently allocated tail of the reservation, restoring
// both the frames and the padding consumed by that allocation. A free that does
// not exactly match the most recent live allocation is rejected with
// devmem.ErrMismatchedFree- silently absorbing one would hide a broken caller.
func (r *Reservation) Free(frames uint64) error {
	if len(r.allocations) == 0 {
		return errors.Wrapf(devmem.ErrMismatchedFree, "freed %d frames, but no allocations are live", frames)
	}

	tail := r.allocations[len(r.allocations)-1]
	if tail.frames != frames {
		return errors.Wrapf(devmem.ErrMismatchedFree, "freed %d frames, but the most recent allocation was %d frames", frames, tail.frames)
	}

	r.allocations = r.allocations[:len(r.allocations)-1]
	r.alloc -= tail.frames
	r.align -= tail.padding
	r.free += tail.frames + tail.padding

	devmem.DebugValidate(r)
	return nil
}

// Offset returns the reservation-relative position of a frame, usable for
// addressing the metadata describing that frame. It returns an error when the
// frame falls outside the mapped device range.
func (r *Reservation) Offset(f devmem.Frame) (uint64, error) {
	if f < r.baseFrame || uint64(f-r.baseFrame) >= r.totalFrames {
		return 0, errors.Errorf("%s is outside the mapped range beginning at %s", f, r.baseFrame)
	}
	return uint64(f - r.baseFrame), nil
}

// Validate performs internal consistency checks on the reservation's frame
// accounting. When the implementation is functioning correctly, it should not be
// possible for this method to return an error.
func (r *Reservation) Validate() error {
	if r.reserve+r.free+r.align+r.alloc > r.totalFrames {
		return errors.Errorf("reserved (%d), free (%d), padding (%d) and allocated (%d) frames exceed the backing range's %d frames",
			r.reserve, r.free, r.align, r.alloc, r.totalFrames)
	}

	var sumFrames, sumPadding uint64
	for _, a := range r.allocations {
		sumFrames += a.frames
		sumPadding += a.padding
	}

	if sumFrames != r.alloc {
		return errors.Errorf("live allocations total %d frames, but the metadata indicates %d allocated frames", sumFrames, r.alloc)
	}

	if sumPadding != r.align {
		return errors.Errorf("live allocations total %d padding frames, but the metadata indicates %d padding frames", sumPadding, r.align)
	}

	return nil
}

// BuildStatsString populates a json object with information about this reservation
func (r *Reservation) BuildStatsString(json jwriter.ObjectState) {
	json.Name("BaseFrame").Int(int(r.baseFrame))
	json.Name("TotalFrames").Int(int(r.totalFrames))
	json.Name("ReservedFrames").Int(int(r.reserve))
	json.Name("FreeFrames").Int(int(r.free))
	json.Name("AlignFrames").Int(int(r.align))
	json.Name("AllocatedFrames").Int(int(r.alloc))
	json.Name("LiveAllocations").Int(len(r.allocations))
}
