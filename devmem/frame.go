package devmem

import "fmt"

const (
	// FrameShift is the log2 of FrameSize. Frame numbers are physical addresses
	// shifted right by this amount.
	FrameShift = 12
	// FrameSize is the number of bytes covered by a single frame, the atomic unit
	// of physical address space tracked by this module.
	FrameSize = 1 << FrameShift
)

// Frame is a physical frame number (a physical address divided by FrameSize).
type Frame uint64

// PhysAddr is a physical byte address.
type PhysAddr uint64

// Frame returns the frame containing this address.
func (a PhysAddr) Frame() Frame {
	return Frame(a >> FrameShift)
}

// Offset returns the byte offset of this address within its frame.
func (a PhysAddr) Offset() uint64 {
	return uint64(a) & (FrameSize - 1)
}

// Address returns the physical address of the first byte of the frame.
func (f Frame) Address() PhysAddr {
	return PhysAddr(f) << FrameShift
}

func (f Frame) String() string {
	return fmt.Sprintf("frame 0x%x", uint64(f))
}

// FrameRange is a contiguous run of Count frames beginning at First.
type FrameRange struct {
	First Frame
	Count uint64
}

// RangeForAddrs builds the FrameRange covering every byte in [addr, addr+size).
// A zero size produces an empty range.
func RangeForAddrs(addr PhysAddr, size uint64) FrameRange {
	if size == 0 {
		return FrameRange{First: addr.Frame()}
	}
	first := addr.Frame()
	last := (addr + PhysAddr(size) - 1).Frame()
	return FrameRange{First: first, Count: uint64(last-first) + 1}
}

// End returns the first frame after the range.
func (r FrameRange) End() Frame {
	return r.First + Frame(r.Count)
}

// IsEmpty returns true when the range covers no frames.
func (r FrameRange) IsEmpty() bool {
	return r.Count == 0
}

// Contains returns true when f falls within the range.
func (r FrameRange) Contains(f Frame) bool {
	return f >= r.First && f < r.End()
}

// Overlaps returns true when any frame is a member of both ranges.
func (r FrameRange) Overlaps(other FrameRange) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.First < other.End() && other.First < r.End()
}

func (r FrameRange) String() string {
	return fmt.Sprintf("frames [0x%x, 0x%x)", uint64(r.First), uint64(r.End()))
}
