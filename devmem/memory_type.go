package devmem

import "fmt"

// MemoryType identifies what kind of device memory backs a registered region.
// The type is fixed at registration and selects both accessibility semantics
// and the dispatch behavior of the region's callbacks.
type MemoryType int32

const (
	// MemoryHostTransparent is device memory that the CPU can access like
	// ordinary RAM (persistent memory, for example). Bandwidth and latency may
	// differ from regular memory, but no fault mediation is needed.
	MemoryHostTransparent MemoryType = iota
	// MemoryDevicePrivate is device memory that the CPU can neither read nor
	// write. Per-frame bookkeeping still exists for it, but CPU access must be
	// mediated through the region's fault handler, which migrates data back to
	// system memory.
	MemoryDevicePrivate
	// MemoryDeviceCoherent is device memory that is cache coherent between the
	// device and the CPU. Frames of any process can be migrated into it, but it
	// should never be pinned so that it can always be evicted.
	MemoryDeviceCoherent
	// MemoryPeerToPeer is device memory residing behind a bus aperture intended
	// for peer-to-peer DMA transactions.
	MemoryPeerToPeer
)

var memoryTypeMapping = map[MemoryType]string{
	MemoryHostTransparent: "MemoryHostTransparent",
	MemoryDevicePrivate:   "MemoryDevicePrivate",
	MemoryDeviceCoherent:  "MemoryDeviceCoherent",
	MemoryPeerToPeer:      "MemoryPeerToPeer",
}

func (t MemoryType) String() string {
	str, ok := memoryTypeMapping[t]
	if !ok {
		return fmt.Sprintf("MemoryType(%d)", int32(t))
	}
	return str
}

// CPUAccessible returns true when the CPU can directly read and write frames
// of this type without fault mediation.
func (t MemoryType) CPUAccessible() bool {
	return t != MemoryDevicePrivate
}
