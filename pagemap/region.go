package pagemap

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/devmem/altmap"
	"github.com/devmemkit/pagemap/frametab"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// RegionCreateInfo describes a physical range being registered as device-backed
// memory.
type RegionCreateInfo struct {
	// Range is the physical frame range the device is contributing
	Range devmem.FrameRange
	// MemoryType determines accessibility semantics and dispatch behavior for
	// every frame in the range
	MemoryType devmem.MemoryType

	// FaultHandler mediates CPU access to the region's frames. It is required
	// when MemoryType is devmem.MemoryDevicePrivate and ignored for
	// CPU-accessible types.
	FaultHandler FaultHandler
	// FreeHandler receives the per-frame free dispatch. It can be left nil
	// when the driver has no per-frame reclamation policy.
	FreeHandler FreeHandler
	// UserData is passed through to FreeHandler.FreeFrame
	UserData any

	// Altmap optionally supplies the device's own storage for per-frame
	// bookkeeping. When nil, bookkeeping is materialized from general system
	// memory by the frame-table collaborator.
	Altmap *altmap.Reservation

	// DeviceName is a back-reference to the registering device, recorded for
	// diagnostics only. It never participates in ownership decisions.
	DeviceName string

	// BusOffset is added to a frame's physical address to form its bus address
	// for devmem.MemoryPeerToPeer regions
	BusOffset uint64
}

// Region is a registered, contiguous physical range backed by a device. The
// registry exclusively owns the Region record. Drivers interact with it through
// the opaque pin handle returned from Register and through read-only accessors.
type Region struct {
	registry *Registry
	id       int

	frameRange devmem.FrameRange
	memoryType devmem.MemoryType

	faultHandler FaultHandler
	freeHandler  FreeHandler
	userData     any

	altmap         *altmap.Reservation
	metadataFrames uint64

	device    string
	busOffset uint64

	pins atomic.Int64
	dead atomic.Bool
}

var _ frametab.Owner = &Region{}

// ID returns the registry-assigned identifier of the region.
func (region *Region) ID() int {
	return region.id
}

// Range returns the physical frame range covered by the region.
func (region *Region) Range() devmem.FrameRange {
	return region.frameRange
}

// MemoryType returns the memory type fixed at registration.
func (region *Region) MemoryType() devmem.MemoryType {
	return region.memoryType
}

// DeviceName returns the diagnostic back-reference to the registering device.
func (region *Region) DeviceName() string {
	return region.device
}

// MetadataFrames returns the number of frames carved out of the region's
// metadata reservation for bookkeeping, or zero when the region has none.
func (region *Region) MetadataFrames() uint64 {
	return region.metadataFrames
}

// BusAddress translates a physical address within a peer-to-peer region to the
// bus address peers must use to reach it.
func (region *Region) BusAddress(addr devmem.PhysAddr) (devmem.PhysAddr, error) {
	if region.memoryType != devmem.MemoryPeerToPeer {
		return 0, errors.Errorf("bus address translation on a %s region", region.memoryType)
	}
	if !region.frameRange.Contains(addr.Frame()) {
		return 0, errors.Errorf("address 0x%x is outside %s", uint64(addr), region.frameRange)
	}
	return addr + devmem.PhysAddr(region.busOffset), nil
}

// FreeFrame implements frametab.Owner: the frame-release collaborator invokes
// it when a frame's last ordinary holder drops, and it forwards to the
// driver-supplied free handler.
func (region *Region) FreeFrame(f devmem.Frame) {
	region.registry.freesTotal.Add(1)
	if region.freeHandler != nil {
		region.freeHandler.FreeFrame(f, region.userData)
	}
}

func (region *Region) printParameters(json *jwriter.ObjectState) {
	json.Name("Id").Int(region.id)
	json.Name("Device").String(region.device)
	json.Name("FirstFrame").Int(int(region.frameRange.First))
	json.Name("FrameCount").Int(int(region.frameRange.Count))
	json.Name("MemoryType").String(region.memoryType.String())
	json.Name("Pins").Int(int(region.pins.Load()))
	if region.altmap != nil {
		obj := json.Name("MetadataReservation").Object()
		region.altmap.BuildStatsString(obj)
		obj.End()
	}
}
