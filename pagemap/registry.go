package pagemap

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/frametab"
	"github.com/devmemkit/pagemap/internal/utils"
	"github.com/google/btree"
	"golang.org/x/exp/slog"
)

// metadataSlotSize is the number of bytes of per-frame bookkeeping carved out
// of a region's metadata reservation for each frame it covers.
const metadataSlotSize = 64

func metadataFramesFor(frameCount uint64) uint64 {
	return devmem.AlignUp(frameCount*metadataSlotSize, devmem.FrameSize) >> devmem.FrameShift
}

// Registry maps physical frame ranges to registered device-memory regions. It
// owns every Region record it creates: registration returns only an opaque pin
// handle, and the record is destroyed exactly once, when the last pin drops.
//
// Lookups are safe under unsynchronized concurrent readers and remain
// consistent with concurrent registration and teardown of disjoint ranges.
// Readers never observe a partially constructed region.
type Registry struct {
	logger  *slog.Logger
	capable bool

	mutex   utils.OptionalRWMutex
	regions *btree.BTreeG[*Region]

	// lastLookup short-circuits successive lookups that fall in the same
	// region. Lookup is a very hot path and most callers walk ranges in order.
	lastLookup atomic.Pointer[Region]

	frameTable   frametab.Table
	nextRegionID int

	registrationsTotal   atomic.Int64
	registrationFailures atomic.Int64
	faultsTotal          [faultOutcomeCount]atomic.Int64
	freesTotal           atomic.Int64
}

// Register records a physical range as device-backed memory and returns the pin
// that keeps it alive. The region is torn down exactly once, when the last pin
// is released, never by direct caller action.
//
// Registration fails with devmem.ErrRangeOverlap when the range overlaps any
// live region, with devmem.ErrMissingFaultHandler when a CPU-inaccessible
// memory type is registered without a fault handler, and with
// devmem.ErrDevicePagesUnsupported when device-backed memory support is
// switched off. A failed registration leaves the registry unchanged.
func (r *Registry) Register(info RegionCreateInfo) (*RegionPin, error) {
	r.logger.Debug("Registry::Register",
		slog.String("device", info.DeviceName),
		slog.String("range", info.Range.String()),
		slog.String("memoryType", info.MemoryType.String()))

	pin, err := r.register(info)
	if err != nil {
		r.registrationFailures.Add(1)
		return nil, err
	}

	r.registrationsTotal.Add(1)
	return pin, nil
}

func (r *Registry) register(info RegionCreateInfo) (*RegionPin, error) {
	if !r.capable {
		return nil, errors.Wrapf(devmem.ErrDevicePagesUnsupported, "cannot register %s", info.Range)
	}

	if info.Range.IsEmpty() {
		return nil, errors.New("attempted to register an empty physical range")
	}

	if !memoryTypeKnown(info.MemoryType) {
		return nil, errors.Errorf("unknown memory type %d", int32(info.MemoryType))
	}

	if !info.MemoryType.CPUAccessible() && info.FaultHandler == nil {
		return nil, errors.Wrapf(devmem.ErrMissingFaultHandler, "%s regions are not addressable by the CPU", info.MemoryType)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if overlapping, ok := r.findOverlap(info.Range); ok {
		return nil, errors.Wrapf(devmem.ErrRangeOverlap, "%s overlaps %s owned by %q",
			info.Range, overlapping.frameRange, overlapping.device)
	}

	region := &Region{
		registry:     r,
		id:           r.nextRegionID + 1,
		frameRange:   info.Range,
		memoryType:   info.MemoryType,
		faultHandler: info.FaultHandler,
		freeHandler:  info.FreeHandler,
		userData:     info.UserData,
		altmap:       info.Altmap,
		device:       info.DeviceName,
		busOffset:    info.BusOffset,
	}

	if info.Altmap != nil {
		mdFrames := metadataFramesFor(info.Range.Count)
		_, err := info.Altmap.Alloc(mdFrames)
		if err != nil {
			return nil, errors.Wrapf(err, "materializing bookkeeping for %s", info.Range)
		}
		region.metadataFrames = mdFrames
	}

	err := r.frameTable.InitRange(info.Range, region)
	if err != nil {
		if info.Altmap != nil {
			err = errors.CombineErrors(err, info.Altmap.Free(region.metadataFrames))
		}
		return nil, errors.Wrapf(err, "initializing frame-table slots for %s", info.Range)
	}

	r.nextRegionID++
	region.pins.Store(1)
	r.regions.ReplaceOrInsert(region)
	r.lastLookup.Store(nil)

	return &RegionPin{region: region}, nil
}

// findOverlap must be called with the registry mutex held.
func (r *Registry) findOverlap(rng devmem.FrameRange) (*Region, bool) {
	probe := &Region{frameRange: devmem.FrameRange{First: rng.First}}

	var hit *Region
	r.regions.DescendLessOrEqual(probe, func(region *Region) bool {
		if region.frameRange.Overlaps(rng) {
			hit = region
		}
		return false
	})
	if hit == nil {
		r.regions.AscendGreaterOrEqual(probe, func(region *Region) bool {
			if region.frameRange.Overlaps(rng) {
				hit = region
			}
			return false
		})
	}

	return hit, hit != nil
}

// Lookup resolves a frame number to its owning region, or nil when no live
// region contains it. Stale lookups against a torn-down range simply return
// nil.
func (r *Registry) Lookup(f devmem.Frame) *Region {
	if !r.capable {
		return nil
	}

	if cached := r.lastLookup.Load(); cached != nil && !cached.dead.Load() && cached.frameRange.Contains(f) {
		return cached
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	probe := &Region{frameRange: devmem.FrameRange{First: f}}
	var hit *Region
	r.regions.DescendLessOrEqual(probe, func(region *Region) bool {
		if region.frameRange.Contains(f) {
			hit = region
		}
		return false
	})

	if hit != nil {
		r.lastLookup.Store(hit)
	}
	return hit
}

// Classify reports whether a frame belongs to any registered region and, if so,
// the region's memory type.
func (r *Registry) Classify(f devmem.Frame) (devmem.MemoryType, bool) {
	region := r.Lookup(f)
	if region == nil {
		return 0, false
	}
	return region.memoryType, true
}

// IsDeviceFrame returns true when the frame belongs to any registered region.
func (r *Registry) IsDeviceFrame(f devmem.Frame) bool {
	_, ok := r.Classify(f)
	return ok
}

// IsPrivateFrame returns true when the frame belongs to a region the CPU can
// neither read nor write.
func (r *Registry) IsPrivateFrame(f devmem.Frame) bool {
	t, ok := r.Classify(f)
	return ok && t == devmem.MemoryDevicePrivate
}

// IsCoherentFrame returns true when the frame belongs to a cache-coherent
// device-memory region.
func (r *Registry) IsCoherentFrame(f devmem.Frame) bool {
	t, ok := r.Classify(f)
	return ok && t == devmem.MemoryDeviceCoherent
}

// IsPeerToPeerFrame returns true when the frame belongs to a peer-to-peer DMA
// region.
func (r *Registry) IsPeerToPeerFrame(f devmem.Frame) bool {
	t, ok := r.Classify(f)
	return ok && t == devmem.MemoryPeerToPeer
}

// unregister tears one region down. It is only ever reached from the pin
// release path, after the pin count has hit zero.
func (r *Registry) unregister(region *Region) {
	r.logger.Debug("Registry::unregister",
		slog.String("device", region.device),
		slog.String("range", region.frameRange.String()))

	r.mutex.Lock()
	region.dead.Store(true)
	r.regions.Delete(region)
	r.lastLookup.Store(nil)
	r.mutex.Unlock()

	// Per-frame free dispatches should have drained before the last pin
	// dropped. That ordering is the driver's contract, so frames still held
	// here are logged rather than waited on.
	held := r.frameTable.HeldFrames(region.frameRange)
	if held > 0 {
		r.logger.LogAttrs(context.Background(), slog.LevelError,
			"[UNRELEASED FRAMES] region torn down with frames still held",
			slog.String("device", region.device),
			slog.String("range", region.frameRange.String()),
			slog.Int("heldFrames", held))
	}

	err := r.frameTable.ClearRange(region.frameRange)
	if err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelError,
			"Registry::unregister failed to clear frame-table slots",
			slog.String("range", region.frameRange.String()),
			slog.Any("error", err))
	}

	if region.altmap != nil {
		err = region.altmap.Free(region.metadataFrames)
		if err != nil {
			r.logger.LogAttrs(context.Background(), slog.LevelError,
				"Registry::unregister failed to return metadata frames",
				slog.String("range", region.frameRange.String()),
				slog.Any("error", err))
		}
	}
}

func (r *Registry) countFault(outcome FaultOutcome) {
	r.faultsTotal[int(outcome)].Add(1)
}

func memoryTypeKnown(t devmem.MemoryType) bool {
	switch t {
	case devmem.MemoryHostTransparent, devmem.MemoryDevicePrivate,
		devmem.MemoryDeviceCoherent, devmem.MemoryPeerToPeer:
		return true
	}
	return false
}
