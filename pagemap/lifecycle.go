package pagemap

import (
	"fmt"
	"sync/atomic"
)

// RegionPin is the shared counting handle that gates region teardown. The
// region stays logically alive while any pin is held; when the last one is
// released, teardown runs exactly once and the range becomes unknown to the
// registry.
//
// Each RegionPin value may be released once. Acquire additional pins from any
// live pin when several holders need to keep the region alive independently.
type RegionPin struct {
	region   *Region
	released atomic.Bool
}

// Region returns the pinned region.
func (p *RegionPin) Region() *Region {
	return p.region
}

// Acquire increments the region's pin count and returns a new handle. It can
// only be called through a live pin, which guarantees the count is above zero
// and teardown cannot have begun.
func (p *RegionPin) Acquire() *RegionPin {
	if p.released.Load() {
		panic("acquire through a released pin")
	}

	count := p.region.pins.Add(1)
	if count <= 1 {
		// The count could only have been zero if teardown already ran while this
		// handle claimed to be live.
		panic(fmt.Sprintf("pin count was %d during acquire on %s", count-1, p.region.frameRange))
	}

	return &RegionPin{region: p.region}
}

// Release decrements the region's pin count. The handle is dead afterwards.
// When the count reaches zero, the region is torn down: its metadata is
// released and subsequent lookups against its range return nil.
//
// Releasing the same handle twice, or releasing past zero, panics: a double
// release signals a broken ownership invariant elsewhere in the system that
// cannot be safely continued past.
func (p *RegionPin) Release() {
	if p.released.Swap(true) {
		panic(fmt.Sprintf("double release of a pin on %s", p.region.frameRange))
	}

	count := p.region.pins.Add(-1)
	if count < 0 {
		panic(fmt.Sprintf("pin count on %s dropped below zero", p.region.frameRange))
	}

	if count == 0 {
		p.region.registry.unregister(p.region)
	}
}
