package frametab

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/internal/utils"
	"github.com/dolthub/swiss"
)

type frameSlot struct {
	owner   Owner
	holders int64
}

// MemTable is a Table backed by ordinary system memory. It is the default
// collaborator for regions registered without their own metadata reservation,
// and for tests.
type MemTable struct {
	mutex utils.OptionalRWMutex
	slots *swiss.Map[devmem.Frame, *frameSlot]
}

var _ Table = &MemTable{}
var _ devmem.Validatable = &MemTable{}

// NewMemTable creates an empty MemTable. Pass useMutex=false only when the
// consumer guarantees external synchronization.
func NewMemTable(useMutex bool) *MemTable {
	return &MemTable{
		mutex: utils.OptionalRWMutex{UseMutex: useMutex},
		slots: swiss.NewMap[devmem.Frame, *frameSlot](42),
	}
}

// InitRange materializes slots for every frame in rng and records owner as
// their back-reference. It fails without mutating the table if any frame in the
// range already has a slot.
func (t *MemTable) InitRange(rng devmem.FrameRange, owner Owner) error {
	if owner == nil {
		return errors.New("attempted to initialize frame slots without an owner")
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	for f := rng.First; f < rng.End(); f++ {
		if _, ok := t.slots.Get(f); ok {
			return errors.Errorf("%s already has a frame-table slot", f)
		}
	}

	for f := rng.First; f < rng.End(); f++ {
		t.slots.Put(f, &frameSlot{owner: owner})
	}

	return nil
}

// ClearRange discards the slots for every frame in rng.
func (t *MemTable) ClearRange(rng devmem.FrameRange) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for f := rng.First; f < rng.End(); f++ {
		t.slots.Delete(f)
	}

	return nil
}

// Owner returns the back-reference recorded for a frame, or false when the
// frame has no slot.
func (t *MemTable) Owner(f devmem.Frame) (Owner, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	slot, ok := t.slots.Get(f)
	if !ok {
		return nil, false
	}
	return slot.owner, true
}

// Get takes an ordinary reference on the frame.
func (t *MemTable) Get(f devmem.Frame) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	slot, ok := t.slots.Get(f)
	if !ok {
		return errors.Wrapf(devmem.ErrUnknownFrame, "%s", f)
	}

	slot.holders++
	return nil
}

// Put drops an ordinary reference on the frame. When the count returns to zero
// while the frame is still owned, the owner's FreeFrame dispatch runs exactly
// once, outside the table's lock.
func (t *MemTable) Put(f devmem.Frame) error {
	t.mutex.Lock()

	slot, ok := t.slots.Get(f)
	if !ok {
		t.mutex.Unlock()
		return errors.Wrapf(devmem.ErrUnknownFrame, "%s", f)
	}

	if slot.holders == 0 {
		t.mutex.Unlock()
		panic(fmt.Sprintf("put on %s, which has no ordinary holders", f))
	}

	slot.holders--
	dispatchFree := slot.holders == 0
	owner := slot.owner
	t.mutex.Unlock()

	if dispatchFree {
		owner.FreeFrame(f)
	}

	return nil
}

// HolderCount reports the frame's current ordinary-holder count.
func (t *MemTable) HolderCount(f devmem.Frame) (int64, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	slot, ok := t.slots.Get(f)
	if !ok {
		return 0, errors.Wrapf(devmem.ErrUnknownFrame, "%s", f)
	}
	return slot.holders, nil
}

// HeldFrames reports how many frames in rng currently have at least one
// ordinary holder.
func (t *MemTable) HeldFrames(rng devmem.FrameRange) int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	held := 0
	for f := rng.First; f < rng.End(); f++ {
		slot, ok := t.slots.Get(f)
		if ok && slot.holders > 0 {
			held++
		}
	}
	return held
}

// SlotCount returns the number of live frame-table slots.
func (t *MemTable) SlotCount() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.slots.Count()
}

// Validate performs internal consistency checks on the table's slots.
func (t *MemTable) Validate() error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var err error
	t.slots.Iter(func(f devmem.Frame, slot *frameSlot) bool {
		if slot.owner == nil {
			err = errors.Errorf("%s has a slot without an owner back-reference", f)
			return true
		}
		if slot.holders < 0 {
			err = errors.Errorf("%s has a negative holder count %d", f, slot.holders)
			return true
		}
		return false
	})
	return err
}
