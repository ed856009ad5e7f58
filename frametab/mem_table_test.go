package frametab_test

import (
	"testing"

	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/frametab"
	"github.com/stretchr/testify/require"
)

type countingOwner struct {
	freed []devmem.Frame
}

func (o *countingOwner) FreeFrame(f devmem.Frame) {
	o.freed = append(o.freed, f)
}

func TestInitRangeAndOwner(t *testing.T) {
	table := frametab.NewMemTable(true)
	owner := &countingOwner{}

	err := table.InitRange(devmem.FrameRange{First: 100, Count: 4}, owner)
	require.NoError(t, err)
	require.Equal(t, 4, table.SlotCount())

	got, ok := table.Owner(101)
	require.True(t, ok)
	require.Same(t, owner, got.(*countingOwner))

	_, ok = table.Owner(104)
	require.False(t, ok)

	require.NoError(t, table.Validate())
}

func TestInitRangeRejectsCollision(t *testing.T) {
	table := frametab.NewMemTable(true)
	owner := &countingOwner{}

	err := table.InitRange(devmem.FrameRange{First: 100, Count: 4}, owner)
	require.NoError(t, err)

	// The colliding init must not create any slots for the second owner
	err = table.InitRange(devmem.FrameRange{First: 102, Count: 4}, &countingOwner{})
	require.Error(t, err)
	require.Equal(t, 4, table.SlotCount())

	err = table.InitRange(devmem.FrameRange{First: 100, Count: 1}, nil)
	require.Error(t, err)
}

func TestClearRange(t *testing.T) {
	table := frametab.NewMemTable(true)

	err := table.InitRange(devmem.FrameRange{First: 100, Count: 4}, &countingOwner{})
	require.NoError(t, err)

	err = table.ClearRange(devmem.FrameRange{First: 100, Count: 4})
	require.NoError(t, err)
	require.Equal(t, 0, table.SlotCount())

	err = table.Get(100)
	require.ErrorIs(t, err, devmem.ErrUnknownFrame)
}

func TestFreeDispatchAtFloor(t *testing.T) {
	table := frametab.NewMemTable(true)
	owner := &countingOwner{}

	err := table.InitRange(devmem.FrameRange{First: 100, Count: 4}, owner)
	require.NoError(t, err)

	require.NoError(t, table.Get(100))
	require.NoError(t, table.Get(100))

	count, err := table.HolderCount(100)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	// The first put leaves an ordinary holder, so no free dispatch yet
	require.NoError(t, table.Put(100))
	require.Empty(t, owner.freed)

	require.NoError(t, table.Put(100))
	require.Equal(t, []devmem.Frame{100}, owner.freed)

	// Another acquire/release cycle dispatches again
	require.NoError(t, table.Get(100))
	require.NoError(t, table.Put(100))
	require.Equal(t, []devmem.Frame{100, 100}, owner.freed)
}

func TestPutBelowFloorPanics(t *testing.T) {
	table := frametab.NewMemTable(true)

	err := table.InitRange(devmem.FrameRange{First: 100, Count: 1}, &countingOwner{})
	require.NoError(t, err)

	require.Panics(t, func() {
		_ = table.Put(100)
	})
}

func TestUnknownFrameOperations(t *testing.T) {
	table := frametab.NewMemTable(true)

	require.ErrorIs(t, table.Get(55), devmem.ErrUnknownFrame)
	require.ErrorIs(t, table.Put(55), devmem.ErrUnknownFrame)

	_, err := table.HolderCount(55)
	require.ErrorIs(t, err, devmem.ErrUnknownFrame)
}

func TestHeldFrames(t *testing.T) {
	table := frametab.NewMemTable(true)
	rng := devmem.FrameRange{First: 100, Count: 4}

	err := table.InitRange(rng, &countingOwner{})
	require.NoError(t, err)
	require.Equal(t, 0, table.HeldFrames(rng))

	require.NoError(t, table.Get(100))
	require.NoError(t, table.Get(102))
	require.Equal(t, 2, table.HeldFrames(rng))

	require.NoError(t, table.Put(102))
	require.Equal(t, 1, table.HeldFrames(rng))
}
