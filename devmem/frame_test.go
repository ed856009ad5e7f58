package devmem_test

import (
	"testing"

	"github.com/devmemkit/pagemap/devmem"
	"github.com/stretchr/testify/require"
)

func TestFrameAddressRoundTrip(t *testing.T) {
	addr := devmem.PhysAddr(0x12345678)
	frame := addr.Frame()

	require.Equal(t, devmem.Frame(0x12345), frame)
	require.Equal(t, devmem.PhysAddr(0x12345000), frame.Address())
	require.Equal(t, uint64(0x678), addr.Offset())
}

func TestRangeForAddrs(t *testing.T) {
	rng := devmem.RangeForAddrs(0x1000, 0x2000)
	require.Equal(t, devmem.FrameRange{First: 1, Count: 2}, rng)

	// A range not aligned to frame boundaries still covers every touched frame
	rng = devmem.RangeForAddrs(0x1800, 0x1000)
	require.Equal(t, devmem.FrameRange{First: 1, Count: 2}, rng)

	rng = devmem.RangeForAddrs(0x1000, 0)
	require.True(t, rng.IsEmpty())
}

func TestRangeContains(t *testing.T) {
	rng := devmem.FrameRange{First: 100, Count: 10}

	require.False(t, rng.Contains(99))
	require.True(t, rng.Contains(100))
	require.True(t, rng.Contains(109))
	require.False(t, rng.Contains(110))
	require.Equal(t, devmem.Frame(110), rng.End())
}

func TestRangeOverlaps(t *testing.T) {
	rng := devmem.FrameRange{First: 100, Count: 10}

	require.True(t, rng.Overlaps(devmem.FrameRange{First: 105, Count: 10}))
	require.True(t, rng.Overlaps(devmem.FrameRange{First: 95, Count: 6}))
	require.True(t, rng.Overlaps(devmem.FrameRange{First: 102, Count: 2}))
	require.False(t, rng.Overlaps(devmem.FrameRange{First: 110, Count: 5}))
	require.False(t, rng.Overlaps(devmem.FrameRange{First: 90, Count: 10}))
	require.False(t, rng.Overlaps(devmem.FrameRange{First: 105, Count: 0}))
}

func TestMemoryTypeAccessibility(t *testing.T) {
	require.True(t, devmem.MemoryHostTransparent.CPUAccessible())
	require.False(t, devmem.MemoryDevicePrivate.CPUAccessible())
	require.True(t, devmem.MemoryDeviceCoherent.CPUAccessible())
	require.True(t, devmem.MemoryPeerToPeer.CPUAccessible())
}

func TestAlign(t *testing.T) {
	require.Equal(t, uint64(16), devmem.AlignUp(uint64(13), uint64(8)))
	require.Equal(t, uint64(16), devmem.AlignUp(uint64(16), uint64(8)))
	require.Equal(t, uint64(8), devmem.AlignDown(uint64(13), uint64(8)))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, devmem.CheckPow2(uint64(64), "alignment"))

	err := devmem.CheckPow2(uint64(48), "alignment")
	require.ErrorIs(t, err, devmem.ErrPowerOfTwo)

	err = devmem.CheckPow2(uint64(0), "alignment")
	require.ErrorIs(t, err, devmem.ErrPowerOfTwo)
}
