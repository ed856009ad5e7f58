package pagemap_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/devmemkit/pagemap/devmem"
	"github.com/devmemkit/pagemap/pagemap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)
	collector := pagemap.NewCollector(registry)

	pin, err := registry.Register(pagemap.RegionCreateInfo{
		Range:        devmem.FrameRange{First: 0x100, Count: 0x10},
		MemoryType:   devmem.MemoryDevicePrivate,
		FaultHandler: newTestFaultHandler(pagemap.FaultMigrated, nil),
	})
	require.NoError(t, err)

	_, err = registry.Register(pagemap.RegionCreateInfo{
		Range:      devmem.FrameRange{First: 0x100, Count: 0x10},
		MemoryType: devmem.MemoryHostTransparent,
	})
	require.ErrorIs(t, err, devmem.ErrRangeOverlap)

	_, err = registry.DispatchFault(context.Background(), pin, 0x105_000, pagemap.AccessRead)
	require.NoError(t, err)

	expected := `
# HELP pagemap_registrations_total Number of successful region registrations.
# TYPE pagemap_registrations_total counter
pagemap_registrations_total 1
# HELP pagemap_registration_failures_total Number of rejected region registrations.
# TYPE pagemap_registration_failures_total counter
pagemap_registration_failures_total 1
`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"pagemap_registrations_total", "pagemap_registration_failures_total")
	require.NoError(t, err)

	expected = `
# HELP pagemap_faults_total Number of dispatched CPU faults on device-backed frames, by outcome.
# TYPE pagemap_faults_total counter
pagemap_faults_total{outcome="FaultHandled"} 0
pagemap_faults_total{outcome="FaultMigrated"} 1
pagemap_faults_total{outcome="FaultSignalBus"} 0
pagemap_faults_total{outcome="FaultSignalOOM"} 0
`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "pagemap_faults_total")
	require.NoError(t, err)

	expected = `
# HELP pagemap_regions Number of live device-memory regions.
# TYPE pagemap_regions gauge
pagemap_regions{memory_type="device_coherent"} 0
pagemap_regions{memory_type="device_private"} 1
pagemap_regions{memory_type="host_transparent"} 0
pagemap_regions{memory_type="peer_to_peer"} 0
`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "pagemap_regions")
	require.NoError(t, err)

	pin.Release()

	expected = `
# HELP pagemap_regions Number of live device-memory regions.
# TYPE pagemap_regions gauge
pagemap_regions{memory_type="device_coherent"} 0
pagemap_regions{memory_type="device_private"} 0
pagemap_regions{memory_type="host_transparent"} 0
pagemap_regions{memory_type="peer_to_peer"} 0
`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "pagemap_regions")
	require.NoError(t, err)
}

func TestBuildStatsString(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)

	pin, err := registry.Register(pagemap.RegionCreateInfo{
		Range:      devmem.FrameRange{First: 0x100, Count: 0x10},
		MemoryType: devmem.MemoryHostTransparent,
		DeviceName: "pmem0",
	})
	require.NoError(t, err)

	writer := jwriter.NewWriter()
	registry.BuildStatsString(&writer)
	require.NoError(t, writer.Error())

	var parsed map[string]any
	err = json.Unmarshal(writer.Bytes(), &parsed)
	require.NoError(t, err)

	general := parsed["General"].(map[string]any)
	require.Equal(t, float64(1), general["RegionCount"])
	require.Equal(t, float64(0x10), general["RegionFrames"])

	regions := parsed["Regions"].([]any)
	require.Len(t, regions, 1)
	require.Equal(t, "pmem0", regions[0].(map[string]any)["Device"])

	pin.Release()
}
