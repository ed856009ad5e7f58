package pagemap

import (
	"github.com/devmemkit/pagemap/devmem"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	descRegions = iota
	descRegionFrames
	descMetadataFrames
	descRegistrations
	descRegistrationFailures
	descFaults
	descFrameFrees
)

var descriptors = []*prometheus.Desc{
	descRegions: prometheus.NewDesc(
		"pagemap_regions",
		"Number of live device-memory regions.",
		[]string{"memory_type"},
		nil,
	),
	descRegionFrames: prometheus.NewDesc(
		"pagemap_region_frames",
		"Number of frames covered by live device-memory regions.",
		[]string{"memory_type"},
		nil,
	),
	descMetadataFrames: prometheus.NewDesc(
		"pagemap_metadata_frames",
		"Number of device-reserved frames carved out for per-frame bookkeeping.",
		nil,
		nil,
	),
	descRegistrations: prometheus.NewDesc(
		"pagemap_registrations_total",
		"Number of successful region registrations.",
		nil,
		nil,
	),
	descRegistrationFailures: prometheus.NewDesc(
		"pagemap_registration_failures_total",
		"Number of rejected region registrations.",
		nil,
		nil,
	),
	descFaults: prometheus.NewDesc(
		"pagemap_faults_total",
		"Number of dispatched CPU faults on device-backed frames, by outcome.",
		[]string{"outcome"},
		nil,
	),
	descFrameFrees: prometheus.NewDesc(
		"pagemap_frame_frees_total",
		"Number of per-frame free dispatches delivered to region owners.",
		nil,
		nil,
	),
}

// Collector exposes a registry's state as prometheus metrics. Register it with
// a prometheus registerer owned by the surrounding process.
type Collector struct {
	registry *Registry
}

var _ prometheus.Collector = &Collector{}

// NewCollector creates a prometheus collector reading from registry.
func NewCollector(registry *Registry) *Collector {
	return &Collector{registry: registry}
}

// Describe sends the descriptors of all metrics the collector can produce.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descriptors {
		ch <- d
	}
}

// Collect gathers a snapshot of the registry's regions and counters.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	r := c.registry

	regionCounts := make(map[devmem.MemoryType]float64)
	frameCounts := make(map[devmem.MemoryType]float64)
	var metadataFrames float64

	r.mutex.RLock()
	r.regions.Ascend(func(region *Region) bool {
		regionCounts[region.memoryType]++
		frameCounts[region.memoryType] += float64(region.frameRange.Count)
		metadataFrames += float64(region.metadataFrames)
		return true
	})
	r.mutex.RUnlock()

	for memoryType, name := range memoryTypeMetricLabels {
		ch <- prometheus.MustNewConstMetric(
			descriptors[descRegions],
			prometheus.GaugeValue,
			regionCounts[memoryType],
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			descriptors[descRegionFrames],
			prometheus.GaugeValue,
			frameCounts[memoryType],
			name,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		descriptors[descMetadataFrames],
		prometheus.GaugeValue,
		metadataFrames,
	)
	ch <- prometheus.MustNewConstMetric(
		descriptors[descRegistrations],
		prometheus.CounterValue,
		float64(r.registrationsTotal.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		descriptors[descRegistrationFailures],
		prometheus.CounterValue,
		float64(r.registrationFailures.Load()),
	)

	for outcome := 0; outcome < faultOutcomeCount; outcome++ {
		ch <- prometheus.MustNewConstMetric(
			descriptors[descFaults],
			prometheus.CounterValue,
			float64(r.faultsTotal[outcome].Load()),
			FaultOutcome(outcome).String(),
		)
	}

	ch <- prometheus.MustNewConstMetric(
		descriptors[descFrameFrees],
		prometheus.CounterValue,
		float64(r.freesTotal.Load()),
	)
}

var memoryTypeMetricLabels = map[devmem.MemoryType]string{
	devmem.MemoryHostTransparent: "host_transparent",
	devmem.MemoryDevicePrivate:   "device_private",
	devmem.MemoryDeviceCoherent:  "device_coherent",
	devmem.MemoryPeerToPeer:      "peer_to_peer",
}
