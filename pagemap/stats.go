package pagemap

import (
	"github.com/devmemkit/pagemap/devmem"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// CalculateStatistics sums the registry's live regions into the provided
// statistics object.
func (r *Registry) CalculateStatistics(stats *devmem.DetailedStatistics) {
	r.logger.Debug("Registry::CalculateStatistics")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	r.regions.Ascend(func(region *Region) bool {
		stats.AddRegion(region.frameRange.Count, region.pins.Load() > 0)
		stats.MetadataFrames += region.metadataFrames
		return true
	})
}

// BuildStatsString writes a JSON description of every live region, for
// diagnostics output.
func (r *Registry) BuildStatsString(writer *jwriter.Writer) {
	r.logger.Debug("Registry::BuildStatsString")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	root := writer.Object()

	var stats devmem.DetailedStatistics
	stats.Clear()
	r.regions.Ascend(func(region *Region) bool {
		stats.AddRegion(region.frameRange.Count, region.pins.Load() > 0)
		stats.MetadataFrames += region.metadataFrames
		return true
	})

	general := root.Name("General").Object()
	general.Name("RegionCount").Int(stats.RegionCount)
	general.Name("RegionFrames").Int(int(stats.RegionFrames))
	general.Name("MetadataFrames").Int(int(stats.MetadataFrames))
	general.Name("PinnedRegions").Int(stats.PinnedRegions)
	general.End()

	regions := root.Name("Regions").Array()
	r.regions.Ascend(func(region *Region) bool {
		obj := regions.Object()
		region.printParameters(&obj)
		obj.End()
		return true
	})
	regions.End()

	root.End()
}
