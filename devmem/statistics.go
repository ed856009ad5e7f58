package devmem

import "math"

// Statistics is a rollup of the regions and frames owned by some part of the
// system- a single region, a registry, or several registries summed together.
type Statistics struct {
	RegionCount    int
	RegionFrames   uint64
	MetadataFrames uint64
	PinnedRegions  int
}

func (s *Statistics) Clear() {
	s.RegionCount = 0
	s.RegionFrames = 0
	s.MetadataFrames = 0
	s.PinnedRegions = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.RegionCount += other.RegionCount
	s.RegionFrames += other.RegionFrames
	s.MetadataFrames += other.MetadataFrames
	s.PinnedRegions += other.PinnedRegions
}

// DetailedStatistics extends Statistics with the spread of region sizes, which
// is mostly interesting for diagnostics output.
type DetailedStatistics struct {
	Statistics
	RegionSizeMin uint64
	RegionSizeMax uint64
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.RegionSizeMin = math.MaxUint64
	s.RegionSizeMax = 0
}

// AddRegion folds a single region of frameCount frames into the statistics.
func (s *DetailedStatistics) AddRegion(frameCount uint64, pinned bool) {
	s.RegionCount++
	s.RegionFrames += frameCount
	if pinned {
		s.PinnedRegions++
	}

	if frameCount < s.RegionSizeMin {
		s.RegionSizeMin = frameCount
	}

	if frameCount > s.RegionSizeMax {
		s.RegionSizeMax = frameCount
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.RegionSizeMin < s.RegionSizeMin {
		s.RegionSizeMin = other.RegionSizeMin
	}

	if other.RegionSizeMax > s.RegionSizeMax {
		s.RegionSizeMax = other.RegionSizeMax
	}
}
