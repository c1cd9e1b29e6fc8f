package domain

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// HitRatio returns hits over lookups, or zero before the first lookup.
func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats is a point-in-time snapshot of the mesh manager.
type Stats struct {
	Cache CacheStats
	// PipelineRuns counts pipeline invocations, successful or not.
	PipelineRuns uint64
	// Failures counts pipeline invocations that produced an error.
	Failures uint64
	// Discarded counts results that were computed under a superseded configuration.
	Discarded uint64
	Pending    int
	InProgress int
	Workers    int
}
