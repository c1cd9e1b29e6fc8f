package domain

// WorkState is the lifecycle state of a work record for one shape.
type WorkState string

const (
	// WorkStatePending indicates the shape is queued and waiting for a worker.
	WorkStatePending WorkState = "pending"
	// WorkStateInProgress indicates a worker is running the pipeline for the shape.
	WorkStateInProgress WorkState = "in_progress"
	// WorkStateDone indicates the mesh was built and published.
	WorkStateDone WorkState = "done"
	// WorkStateFailed indicates the pipeline failed. The record is discarded immediately.
	WorkStateFailed WorkState = "failed"
)

// IsTerminal checks if a state ends the record's life (Done or Failed).
func (s WorkState) IsTerminal() bool {
	return s == WorkStateDone || s == WorkStateFailed
}

// SubmitStatus reports what a submission did.
type SubmitStatus int

const (
	// SubmitNewlyStarted indicates a fresh pending record was created.
	SubmitNewlyStarted SubmitStatus = iota
	// SubmitAlreadyPending indicates a record already existed and was reused.
	SubmitAlreadyPending
	// SubmitAlreadyCached indicates the mesh was found in the cache and no work was scheduled.
	SubmitAlreadyCached
)

func (s SubmitStatus) String() string {
	switch s {
	case SubmitNewlyStarted:
		return "newly_started"
	case SubmitAlreadyPending:
		return "already_pending"
	case SubmitAlreadyCached:
		return "already_cached"
	default:
		return "unknown"
	}
}

// ShapeState is the externally visible state of a shape.
type ShapeState string

const (
	// ShapeUncached indicates neither a cached mesh nor a work record exists.
	ShapeUncached ShapeState = "uncached"
	// ShapePending indicates the shape is queued.
	ShapePending ShapeState = "pending"
	// ShapeInProgress indicates a worker is building the shape.
	ShapeInProgress ShapeState = "in_progress"
	// ShapeCached indicates the mesh is in the cache.
	ShapeCached ShapeState = "cached"
)
