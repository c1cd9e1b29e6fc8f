package domain

import (
	"go.trai.ch/zerr"
)

var (
	// ErrInvalidInput is returned when a shape vector is malformed (empty, length not divisible by 3,
	// or containing non-finite coordinates).
	ErrInvalidInput = zerr.New("invalid shape vector")

	// ErrPipelineFailed is returned when the reconstruction pipeline could not produce a mesh for a shape.
	ErrPipelineFailed = zerr.New("mesh reconstruction failed")

	// ErrManagerStopped is returned to every caller once the mesh manager has been shut down.
	ErrManagerStopped = zerr.New("mesh manager stopped")

	// ErrManagerNotStarted is returned when a blocking request is made before the workers are running.
	ErrManagerNotStarted = zerr.New("mesh manager not started")

	// ErrManagerAlreadyStarted is returned when Start is called twice.
	ErrManagerAlreadyStarted = zerr.New("mesh manager already started")

	// ErrKeyCollision is returned when two different shape vectors hash to the same key.
	ErrKeyCollision = zerr.New("shape key collision")

	// ErrInvalidConfig is returned when settings or pipeline parameters are out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the settings file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrShapeReadFailed is returned when a shape file cannot be read.
	ErrShapeReadFailed = zerr.New("failed to read shape file")

	// ErrShapeParseFailed is returned when a shape file contains malformed coordinates.
	ErrShapeParseFailed = zerr.New("failed to parse shape file")

	// ErrMeshWriteFailed is returned when a mesh cannot be written to disk.
	ErrMeshWriteFailed = zerr.New("failed to write mesh")

	// ErrTooFewPoints is returned by the pipeline when a shape has too few points to fit a surface.
	ErrTooFewPoints = zerr.New("too few points to reconstruct a surface")

	// ErrDegenerateShape is returned by the pipeline when all points are coplanar or coincident.
	ErrDegenerateShape = zerr.New("degenerate shape")

	// ErrGridTooLarge is returned when the sample spacing would produce an oversized contouring grid.
	ErrGridTooLarge = zerr.New("contouring grid too large for sample spacing")

	// ErrEmptySurface is returned when contouring produced no triangles.
	ErrEmptySurface = zerr.New("reconstruction produced an empty surface")

	// ErrNoShapesSpecified is returned when the build command is given no shape files.
	ErrNoShapesSpecified = zerr.New("no shape files specified")

	// ErrBuildFailed is returned when one or more shapes of a build could not be reconstructed.
	ErrBuildFailed = zerr.New("mesh build failed")
)

// PipelineError records a reconstruction failure for one shape.
// It matches both ErrPipelineFailed and its cause under errors.Is.
type PipelineError struct {
	Key   ShapeKey
	Cause error
}

// NewPipelineError wraps cause as a reconstruction failure for key.
// A cause that is already a PipelineError is returned unchanged.
func NewPipelineError(key ShapeKey, cause error) *PipelineError {
	if pe, ok := cause.(*PipelineError); ok {
		return pe
	}
	return &PipelineError{Key: key, Cause: cause}
}

func (e *PipelineError) Error() string {
	if e.Cause == nil {
		return ErrPipelineFailed.Error() + " (shape " + e.Key.String() + ")"
	}
	return ErrPipelineFailed.Error() + " (shape " + e.Key.String() + "): " + e.Cause.Error()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PipelineError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPipelineFailed}
	}
	return []error{ErrPipelineFailed, e.Cause}
}
