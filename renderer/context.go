package renderer

import (
	"io"

	"github.com/achilleasa/turntable/graph"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
	"github.com/google/uuid"
)

// The stage runtime contract consumed by the renderer.
type Runtime interface {
	// Execute the active graph once.
	AdvanceFrame() error

	// Look up a stage of a graph previously added to the runtime.
	StageByName(graphName, stageName string) (stage.Handle, error)
}

// The capture step of a logical frame.
type Capturer interface {
	Capture() (string, error)
}

// RunContext bundles the collaborators of a single run. It is initialized
// once and torn down once.
type RunContext struct {
	// Identifies the run in logs.
	ID uuid.UUID

	Camera  *scene.Camera
	Runtime Runtime
	Graph   *graph.Graph
	Capture Capturer

	closers []io.Closer
	closed  bool
}

// Create a new run context.
func NewRunContext(camera *scene.Camera, rt Runtime, g *graph.Graph, capturer Capturer) (*RunContext, error) {
	switch {
	case camera == nil:
		return nil, ErrCameraNotDefined
	case rt == nil:
		return nil, ErrRuntimeNotDefined
	case g == nil:
		return nil, ErrGraphNotDefined
	case capturer == nil:
		return nil, ErrCaptureNotDefined
	}

	return &RunContext{
		ID:      uuid.New(),
		Camera:  camera,
		Runtime: rt,
		Graph:   g,
		Capture: capturer,
	}, nil
}

// Register a resource released when the context is closed. Resources are
// closed in reverse registration order.
func (rc *RunContext) OnClose(c io.Closer) {
	rc.closers = append(rc.closers, c)
}

// Release all registered resources.
func (rc *RunContext) Close() error {
	if rc.closed {
		return nil
	}
	rc.closed = true

	var firstErr error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
