package tracer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/achilleasa/turntable/graph"
	"github.com/achilleasa/turntable/log"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
)

var logger = log.New("tracer")

// The camera whose pose is sampled at the start of every frame.
type CameraSource interface {
	Pose() scene.CameraPose
	Frustrum(aspect float32) scene.Frustrum
}

// A FrameObserver is invoked after every physical frame advance.
type FrameObserver func(frame uint64, elapsed time.Duration)

// Runtime options.
type Options struct {
	// Frame dimensions.
	Width  int
	Height int

	// Number of row block workers; defaults to the number of CPUs.
	Workers int

	// The scheduler used to split frames into row blocks; defaults to
	// the perfect scheduler.
	Scheduler BlockScheduler
}

// The Runtime executes stage graphs one physical frame at a time. Stages run
// sequentially in topological order; stages may split their work into row
// blocks processed concurrently.
type Runtime struct {
	opts     Options
	camera   CameraSource
	pool     *rowPool
	registry *stage.Registry

	graphs map[string]*graph.Graph
	active *graph.Graph

	frame         uint64
	output        *stage.Buffer
	lastFrameTime time.Duration
	observers     []FrameObserver
	closed        bool
}

// Create a new runtime rendering frames from the camera's point of view.
func NewRuntime(camera CameraSource, opts Options) (*Runtime, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, opts.Width, opts.Height)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	pool := newRowPool(opts.Workers, opts.Scheduler)
	rt := &Runtime{
		opts:     opts,
		camera:   camera,
		pool:     pool,
		registry: stage.NewRegistry(libraries(pool)...),
		graphs:   make(map[string]*graph.Graph),
	}

	logger.Debugf("runtime: %dx%d frames, %d workers", opts.Width, opts.Height, opts.Workers)
	return rt, nil
}

// Get the names of the stage libraries that can be registered.
func (rt *Runtime) Libraries() []string {
	libs := libraries(rt.pool)
	names := make([]string, len(libs))
	for idx, lib := range libs {
		names[idx] = lib.Name
	}
	return names
}

// Load a stage library by name.
func (rt *Runtime) RegisterLibrary(name string) error {
	return rt.registry.RegisterLibrary(name)
}

// Create a new stage instance from a registered library.
func (rt *Runtime) CreateStage(typeName stage.Type, cfg stage.Config) (stage.Handle, error) {
	return rt.registry.CreateStage(typeName, cfg)
}

// Get the stage registry.
func (rt *Runtime) Registry() *stage.Registry {
	return rt.registry
}

// Get the frame dimensions.
func (rt *Runtime) FrameSize() (int, int) {
	return rt.opts.Width, rt.opts.Height
}

// Add a graph and make it the active one. The runtime takes ownership of
// the graph and closes it when the runtime is closed.
func (rt *Runtime) AddGraph(g *graph.Graph) error {
	if rt.closed {
		return ErrRuntimeClosed
	}
	if _, exists := rt.graphs[g.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateGraph, g.Name())
	}
	rt.graphs[g.Name()] = g
	rt.active = g
	logger.Debugf("active graph: %q (%d stages)", g.Name(), len(g.Order()))
	return nil
}

// Get the active graph.
func (rt *Runtime) ActiveGraph() *graph.Graph {
	return rt.active
}

// Look up a stage of a previously added graph.
func (rt *Runtime) StageByName(graphName, stageName string) (stage.Handle, error) {
	g, ok := rt.graphs[graphName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGraph, graphName)
	}
	h, ok := g.Stage(stageName)
	if !ok {
		return nil, fmt.Errorf("%w: %q in graph %q", ErrUnknownStage, stageName, graphName)
	}
	return h, nil
}

// Register a callback invoked after every frame advance.
func (rt *Runtime) OnFrame(observer FrameObserver) {
	rt.observers = append(rt.observers, observer)
}

// Execute every stage of the active graph once. The call blocks until the
// marked output of the graph is available.
func (rt *Runtime) AdvanceFrame() error {
	if rt.closed {
		return ErrRuntimeClosed
	}
	g := rt.active
	if g == nil {
		return ErrNoActiveGraph
	}

	start := time.Now()
	fc := &stage.FrameContext{
		Frame:    rt.frame,
		Width:    rt.opts.Width,
		Height:   rt.opts.Height,
		Camera:   rt.camera.Pose(),
		Frustrum: rt.camera.Frustrum(float32(rt.opts.Width) / float32(rt.opts.Height)),
	}

	outputs := make(map[string]stage.Resources, len(g.Order()))
	for _, name := range g.Order() {
		in := make(stage.Resources)
		for _, edge := range g.Inbound(name) {
			buf := outputs[edge.Src.Stage][edge.Src.Port]
			if buf == nil {
				return fmt.Errorf("%w: %s produced no %q buffer", ErrMissingInput, edge.Src.Stage, edge.Src.Port)
			}
			in[edge.Dst.Port] = buf
		}

		h, _ := g.Stage(name)
		out, err := h.Execute(fc, in)
		if err != nil {
			return fmt.Errorf("frame %d: %s: %w", rt.frame, name, err)
		}
		outputs[name] = out
	}

	marked := g.Output()
	rt.output = outputs[marked.Stage][marked.Port]
	if rt.output == nil {
		return fmt.Errorf("%w: graph output %s", ErrMissingInput, marked)
	}

	rt.lastFrameTime = time.Since(start)
	frame := rt.frame
	rt.frame++

	for _, observer := range rt.observers {
		observer(frame, rt.lastFrameTime)
	}
	return nil
}

// Get the marked output of the last advanced frame.
func (rt *Runtime) Output() *stage.Buffer {
	return rt.output
}

// Get the number of physical frames advanced so far.
func (rt *Runtime) FrameCount() uint64 {
	return rt.frame
}

// Get the time it took to advance the last frame.
func (rt *Runtime) LastFrameTime() time.Duration {
	return rt.lastFrameTime
}

// Close all graphs and their stages.
func (rt *Runtime) Close() error {
	if rt.closed {
		return nil
	}
	rt.closed = true

	var firstErr error
	for name, g := range rt.graphs {
		if err := g.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("graph %q: %w", name, err)
		}
	}
	rt.graphs = nil
	rt.active = nil
	return firstErr
}
