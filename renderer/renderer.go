package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/achilleasa/turntable/log"
	"github.com/achilleasa/turntable/scene"
)

var logger = log.New("renderer")

type Renderer interface {
	// Render every logical frame of the run. Cancelling the context stops
	// the run between logical frames.
	Render(ctx context.Context) error

	// Shutdown renderer and release the run context.
	Close() error

	// Get render statistics.
	Stats() FrameStats
}

// The default renderer drives the per-logical-frame steps
// pose -> reset -> accumulate -> capture.
type defaultRenderer struct {
	rc     *RunContext
	opts   Options
	driver *AccumulationDriver

	stats FrameStats
}

// Create a renderer for the given run context.
func New(rc *RunContext, opts Options) (Renderer, error) {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if opts.LogicalFrames() < 1 {
		return nil, fmt.Errorf("%w; got %d", ErrInvalidFrameCount, opts.LogicalFrames())
	}

	r := &defaultRenderer{
		rc:   rc,
		opts: opts,
	}

	if opts.Strategy == ReferenceAccumulation {
		driver, err := NewAccumulationDriver(rc.Runtime, rc.Graph.Name(), opts.AccumulationStage, opts.SubFrames)
		if err != nil {
			return nil, err
		}
		r.driver = driver
	}

	if opts.Orbit != nil && opts.Orbit.Degenerate() {
		logger.Warningf("run %s: camera position coincides with the orbit center; every orbit step renders the same pose", rc.ID)
	}

	return r, nil
}

func (r *defaultRenderer) Render(ctx context.Context) error {
	numFrames := r.opts.LogicalFrames()
	r.stats = FrameStats{EffectiveSPP: r.opts.EffectiveSPP()}

	logger.Noticef("run %s: %s strategy, %d logical frame(s)", r.rc.ID, r.opts.Strategy, numFrames)
	if r.driver != nil {
		logger.Noticef(
			"run %s: effective SPP per frame = %d x %d = %d",
			r.rc.ID, r.opts.BaselineSPP, r.opts.SubFrames, r.opts.EffectiveSPP(),
		)
	}

	start := time.Now()
	defer func() { r.stats.RenderTime = time.Since(start) }()

	for i := 0; i < numFrames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: after %d of %d frames: %w", ErrInterrupted, i, numFrames, ctx.Err())
		default:
		}

		stat, err := r.renderLogicalFrame(i)
		if err != nil {
			return fmt.Errorf("logical frame %d: %w", i, err)
		}
		r.stats.Frames = append(r.stats.Frames, stat)
		r.stats.PhysicalFrames += stat.SubFrames

		if i%r.opts.ProgressEvery == 0 || i == numFrames-1 {
			logger.Infof("frame %d/%d rendered in %s", i, numFrames-1, stat.RenderTime)
		}
	}

	logger.Noticef("run %s: rendered %d logical frame(s) in %s", r.rc.ID, numFrames, time.Since(start))
	return nil
}

// Render one logical frame. The steps always run in order: the pose is
// applied before the accumulation reset, the reset precedes the first
// sub-frame and capture follows the last one.
func (r *defaultRenderer) renderLogicalFrame(i int) (FrameStat, error) {
	start := time.Now()
	stat := FrameStat{Index: i}

	stat.Pose = r.poseStep(i)
	r.resetStep()

	subFrames, err := r.accumulateStep()
	stat.SubFrames = subFrames
	if err != nil {
		return stat, err
	}

	if stat.Output, err = r.captureStep(); err != nil {
		return stat, err
	}

	stat.RenderTime = time.Since(start)
	return stat, nil
}

func (r *defaultRenderer) poseStep(i int) scene.CameraPose {
	if r.opts.Orbit != nil {
		r.rc.Camera.SetPose(r.opts.Orbit.Pose(i))
	}
	return r.rc.Camera.Pose()
}

func (r *defaultRenderer) resetStep() {
	if r.driver != nil {
		r.driver.Reset()
	}
}

func (r *defaultRenderer) accumulateStep() (int, error) {
	if r.driver != nil {
		return r.driver.Accumulate()
	}
	if err := r.rc.Runtime.AdvanceFrame(); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *defaultRenderer) captureStep() (string, error) {
	return r.rc.Capture.Capture()
}

func (r *defaultRenderer) Close() error {
	return r.rc.Close()
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}
