package tracer

import (
	"fmt"

	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
)

// The accumulator keeps a running sum of its input and emits the running
// mean. It is the only stage whose state spans frames under the reference
// strategy.
type accumulator struct {
	cfg stage.AccumulateConfig

	sum   []float64
	count uint32
	out   *stage.Buffer

	havePose bool
	lastPose scene.CameraPose
}

func newAccumulator(cfg stage.Config) (stage.Runner, error) {
	return &accumulator{cfg: cfg.(stage.AccumulateConfig)}, nil
}

func (a *accumulator) Execute(fc *stage.FrameContext, in stage.Resources) (stage.Resources, error) {
	src := in[stage.PortInput]
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, stage.PortInput)
	}

	if !a.cfg.Enabled {
		return stage.Resources{stage.PortOutput: src}, nil
	}

	if a.out == nil || !a.out.SameSize(src.W, src.H) {
		a.out = stage.NewBuffer(src.W, src.H)
		a.sum = make([]float64, len(src.Pix))
		a.count = 0
	}

	if a.cfg.AutoReset && a.havePose && !a.lastPose.ApproxEqual(fc.Camera, 1e-6) {
		a.Reset()
	}
	a.havePose = true
	a.lastPose = fc.Camera

	a.count++
	invCount := 1 / float64(a.count)
	for idx, v := range src.Pix {
		a.sum[idx] += float64(v)
		a.out.Pix[idx] = float32(a.sum[idx] * invCount)
	}

	return stage.Resources{stage.PortOutput: a.out}, nil
}

// Clear the running sum and sample counter.
func (a *accumulator) Reset() {
	clear(a.sum)
	a.count = 0
}

// Number of frames contributing to the current running mean.
func (a *accumulator) SampleCount() uint32 {
	return a.count
}
