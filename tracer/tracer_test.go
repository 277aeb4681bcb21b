package tracer

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/achilleasa/turntable/pipeline"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
	"github.com/achilleasa/turntable/types"
)

func testCamera() *scene.Camera {
	return scene.NewCamera(scene.CameraPose{
		Position: types.XYZ(0, 2, -6),
		Target:   types.XYZ(0, 1, 0),
		Up:       types.XYZ(0, 1, 0),
	}, 45)
}

func testRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := NewRuntime(testCamera(), Options{Width: 16, Height: 8, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestRuntimeRequiresGraph(t *testing.T) {
	if _, err := NewRuntime(testCamera(), Options{Width: 0, Height: 8}); !errors.Is(err, ErrInvalidFrameSize) {
		t.Fatalf("expected ErrInvalidFrameSize; got %v", err)
	}

	rt := testRuntime(t)
	if err := rt.AdvanceFrame(); !errors.Is(err, ErrNoActiveGraph) {
		t.Fatalf("expected ErrNoActiveGraph; got %v", err)
	}
}

func TestRuntimeRunsEveryMode(t *testing.T) {
	for _, mode := range pipeline.Modes() {
		rt := testRuntime(t)

		opts := pipeline.DefaultOptions()
		opts.BaselineSPP = 2
		g, err := pipeline.BuildGraph(mode, rt, opts)
		if err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
		if err = rt.AddGraph(g); err != nil {
			t.Fatal(err)
		}

		var observed []uint64
		rt.OnFrame(func(frame uint64, _ time.Duration) {
			observed = append(observed, frame)
		})

		for i := 0; i < 3; i++ {
			if err = rt.AdvanceFrame(); err != nil {
				t.Fatalf("mode %s: frame %d: %v", mode, i, err)
			}
		}

		out := rt.Output()
		if out == nil || !out.SameSize(16, 8) {
			t.Fatalf("mode %s: expected a 16x8 output buffer", mode)
		}
		for idx, v := range out.Pix {
			if v < 0 || v > 1 {
				t.Fatalf("mode %s: expected clamped output; got %f at %d", mode, v, idx)
			}
		}

		if rt.FrameCount() != 3 || len(observed) != 3 || observed[2] != 2 {
			t.Fatalf("mode %s: expected 3 observed frames; got %v", mode, observed)
		}
	}
}

func TestStageByName(t *testing.T) {
	rt := testRuntime(t)
	g, err := pipeline.BuildGraph(pipeline.Reference, rt, pipeline.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err = rt.AddGraph(g); err != nil {
		t.Fatal(err)
	}
	if err = rt.AddGraph(g); !errors.Is(err, ErrDuplicateGraph) {
		t.Fatalf("expected ErrDuplicateGraph; got %v", err)
	}

	h, err := rt.StageByName(g.Name(), pipeline.StageAccumulate)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(stage.Resetter); !ok {
		t.Fatal("expected the accumulation stage to be resettable")
	}

	if _, err = rt.StageByName("missing", pipeline.StageAccumulate); !errors.Is(err, ErrUnknownGraph) {
		t.Fatalf("expected ErrUnknownGraph; got %v", err)
	}
	if _, err = rt.StageByName(g.Name(), "missing"); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage; got %v", err)
	}

	if err = rt.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err = h.Execute(&stage.FrameContext{}, nil); !errors.Is(err, stage.ErrStageClosed) {
		t.Fatalf("expected stages to be closed with the runtime; got %v", err)
	}
	if err = rt.AdvanceFrame(); !errors.Is(err, ErrRuntimeClosed) {
		t.Fatalf("expected ErrRuntimeClosed; got %v", err)
	}
}

func constBuffer(w, h int, v float32) *stage.Buffer {
	buf := stage.NewBuffer(w, h)
	for idx := range buf.Pix {
		buf.Pix[idx] = v
	}
	return buf
}

func TestAccumulatorRunningMean(t *testing.T) {
	runner, _ := newAccumulator(stage.AccumulateConfig{Enabled: true})
	acc := runner.(*accumulator)

	fc := &stage.FrameContext{}
	type spec struct {
		in      float32
		reset   bool
		expMean float32
	}
	specs := []spec{
		{1, false, 1},
		{3, false, 2},
		{5, false, 3},
		{7, true, 7},
		{9, false, 8},
	}

	for specIndex, s := range specs {
		if s.reset {
			acc.Reset()
		}
		out, err := acc.Execute(fc, stage.Resources{stage.PortInput: constBuffer(2, 2, s.in)})
		if err != nil {
			t.Fatalf("[spec %d] %v", specIndex, err)
		}
		if got := out[stage.PortOutput].Pix[0]; got != s.expMean {
			t.Fatalf("[spec %d] expected mean %f; got %f", specIndex, s.expMean, got)
		}
	}
	if acc.SampleCount() != 2 {
		t.Fatalf("expected 2 samples since the last reset; got %d", acc.SampleCount())
	}
}

func TestAccumulatorAutoResetAndPassThrough(t *testing.T) {
	runner, _ := newAccumulator(stage.AccumulateConfig{Enabled: true, AutoReset: true})
	acc := runner.(*accumulator)

	fc := &stage.FrameContext{Camera: testCamera().Pose()}
	_, _ = acc.Execute(fc, stage.Resources{stage.PortInput: constBuffer(2, 2, 1)})
	_, _ = acc.Execute(fc, stage.Resources{stage.PortInput: constBuffer(2, 2, 3)})
	if acc.SampleCount() != 2 {
		t.Fatalf("expected 2 samples; got %d", acc.SampleCount())
	}

	fc.Camera.Position = types.XYZ(5, 5, 5)
	out, _ := acc.Execute(fc, stage.Resources{stage.PortInput: constBuffer(2, 2, 10)})
	if acc.SampleCount() != 1 || out[stage.PortOutput].Pix[0] != 10 {
		t.Fatalf("expected the history to be discarded after a pose change")
	}

	runner, _ = newAccumulator(stage.AccumulateConfig{Enabled: false})
	in := constBuffer(2, 2, 4)
	out, err := runner.Execute(fc, stage.Resources{stage.PortInput: in})
	if err != nil {
		t.Fatal(err)
	}
	if out[stage.PortOutput] != in {
		t.Fatal("expected a disabled accumulator to pass its input through")
	}

	if _, err = runner.Execute(fc, stage.Resources{}); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput; got %v", err)
	}
}

func TestToneMapper(t *testing.T) {
	pool := newRowPool(2, nil)

	type spec struct {
		op     stage.ToneMapOperator
		comp   float32
		clamp  bool
		in     float32
		expOut float32
	}
	specs := []spec{
		{stage.ToneMapLinear, 0, true, 0.25, 0.25},
		{stage.ToneMapLinear, 1, true, 0.25, 0.5},
		{stage.ToneMapLinear, 3, true, 0.25, 1},
		{stage.ToneMapLinear, 3, false, 0.25, 2},
		{stage.ToneMapReinhard, 0, true, 1, 1},
		{stage.ToneMapReinhard, 0, true, 0.5, 2.0 / 3.0},
	}

	for specIndex, s := range specs {
		cfg := stage.DefaultToneMapConfig()
		cfg.Operator = s.op
		cfg.ExposureCompensation = s.comp
		cfg.Clamp = s.clamp

		runner, _ := newToneMapper(pool)(cfg)
		out, err := runner.Execute(&stage.FrameContext{}, stage.Resources{stage.PortSrc: constBuffer(3, 3, s.in)})
		if err != nil {
			t.Fatalf("[spec %d] %v", specIndex, err)
		}
		if got := out[stage.PortDst].Pix[0]; !types.XYZ(got, 0, 0).ApproxEqual(types.XYZ(s.expOut, 0, 0), 1e-5) {
			t.Fatalf("[spec %d] expected %f; got %f", specIndex, s.expOut, got)
		}
	}
}

func TestDenoisers(t *testing.T) {
	pool := newRowPool(2, nil)
	noisy := stage.NewBuffer(4, 4)
	for idx := range noisy.Pix {
		noisy.Pix[idx] = float32(idx % 3)
	}

	// A blend factor of 1 reproduces the input
	cfg := stage.DefaultOptixConfig()
	cfg.BlendFactor = 1
	runner, _ := newOptixDenoiser(pool)(cfg)
	out, err := runner.Execute(&stage.FrameContext{}, stage.Resources{stage.PortColor: noisy})
	if err != nil {
		t.Fatal(err)
	}
	for idx, v := range out[stage.PortOutput].Pix {
		if v != noisy.Pix[idx] {
			t.Fatalf("expected blend factor 1 to reproduce the input at %d", idx)
		}
	}

	// A constant image is a fixed point of the filter
	oidn, _ := newOIDNDenoiser(pool)(stage.DefaultOIDNConfig())
	out, err = oidn.Execute(&stage.FrameContext{}, stage.Resources{stage.PortSrc: constBuffer(4, 4, 0.5)})
	if err != nil {
		t.Fatal(err)
	}
	for idx, v := range out[stage.PortDst].Pix {
		if v != 0.5 {
			t.Fatalf("expected 0.5 at %d; got %f", idx, v)
		}
	}

	oidnCfg := stage.DefaultOIDNConfig()
	oidnCfg.MaxMemoryMB = 0
	oidn, _ = newOIDNDenoiser(pool)(oidnCfg)
	if _, err = oidn.Execute(&stage.FrameContext{}, stage.Resources{stage.PortSrc: noisy}); !errors.Is(err, ErrMemoryBudget) {
		t.Fatalf("expected ErrMemoryBudget; got %v", err)
	}
}

func TestRowPoolCoversEveryRow(t *testing.T) {
	for _, workers := range []int{1, 3, 8, 32} {
		pool := newRowPool(workers, nil)
		for run := 0; run < 3; run++ {
			var visits [17]int32
			err := pool.run(len(visits), func(y0, y1 int) error {
				for y := y0; y < y1; y++ {
					atomic.AddInt32(&visits[y], 1)
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			for y, n := range visits {
				if n != 1 {
					t.Fatalf("workers %d: expected row %d to be visited once; got %d", workers, y, n)
				}
			}
		}
	}

	expErr := errors.New("block failed")
	pool := newRowPool(4, nil)
	if err := pool.run(8, func(_, _ int) error { return expErr }); !errors.Is(err, expErr) {
		t.Fatalf("expected block error to propagate; got %v", err)
	}
}
