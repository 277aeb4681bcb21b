package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achilleasa/turntable/capture"
	"github.com/achilleasa/turntable/pipeline"
	"github.com/achilleasa/turntable/renderer"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
	"github.com/achilleasa/turntable/tracer"
	"github.com/achilleasa/turntable/types"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, pipeline.HDR, cfg.Mode)
	require.Equal(t, 20, cfg.Accumulation.BaselineSPP)
	require.Equal(t, 1000, cfg.Accumulation.SubFrames)
	require.Nil(t, cfg.OrbitOptions())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
mode: optix
frames: 12
capture:
  mode: both
  start_frame: 2
orbit:
  enabled: true
  center: [0, 1.686, 0]
  degrees: -90
  frames: 30
denoiser:
  kind: optix
  blend: 0.25
  input_scale: 2
light_transport:
  temporal_reuse: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, pipeline.Blend, cfg.Mode)
	require.Equal(t, 12, cfg.Frames)
	require.Equal(t, 1920, cfg.Width, "keys missing from the file keep their defaults")
	require.Equal(t, capture.Both, cfg.Capture.Mode)
	require.Equal(t, 2, cfg.Capture.StartFrame)
	require.Equal(t, "outputs", cfg.Capture.OutputRoot)

	orbit := cfg.OrbitOptions()
	require.NotNil(t, orbit)
	require.True(t, orbit.Center.ApproxEqual(types.XYZ(0, 1.686, 0), 1e-6))
	require.Equal(t, -90.0, orbit.Degrees)
	require.Equal(t, 30, orbit.Frames)
	require.Equal(t, 1.0, orbit.RadiusScale)

	require.Equal(t, pipeline.DenoiserOptix, cfg.Denoiser.Kind)
	require.NotNil(t, cfg.Denoiser.InputScale)
	require.Equal(t, float32(2), *cfg.Denoiser.InputScale)

	require.False(t, cfg.LightTransport.EnableTemporalReuse)
	require.True(t, cfg.LightTransport.EnableSpatialReuse)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
mode = "ref"
log_level = "debug"

[accumulation]
baseline_spp = 4
sub_frames = 50

[camera]
position = [0.0, 2.0, -4.0]
target = [0.0, 1.0, 0.0]
up = [0.0, 1.0, 0.0]
fov = 60.0

[tonemap]
operator = "reinhard"
exposure_compensation = 2.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, pipeline.Reference, cfg.Mode)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 4, cfg.Accumulation.BaselineSPP)
	require.Equal(t, 50, cfg.Accumulation.SubFrames)
	require.Equal(t, float32(60), cfg.Camera.FOV)
	require.Equal(t, types.XYZ(0, 2, -4), cfg.CameraPose().Position)
	require.Equal(t, stage.ToneMapReinhard, cfg.ToneMap.Operator)
	require.Equal(t, float32(2), cfg.ToneMap.ExposureCompensation)
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/runs/orbit.yaml":
			_, _ = w.Write([]byte("mode: nodenoise\norbit:\n  enabled: true\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg, err := Load(srv.URL + "/runs/orbit.yaml")
	require.NoError(t, err)
	require.Equal(t, pipeline.NoDenoise, cfg.Mode)
	require.True(t, cfg.Orbit.Enabled)

	_, err = Load(srv.URL + "/runs/missing.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")

	_, err = Load("ftp://example.com/run.yaml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "run.json", `{}`))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "run.toml", "bogus = 1\n[orbit]\nspin = true\n"))
	require.ErrorIs(t, err, ErrUnknownKeys)
	require.Contains(t, err.Error(), "orbit.spin")

	_, err = Load(writeFile(t, "run.yaml", "bogus: 1\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "run.yaml", "mode: turbo\n"))
	require.ErrorIs(t, err, pipeline.ErrUnsupportedMode)

	_, err = Load(writeFile(t, "run.yaml", "width: 0\n"))
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLightTransportEstimatorIsNotConfigurable(t *testing.T) {
	_, err := Load(writeFile(t, "run.yaml", "mode: hdr\nlight_transport:\n  use_reference: true\n  baseline_spp: 5\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "use_reference")

	_, err = Load(writeFile(t, "run.toml", "mode = \"hdr\"\n[light_transport]\nbaseline_spp = 5\n"))
	require.ErrorIs(t, err, ErrUnknownKeys)
	require.Contains(t, err.Error(), "light_transport.baseline_spp")
}

func TestRendererSPPMatchesBuiltGraph(t *testing.T) {
	for _, mode := range pipeline.Modes() {
		cfg := Default()
		cfg.Mode = mode
		cfg.Width, cfg.Height = 4, 2
		cfg.Accumulation.BaselineSPP = 5

		rt, err := tracer.NewRuntime(scene.NewCamera(cfg.CameraPose(), cfg.Camera.FOV), tracer.Options{Width: cfg.Width, Height: cfg.Height, Workers: 1})
		require.NoError(t, err)
		g, err := pipeline.BuildGraph(mode, rt, cfg.PipelineOptions())
		require.NoError(t, err, "mode %s", mode)

		h, ok := g.Stage(pipeline.StageLightTransport)
		require.True(t, ok)
		lt := h.Config().(stage.LightTransportConfig)

		opts := cfg.RendererOptions(nil)
		require.Equal(t, lt.SamplesPerFrame(), opts.BaselineSPP, "mode %s", mode)
		if mode == pipeline.Reference {
			require.Equal(t, 5*cfg.Accumulation.SubFrames, opts.EffectiveSPP())
		} else {
			require.Equal(t, 1, opts.EffectiveSPP(), "mode %s", mode)
		}

		require.NoError(t, g.Close())
		require.NoError(t, rt.Close())
	}
}

func TestValidate(t *testing.T) {
	type spec struct {
		descr string
		mut   func(*Config)
	}

	specs := []spec{
		{"unknown mode", func(c *Config) { c.Mode = pipeline.Mode(42) }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"frames", func(c *Config) { c.Frames = 0 }},
		{"workers", func(c *Config) { c.Workers = -1 }},
		{"capture mode", func(c *Config) { c.Capture.Mode = capture.Mode(9) }},
		{"output root", func(c *Config) { c.Capture.OutputRoot = "" }},
		{"start frame", func(c *Config) { c.Capture.StartFrame = -1 }},
		{"baseline spp", func(c *Config) { c.Accumulation.BaselineSPP = 0 }},
		{"sub frames", func(c *Config) { c.Accumulation.SubFrames = 0 }},
		{"orbit frames", func(c *Config) { c.Orbit.Enabled = true; c.Orbit.Frames = 0 }},
		{"zero radius scale", func(c *Config) { c.Orbit.Enabled = true; c.Orbit.RadiusScale = 0 }},
		{"negative radius scale", func(c *Config) { c.Orbit.Enabled = true; c.Orbit.RadiusScale = -1 }},
		{"negative orbit radius", func(c *Config) { c.Orbit.Enabled = true; c.Orbit.RadiusAdd = -50 }},
		{"fov", func(c *Config) { c.Camera.FOV = 180 }},
		{"degenerate camera", func(c *Config) { c.Camera.Target = c.Camera.Position }},
		{"denoiser", func(c *Config) { c.Denoiser.Kind = "magic" }},
	}

	for index, s := range specs {
		cfg := Default()
		s.mut(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("[spec %d] %s: expected an error", index, s.descr)
		}
	}

	cfg := Default()
	cfg.Orbit.Frames = 0
	cfg.Orbit.RadiusAdd = -50
	require.NoError(t, cfg.Validate(), "orbit settings are ignored while disabled")

	cfg = Default()
	cfg.Orbit.Enabled = true
	cfg.Orbit.RadiusScale = 0.5
	cfg.Orbit.RadiusAdd = -2
	require.NoError(t, cfg.Validate())
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Denoiser.Kind = pipeline.DenoiserOptix
	cfg.Denoiser.Temporal = true
	cfg.Denoiser.Blend = 0.5
	cfg.Denoiser.Quality = 2
	cfg.Denoiser.DenoiseAlpha = true
	cfg.ToneMap.ExposureCompensation = 3

	opts := cfg.PipelineOptions()
	require.Equal(t, pipeline.DenoiserOptix, opts.Denoiser)
	require.True(t, opts.Temporal)
	require.Equal(t, float32(0.5), opts.BlendFactor)
	require.Equal(t, 2, opts.OIDN.Quality)
	require.True(t, opts.OIDN.AutoInputScale())
	require.True(t, opts.Optix.DenoiseAlpha)
	require.Equal(t, float32(3), opts.ToneMap.ExposureCompensation)
	require.Equal(t, float32(100), opts.ToneMap.FilmSpeed, "unexposed tone-map settings keep their defaults")

	scale := float32(0.5)
	cfg.Denoiser.InputScale = &scale
	require.Equal(t, float32(0.5), cfg.PipelineOptions().OIDN.InputScale)
}

func TestRendererOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.RendererOptions(nil)
	require.Equal(t, renderer.Progressive, opts.Strategy)
	require.Equal(t, 100, opts.LogicalFrames())
	require.Equal(t, 1, opts.EffectiveSPP())

	cfg.Mode = pipeline.Reference
	opts = cfg.RendererOptions(nil)
	require.Equal(t, renderer.ReferenceAccumulation, opts.Strategy)
	require.Equal(t, 1, opts.LogicalFrames())
	require.Equal(t, 20000, opts.EffectiveSPP())
	require.Equal(t, pipeline.StageAccumulate, opts.AccumulationStage)
}

func TestCaptureConfig(t *testing.T) {
	start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	cfg := Default()
	cfg.Capture.OutputRoot = "out"
	cc := cfg.CaptureConfig(start)
	require.Equal(t, filepath.Join("out", "HDR"), cc.OutputDir)
	require.Equal(t, "hdr", cc.BaseName)
	require.NoError(t, cc.Validate())

	cfg.Mode = pipeline.Blend
	cfg.Denoiser.Blend = 0.25
	cfg.Orbit.Enabled = true
	cc = cfg.CaptureConfig(start)
	require.Equal(t, filepath.Join("out", "Optix_Blend_0.25"), cc.OutputDir)
	require.Equal(t, "OptixBlend_0.25_orbit_20240309_140507", cc.BaseName)

	cfg.Capture.BaseName = "custom"
	require.Equal(t, "custom_orbit_20240309_140507", cfg.CaptureConfig(start).BaseName)
}
