package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/achilleasa/turntable/capture"
	"github.com/achilleasa/turntable/log"
	"github.com/achilleasa/turntable/pipeline"
	"github.com/achilleasa/turntable/renderer"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
	"github.com/achilleasa/turntable/types"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrUnknownKeys       = errors.New("config: unknown keys")
	ErrInvalidValue      = errors.New("config: invalid value")
)

type CaptureConfig struct {
	Mode       capture.Mode `yaml:"mode" toml:"mode"`
	OutputRoot string       `yaml:"output_root" toml:"output_root"`

	// Overrides the mode's default base filename.
	BaseName string `yaml:"base_name" toml:"base_name"`

	StartFrame int `yaml:"start_frame" toml:"start_frame"`
}

type AccumulationConfig struct {
	BaselineSPP int `yaml:"baseline_spp" toml:"baseline_spp"`
	SubFrames   int `yaml:"sub_frames" toml:"sub_frames"`
}

type OrbitConfig struct {
	Enabled     bool       `yaml:"enabled" toml:"enabled"`
	Center      types.Vec3 `yaml:"center" toml:"center"`
	Degrees     float64    `yaml:"degrees" toml:"degrees"`
	Frames      int        `yaml:"frames" toml:"frames"`
	RadiusScale float64    `yaml:"radius_scale" toml:"radius_scale"`
	RadiusAdd   float64    `yaml:"radius_add" toml:"radius_add"`
}

type CameraConfig struct {
	Position types.Vec3 `yaml:"position" toml:"position"`
	Target   types.Vec3 `yaml:"target" toml:"target"`
	Up       types.Vec3 `yaml:"up" toml:"up"`

	// Vertical field of view in degrees.
	FOV float32 `yaml:"fov" toml:"fov"`
}

type DenoiserConfig struct {
	Kind     pipeline.DenoiserKind `yaml:"kind" toml:"kind"`
	Temporal bool                  `yaml:"temporal" toml:"temporal"`
	Blend    float32               `yaml:"blend" toml:"blend"`

	Quality     int                 `yaml:"quality" toml:"quality"`
	SRGB        bool                `yaml:"srgb" toml:"srgb"`
	CleanAux    bool                `yaml:"clean_aux" toml:"clean_aux"`
	MaxMemoryMB int                 `yaml:"max_memory_mb" toml:"max_memory_mb"`
	Device      stage.DenoiseDevice `yaml:"device" toml:"device"`

	// Unset selects the input scale automatically.
	InputScale *float32 `yaml:"input_scale" toml:"input_scale"`

	DenoiseAlpha bool `yaml:"denoise_alpha" toml:"denoise_alpha"`
}

type ToneMapConfig struct {
	Operator             stage.ToneMapOperator `yaml:"operator" toml:"operator"`
	AutoExposure         bool                  `yaml:"auto_exposure" toml:"auto_exposure"`
	ExposureCompensation float32               `yaml:"exposure_compensation" toml:"exposure_compensation"`
	ExposureValue        float32               `yaml:"exposure_value" toml:"exposure_value"`
	Clamp                bool                  `yaml:"clamp" toml:"clamp"`
}

// The run configuration.
type Config struct {
	Mode     pipeline.Mode `yaml:"mode" toml:"mode"`
	LogLevel string        `yaml:"log_level" toml:"log_level"`

	// Logical frames for progressive runs without an orbit.
	Frames int `yaml:"frames" toml:"frames"`

	Width   int `yaml:"width" toml:"width"`
	Height  int `yaml:"height" toml:"height"`
	Workers int `yaml:"workers" toml:"workers"`

	Capture        CaptureConfig              `yaml:"capture" toml:"capture"`
	Accumulation   AccumulationConfig         `yaml:"accumulation" toml:"accumulation"`
	Orbit          OrbitConfig                `yaml:"orbit" toml:"orbit"`
	Camera         CameraConfig               `yaml:"camera" toml:"camera"`
	Denoiser       DenoiserConfig             `yaml:"denoiser" toml:"denoiser"`
	ToneMap        ToneMapConfig              `yaml:"tonemap" toml:"tonemap"`
	LightTransport stage.LightTransportConfig `yaml:"light_transport" toml:"light_transport"`
}

// Get the default run configuration.
func Default() Config {
	primary := pipeline.PrimaryToneMapConfig()
	oidn := stage.DefaultOIDNConfig()

	return Config{
		Mode:     pipeline.HDR,
		LogLevel: log.Notice.String(),
		Frames:   100,
		Width:    1920,
		Height:   1080,
		Capture: CaptureConfig{
			Mode:       capture.Frames,
			OutputRoot: "outputs",
		},
		Accumulation: AccumulationConfig{
			BaselineSPP: 20,
			SubFrames:   1000,
		},
		Orbit: OrbitConfig{
			Degrees:     180,
			Frames:      300,
			RadiusScale: 1,
		},
		Camera: CameraConfig{
			Position: types.XYZ(0, 2, -8),
			Target:   types.XYZ(0, 1, 0),
			Up:       types.XYZ(0, 1, 0),
			FOV:      45,
		},
		Denoiser: DenoiserConfig{
			Kind:        pipeline.DenoiserOIDN,
			Quality:     oidn.Quality,
			MaxMemoryMB: oidn.MaxMemoryMB,
			Device:      oidn.Device,
		},
		ToneMap: ToneMapConfig{
			Operator:             primary.Operator,
			ExposureCompensation: primary.ExposureCompensation,
			Clamp:                primary.Clamp,
		},
		LightTransport: stage.DefaultLightTransportConfig(),
	}
}

func invalid(key string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, key, fmt.Sprintf(format, args...))
}

// Validate the run configuration. Stage level settings are validated when
// the stages are created.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return invalid("mode", "unsupported mode %d", c.Mode)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", "%v", err)
	}
	if c.Frames < 1 {
		return invalid("frames", "must be >= 1; got %d", c.Frames)
	}
	if c.Width < 1 || c.Height < 1 {
		return invalid("width/height", "must be >= 1; got %dx%d", c.Width, c.Height)
	}
	if c.Workers < 0 {
		return invalid("workers", "must be >= 0; got %d", c.Workers)
	}
	if _, err := c.Capture.Mode.MarshalText(); err != nil {
		return invalid("capture.mode", "%v", err)
	}
	if c.Capture.OutputRoot == "" {
		return invalid("capture.output_root", "must not be empty")
	}
	if c.Capture.StartFrame < 0 {
		return invalid("capture.start_frame", "must be >= 0; got %d", c.Capture.StartFrame)
	}
	if c.Accumulation.BaselineSPP < 1 {
		return invalid("accumulation.baseline_spp", "must be >= 1; got %d", c.Accumulation.BaselineSPP)
	}
	if c.Accumulation.SubFrames < 1 {
		return invalid("accumulation.sub_frames", "must be >= 1; got %d", c.Accumulation.SubFrames)
	}
	if c.Orbit.Enabled {
		if c.Orbit.Frames < 1 {
			return invalid("orbit.frames", "must be >= 1; got %d", c.Orbit.Frames)
		}
		if c.Orbit.RadiusScale <= 0 {
			return invalid("orbit.radius_scale", "must be > 0; got %f", c.Orbit.RadiusScale)
		}
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return invalid("camera.fov", "must be in (0, 180); got %f", c.Camera.FOV)
	}
	if c.Camera.Target.Sub(c.Camera.Position).Len() == 0 {
		return invalid("camera.target", "must differ from camera.position")
	}
	if orbitOpts := c.OrbitOptions(); orbitOpts != nil {
		if _, err := scene.NewOrbit(c.CameraPose(), *orbitOpts); err != nil {
			return invalid("orbit.radius_add", "%v", err)
		}
	}
	switch c.Denoiser.Kind {
	case pipeline.DenoiserOIDN, pipeline.DenoiserOptix:
	default:
		return invalid("denoiser.kind", "unsupported denoiser %q", c.Denoiser.Kind)
	}
	return nil
}

// Get the initial camera pose.
func (c Config) CameraPose() scene.CameraPose {
	return scene.CameraPose{
		Position: c.Camera.Position,
		Target:   c.Camera.Target,
		Up:       c.Camera.Up,
	}
}

// Get the orbit options or nil if orbiting is disabled.
func (c Config) OrbitOptions() *scene.OrbitOptions {
	if !c.Orbit.Enabled {
		return nil
	}
	return &scene.OrbitOptions{
		Center:      c.Orbit.Center,
		Degrees:     c.Orbit.Degrees,
		Frames:      c.Orbit.Frames,
		RadiusScale: c.Orbit.RadiusScale,
		RadiusAdd:   c.Orbit.RadiusAdd,
	}
}

// Get the stage configuration options for the pipeline builder.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Denoiser = c.Denoiser.Kind
	opts.Temporal = c.Denoiser.Temporal
	opts.BlendFactor = c.Denoiser.Blend
	opts.BaselineSPP = c.Accumulation.BaselineSPP
	opts.LightTransport = c.LightTransport

	opts.ToneMap.Operator = c.ToneMap.Operator
	opts.ToneMap.AutoExposure = c.ToneMap.AutoExposure
	opts.ToneMap.ExposureCompensation = c.ToneMap.ExposureCompensation
	opts.ToneMap.ExposureValue = c.ToneMap.ExposureValue
	opts.ToneMap.Clamp = c.ToneMap.Clamp

	opts.OIDN.Quality = c.Denoiser.Quality
	opts.OIDN.SRGB = c.Denoiser.SRGB
	opts.OIDN.CleanAux = c.Denoiser.CleanAux
	opts.OIDN.MaxMemoryMB = c.Denoiser.MaxMemoryMB
	opts.OIDN.Device = c.Denoiser.Device
	if c.Denoiser.InputScale != nil {
		opts.OIDN.InputScale = *c.Denoiser.InputScale
	}

	opts.Optix.DenoiseAlpha = c.Denoiser.DenoiseAlpha
	return opts
}

// Get the renderer options. The orbit is supplied by the caller since it
// depends on the camera pose at start-up.
func (c Config) RendererOptions(orbit *scene.Orbit) renderer.Options {
	lt := pipeline.LightTransportConfig(c.Mode, c.PipelineOptions())
	opts := renderer.Options{
		Strategy:          renderer.Progressive,
		Frames:            c.Frames,
		BaselineSPP:       lt.SamplesPerFrame(),
		SubFrames:         1,
		AccumulationStage: pipeline.StageAccumulate,
		Orbit:             orbit,
	}
	if c.Mode == pipeline.Reference {
		opts.Strategy = renderer.ReferenceAccumulation
		opts.SubFrames = c.Accumulation.SubFrames
	}
	return opts
}

// Get the capture configuration for a run started at t. Orbit runs get a
// timestamped base filename so repeated captures do not collide.
func (c Config) CaptureConfig(t time.Time) capture.Config {
	base := c.Capture.BaseName
	if base == "" {
		base = pipeline.BaseName(c.Mode, c.Denoiser.Blend)
	}
	if c.Orbit.Enabled {
		base = pipeline.OrbitBaseName(base, t)
	}
	return capture.Config{
		Mode:       c.Capture.Mode,
		OutputDir:  filepath.Join(c.Capture.OutputRoot, pipeline.OutputDir(c.Mode, c.Denoiser.Blend)),
		BaseName:   base,
		StartFrame: c.Capture.StartFrame,
	}
}
