package stage

import (
	"fmt"
	"math"
)

// A typed stage configuration record.
type Config interface {
	// The stage family this configuration applies to.
	StageType() Type

	// Check every field against its declared domain.
	Validate() error
}

func invalid(t Type, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, t, fmt.Sprintf(format, args...))
}

// ----------------------------------------------------------------------------

// Configuration for the light-transport stage.
type LightTransportConfig struct {
	// Use the high-quality reference estimator instead of the interactive
	// one. Selected by the pipeline mode, never read from run config files.
	UseReference bool `yaml:"-" toml:"-"`

	// Samples per pixel per frame for the reference estimator. Run config
	// files set it through accumulation.baseline_spp.
	BaselineSPP int `yaml:"-" toml:"-"`

	EnableTemporalReuse bool `yaml:"temporal_reuse" toml:"temporal_reuse"`
	EnableSpatialReuse  bool `yaml:"spatial_reuse" toml:"spatial_reuse"`
	VertexReuse         bool `yaml:"vertex_reuse" toml:"vertex_reuse"`

	UseSurfaceScene      bool `yaml:"surface_scene" toml:"surface_scene"`
	UseEmissiveLights    bool `yaml:"emissive_lights" toml:"emissive_lights"`
	UseEnvironmentLights bool `yaml:"environment_lights" toml:"environment_lights"`
	UseAnalyticLights    bool `yaml:"analytic_lights" toml:"analytic_lights"`

	TemporalReuseMThreshold float32 `yaml:"temporal_reuse_m_threshold" toml:"temporal_reuse_m_threshold"`
}

func DefaultLightTransportConfig() LightTransportConfig {
	return LightTransportConfig{
		BaselineSPP:             1,
		EnableTemporalReuse:     true,
		EnableSpatialReuse:      true,
		UseSurfaceScene:         true,
		UseEmissiveLights:       true,
		TemporalReuseMThreshold: 10,
	}
}

// Build the reference estimator configuration: reuse disabled and a fixed
// number of samples per pixel per frame.
func ReferenceLightTransportConfig(baselineSPP int) LightTransportConfig {
	cfg := DefaultLightTransportConfig()
	cfg.UseReference = true
	cfg.BaselineSPP = baselineSPP
	cfg.EnableTemporalReuse = false
	cfg.EnableSpatialReuse = false
	cfg.VertexReuse = false
	return cfg
}

func (LightTransportConfig) StageType() Type { return LightTransport }

func (c LightTransportConfig) Validate() error {
	if c.BaselineSPP < 1 {
		return invalid(LightTransport, "baseline_spp must be >= 1; got %d", c.BaselineSPP)
	}
	if c.TemporalReuseMThreshold <= 0 {
		return invalid(LightTransport, "temporal_reuse_m_threshold must be > 0; got %f", c.TemporalReuseMThreshold)
	}
	if !c.UseSurfaceScene && !c.UseEmissiveLights && !c.UseEnvironmentLights && !c.UseAnalyticLights {
		return invalid(LightTransport, "at least one light source must be enabled")
	}
	return nil
}

// Samples contributed by each frame advance.
func (c LightTransportConfig) SamplesPerFrame() int {
	if c.UseReference {
		return c.BaselineSPP
	}
	return 1
}

// ----------------------------------------------------------------------------

// Configuration for the accumulation stage.
type AccumulateConfig struct {
	// When disabled the stage passes its input through.
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Clear the running sum whenever the camera pose changes.
	AutoReset bool `yaml:"auto_reset" toml:"auto_reset"`
}

func DefaultAccumulateConfig() AccumulateConfig {
	return AccumulateConfig{Enabled: true, AutoReset: true}
}

func (AccumulateConfig) StageType() Type { return Accumulate }

func (c AccumulateConfig) Validate() error { return nil }

// ----------------------------------------------------------------------------

type ToneMapOperator string

const (
	ToneMapLinear   ToneMapOperator = "linear"
	ToneMapReinhard ToneMapOperator = "reinhard"
)

type ExposureMode string

const (
	AperturePriority ExposureMode = "aperture-priority"
	ShutterPriority  ExposureMode = "shutter-priority"
)

// Configuration for the tone-mapping stage.
type ToneMapConfig struct {
	Operator             ToneMapOperator `yaml:"operator" toml:"operator"`
	AutoExposure         bool            `yaml:"auto_exposure" toml:"auto_exposure"`
	ExposureCompensation float32         `yaml:"exposure_compensation" toml:"exposure_compensation"`
	ExposureValue        float32         `yaml:"exposure_value" toml:"exposure_value"`
	Clamp                bool            `yaml:"clamp" toml:"clamp"`

	FilmSpeed         float32      `yaml:"film_speed" toml:"film_speed"`
	WhiteBalance      bool         `yaml:"white_balance" toml:"white_balance"`
	WhitePoint        float32      `yaml:"white_point" toml:"white_point"`
	WhiteMaxLuminance float32      `yaml:"white_max_luminance" toml:"white_max_luminance"`
	WhiteScale        float32      `yaml:"white_scale" toml:"white_scale"`
	FNumber           float32      `yaml:"f_number" toml:"f_number"`
	Shutter           float32      `yaml:"shutter" toml:"shutter"`
	ExposureMode      ExposureMode `yaml:"exposure_mode" toml:"exposure_mode"`
}

// The neutral tone-map configuration: linear operator, no exposure adjustment.
func DefaultToneMapConfig() ToneMapConfig {
	return ToneMapConfig{
		Operator:          ToneMapLinear,
		Clamp:             true,
		FilmSpeed:         100,
		WhitePoint:        6500,
		WhiteMaxLuminance: 1,
		WhiteScale:        1,
		FNumber:           1,
		Shutter:           1,
		ExposureMode:      AperturePriority,
	}
}

func (ToneMapConfig) StageType() Type { return ToneMap }

func (c ToneMapConfig) Validate() error {
	switch c.Operator {
	case ToneMapLinear, ToneMapReinhard:
	default:
		return invalid(ToneMap, "unsupported operator %q", c.Operator)
	}
	switch c.ExposureMode {
	case AperturePriority, ShutterPriority:
	default:
		return invalid(ToneMap, "unsupported exposure mode %q", c.ExposureMode)
	}
	if c.ExposureCompensation < -12 || c.ExposureCompensation > 12 {
		return invalid(ToneMap, "exposure_compensation must be in [-12, 12]; got %f", c.ExposureCompensation)
	}
	if c.ExposureValue < -24 || c.ExposureValue > 24 {
		return invalid(ToneMap, "exposure_value must be in [-24, 24]; got %f", c.ExposureValue)
	}
	if c.WhitePoint < 1905 || c.WhitePoint > 25000 {
		return invalid(ToneMap, "white_point must be in [1905, 25000]; got %f", c.WhitePoint)
	}
	for _, field := range []struct {
		name string
		v    float32
	}{
		{"film_speed", c.FilmSpeed},
		{"white_max_luminance", c.WhiteMaxLuminance},
		{"white_scale", c.WhiteScale},
		{"f_number", c.FNumber},
		{"shutter", c.Shutter},
	} {
		if field.v <= 0 {
			return invalid(ToneMap, "%s must be > 0; got %f", field.name, field.v)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------

type DenoiseDevice string

const (
	DeviceGPU DenoiseDevice = "gpu"
	DeviceCPU DenoiseDevice = "cpu"
)

// Configuration for the OIDN-style denoiser.
type OIDNConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Input holds linear HDR data; false means tone-mapped data.
	HDR      bool `yaml:"hdr" toml:"hdr"`
	SRGB     bool `yaml:"srgb" toml:"srgb"`
	CleanAux bool `yaml:"clean_aux" toml:"clean_aux"`

	// 1 = fast, 2 = balanced, 3 = high.
	Quality int `yaml:"quality" toml:"quality"`

	// -1 selects the memory budget automatically.
	MaxMemoryMB int `yaml:"max_memory_mb" toml:"max_memory_mb"`

	// NaN selects the input scale automatically.
	InputScale float32 `yaml:"input_scale" toml:"input_scale"`

	Device DenoiseDevice `yaml:"device" toml:"device"`
}

func DefaultOIDNConfig() OIDNConfig {
	return OIDNConfig{
		Enabled:     true,
		HDR:         true,
		Quality:     3,
		MaxMemoryMB: -1,
		InputScale:  float32(math.NaN()),
		Device:      DeviceGPU,
	}
}

func (OIDNConfig) StageType() Type { return DenoiseOIDN }

func (c OIDNConfig) Validate() error {
	if c.Quality < 1 || c.Quality > 3 {
		return invalid(DenoiseOIDN, "quality must be one of {1,2,3}; got %d", c.Quality)
	}
	if c.MaxMemoryMB < -1 {
		return invalid(DenoiseOIDN, "max_memory_mb must be -1 (auto) or >= 0; got %d", c.MaxMemoryMB)
	}
	if !math.IsNaN(float64(c.InputScale)) && c.InputScale <= 0 {
		return invalid(DenoiseOIDN, "input_scale must be NaN (auto) or > 0; got %f", c.InputScale)
	}
	switch c.Device {
	case DeviceGPU, DeviceCPU:
	default:
		return invalid(DenoiseOIDN, "unsupported device %q", c.Device)
	}
	return nil
}

// Check whether the input scale is selected automatically.
func (c OIDNConfig) AutoInputScale() bool {
	return math.IsNaN(float64(c.InputScale))
}

// ----------------------------------------------------------------------------

type OptixModel string

const (
	OptixModelLDR      OptixModel = "ldr"
	OptixModelHDR      OptixModel = "hdr"
	OptixModelTemporal OptixModel = "temporal"
)

// Configuration for the OptiX-style denoiser.
type OptixConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// 0 yields the fully denoised image, 1 the original input.
	BlendFactor float32 `yaml:"blend" toml:"blend"`

	DenoiseAlpha bool       `yaml:"denoise_alpha" toml:"denoise_alpha"`
	Model        OptixModel `yaml:"model" toml:"model"`
}

func DefaultOptixConfig() OptixConfig {
	return OptixConfig{
		Enabled: true,
		Model:   OptixModelHDR,
	}
}

func (OptixConfig) StageType() Type { return DenoiseOptix }

func (c OptixConfig) Validate() error {
	if c.BlendFactor < 0 || c.BlendFactor > 1 {
		return invalid(DenoiseOptix, "blend must be in [0, 1]; got %f", c.BlendFactor)
	}
	switch c.Model {
	case OptixModelLDR, OptixModelHDR, OptixModelTemporal:
	default:
		return invalid(DenoiseOptix, "unsupported model %q", c.Model)
	}
	return nil
}
