package pipeline

import (
	"fmt"

	"github.com/achilleasa/turntable/stage"
)

// The denoiser family used by the denoising modes.
type DenoiserKind string

const (
	DenoiserOIDN  DenoiserKind = "oidn"
	DenoiserOptix DenoiserKind = "optix"
)

// Stage names used by the canonical topologies.
const (
	StageLightTransport = "ReSTIR"
	StageAccumulate     = "Acc"
	StageToneMap        = "TM"
	StagePrimaryToneMap = "TM1"
	StageWriteout       = "TM2"
	StageOIDN           = "OIDN"
	StageOptix          = "Optix"
	StageBlendDenoiser  = "Denoiser"
)

// Options tune the stage configurations of the canonical topologies.
type Options struct {
	Denoiser DenoiserKind

	// Route motion vectors from the light-transport stage into the denoiser.
	Temporal bool

	// Denoiser blend factor used by the Blend mode.
	BlendFactor float32

	// Samples per pixel per frame for the reference estimator.
	BaselineSPP int

	// Interactive light-transport configuration; the reference mode derives
	// its configuration from it.
	LightTransport stage.LightTransportConfig

	// The primary tone-map configuration shared by every mode.
	ToneMap stage.ToneMapConfig

	OIDN  stage.OIDNConfig
	Optix stage.OptixConfig
}

// The primary tone-mapper: linear with +8 stops of exposure compensation.
func PrimaryToneMapConfig() stage.ToneMapConfig {
	cfg := stage.DefaultToneMapConfig()
	cfg.ExposureCompensation = 8
	return cfg
}

// The writeout tone-mapper used after an LDR denoiser. It never applies
// exposure compensation so the image is not exposed twice.
func WriteoutToneMapConfig() stage.ToneMapConfig {
	cfg := stage.DefaultToneMapConfig()
	cfg.ExposureCompensation = 0
	return cfg
}

func DefaultOptions() Options {
	return Options{
		Denoiser:       DenoiserOIDN,
		BaselineSPP:    20,
		LightTransport: stage.DefaultLightTransportConfig(),
		ToneMap:        PrimaryToneMapConfig(),
		OIDN:           stage.DefaultOIDNConfig(),
		Optix:          stage.DefaultOptixConfig(),
	}
}

func (o Options) validate(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedMode, mode)
	}
	switch o.Denoiser {
	case DenoiserOIDN, DenoiserOptix:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDenoiser, o.Denoiser)
	}
	if o.Temporal && (mode == HDR || mode == LDR) && o.Denoiser != DenoiserOptix {
		return ErrTemporalUnsupported
	}
	return nil
}
