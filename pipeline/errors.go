package pipeline

import "errors"

var (
	ErrUnsupportedMode     = errors.New("pipeline: unsupported mode")
	ErrUnsupportedDenoiser = errors.New("pipeline: unsupported denoiser")
	ErrTemporalUnsupported = errors.New("pipeline: temporal denoising requires the optix denoiser")
)
