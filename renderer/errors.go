package renderer

import "errors"

var (
	ErrCameraNotDefined    = errors.New("renderer: no camera defined")
	ErrGraphNotDefined     = errors.New("renderer: no graph defined")
	ErrRuntimeNotDefined   = errors.New("renderer: no stage runtime defined")
	ErrCaptureNotDefined   = errors.New("renderer: no capture sequencer defined")
	ErrNoAccumulationStage = errors.New("renderer: graph has no resettable accumulation stage")
	ErrInvalidSubFrames    = errors.New("renderer: sub-frame count must be >= 1")
	ErrInvalidFrameCount   = errors.New("renderer: logical frame count must be >= 1")
	ErrInterrupted         = errors.New("renderer: interrupted while rendering")
)
