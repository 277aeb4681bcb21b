package tracer

import "errors"

var (
	ErrNoActiveGraph    = errors.New("tracer: no active graph")
	ErrDuplicateGraph   = errors.New("tracer: graph already added")
	ErrUnknownGraph     = errors.New("tracer: unknown graph")
	ErrUnknownStage     = errors.New("tracer: unknown stage")
	ErrInvalidFrameSize = errors.New("tracer: invalid frame size")
	ErrMissingInput     = errors.New("tracer: missing stage input")
	ErrMemoryBudget     = errors.New("tracer: denoiser memory budget exceeded")
	ErrRuntimeClosed    = errors.New("tracer: runtime closed")
)
