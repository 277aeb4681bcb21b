package renderer

import "github.com/achilleasa/turntable/scene"

// The rendering strategy for each logical frame.
type Strategy uint8

const (
	// One physical frame advance per logical frame.
	Progressive Strategy = iota

	// Reset the accumulation stage and advance a fixed number of sub-frames
	// per logical frame.
	ReferenceAccumulation
)

func (s Strategy) String() string {
	if s == ReferenceAccumulation {
		return "reference"
	}
	return "progressive"
}

type Options struct {
	Strategy Strategy

	// Logical frames requested by the caller. Ignored by the reference
	// strategy unless an orbit supplies the frame count.
	Frames int

	// Samples per pixel contributed by each sub-frame under the reference
	// strategy.
	BaselineSPP int

	// Sub-frames accumulated per logical frame under the reference strategy.
	SubFrames int

	// Name of the accumulation stage reset by the reference strategy.
	AccumulationStage string

	// Optional camera path; when set every logical frame uses one orbit step.
	Orbit *scene.Orbit

	// Log progress every N logical frames; 0 selects the default.
	ProgressEvery int
}

const defaultProgressEvery = 10

// Get the effective sample density of a logical frame.
func (o Options) EffectiveSPP() int {
	if o.Strategy != ReferenceAccumulation {
		return o.BaselineSPP
	}
	return o.BaselineSPP * o.SubFrames
}

// Get the number of logical frames to render. An orbit always supplies the
// frame count; without one the reference strategy renders a single frame.
func (o Options) LogicalFrames() int {
	switch {
	case o.Orbit != nil:
		return o.Orbit.Len()
	case o.Strategy == ReferenceAccumulation:
		return 1
	default:
		return o.Frames
	}
}
