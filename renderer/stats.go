package renderer

import (
	"time"

	"github.com/achilleasa/turntable/scene"
)

// Statistics for one logical frame.
type FrameStat struct {
	// The logical frame index.
	Index int

	// The camera pose the frame was rendered from.
	Pose scene.CameraPose

	// Physical frame advances spent on this frame.
	SubFrames int

	// The captured artifact or an empty string if nothing was written.
	Output string

	// Render time including capture.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual logical frame stats.
	Frames []FrameStat

	// Total physical frame advances.
	PhysicalFrames int

	// Samples per pixel of each logical frame.
	EffectiveSPP int

	// Total render time for the run.
	RenderTime time.Duration
}
