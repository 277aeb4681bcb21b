package pipeline

import (
	"fmt"
	"time"
)

// Get the output sub-directory for a mode.
func OutputDir(mode Mode, blend float32) string {
	switch mode {
	case Reference:
		return "REF"
	case HDR:
		return "HDR"
	case LDR:
		return "LDR"
	case NoDenoise:
		return "NoDenoiser"
	case Blend:
		return fmt.Sprintf("Optix_Blend_%.2f", blend)
	}
	return mode.String()
}

// Get the base filename used for frames captured in a mode.
func BaseName(mode Mode, blend float32) string {
	switch mode {
	case Reference:
		return "ref"
	case HDR:
		return "hdr"
	case LDR:
		return "ldr"
	case NoDenoise:
		return "NoDenoiser"
	case Blend:
		return fmt.Sprintf("OptixBlend_%.2f", blend)
	}
	return mode.String()
}

// Get the base filename for an orbit capture started at t.
func OrbitBaseName(base string, t time.Time) string {
	return base + "_orbit_" + t.Format("20060102_150405")
}

// Get the name of the graph built for a mode.
func GraphName(mode Mode) string {
	return fmt.Sprintf("Pipe %s", mode)
}
