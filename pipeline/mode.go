package pipeline

import (
	"fmt"
	"strings"
)

// A pipeline mode selects one of the canonical graph topologies.
type Mode uint8

const (
	// Denoise linear radiance before tone-mapping.
	HDR Mode = iota

	// Tone-map first, denoise the tone-mapped image and write it out through
	// a neutral tone-mapper.
	LDR

	// Accumulate a converged reference estimate. No denoiser.
	Reference

	// The HDR topology without a denoiser.
	NoDenoise

	// The HDR topology with a denoiser blending its output with the input.
	Blend

	numModes
)

var modeNames = [numModes]string{
	HDR:       "hdr",
	LDR:       "ldr",
	Reference: "ref",
	NoDenoise: "nodenoise",
	Blend:     "blend",
}

var modeAliases = map[string]Mode{
	"reference": Reference,
	"optix":     Blend,
}

func (m Mode) String() string {
	if m >= numModes {
		return fmt.Sprintf("Mode(%d)", m)
	}
	return modeNames[m]
}

// Check whether the mode belongs to the supported set.
func (m Mode) Valid() bool {
	return m < numModes
}

// Get all supported modes.
func Modes() []Mode {
	out := make([]Mode, 0, numModes)
	for m := Mode(0); m < numModes; m++ {
		out = append(out, m)
	}
	return out
}

// Parse a mode selector. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, modeName := range modeNames {
		if modeName == name {
			return Mode(m), nil
		}
	}
	if m, ok := modeAliases[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// UnmarshalText allows modes to be decoded from config files.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, m)
	}
	return []byte(m.String()), nil
}
