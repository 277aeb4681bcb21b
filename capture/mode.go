package capture

import (
	"fmt"
	"strings"
)

// The capture mode selects which artifacts a run produces.
type Mode uint8

const (
	// Record frame_times.csv only.
	Timing Mode = iota

	// Write one image per logical frame.
	Frames

	// Record timings and write images.
	Both
)

var modeNames = map[Mode]string{
	Timing: "timing",
	Frames: "frames",
	Both:   "both",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Check whether image capture is enabled.
func (m Mode) CaptureFrames() bool {
	return m == Frames || m == Both
}

// Check whether timing capture is enabled.
func (m Mode) CaptureTiming() bool {
	return m == Timing || m == Both
}

// Parse a capture mode name.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, modeName := range modeNames {
		if modeName == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// UnmarshalText allows capture modes to be decoded from config files.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}
	return []byte(m.String()), nil
}
