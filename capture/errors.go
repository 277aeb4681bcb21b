package capture

import "errors"

var (
	ErrUnknownMode       = errors.New("capture: unknown capture mode")
	ErrNoFrame           = errors.New("capture: no frame available")
	ErrNoOutputDirectory = errors.New("capture: output directory not set")
	ErrNoBaseFilename    = errors.New("capture: base filename not set")
	ErrInvalidStartFrame = errors.New("capture: start frame must be >= 0")
)
