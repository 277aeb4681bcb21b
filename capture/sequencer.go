package capture

import (
	"fmt"
	"path/filepath"
)

// The name of the per-physical-frame timing record.
const TimingFile = "frame_times.csv"

// Sequencer configuration. Fixed for the duration of a run.
type Config struct {
	Mode      Mode
	OutputDir string
	BaseName  string

	// Logical frames with an index below StartFrame are not written.
	StartFrame int
}

func (c Config) Validate() error {
	if _, ok := modeNames[c.Mode]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMode, c.Mode)
	}
	if c.OutputDir == "" {
		return ErrNoOutputDirectory
	}
	if c.BaseName == "" {
		return ErrNoBaseFilename
	}
	if c.StartFrame < 0 {
		return fmt.Errorf("%w; got %d", ErrInvalidStartFrame, c.StartFrame)
	}
	return nil
}

// Get the base filename of logical frame i.
func FrameName(base string, i int) string {
	return fmt.Sprintf("%s_%04d", base, i)
}

// The Sequencer ties logical frames to output artifacts.
type Sequencer struct {
	cfg    Config
	writer Writer

	index   int
	written []string
}

// Create a sequencer and prepare the writer: the output directory is set
// and timing capture starts when enabled.
func NewSequencer(cfg Config, writer Writer) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := writer.SetOutputDirectory(cfg.OutputDir); err != nil {
		return nil, err
	}
	if cfg.Mode.CaptureTiming() {
		if err := writer.CaptureFrameTiming(filepath.Join(cfg.OutputDir, TimingFile)); err != nil {
			return nil, err
		}
	}

	return &Sequencer{cfg: cfg, writer: writer}, nil
}

func (s *Sequencer) Config() Config {
	return s.cfg
}

// Complete the current logical frame, writing it when frame capture is
// enabled and the start offset has been reached. The frame index advances
// regardless. Returns the written path or an empty string.
func (s *Sequencer) Capture() (string, error) {
	idx := s.index
	s.index++

	if !s.cfg.Mode.CaptureFrames() || idx < s.cfg.StartFrame {
		return "", nil
	}

	s.writer.SetBaseFilename(FrameName(s.cfg.BaseName, idx))
	path, err := s.writer.CaptureCurrentFrame()
	if err != nil {
		return "", fmt.Errorf("capture: frame %d: %w", idx, err)
	}
	s.written = append(s.written, path)
	return path, nil
}

// Get the index of the next logical frame.
func (s *Sequencer) FrameIndex() int {
	return s.index
}

// Get the paths written so far.
func (s *Sequencer) Written() []string {
	return append([]string(nil), s.written...)
}
