package capture

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/achilleasa/turntable/log"
	"github.com/achilleasa/turntable/stage"
)

var logger = log.New("capture")

// The Writer persists frames and frame timings.
type Writer interface {
	// Set (and create) the directory receiving captured frames.
	SetOutputDirectory(path string) error

	// Set the base filename (without extension) of the next captured frame.
	SetBaseFilename(name string)

	// Write the current frame and return the path of the written file.
	CaptureCurrentFrame() (string, error)

	// Start recording a row for every physical frame into csvPath.
	CaptureFrameTiming(csvPath string) error

	// Flush and close any open outputs.
	Close() error
}

// A FrameSource provides the most recent graph output.
type FrameSource interface {
	Output() *stage.Buffer
}

// FileWriter writes PNG images and a CSV timing record.
type FileWriter struct {
	source FrameSource

	dir  string
	base string

	timingFile *os.File
	timing     *csv.Writer
}

// Create a new writer capturing frames from the given source.
func NewFileWriter(source FrameSource) *FileWriter {
	return &FileWriter{source: source}
}

func (w *FileWriter) SetOutputDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("capture: creating output directory: %w", err)
	}
	w.dir = path
	return nil
}

func (w *FileWriter) SetBaseFilename(name string) {
	w.base = name
}

func (w *FileWriter) CaptureCurrentFrame() (string, error) {
	if w.dir == "" {
		return "", ErrNoOutputDirectory
	}
	if w.base == "" {
		return "", ErrNoBaseFilename
	}
	buf := w.source.Output()
	if buf == nil {
		return "", ErrNoFrame
	}

	path := filepath.Join(w.dir, w.base+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	err = png.Encode(f, toImage(buf))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Never leave a truncated frame behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("capture: encoding %s: %w", path, err)
	}

	logger.Debugf("captured %s", path)
	return path, nil
}

func (w *FileWriter) CaptureFrameTiming(csvPath string) error {
	if w.timingFile != nil {
		if err := w.closeTiming(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return fmt.Errorf("capture: creating timing directory: %w", err)
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}

	w.timingFile = f
	w.timing = csv.NewWriter(f)
	if err = w.timing.Write([]string{"frame", "time_ms"}); err != nil {
		return err
	}

	logger.Infof("recording frame timings to %s", csvPath)
	return nil
}

// Append a timing row. Rows are ignored unless timing capture is active.
func (w *FileWriter) RecordFrameTime(frame uint64, elapsed time.Duration) {
	if w.timing == nil {
		return
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	err := w.timing.Write([]string{
		strconv.FormatUint(frame, 10),
		strconv.FormatFloat(ms, 'f', 3, 64),
	})
	if err != nil {
		logger.Warningf("dropping timing row for frame %d: %v", frame, err)
	}
}

func (w *FileWriter) Close() error {
	if w.timingFile == nil {
		return nil
	}
	return w.closeTiming()
}

func (w *FileWriter) closeTiming() error {
	w.timing.Flush()
	flushErr := w.timing.Error()
	closeErr := w.timingFile.Close()

	w.timing = nil
	w.timingFile = nil

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Convert a float RGBA buffer with values in [0, 1] to an 8-bit image.
func toImage(buf *stage.Buffer) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, buf.W, buf.H))
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			px := buf.At(x, y)
			im.SetNRGBA(x, y, color.NRGBA{
				R: to8(px[0]),
				G: to8(px[1]),
				B: to8(px[2]),
				A: to8(px[3]),
			})
		}
	}
	return im
}

func to8(v float32) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
