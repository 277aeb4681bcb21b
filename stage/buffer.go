package stage

import (
	"github.com/achilleasa/turntable/scene"
)

// An RGBA image buffer with float32 channels.
type Buffer struct {
	W, H int
	Pix  []float32
}

func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*4)}
}

// Offset of the first channel of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.W + x) * 4
}

// Get the RGBA value of pixel (x, y).
func (b *Buffer) At(x, y int) [4]float32 {
	o := b.Offset(x, y)
	return [4]float32{b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3]}
}

// Set the RGBA value of pixel (x, y).
func (b *Buffer) Set(x, y int, rgba [4]float32) {
	o := b.Offset(x, y)
	copy(b.Pix[o:o+4], rgba[:])
}

// Create a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{W: b.W, H: b.H, Pix: make([]float32, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Check whether the buffer has the given dimensions.
func (b *Buffer) SameSize(w, h int) bool {
	return b != nil && b.W == w && b.H == h
}

// Per-port buffers flowing in or out of a stage.
type Resources map[string]*Buffer

// Per-frame state passed to every stage.
type FrameContext struct {
	// Index of the physical frame advance since the runtime was created.
	Frame uint64

	Width, Height int

	Camera   scene.CameraPose
	Frustrum scene.Frustrum
}
