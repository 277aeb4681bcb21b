package scene

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/achilleasa/turntable/types"
)

var (
	ErrInvalidOrbitFrames  = errors.New("scene: orbit frame count must be at least 1")
	ErrNegativeOrbitRadius = errors.New("scene: orbit radius must not be negative")
)

// Orbit generation options.
type OrbitOptions struct {
	// The point the camera orbits around and looks at.
	Center types.Vec3

	// Signed angular sweep in degrees across the whole sequence.
	Degrees float64

	// Number of poses in the sequence.
	Frames int

	// The orbit radius is baseRadius*RadiusScale + RadiusAdd and must not be
	// negative. A zero RadiusScale is treated as 1.
	RadiusScale float64
	RadiusAdd   float64
}

// An Orbit generates a sequence of camera poses tracing a circular arc around
// a center point. All orbit parameters are derived once from the initial pose.
type Orbit struct {
	start  CameraPose
	frames int

	cx, cy, cz float64
	radius     float64
	height     float64
	startAngle float64
	sweep      float64
}

// Derive an orbit from the initial camera pose.
func NewOrbit(start CameraPose, opts OrbitOptions) (*Orbit, error) {
	if opts.Frames < 1 {
		return nil, ErrInvalidOrbitFrames
	}

	scale := opts.RadiusScale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return nil, fmt.Errorf("%w: radius scale %f", ErrNegativeOrbitRadius, scale)
	}

	cx, cy, cz := opts.Center.XYZ64()
	px, py, pz := start.Position.XYZ64()
	ox, oz := px-cx, pz-cz

	radius := math.Sqrt(ox*ox+oz*oz)*scale + opts.RadiusAdd
	if radius < 0 {
		return nil, fmt.Errorf("%w: got %f", ErrNegativeOrbitRadius, radius)
	}

	return &Orbit{
		start:      start,
		frames:     opts.Frames,
		cx:         cx,
		cy:         cy,
		cz:         cz,
		radius:     radius,
		height:     py - cy,
		startAngle: math.Atan2(oz, ox),
		sweep:      opts.Degrees * math.Pi / 180.0,
	}, nil
}

// Number of poses in the sequence.
func (o *Orbit) Len() int {
	return o.frames
}

func (o *Orbit) Radius() float64 {
	return o.radius
}

func (o *Orbit) Height() float64 {
	return o.height
}

// Start angle in radians.
func (o *Orbit) StartAngle() float64 {
	return o.startAngle
}

// Returns true if the initial position coincides with the orbit center in the
// horizontal plane. Such an orbit collapses to a fixed point.
func (o *Orbit) Degenerate() bool {
	return o.radius == 0
}

// Get the pose for step i in [0, Len()). A single-frame orbit always yields
// the initial pose.
func (o *Orbit) Pose(i int) CameraPose {
	if o.frames == 1 {
		return o.start
	}

	u := float64(i) / float64(o.frames-1)
	angle := o.startAngle + u*o.sweep

	return CameraPose{
		Position: types.XYZ64(
			o.cx+o.radius*math.Cos(angle),
			o.cy+o.height,
			o.cz+o.radius*math.Sin(angle),
		),
		Target: types.XYZ64(o.cx, o.cy, o.cz),
		Up:     o.start.Up,
	}
}

// Iterate the pose sequence. The returned sequence can be ranged over
// multiple times; each pass starts from step 0.
func (o *Orbit) Poses() iter.Seq2[int, CameraPose] {
	return func(yield func(int, CameraPose) bool) {
		for i := 0; i < o.frames; i++ {
			if !yield(i, o.Pose(i)) {
				return
			}
		}
	}
}
