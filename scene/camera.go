package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/turntable/types"
)

// A camera pose: eye position, look-at target and up vector.
type CameraPose struct {
	Position types.Vec3
	Target   types.Vec3
	Up       types.Vec3
}

func (p CameraPose) String() string {
	return fmt.Sprintf("pos %s target %s up %s", p.Position, p.Target, p.Up)
}

// Check whether two poses match within eps on every component.
func (p CameraPose) ApproxEqual(other CameraPose, eps float32) bool {
	return p.Position.ApproxEqual(other.Position, eps) &&
		p.Target.ApproxEqual(other.Target, eps) &&
		p.Up.ApproxEqual(other.Up, eps)
}

// Stores the ray directions at the four corners of the camera frustrum. It is
// used as a shortcut for generating per pixel rays via interpolation of the
// corner rays. Corner order is TL, TR, BL, BR.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : %s\nTR : %s\nBL : %s\nBR : %s",
		fr[0], fr[1], fr[2], fr[3],
	)
}

// Interpolate the ray direction for normalized frame coordinates u, v in [0, 1]
// where (0, 0) is the top-left corner.
func (fr Frustrum) Ray(u, v float32) types.Vec3 {
	top := fr[0].Mul(1 - u).Add(fr[1].Mul(u))
	bottom := fr[2].Mul(1 - u).Add(fr[3].Mul(u))
	return top.Mul(1 - v).Add(bottom.Mul(v)).Normalize()
}

// The camera type holds the mutable pose of the scene camera for a run.
type Camera struct {
	pose CameraPose

	// Vertical field of view in degrees.
	FOV float32
}

func NewCamera(pose CameraPose, fov float32) *Camera {
	return &Camera{
		pose: pose,
		FOV:  fov,
	}
}

// Get the current camera pose.
func (c *Camera) Pose() CameraPose {
	return c.pose
}

// Replace the current camera pose.
func (c *Camera) SetPose(pose CameraPose) {
	c.pose = pose
}

// Generate a ray vector for each corner of the camera frustrum using the
// orthonormal basis derived from the current pose.
func (c *Camera) Frustrum(aspect float32) Frustrum {
	forward := c.pose.Target.Sub(c.pose.Position).Normalize()
	right := forward.Cross(c.pose.Up).Normalize()
	up := right.Cross(forward)

	halfH := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	halfW := halfH * aspect

	r := right.Mul(halfW)
	u := up.Mul(halfH)

	return Frustrum{
		forward.Sub(r).Add(u),
		forward.Add(r).Add(u),
		forward.Sub(r).Sub(u),
		forward.Add(r).Sub(u),
	}
}
