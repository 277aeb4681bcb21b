package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/achilleasa/turntable/types"
)

const poseEpsilon = 1e-4

func TestOrbitHalfTurn(t *testing.T) {
	start := CameraPose{
		Position: types.XYZ(10, 5, 0),
		Target:   types.XYZ(3, 3, 3),
		Up:       types.XYZ(0, 1, 0),
	}
	orbit, err := NewOrbit(start, OrbitOptions{Center: types.XYZ(0, 0, 0), Degrees: 180, Frames: 3})
	if err != nil {
		t.Fatal(err)
	}

	if orbit.Radius() != 10 || orbit.Height() != 5 || orbit.StartAngle() != 0 {
		t.Fatalf("unexpected orbit state: radius %f height %f start %f", orbit.Radius(), orbit.Height(), orbit.StartAngle())
	}

	expPositions := []types.Vec3{
		types.XYZ(10, 5, 0),
		types.XYZ(0, 5, 10),
		types.XYZ(-10, 5, 0),
	}

	count := 0
	for i, pose := range orbit.Poses() {
		count++
		if !pose.Position.ApproxEqual(expPositions[i], poseEpsilon) {
			t.Fatalf("[frame %d] expected position %s; got %s", i, expPositions[i], pose.Position)
		}
		if !pose.Target.ApproxEqual(types.XYZ(0, 0, 0), poseEpsilon) {
			t.Fatalf("[frame %d] expected target at orbit center; got %s", i, pose.Target)
		}
		if pose.Up != start.Up {
			t.Fatalf("[frame %d] expected up vector to be inherited; got %s", i, pose.Up)
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 poses; got %d", count)
	}
}

func TestOrbitIsRestartable(t *testing.T) {
	start := CameraPose{Position: types.XYZ(-15, 8, -8), Up: types.XYZ(0, 1, 0)}
	orbit, err := NewOrbit(start, OrbitOptions{Center: types.XYZ(-11, 6, 0), Degrees: -180, Frames: 5})
	if err != nil {
		t.Fatal(err)
	}

	var first, second []CameraPose
	for _, pose := range orbit.Poses() {
		first = append(first, pose)
	}
	for _, pose := range orbit.Poses() {
		second = append(second, pose)
	}

	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("expected 5 poses per pass; got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("[frame %d] passes disagree: %s vs %s", i, first[i], second[i])
		}
	}

	// Negative sweeps rotate the other way
	expAngle := orbit.StartAngle() - math.Pi/4
	x := -11 + orbit.Radius()*math.Cos(expAngle)
	if got := float64(first[1].Position[0]); math.Abs(got-x) > poseEpsilon {
		t.Fatalf("expected x=%f for step 1; got %f", x, got)
	}
}

func TestOrbitSingleFrame(t *testing.T) {
	start := CameraPose{
		Position: types.XYZ(1, 2, 3),
		Target:   types.XYZ(4, 5, 6),
		Up:       types.XYZ(0, 1, 0),
	}
	orbit, err := NewOrbit(start, OrbitOptions{Center: types.XYZ(0, 0, 0), Degrees: 360, Frames: 1})
	if err != nil {
		t.Fatal(err)
	}

	var poses []CameraPose
	for _, pose := range orbit.Poses() {
		poses = append(poses, pose)
	}
	if len(poses) != 1 || poses[0] != start {
		t.Fatalf("expected exactly the start pose; got %v", poses)
	}
}

func TestOrbitDegenerateRadius(t *testing.T) {
	start := CameraPose{Position: types.XYZ(2, 7, -1), Up: types.XYZ(0, 1, 0)}
	orbit, err := NewOrbit(start, OrbitOptions{Center: types.XYZ(2, 0, -1), Degrees: 90, Frames: 4})
	if err != nil {
		t.Fatal(err)
	}

	if !orbit.Degenerate() || orbit.StartAngle() != 0 {
		t.Fatalf("expected degenerate orbit with start angle 0; got radius %f angle %f", orbit.Radius(), orbit.StartAngle())
	}
	for i, pose := range orbit.Poses() {
		if !pose.Position.ApproxEqual(types.XYZ(2, 7, -1), poseEpsilon) {
			t.Fatalf("[frame %d] expected fixed position; got %s", i, pose.Position)
		}
	}
}

func TestOrbitRadiusAdjustment(t *testing.T) {
	start := CameraPose{Position: types.XYZ(3, 0, 4), Up: types.XYZ(0, 1, 0)}
	orbit, err := NewOrbit(start, OrbitOptions{Frames: 2, RadiusScale: 2, RadiusAdd: 1})
	if err != nil {
		t.Fatal(err)
	}
	if orbit.Radius() != 11 {
		t.Fatalf("expected radius 11; got %f", orbit.Radius())
	}
}

func TestOrbitRejectsNegativeRadius(t *testing.T) {
	start := CameraPose{Position: types.XYZ(3, 0, 4), Up: types.XYZ(0, 1, 0)}

	type spec struct {
		opts      OrbitOptions
		expErr    bool
		expRadius float64
	}

	specs := []spec{
		{OrbitOptions{Frames: 2, RadiusScale: 1, RadiusAdd: -50}, true, 0},
		{OrbitOptions{Frames: 2, RadiusScale: -1}, true, 0},
		{OrbitOptions{Frames: 2, RadiusScale: 1, RadiusAdd: -5}, false, 0},
		{OrbitOptions{Frames: 2, RadiusScale: 0.5, RadiusAdd: -1}, false, 1.5},
	}

	for specIndex, s := range specs {
		orbit, err := NewOrbit(start, s.opts)
		if s.expErr {
			if !errors.Is(err, ErrNegativeOrbitRadius) {
				t.Fatalf("[spec %d] expected ErrNegativeOrbitRadius; got %v", specIndex, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}
		if orbit.Radius() != s.expRadius {
			t.Fatalf("[spec %d] expected radius %f; got %f", specIndex, s.expRadius, orbit.Radius())
		}
		if exp := s.expRadius == 0; orbit.Degenerate() != exp {
			t.Fatalf("[spec %d] expected Degenerate() = %t", specIndex, exp)
		}
	}
}

func TestOrbitRejectsEmptySequence(t *testing.T) {
	if _, err := NewOrbit(CameraPose{}, OrbitOptions{Frames: 0}); err != ErrInvalidOrbitFrames {
		t.Fatalf("expected ErrInvalidOrbitFrames; got %v", err)
	}
}
