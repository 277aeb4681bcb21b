package scene

import (
	"testing"

	"github.com/achilleasa/turntable/types"
)

func TestCameraFrustrumCenterRay(t *testing.T) {
	cam := NewCamera(CameraPose{
		Position: types.XYZ(0, 0, 0),
		Target:   types.XYZ(0, 0, -5),
		Up:       types.XYZ(0, 1, 0),
	}, 60)

	fr := cam.Frustrum(16.0 / 9.0)
	center := fr.Ray(0.5, 0.5)
	if !center.ApproxEqual(types.XYZ(0, 0, -1), 1e-5) {
		t.Fatalf("expected center ray to point along the view direction; got %s", center)
	}

	// Top-left ray points up and to the left
	tl := fr.Ray(0, 0)
	if tl[0] >= 0 || tl[1] <= 0 {
		t.Fatalf("expected top-left ray to point up-left; got %s", tl)
	}
}
