package types

import "testing"

func TestVec3Ops(t *testing.T) {
	type spec struct {
		got Vec3
		exp Vec3
	}

	a := XYZ(1, 2, 3)
	b := XYZ(4, 5, 6)
	specs := []spec{
		{a.Add(b), XYZ(5, 7, 9)},
		{b.Sub(a), XYZ(3, 3, 3)},
		{a.Mul(2), XYZ(2, 4, 6)},
		{XYZ(1, 0, 0).Cross(XYZ(0, 1, 0)), XYZ(0, 0, 1)},
		{XYZ(0, 3, 4).Normalize(), XYZ(0, 0.6, 0.8)},
		{Vec3{}.Normalize(), Vec3{}},
	}

	for index, s := range specs {
		if !s.got.ApproxEqual(s.exp, 1e-6) {
			t.Fatalf("[spec %d] expected %s; got %s", index, s.exp, s.got)
		}
	}

	if d := a.Dot(b); d != 32 {
		t.Fatalf("expected dot product 32; got %f", d)
	}
}
