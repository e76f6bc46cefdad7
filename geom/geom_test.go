package geom

import (
	"testing"

	"github.com/signalwave/rfbench/types"
)

func TestNewTriangleNormalIsOutwardForCCWWinding(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(0, 0, 0),
		types.XYZ(1, 0, 0),
		types.XYZ(0, 1, 0),
		7,
	)

	if tri.ID != 7 {
		t.Fatalf("expected id 7; got %d", tri.ID)
	}

	want := types.XYZ(0, 0, 1)
	for i := 0; i < 3; i++ {
		if diff := tri.Normal[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("expected normal %v; got %v", want, tri.Normal)
		}
	}
}

func TestTrianglesFromMeshAssignsSequentialIDs(t *testing.T) {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	indices := []uint32{0, 1, 2, 1, 2, 3}

	tris := TrianglesFromMesh(positions, indices)
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles; got %d", len(tris))
	}
	if tris[0].ID != 0 || tris[1].ID != 1 {
		t.Fatalf("expected sequential ids 0,1; got %d,%d", tris[0].ID, tris[1].ID)
	}
}

func TestAABBExpandAndOverlap(t *testing.T) {
	box := EmptyAABB()
	box.ExpandPoint(types.XYZ(-1, -1, -1))
	box.ExpandPoint(types.XYZ(1, 1, 1))

	if box.Min != (types.Vec3{-1, -1, -1}) || box.Max != (types.Vec3{1, 1, 1}) {
		t.Fatalf("unexpected bounds after expand: %+v", box)
	}

	other := AABB{Min: types.XYZ(0.5, 0.5, 0.5), Max: types.XYZ(2, 2, 2)}
	if !box.Overlaps(other) {
		t.Fatalf("expected boxes to overlap")
	}

	far := AABB{Min: types.XYZ(10, 10, 10), Max: types.XYZ(11, 11, 11)}
	if box.Overlaps(far) {
		t.Fatalf("expected distant box not to overlap")
	}
}

func TestAABBIntersectRaySlabTest(t *testing.T) {
	box := AABB{Min: types.XYZ(-1, -1, -1), Max: types.XYZ(1, 1, 1)}
	origin := types.XYZ(0, 0, -5)
	dir := types.XYZ(0, 0, 1)

	if !box.IntersectRay(origin, types.XYZ(1/dir[0], 1/dir[1], 1/dir[2]), 0, 1000) {
		t.Fatalf("expected ray through box center to hit")
	}

	missOrigin := types.XYZ(5, 5, -5)
	if box.IntersectRay(missOrigin, types.XYZ(1/dir[0], 1/dir[1], 1/dir[2]), 0, 1000) {
		t.Fatalf("expected ray far from box to miss")
	}
}

func TestIntersectTriangleHitsCentroidFromOutside(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(-50, -50, 10),
		types.XYZ(50, -50, 10),
		types.XYZ(0, 50, 10),
		0,
	)
	centroid := tri.Centroid()

	ray := Ray{
		Origin: types.XYZ(centroid[0], centroid[1], -100),
		Dir:    types.XYZ(0, 0, 1),
		TMin:   1e-4,
		TMax:   1000,
	}

	dist, hit := IntersectTriangle(ray, tri)
	if !hit {
		t.Fatalf("expected ray aimed at centroid to hit")
	}
	if diff := dist - 110; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("expected hit distance ~110; got %f", dist)
	}
}

func TestIntersectTriangleMissesParallelRay(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(-1, -1, 0),
		types.XYZ(1, -1, 0),
		types.XYZ(0, 1, 0),
		0,
	)
	ray := Ray{Origin: types.XYZ(0, 0, 5), Dir: types.XYZ(1, 0, 0), TMin: 1e-4, TMax: 1000}
	if _, hit := IntersectTriangle(ray, tri); hit {
		t.Fatalf("expected parallel ray to miss")
	}
}
