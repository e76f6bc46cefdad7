package bvh

import (
	"testing"

	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

func floorTriangles() []geom.Triangle {
	return []geom.Triangle{
		geom.NewTriangle(types.XYZ(-50, 0, -50), types.XYZ(50, 0, -50), types.XYZ(-50, 0, 50), 0),
		geom.NewTriangle(types.XYZ(50, 0, -50), types.XYZ(50, 0, 50), types.XYZ(-50, 0, 50), 1),
	}
}

func TestIntersectFindsClosestOfMultipleCandidates(t *testing.T) {
	tris := []geom.Triangle{
		geom.NewTriangle(types.XYZ(-1, -1, 10), types.XYZ(1, -1, 10), types.XYZ(0, 1, 10), 0),
		geom.NewTriangle(types.XYZ(-1, -1, 5), types.XYZ(1, -1, 5), types.XYZ(0, 1, 5), 1),
	}
	tree := Build(tris, nil)

	ray := geom.Ray{Origin: types.XYZ(0, 0, -100), Dir: types.XYZ(0, 0, 1), TMin: 1e-4, TMax: 1000}
	hit := tree.Intersect(ray)

	if !hit.Hit {
		t.Fatalf("expected a hit")
	}
	if hit.TriangleID != 1 {
		t.Fatalf("expected closest triangle (id 1, z=5) to win; got id %d at distance %f", hit.TriangleID, hit.Distance)
	}
}

func TestIntersectMissesEmptyTree(t *testing.T) {
	tree := Build(nil, nil)
	ray := geom.Ray{Origin: types.XYZ(0, 0, 0), Dir: types.XYZ(0, 0, 1), TMin: 1e-4, TMax: 1000}
	if hit := tree.Intersect(ray); hit.Hit {
		t.Fatalf("expected no hit against empty tree")
	}
}

func TestIntersectAnyReportsOcclusionBehindFloor(t *testing.T) {
	tree := Build(floorTriangles(), nil)

	// A ray from above the floor straight down to a point below it is
	// occluded; a horizontal ray that never crosses the floor plane is not.
	occluded := geom.Ray{Origin: types.XYZ(0, 10, 0), Dir: types.XYZ(0, -1, 0), TMin: 1e-4, TMax: 20}
	if !tree.IntersectAny(occluded) {
		t.Fatalf("expected downward ray through floor plane to be occluded")
	}

	clear := geom.Ray{Origin: types.XYZ(0, 5, 0), Dir: types.XYZ(1, 0, 0), TMin: 1e-4, TMax: 20}
	if tree.IntersectAny(clear) {
		t.Fatalf("expected ray parallel to and above the floor plane to be unoccluded")
	}
}

func TestIntersectAnyReportsHitThroughStackedTriangles(t *testing.T) {
	tris := []geom.Triangle{
		geom.NewTriangle(types.XYZ(-1, -1, 10), types.XYZ(1, -1, 10), types.XYZ(0, 1, 10), 0),
		geom.NewTriangle(types.XYZ(-1, -1, 5), types.XYZ(1, -1, 5), types.XYZ(0, 1, 5), 1),
	}
	tree := Build(tris, nil)
	ray := geom.Ray{Origin: types.XYZ(0, 0, -100), Dir: types.XYZ(0, 0, 1), TMin: 1e-4, TMax: 1000}

	if !tree.IntersectAny(ray) {
		t.Fatalf("expected ray through both triangles to report a hit")
	}
}
