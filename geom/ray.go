package geom

import "github.com/signalwave/rfbench/types"

// Ray is a parametric ray with a bounded parameter interval, used for
// both BVH traversal and the mouse-pick / propagation-overlay external
// interfaces.
type Ray struct {
	Origin, Dir types.Vec3
	TMin, TMax  float32
}

// InvDir returns the componentwise reciprocal of the ray direction,
// precomputed once per query so the slab test only multiplies.
func (r Ray) InvDir() types.Vec3 {
	return types.XYZ(1.0/r.Dir[0], 1.0/r.Dir[1], 1.0/r.Dir[2])
}

// RayHit describes the result of a ray query against the BVH.
type RayHit struct {
	Hit        bool
	Distance   float32
	Point      types.Vec3
	Normal     types.Vec3
	TriangleID uint32
}

const moellerTrumboreEpsilon = 1e-7

// IntersectTriangle implements the Möller-Trumbore ray-triangle test.
// It reports a miss when the determinant magnitude is below the epsilon
// (ray parallel to the triangle plane), when the barycentric coordinates
// fall outside the triangle, or when the hit distance is not strictly
// positive.
func IntersectTriangle(r Ray, tri Triangle) (t float32, hit bool) {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)
	h := r.Dir.Cross(edge2)
	a := edge1.Dot(h)

	if a > -moellerTrumboreEpsilon && a < moellerTrumboreEpsilon {
		return 0, false
	}

	f := 1.0 / a
	s := r.Origin.Sub(tri.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Dir.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t = f * edge2.Dot(q)
	if t <= moellerTrumboreEpsilon {
		return 0, false
	}
	return t, true
}
