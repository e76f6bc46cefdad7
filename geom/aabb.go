package geom

import (
	"math"

	"github.com/signalwave/rfbench/types"
)

// AABB is an axis-aligned bounding box. An empty box has Min = +Inf and
// Max = -Inf componentwise, so that expanding it by any point or box
// establishes real bounds on first use.
type AABB struct {
	Min, Max types.Vec3
}

// EmptyAABB returns the identity box for expansion.
func EmptyAABB() AABB {
	inf := float32(math.MaxFloat32)
	return AABB{
		Min: types.XYZ(inf, inf, inf),
		Max: types.XYZ(-inf, -inf, -inf),
	}
}

// ExpandPoint grows the box to include p.
func (b *AABB) ExpandPoint(p types.Vec3) {
	b.Min = types.MinVec3(b.Min, p)
	b.Max = types.MaxVec3(b.Max, p)
}

// ExpandBox grows the box to include other.
func (b *AABB) ExpandBox(other AABB) {
	b.Min = types.MinVec3(b.Min, other.Min)
	b.Max = types.MaxVec3(b.Max, other.Max)
}

// Centroid returns the midpoint of the box.
func (b AABB) Centroid() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns Max - Min componentwise.
func (b AABB) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// SurfaceArea returns the total surface area of the box, or 0 for an
// empty box.
func (b AABB) SurfaceArea() float32 {
	e := b.Extent()
	if e[0] < 0 || e[1] < 0 || e[2] < 0 {
		return 0
	}
	return 2 * (e[0]*e[1] + e[1]*e[2] + e[0]*e[2])
}

// LongestAxis returns the index (0=x, 1=y, 2=z) of the box's longest
// extent, used to choose the BVH builder's split axis.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}

// Overlaps reports whether two boxes intersect (touching counts as
// overlapping), used by the voxelizer's triangle pre-filter.
func (b AABB) Overlaps(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// IntersectRay performs the standard three-slab AABB/ray test, narrowing
// the supplied (tMin, tMax) parameter interval. It returns false when the
// narrowed interval is empty.
func (b AABB) IntersectRay(origin, invDir types.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		t0 := (b.Min[axis] - origin[axis]) * invDir[axis]
		t1 := (b.Max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}
