package geom

import "github.com/signalwave/rfbench/types"

// Triangle is an immutable world-space triangle. Its normal and id are
// derived once at construction time from vertex order and stream
// position, per the mesh input contract: no normals are required from
// the caller, and the id equals the triangle's position in the index
// stream divided by three.
type Triangle struct {
	V0, V1, V2 types.Vec3
	Normal     types.Vec3
	ID         uint32
}

// NewTriangle builds a Triangle from three vertices and a stable id,
// computing the outward normal as normalize((v1-v0) x (v2-v0)). Winding
// is assumed CCW, matching the OBJ convention the mesh producer uses.
func NewTriangle(v0, v1, v2 types.Vec3, id uint32) Triangle {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	return Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		Normal: edge1.Cross(edge2).Normalize(),
		ID:     id,
	}
}

// Centroid returns the arithmetic mean of the triangle's vertices, used
// by the BVH builder to choose which side of a median split each
// triangle falls on.
func (t Triangle) Centroid() types.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t Triangle) Bounds() AABB {
	box := EmptyAABB()
	box.ExpandPoint(t.V0)
	box.ExpandPoint(t.V1)
	box.ExpandPoint(t.V2)
	return box
}

// TrianglesFromMesh converts a flat (positions, indices) buffer into a
// Triangle slice, per the mesh input contract (§6.1): positions are laid
// out xyz-repeating and indices are triples defining triangles.
func TrianglesFromMesh(positions []float32, indices []uint32) []Triangle {
	triCount := len(indices) / 3
	triangles := make([]Triangle, triCount)
	for i := 0; i < triCount; i++ {
		i0, i1, i2 := indices[i*3], indices[i*3+1], indices[i*3+2]
		v0 := types.XYZ(positions[i0*3+0], positions[i0*3+1], positions[i0*3+2])
		v1 := types.XYZ(positions[i1*3+0], positions[i1*3+1], positions[i1*3+2])
		v2 := types.XYZ(positions[i2*3+0], positions[i2*3+1], positions[i2*3+2])
		triangles[i] = NewTriangle(v0, v1, v2, uint32(i))
	}
	return triangles
}
