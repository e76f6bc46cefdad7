package bvh

import (
	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

// Intersect performs a closest-hit query: it visits every node whose bounds
// the ray's slab test does not reject, narrowing the ray's (TMin, TMax)
// interval as closer hits are found, and returns the nearest triangle hit
// (spec §4.5).
func (t *Tree) Intersect(r geom.Ray) geom.RayHit {
	result := geom.RayHit{}
	if !t.hasRoot {
		return result
	}

	invDir := r.InvDir()
	tMax := r.TMax
	t.intersectNode(t.Root, r, invDir, r.TMin, &tMax, &result)
	return result
}

func (t *Tree) intersectNode(id NodeID, r geom.Ray, invDir types.Vec3, tMin float32, tMax *float32, out *geom.RayHit) {
	node := &t.Nodes[id]
	if !node.Bounds.IntersectRay(r.Origin, invDir, tMin, *tMax) {
		return
	}

	if node.IsLeaf {
		for i := uint32(0); i < node.TriCount; i++ {
			triIdx := t.TriIndices[node.TriStart+i]
			tri := t.Triangles[triIdx]

			dist, hit := geom.IntersectTriangle(r, tri)
			if !hit || dist < tMin || dist > *tMax {
				continue
			}

			*tMax = dist
			out.Hit = true
			out.Distance = dist
			out.Point = r.Origin.Add(r.Dir.Mul(dist))
			out.Normal = tri.Normal
			out.TriangleID = tri.ID
		}
		return
	}

	t.intersectNode(node.Left, r, invDir, tMin, tMax, out)
	t.intersectNode(node.Right, r, invDir, tMin, tMax, out)
}

// IntersectAny performs an any-hit occlusion query: it returns true as soon
// as any triangle intersection satisfies the ray's parameter interval,
// without narrowing toward the closest hit (spec §4.5).
func (t *Tree) IntersectAny(r geom.Ray) bool {
	if !t.hasRoot {
		return false
	}
	return t.intersectAnyNode(t.Root, r, r.InvDir())
}

func (t *Tree) intersectAnyNode(id NodeID, r geom.Ray, invDir types.Vec3) bool {
	node := &t.Nodes[id]
	if !node.Bounds.IntersectRay(r.Origin, invDir, r.TMin, r.TMax) {
		return false
	}

	if node.IsLeaf {
		for i := uint32(0); i < node.TriCount; i++ {
			triIdx := t.TriIndices[node.TriStart+i]
			tri := t.Triangles[triIdx]
			if dist, hit := geom.IntersectTriangle(r, tri); hit && dist >= r.TMin && dist <= r.TMax {
				return true
			}
		}
		return false
	}

	return t.intersectAnyNode(node.Left, r, invDir) || t.intersectAnyNode(node.Right, r, invDir)
}
