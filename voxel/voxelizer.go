// Package voxel implements the Geometry Voxelizer: it stamps an elevated
// permittivity into an FDTD Field Store's epsilon array wherever a voxel
// lies on or below the ground plane, or close to scene geometry.
package voxel

import (
	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/types"
)

// DefaultMaterialEpsilon is the permittivity written into occupied voxels.
const DefaultMaterialEpsilon = 50.0

// DefaultGroundLevel is the world-space y coordinate of the ground plane.
const DefaultGroundLevel = 0.0

// paddingFactor widens the scene AABB used to pre-filter candidate
// triangles, trading a non-conservative but cheap filter for exactness.
const paddingFactor = 1.5

// Options configures a Voxelize call. Zero-value Options uses the package
// defaults for MaterialEpsilon and GroundLevel.
type Options struct {
	MaterialEpsilon float32
	GroundLevel     float32
}

func (o Options) withDefaults() Options {
	if o.MaterialEpsilon == 0 {
		o.MaterialEpsilon = DefaultMaterialEpsilon
	}
	return o
}

// Voxelizer converts triangle soup into an occupancy stamp on a Field
// Store's epsilon array (spec §4.3). It holds no state between calls;
// Voxelize is idempotent for identical inputs.
type Voxelizer struct {
	logger log.Logger
}

// New returns a Voxelizer that logs through logger.
func New(logger log.Logger) *Voxelizer {
	if logger == nil {
		logger = log.New("voxel.voxelizer")
	}
	return &Voxelizer{logger: logger}
}

// Voxelize sets f's epsilon array to DefaultMaterialEpsilon (or
// opts.MaterialEpsilon) wherever a voxel's world position is below the
// ground plane or within one-half voxel of any triangle in tris, and 1.0
// (vacuum) elsewhere. Triangles are pre-filtered to those overlapping the
// grid's world bounds padded by paddingFactor; the filter is not
// conservative, matching the pragmatic implementation the spec calls out.
func (v *Voxelizer) Voxelize(f *fdtd.Field, tris []geom.Triangle, opts Options) {
	opts = opts.withDefaults()
	grid := f.Grid()

	if len(tris) == 0 {
		fillVacuum(f)
		v.logger.Debugf("voxelize: no triangles, grid left at vacuum")
		return
	}

	region := geom.AABB{
		Min: grid.Center.Sub(grid.Half.Mul(paddingFactor)),
		Max: grid.Center.Add(grid.Half.Mul(paddingFactor)),
	}

	filtered := make([]geom.Triangle, 0, len(tris))
	for _, tri := range tris {
		if region.Overlaps(tri.Bounds()) {
			filtered = append(filtered, tri)
		}
	}

	halfVoxel := grid.Delta * 0.5
	n := grid.N

	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				w := grid.WorldPosition(x, y, z)
				occupied := w[1] < opts.GroundLevel || nearAnyTriangle(w, filtered, halfVoxel)

				idx := grid.Index(x, y, z)
				if occupied {
					f.Epsilon[idx] = opts.MaterialEpsilon
				} else {
					f.Epsilon[idx] = 1.0
				}
			}
		}
	}

	v.logger.Debugf("voxelize: %d/%d triangles in region, grid N=%d", len(filtered), len(tris), n)
}

func fillVacuum(f *fdtd.Field) {
	for i := range f.Epsilon {
		f.Epsilon[i] = 1.0
	}
}

// nearAnyTriangle reports whether w lies within tolerance of the plane of
// any triangle in tris and within the triangle's footprint. The spec's
// "inside or within one-half voxel" test is implemented as a
// point-to-triangle distance test against the triangle's plane clipped to
// its extent, which is exact enough for a voxel-scale occupancy stamp.
func nearAnyTriangle(w types.Vec3, tris []geom.Triangle, tolerance float32) bool {
	for _, tri := range tris {
		if pointNearTriangle(w, tri, tolerance) {
			return true
		}
	}
	return false
}

func pointNearTriangle(p types.Vec3, tri geom.Triangle, tolerance float32) bool {
	// Distance from p to the triangle's plane.
	toPoint := p.Sub(tri.V0)
	planeDist := toPoint.Dot(tri.Normal)
	if planeDist < -tolerance || planeDist > tolerance {
		return false
	}

	// Project p onto the plane and test barycentric containment,
	// expanded by tolerance so points just outside an edge still count.
	projected := p.Sub(tri.Normal.Mul(planeDist))
	return barycentricInside(projected, tri, tolerance)
}

func barycentricInside(p types.Vec3, tri geom.Triangle, tolerance float32) bool {
	edge0 := tri.V1.Sub(tri.V0)
	edge1 := tri.V2.Sub(tri.V0)
	toP := p.Sub(tri.V0)

	d00 := edge0.Dot(edge0)
	d01 := edge0.Dot(edge1)
	d11 := edge1.Dot(edge1)
	d20 := toP.Dot(edge0)
	d21 := toP.Dot(edge1)

	denom := d00*d11 - d01*d01
	if denom > -1e-12 && denom < 1e-12 {
		return false
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w

	// Expand the [0,1] containment band by an amount proportional to
	// tolerance relative to the triangle's own scale, so a point near an
	// edge but slightly outside still registers as occupied.
	margin := tolerance / (edge0.Len() + edge1.Len() + 1e-6)
	return u >= -margin && v >= -margin && w >= -margin
}
