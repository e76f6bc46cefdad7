// Package fdtd implements the electromagnetic solver: a Grid Descriptor
// and Field Store holding nine N³ scalar arrays, and a leapfrog Stepper
// that advances them one tick at a time.
package fdtd

import (
	"math"

	"github.com/signalwave/rfbench/types"
)

const (
	// SpeedOfLight is c₀ in meters/second, used to derive the Courant
	// time step.
	SpeedOfLight = 299792458.0

	// Epsilon0 and Mu0 are the free-space permittivity and permeability.
	Epsilon0 = 8.854187817e-12
	Mu0      = 1.2566370614e-6

	// Damping is applied to every field component every tick as a crude
	// absorbing boundary; there is no PML.
	Damping = 0.999

	// MinGridSize and MaxGridSize bound the grid extent N along each
	// axis. Domain errors (an out-of-range requested N) are silently
	// clamped, never reported.
	MinGridSize = 32
	MaxGridSize = 128
)

// Grid is the immutable set of parameters describing an FDTD domain: an
// integer extent N, voxel spacing, and the world-space box the grid
// occupies. ΔT is derived to satisfy the Courant condition.
type Grid struct {
	N      int
	Delta  float32
	Center types.Vec3
	Half   types.Vec3

	deltaT float32
}

// NewGrid derives ΔT = Δ/(c₀√3) and returns a Grid with N clamped to
// [MinGridSize, MaxGridSize].
func NewGrid(n int, delta float32, center, half types.Vec3) Grid {
	return Grid{
		N:      ClampGridSize(n),
		Delta:  delta,
		Center: center,
		Half:   half,
		deltaT: courantDeltaT(delta),
	}
}

func courantDeltaT(delta float32) float32 {
	return delta / (SpeedOfLight * float32(math.Sqrt(3)))
}

// DeltaT returns the Courant-limited simulation time step for this grid.
func (g Grid) DeltaT() float32 {
	return g.deltaT
}

// ClampGridSize clamps a requested grid extent to the supported range.
func ClampGridSize(n int) int {
	if n < MinGridSize {
		return MinGridSize
	}
	if n > MaxGridSize {
		return MaxGridSize
	}
	return n
}

// RequiredGridSize derives the grid extent needed to cover half-extent h
// at spacing delta: ⌈max(2h)/Δ⌉, clamped to the supported range.
func RequiredGridSize(half types.Vec3, delta float32) int {
	maxHalf := half[0]
	if half[1] > maxHalf {
		maxHalf = half[1]
	}
	if half[2] > maxHalf {
		maxHalf = half[2]
	}
	n := int(math.Ceil(float64(2 * maxHalf / delta)))
	return ClampGridSize(n)
}

// Index converts a cell coordinate into a flat array offset, x + N(y + Nz).
func (g Grid) Index(x, y, z int) int {
	return x + g.N*(y+g.N*z)
}

// WorldToLocal maps a world-space position into the grid's local
// coordinate frame, in the range roughly [-1,1] per axis when p lies
// within Center ± Half.
func (g Grid) WorldToLocal(p types.Vec3) types.Vec3 {
	return p.Sub(g.Center).DivVec(g.Half)
}

// VoxelIndex maps a world-space position to the nearest cell coordinate,
// clamped into [0, N). The mapping is monotone per axis and surjective
// onto [0, N).
func (g Grid) VoxelIndex(p types.Vec3) (x, y, z int) {
	local := g.WorldToLocal(p)
	toAxis := func(v float32) int {
		f := (v/2 + 0.5) * float32(g.N)
		idx := int(math.Floor(float64(f)))
		if idx < 0 {
			return 0
		}
		if idx > g.N-1 {
			return g.N - 1
		}
		return idx
	}
	return toAxis(local[0]), toAxis(local[1]), toAxis(local[2])
}

// WorldPosition returns the world-space center of cell (x,y,z): the
// grid-to-world mapping the voxelizer uses (§4.3). VoxelIndex maps the
// result back to (x,y,z).
func (g Grid) WorldPosition(x, y, z int) types.Vec3 {
	n := float32(g.N)
	local := types.XYZ(
		(float32(x)+0.5)/n-0.5,
		(float32(y)+0.5)/n-0.5,
		(float32(z)+0.5)/n-0.5,
	)
	return g.Center.Add(local.MulVec(g.Half).Mul(2))
}

// Relocated reports whether the center or half-extent moved by more than
// the driver's re-voxelization threshold since the last voxelization.
func (g Grid) Relocated(prevCenter, prevHalf types.Vec3, threshold float32) bool {
	return g.Center.Sub(prevCenter).Len() > threshold || g.Half.Sub(prevHalf).Len() > threshold
}
