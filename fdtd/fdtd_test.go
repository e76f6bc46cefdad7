package fdtd

import (
	"math"
	"testing"

	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/types"
)

func testGrid(n int) Grid {
	return NewGrid(n, 5, types.XYZ(0, 0, 0), types.XYZ(80, 80, 80))
}

func TestCourantConditionHolds(t *testing.T) {
	for _, n := range []int{32, 64, 96, 128} {
		g := testGrid(n)
		lhs := g.DeltaT() * SpeedOfLight * float32(math.Sqrt(3)) / g.Delta
		if lhs > 1.0000001 {
			t.Fatalf("Courant condition violated for N=%d: %f > 1", n, lhs)
		}
	}
}

func TestRequiredGridSizeClampsToRange(t *testing.T) {
	if got := RequiredGridSize(types.XYZ(1, 1, 1), 5); got != MinGridSize {
		t.Fatalf("expected small half-extent to clamp to MinGridSize; got %d", got)
	}
	if got := RequiredGridSize(types.XYZ(10000, 10000, 10000), 5); got != MaxGridSize {
		t.Fatalf("expected huge half-extent to clamp to MaxGridSize; got %d", got)
	}
}

func TestResetZeroesEHAndJLeavesMaterialsUnchanged(t *testing.T) {
	g := testGrid(32)
	f := NewField(g)

	f.Ex[0] = 1
	f.Hz[5] = 2
	f.J[10] = 3
	f.Epsilon[0] = 50
	f.Mu[0] = 1

	f.Reset()

	for _, v := range f.Ex {
		if v != 0 {
			t.Fatalf("expected Ex to be zero after reset")
		}
	}
	for _, v := range f.J {
		if v != 0 {
			t.Fatalf("expected J to be zero after reset")
		}
	}
	if f.Epsilon[0] != 50 {
		t.Fatalf("expected epsilon to be unchanged by reset")
	}
}

func TestAddEmissionIgnoresOutOfBounds(t *testing.T) {
	g := testGrid(32)
	f := NewField(g)

	f.AddEmission(-1, 0, 0, 5)
	f.AddEmission(0, 0, g.N, 5)
	for _, v := range f.J {
		if v != 0 {
			t.Fatalf("expected out-of-bounds emission writes to be ignored")
		}
	}

	f.AddEmission(1, 1, 1, 5)
	if got := f.J[g.Index(1, 1, 1)]; got != 5 {
		t.Fatalf("expected in-bounds emission write to land; got %f", got)
	}
}

func TestQuiescentVacuumStaysZero(t *testing.T) {
	g := testGrid(32)
	f := NewField(g)
	stepper := NewCPUStepper(4, log.New("test"))

	for i := 0; i < 100; i++ {
		stepper.Update(f)
	}

	for _, arr := range [][]float32{f.Ex, f.Ey, f.Ez, f.Hx, f.Hy, f.Hz} {
		for _, v := range arr {
			if v != 0 {
				t.Fatalf("expected quiescent vacuum to remain exactly zero; got %f", v)
			}
		}
	}
}

// TestPointSourceCausality checks a conservative causality bound that
// follows directly from the stencil's locality: both the E-update and the
// H-update only read a cell's immediate first-order neighbors, so a single
// Update() call (one E phase plus one H phase) can widen the nonzero
// region around a point source by at most two cells in Chebyshev distance.
// A source ten voxels from a probe therefore cannot be observed there
// before the fifth tick.
func TestPointSourceCausality(t *testing.T) {
	g := testGrid(32)
	f := NewField(g)
	stepper := NewCPUStepper(4, log.New("test"))

	center := g.N / 2
	farX := center + 10
	if farX >= g.N {
		t.Fatalf("test setup: far cell out of range")
	}

	for tick := 0; tick < 4; tick++ {
		f.AddEmission(center, center, center, 1.0)
		stepper.Update(f)
		f.ClearEmission()

		if f.Ex[g.Index(farX, center, center)] != 0 ||
			f.Ey[g.Index(farX, center, center)] != 0 ||
			f.Ez[g.Index(farX, center, center)] != 0 {
			t.Fatalf("field reached cell 10 voxels away after only %d ticks; causality bound violated", tick+1)
		}
	}
}

func TestMaterialScatteringShadowsFarSide(t *testing.T) {
	g := NewGrid(64, 5, types.XYZ(0, 0, 0), types.XYZ(160, 160, 160))
	f := NewField(g)
	stepper := NewCPUStepper(4, log.New("test"))

	center := g.N / 2
	half := 5
	for x := center - half; x < center+half; x++ {
		for y := center - half; y < center+half; y++ {
			for z := center - half; z < center+half; z++ {
				f.Epsilon[g.Index(x, y, z)] = 50
			}
		}
	}

	sourceX := center - half - 2
	nearX := center - half - 5
	farX := center + half + 5
	if nearX < 0 || farX >= g.N {
		t.Fatalf("test setup: probe cells out of range")
	}

	for tick := 0; tick < 200; tick++ {
		f.AddEmission(sourceX, center, center, 1.0)
		stepper.Update(f)
		f.ClearEmission()
	}

	nearAmp := math.Abs(float64(f.Ex[g.Index(nearX, center, center)])) +
		math.Abs(float64(f.Ey[g.Index(nearX, center, center)])) +
		math.Abs(float64(f.Ez[g.Index(nearX, center, center)]))
	farAmp := math.Abs(float64(f.Ex[g.Index(farX, center, center)])) +
		math.Abs(float64(f.Ey[g.Index(farX, center, center)])) +
		math.Abs(float64(f.Ez[g.Index(farX, center, center)]))

	if farAmp >= nearAmp {
		t.Fatalf("expected far side of scatterer to be attenuated relative to near side; near=%f far=%f", nearAmp, farAmp)
	}
}

func TestReinitializeResetsGridAndFields(t *testing.T) {
	g := testGrid(32)
	f := NewField(g)
	f.Ex[0] = 1

	newGrid := testGrid(96)
	f.Reinitialize(newGrid)

	if f.Grid().N != 96 {
		t.Fatalf("expected reinitialized field to report new N; got %d", f.Grid().N)
	}
	if len(f.Ex) != 96*96*96 {
		t.Fatalf("expected reinitialized arrays sized for new N")
	}
	for _, v := range f.Ex {
		if v != 0 {
			t.Fatalf("expected reinitialized fields to start at zero")
		}
	}
}
