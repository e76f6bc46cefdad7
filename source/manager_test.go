package source

import (
	"testing"

	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

func testGrid() fdtd.Grid {
	return fdtd.NewGrid(32, 5, types.XYZ(0, 0, 0), types.XYZ(80, 80, 80))
}

func TestAddAllocatesMonotonicIDs(t *testing.T) {
	m := NewManager()

	a := m.Add(types.XYZ(0, 0, 0), 900e6, Transmitter)
	b := m.Add(types.XYZ(1, 1, 1), 2.4e9, Receiver)
	c := m.Add(types.XYZ(2, 2, 2), 5.8e9, Relay)

	if !(a < b && b < c) {
		t.Fatalf("expected strictly increasing ids; got %d, %d, %d", a, b, c)
	}
}

func TestRemoveDoesNotReuseID(t *testing.T) {
	m := NewManager()

	a := m.Add(types.XYZ(0, 0, 0), 900e6, Transmitter)
	m.Remove(a)
	b := m.Add(types.XYZ(0, 0, 0), 900e6, Transmitter)

	if b == a {
		t.Fatalf("expected removed id %d to not be reused; got %d again", a, b)
	}
	if m.Get(a) != nil {
		t.Fatalf("expected removed source to be gone")
	}
}

func TestRemovePreservesOrderOfSurvivors(t *testing.T) {
	m := NewManager()

	a := m.Add(types.XYZ(0, 0, 0), 1e9, Transmitter)
	b := m.Add(types.XYZ(1, 0, 0), 1e9, Transmitter)
	c := m.Add(types.XYZ(2, 0, 0), 1e9, Transmitter)

	m.Remove(b)

	got := m.All()
	if len(got) != 2 || got[0].ID != a || got[1].ID != c {
		t.Fatalf("expected order [%d, %d] after removing %d; got %v", a, c, b, got)
	}
}

func TestDefaultNameFollowsNodeConvention(t *testing.T) {
	m := NewManager()
	id := m.Add(types.XYZ(0, 0, 0), 1e9, Transmitter)

	s := m.Get(id)
	want := "Node_" + itoa(id)
	if s.Name != want {
		t.Fatalf("expected default name %q; got %q", want, s.Name)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestFrequencyToColorBuckets(t *testing.T) {
	cases := []struct {
		freq float32
		want types.Vec3
	}{
		{900e6, types.XYZ(1.0, 0.3, 0.3)},
		{2.0e9, types.XYZ(0.3, 1.0, 0.3)},
		{5.8e9, types.XYZ(0.3, 0.3, 1.0)},
	}
	for _, c := range cases {
		if got := frequencyToColor(c.freq); got != c.want {
			t.Fatalf("frequencyToColor(%f) = %v, want %v", c.freq, got, c.want)
		}
	}
}

func TestActiveTransmitterBoundsIgnoresInactiveAndOtherVariants(t *testing.T) {
	m := NewManager()
	a := m.Add(types.XYZ(-10, 0, 0), 1e9, Transmitter)
	m.Add(types.XYZ(10, 0, 0), 1e9, Transmitter)
	m.Add(types.XYZ(100, 100, 100), 1e9, Receiver)

	inactiveID := m.Add(types.XYZ(-1000, -1000, -1000), 1e9, Transmitter)
	m.Get(inactiveID).Active = false

	bounds, ok := m.ActiveTransmitterBounds()
	if !ok {
		t.Fatalf("expected active transmitter bounds to be present")
	}
	if bounds.Min[0] != -10 || bounds.Max[0] != 10 {
		t.Fatalf("expected bounds x in [-10, 10]; got [%f, %f]", bounds.Min[0], bounds.Max[0])
	}
	_ = a
}

func TestActiveTransmitterBoundsEmptyWhenNoneActive(t *testing.T) {
	m := NewManager()
	_, ok := m.ActiveTransmitterBounds()
	if ok {
		t.Fatalf("expected no active transmitter bounds on empty manager")
	}
}

func TestInjectCurrentsWritesOnlyActiveTransmitterVoxels(t *testing.T) {
	m := NewManager()
	grid := testGrid()
	f := fdtd.NewField(grid)

	txID := m.Add(types.XYZ(0, 0, 0), 1e9, Transmitter)
	m.Add(types.XYZ(5, 5, 5), 1e9, Receiver)

	m.InjectCurrents(f, grid, 1.0)

	x, y, z := grid.VoxelIndex(types.XYZ(0, 0, 0))
	idx := grid.Index(x, y, z)
	if f.J[idx] == 0 {
		t.Fatalf("expected transmitter voxel to receive nonzero current")
	}

	nonzero := 0
	for _, v := range f.J {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero != 1 {
		t.Fatalf("expected exactly one nonzero J cell from the single active transmitter; got %d", nonzero)
	}

	m.Get(txID).Active = false
	f.ClearEmission()
	m.InjectCurrents(f, grid, 1.0)
	for _, v := range f.J {
		if v != 0 {
			t.Fatalf("expected no current injection once transmitter is inactive")
		}
	}
}

func TestInjectCurrentsAdvancesPhaseEachCall(t *testing.T) {
	m := NewManager()
	grid := testGrid()
	f := fdtd.NewField(grid)

	m.Add(types.XYZ(0, 0, 0), 1e9, Transmitter)

	m.InjectCurrents(f, grid, 1.0)
	first := f.J[grid.Index(grid.VoxelIndex(types.XYZ(0, 0, 0)))]

	f.ClearEmission()
	m.InjectCurrents(f, grid, 1.0)
	second := f.J[grid.Index(grid.VoxelIndex(types.XYZ(0, 0, 0)))]

	if first == second {
		t.Fatalf("expected injected current to change as oscillation phase advances")
	}
}

func TestPickNearestFindsClosestVisibleSource(t *testing.T) {
	m := NewManager()
	near := m.Add(types.XYZ(0, 0, 20), 1e9, Transmitter)
	far := m.Add(types.XYZ(0, 0, 60), 1e9, Transmitter)

	ray := geom.Ray{
		Origin: types.XYZ(0, 0, 0),
		Dir:    types.XYZ(0, 0, 1),
		TMin:   0,
		TMax:   1000,
	}

	got := m.PickNearest(ray, 5.0)
	if got != near {
		t.Fatalf("expected to pick nearest source %d; got %d", near, got)
	}
	_ = far
}

func TestPickNearestIgnoresInvisibleSources(t *testing.T) {
	m := NewManager()
	id := m.Add(types.XYZ(0, 0, 20), 1e9, Transmitter)
	m.Get(id).Visible = false

	ray := geom.Ray{
		Origin: types.XYZ(0, 0, 0),
		Dir:    types.XYZ(0, 0, 1),
		TMin:   0,
		TMax:   1000,
	}

	if got := m.PickNearest(ray, 5.0); got != -1 {
		t.Fatalf("expected no pick for invisible source; got %d", got)
	}
}

func TestPickNearestMissesWhenRayDoesNotPassNearAnySource(t *testing.T) {
	m := NewManager()
	m.Add(types.XYZ(100, 100, 100), 1e9, Transmitter)

	ray := geom.Ray{
		Origin: types.XYZ(0, 0, 0),
		Dir:    types.XYZ(0, 0, 1),
		TMin:   0,
		TMax:   1000,
	}

	if got := m.PickNearest(ray, 5.0); got != -1 {
		t.Fatalf("expected no pick when ray passes nowhere near any source; got %d", got)
	}
}

func TestWorldToGridMappingIsMonotonicPerAxis(t *testing.T) {
	grid := testGrid()

	x1, _, _ := grid.VoxelIndex(types.XYZ(-30, 0, 0))
	x2, _, _ := grid.VoxelIndex(types.XYZ(0, 0, 0))
	x3, _, _ := grid.VoxelIndex(types.XYZ(30, 0, 0))

	if !(x1 <= x2 && x2 <= x3) {
		t.Fatalf("expected voxel index to be monotonic in world x; got %d, %d, %d", x1, x2, x3)
	}
}
