package fdtd

// Field is the Field Store: nine scalar arrays of length N³, one per cell,
// indexed by (x,y,z) -> x + N(y + Nz). E and H are mutated only by the
// Stepper; epsilon is mutated only by the voxelizer; mu is never mutated
// after construction; J is cleared and rewritten every sub-step by the
// Source Manager.
type Field struct {
	grid Grid

	Ex, Ey, Ez []float32
	Hx, Hy, Hz []float32

	Epsilon []float32
	Mu      []float32
	J       []float32
}

// NewField allocates the nine N³ arrays for grid. E, H, and J start at
// zero; epsilon and mu start at 1.0 (vacuum).
func NewField(grid Grid) *Field {
	n3 := grid.N * grid.N * grid.N
	f := &Field{
		grid:    grid,
		Ex:      make([]float32, n3),
		Ey:      make([]float32, n3),
		Ez:      make([]float32, n3),
		Hx:      make([]float32, n3),
		Hy:      make([]float32, n3),
		Hz:      make([]float32, n3),
		Epsilon: make([]float32, n3),
		Mu:      make([]float32, n3),
		J:       make([]float32, n3),
	}
	for i := range f.Epsilon {
		f.Epsilon[i] = 1.0
		f.Mu[i] = 1.0
	}
	return f
}

// Grid returns the descriptor this field store was allocated for.
func (f *Field) Grid() Grid {
	return f.grid
}

// Reset zeroes every E, H, and J value in place; epsilon and mu are left
// untouched.
func (f *Field) Reset() {
	zero(f.Ex)
	zero(f.Ey)
	zero(f.Ez)
	zero(f.Hx)
	zero(f.Hy)
	zero(f.Hz)
	zero(f.J)
}

func zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// AddEmission writes value into J at (x,y,z), silently ignoring
// out-of-bounds coordinates.
func (f *Field) AddEmission(x, y, z int, value float32) {
	if x < 0 || x >= f.grid.N || y < 0 || y >= f.grid.N || z < 0 || z >= f.grid.N {
		return
	}
	f.J[f.grid.Index(x, y, z)] = value
}

// ClearEmission zeroes J.
func (f *Field) ClearEmission() {
	zero(f.J)
}

// Reinitialize releases the current arrays and allocates fresh ones for a
// new grid extent, resetting the entire simulation. It reuses the same
// *Field so callers holding a reference see the new state.
func (f *Field) Reinitialize(grid Grid) {
	*f = *NewField(grid)
}

// EnergyDensity returns the sum of squared E and H components over the
// whole grid, a coarse proxy for total field energy reported by the
// field-energy metric.
func (f *Field) EnergyDensity() float64 {
	var sum float64
	accumulate := func(a []float32) {
		for _, v := range a {
			sum += float64(v) * float64(v)
		}
	}
	accumulate(f.Ex)
	accumulate(f.Ey)
	accumulate(f.Ez)
	accumulate(f.Hx)
	accumulate(f.Hy)
	accumulate(f.Hz)
	return sum
}
