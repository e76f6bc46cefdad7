package fdtd

import (
	"sync"

	"github.com/signalwave/rfbench/log"
)

// Stepper advances a Field Store by one leapfrog tick. The public contract
// is synchronous: Update returns only once the step is fully observable,
// regardless of whether the implementation dispatches the stencil to a
// worker pool or a GPU compute queue (spec §5).
type Stepper interface {
	Update(f *Field)
	Close()
}

type phase int

const (
	phaseE phase = iota
	phaseH
)

type zRange struct{ lo, hi int }

// CPUStepper is a CPU implementation of the FDTD stencil that splits the
// grid into one Z-slab per worker: a fixed pool of worker goroutines synchronized with a
// sync.Cond fork/join per phase, one phase for the E-update and one for
// the H-update, matching the ordering rule that H-update reads must
// observe the completed E-update.
type CPUStepper struct {
	logger log.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	started bool

	workerCount  int
	slices       []zRange
	gridN        int
	currentPhase phase

	field *Field
}

// NewCPUStepper returns a Stepper backed by workerCount goroutines. A
// non-positive workerCount is treated as 1. Workers are spawned
// immediately and block on the condition variable until the first Update
// call assigns them a grid to work on.
func NewCPUStepper(workerCount int, logger log.Logger) *CPUStepper {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = log.New("fdtd.stepper")
	}
	s := &CPUStepper{
		logger:      logger,
		workerCount: workerCount,
	}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < workerCount; i++ {
		go s.workerLoop(i)
	}
	return s
}

// Update advances field by one tick: source J writes are assumed already
// applied by the caller; this call performs E-update then H-update, each
// dispatched across the worker pool and joined before the next phase
// begins.
func (s *CPUStepper) Update(f *Field) {
	s.mu.Lock()
	if !s.started || s.gridN != f.Grid().N {
		s.slices = partitionZ(f.Grid().N, s.workerCount)
		s.gridN = f.Grid().N
		s.started = true
		s.logger.Debugf("fdtd: repartitioned %d cpu stepper workers for grid N=%d", s.workerCount, s.gridN)
	}
	s.field = f
	s.mu.Unlock()

	s.runPhase(phaseE)
	s.runPhase(phaseH)
}

// Close is a no-op for the CPU stepper: its goroutines block forever on
// the condition variable and are reclaimed with the process. It exists to
// satisfy the Stepper interface alongside the GPU implementation, which
// does hold OS resources that must be released.
func (s *CPUStepper) Close() {}

// partitionZ always returns exactly `workers` ranges covering [0, n); when
// n < workers the trailing ranges are empty rather than out of bounds, so
// worker goroutine indices never need to change with the grid size.
func partitionZ(n, workers int) []zRange {
	slices := make([]zRange, workers)
	base := n / workers
	rem := n % workers
	lo := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		hi := lo + size
		if hi > n {
			hi = n
		}
		slices[i] = zRange{lo: lo, hi: hi}
		lo = hi
	}
	return slices
}

func (s *CPUStepper) runPhase(p phase) {
	s.mu.Lock()
	s.pending = len(s.slices)
	s.step++
	s.currentPhase = p
	s.cond.Broadcast()
	for s.pending > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

func (s *CPUStepper) workerLoop(index int) {
	lastStep := 0
	s.mu.Lock()
	for {
		for s.step == lastStep {
			s.cond.Wait()
		}
		lastStep = s.step
		p := s.currentPhase
		zr := s.slices[index]
		field := s.field
		s.mu.Unlock()

		switch p {
		case phaseE:
			updateESlice(field, zr.lo, zr.hi)
		case phaseH:
			updateHSlice(field, zr.lo, zr.hi)
		}

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
	}
}

// updateESlice applies the E-update equations of spec §4.2 to every cell
// with z in [zLo, zHi). Cells with x<1 or y<1 or z<1 keep their prior
// value before damping is applied uniformly to every cell in the slice.
func updateESlice(f *Field, zLo, zHi int) {
	g := f.grid
	n := g.N
	dt := g.DeltaT()
	invDelta := 1.0 / g.Delta

	for z := zLo; z < zHi; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				idx := g.Index(x, y, z)

				if x >= 1 && y >= 1 && z >= 1 {
					coeff := dt / (Epsilon0 * f.Epsilon[idx])

					hz := f.Hz[idx]
					hzYm1 := f.Hz[g.Index(x, y-1, z)]
					hy := f.Hy[idx]
					hyZm1 := f.Hy[g.Index(x, y, z-1)]
					hx := f.Hx[idx]
					hxZm1 := f.Hx[g.Index(x, y, z-1)]
					hzXm1 := f.Hz[g.Index(x-1, y, z)]
					hyXm1 := f.Hy[g.Index(x-1, y, z)]
					hxYm1 := f.Hx[g.Index(x, y-1, z)]

					f.Ex[idx] += coeff * ((hz-hzYm1)*invDelta - (hy-hyZm1)*invDelta)
					f.Ey[idx] += coeff * ((hx-hxZm1)*invDelta - (hz-hzXm1)*invDelta)
					// J is injected on Ez only, matching the reference stencil.
					f.Ez[idx] += coeff*((hy-hyXm1)*invDelta-(hx-hxYm1)*invDelta) + f.J[idx]*(dt/Epsilon0)
				}

				f.Ex[idx] *= Damping
				f.Ey[idx] *= Damping
				f.Ez[idx] *= Damping
			}
		}
	}
}

// updateHSlice applies the H-update equations of spec §4.2 to every cell
// with z in [zLo, zHi). Cells with x, y, or z at the far boundary keep
// their prior value before damping is applied uniformly.
func updateHSlice(f *Field, zLo, zHi int) {
	g := f.grid
	n := g.N
	dt := g.DeltaT()
	invDelta := 1.0 / g.Delta
	coeff := dt / Mu0

	for z := zLo; z < zHi; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				idx := g.Index(x, y, z)

				if x < n-1 && y < n-1 && z < n-1 {
					ey := f.Ey[idx]
					eyZp1 := f.Ey[g.Index(x, y, z+1)]
					ez := f.Ez[idx]
					ezYp1 := f.Ez[g.Index(x, y+1, z)]
					ezXp1 := f.Ez[g.Index(x+1, y, z)]
					ex := f.Ex[idx]
					exZp1 := f.Ex[g.Index(x, y, z+1)]
					exYp1 := f.Ex[g.Index(x, y+1, z)]
					eyXp1 := f.Ey[g.Index(x+1, y, z)]

					f.Hx[idx] += coeff * ((eyZp1-ey)*invDelta - (ezYp1-ez)*invDelta)
					f.Hy[idx] += coeff * ((ezXp1-ez)*invDelta - (exZp1-ex)*invDelta)
					f.Hz[idx] += coeff * ((exYp1-ex)*invDelta - (eyXp1-ey)*invDelta)
				}

				f.Hx[idx] *= Damping
				f.Hy[idx] *= Damping
				f.Hz[idx] *= Damping
			}
		}
	}
}
