// Package driver implements the Driver Loop: the per-frame orchestration
// that ties the Grid Descriptor, Field Store, FDTD Stepper, Geometry
// Voxelizer, and Source Manager into one synchronous tick.
package driver

import (
	"time"

	"github.com/signalwave/rfbench/bvh"
	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/source"
	"github.com/signalwave/rfbench/types"
	"github.com/signalwave/rfbench/voxel"
)

// RevoxelizeThreshold is the world-distance the grid's center or
// half-extent must move before the driver re-voxelizes the scene (spec
// §4.8 step 4).
const RevoxelizeThreshold = 20.0

// DefaultSimulationSpeed and MaxSimulationSpeed bound the number of FDTD
// sub-steps run per frame; the floor of 1 (never zero while unpaused) is
// carried from the reference UI slider.
const (
	DefaultSimulationSpeed = 1
	MaxSimulationSpeed     = 10
)

// FrameStats reports what a Tick call actually did, mirroring the
// teacher's per-frame stats type.
type FrameStats struct {
	SubSteps      int
	Reinitialized bool
	Revoxelized   bool
	TickTime      time.Duration
}

// Driver owns the simulation's mutable state across frames: the current
// Grid/Field, the stepper, the voxelizer, and the source list. It is not
// safe for concurrent use; the spec's concurrency model treats one Tick
// as an indivisible logical frame.
type Driver struct {
	logger log.Logger

	grid    fdtd.Grid
	field   *fdtd.Field
	stepper fdtd.Stepper

	voxelizer *voxel.Voxelizer
	voxelOpts voxel.Options

	sources *source.Manager

	tree      *bvh.Tree
	triangles []geom.Triangle

	delta float32

	autoCenter      bool
	paused          bool
	simulationSpeed int
	emissionAmp     float32

	lastVoxelCenter types.Vec3
	lastVoxelHalf   types.Vec3
	voxelized       bool

	sink Sink
}

// Config bundles the construction-time parameters for a Driver.
type Config struct {
	Delta           float32
	InitialHalf     types.Vec3
	InitialCenter   types.Vec3
	WorkerCount     int
	EmissionAmp     float32
	SimulationSpeed int
	AutoCenter      bool
	Sources         *source.Manager
	VoxelOptions    voxel.Options
}

// New builds a Driver with an initial grid sized to cover cfg.InitialHalf
// at cfg.Delta spacing, and a CPU stepper backed by cfg.WorkerCount
// workers.
func New(cfg Config, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.New("driver")
	}
	if cfg.Sources == nil {
		cfg.Sources = source.NewManager()
	}

	n := fdtd.RequiredGridSize(cfg.InitialHalf, cfg.Delta)
	grid := fdtd.NewGrid(n, cfg.Delta, cfg.InitialCenter, cfg.InitialHalf)
	field := fdtd.NewField(grid)

	speed := cfg.SimulationSpeed
	if speed < 1 {
		speed = DefaultSimulationSpeed
	}
	if speed > MaxSimulationSpeed {
		speed = MaxSimulationSpeed
	}

	d := &Driver{
		logger:          logger,
		grid:            grid,
		field:           field,
		stepper:         fdtd.NewCPUStepper(cfg.WorkerCount, logger),
		voxelizer:       voxel.New(logger),
		voxelOpts:       cfg.VoxelOptions,
		sources:         cfg.Sources,
		delta:           cfg.Delta,
		autoCenter:      cfg.AutoCenter,
		simulationSpeed: speed,
		emissionAmp:     cfg.EmissionAmp,
		lastVoxelCenter: cfg.InitialCenter,
		lastVoxelHalf:   cfg.InitialHalf,
	}
	return d
}

// SetMesh replaces the scene geometry, rebuilding its BVH for ray
// queries. Voxelization happens on the next Tick.
func (d *Driver) SetMesh(positions []float32, indices []uint32) {
	triangles := geom.TrianglesFromMesh(positions, indices)
	d.setGeometry(triangles, bvh.Build(triangles, d.logger))
}

// SetMeshFromBVH installs scene geometry from a previously built (or
// cache-loaded, per spec §6.2's load-on-start policy) BVH tree, skipping
// a rebuild. The tree's own triangle list becomes the driver's geometry.
func (d *Driver) SetMeshFromBVH(tree *bvh.Tree) {
	d.setGeometry(tree.Triangles, tree)
}

func (d *Driver) setGeometry(triangles []geom.Triangle, tree *bvh.Tree) {
	d.triangles = triangles
	d.tree = tree
	d.voxelized = false
}

// BVH returns the current scene BVH, or nil if no mesh has been set.
func (d *Driver) BVH() *bvh.Tree {
	return d.tree
}

// Grid returns the current Grid Descriptor.
func (d *Driver) Grid() fdtd.Grid {
	return d.grid
}

// Field returns the current Field Store. The pointer stays the same
// across ticks; a Tick that resizes the grid replaces its arrays in
// place, so slices taken from it before that Tick are stale.
func (d *Driver) Field() *fdtd.Field {
	return d.field
}

// Sources returns the Source Manager backing this driver.
func (d *Driver) Sources() *source.Manager {
	return d.sources
}

// SetSink attaches the visualization sink exposed after each Tick.
func (d *Driver) SetSink(s Sink) {
	d.sink = s
}

// RequireSink returns ErrNoSink if no sink has been attached yet. Hosts
// that must guarantee frame delivery (e.g. a headless render-to-file
// command) call this before entering their tick loop.
func (d *Driver) RequireSink() error {
	if d.sink == nil {
		return ErrNoSink
	}
	return nil
}

// SetPaused pauses or resumes the FDTD sub-stepping. Grid maintenance
// (recentering, resize, re-voxelization) still runs while paused.
func (d *Driver) SetPaused(paused bool) {
	d.paused = paused
}

// Paused reports whether sub-stepping is currently paused.
func (d *Driver) Paused() bool {
	return d.paused
}

// SetSimulationSpeed clamps n into [1, MaxSimulationSpeed] and sets the
// number of FDTD sub-steps run per unpaused Tick.
func (d *Driver) SetSimulationSpeed(n int) {
	if n < 1 {
		n = 1
	}
	if n > MaxSimulationSpeed {
		n = MaxSimulationSpeed
	}
	d.simulationSpeed = n
}

// SetAutoCenter toggles automatic recentering of the grid on the active
// transmitter set.
func (d *Driver) SetAutoCenter(enabled bool) {
	d.autoCenter = enabled
}

// SetHalfExtent updates the user-controlled grid half-extent. The grid
// itself is only resized on the next Tick, per spec §4.8 step 3.
func (d *Driver) SetHalfExtent(half types.Vec3) {
	d.grid.Half = half
}

// SetEmissionAmplitude sets the UI-driven current amplitude shared by all
// active transmitters.
func (d *Driver) SetEmissionAmplitude(amp float32) {
	d.emissionAmp = amp
}

// Tick advances the simulation by one frame, following spec §4.8:
// recenter, resize, re-voxelize, sub-step, then expose to the sink.
func (d *Driver) Tick(_ time.Duration) FrameStats {
	start := time.Now()
	stats := FrameStats{}

	if d.autoCenter {
		if bounds, ok := d.sources.ActiveTransmitterBounds(); ok {
			d.grid.Center = bounds.Centroid()
		}
	}

	requiredN := fdtd.RequiredGridSize(d.grid.Half, d.delta)
	if requiredN != d.grid.N {
		d.grid = fdtd.NewGrid(requiredN, d.delta, d.grid.Center, d.grid.Half)
		d.field.Reinitialize(d.grid)
		d.voxelized = false
		stats.Reinitialized = true
	}

	if !d.voxelized || d.grid.Relocated(d.lastVoxelCenter, d.lastVoxelHalf, RevoxelizeThreshold) {
		d.field.Reset()
		d.voxelizer.Voxelize(d.field, d.triangles, d.voxelOpts)
		d.lastVoxelCenter = d.grid.Center
		d.lastVoxelHalf = d.grid.Half
		d.voxelized = true
		stats.Revoxelized = true
	}

	if !d.paused {
		for i := 0; i < d.simulationSpeed; i++ {
			d.field.ClearEmission()
			d.sources.InjectCurrents(d.field, d.grid, d.emissionAmp)
			d.stepper.Update(d.field)
			stats.SubSteps++
		}
	}

	if d.sink != nil {
		d.sink.Fields(FieldView{
			N:       d.grid.N,
			Ex:      d.field.Ex,
			Ey:      d.field.Ey,
			Ez:      d.field.Ez,
			Hx:      d.field.Hx,
			Hy:      d.field.Hy,
			Hz:      d.field.Hz,
			Epsilon: d.field.Epsilon,
			J:       d.field.J,
		})
	}

	stats.TickTime = time.Since(start)
	return stats
}

// Close releases the stepper's resources (a no-op for the CPU stepper,
// meaningful for a GPU-backed one).
func (d *Driver) Close() {
	d.stepper.Close()
}
