// Package source implements the Source Manager: an ordered catalog of
// radio sources with stable integer ids, and the per-substep current
// injection that drives the FDTD solver.
package source

import (
	"fmt"
	"math"
	"sync"

	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

// Variant distinguishes the role a RadioSource plays. It is kept as a
// simple tagged variant rather than a class hierarchy.
type Variant int

const (
	Transmitter Variant = iota
	Receiver
	Relay
)

func (v Variant) String() string {
	switch v {
	case Transmitter:
		return "Transmitter"
	case Receiver:
		return "Receiver"
	case Relay:
		return "Relay"
	default:
		return "Unknown"
	}
}

// PhaseStep is the visualization time step used to advance a source's
// oscillation phase, decoupled from the FDTD solver's Courant-limited ΔT
// (spec §9 open question: the reference's two time-step notions are
// inconsistent between its CPU and GPU paths; this implementation follows
// the GPU path, advancing phase by ω·ΔT_vis radians per sub-step).
const PhaseStep = 1e-11

// RadioSource is a single transmitter, receiver, or relay placed in world
// space.
type RadioSource struct {
	ID       int
	Name     string
	Variant  Variant
	Position types.Vec3
	Frequency float32
	Power     float32
	Active    bool
	Visible   bool
	Color     types.Vec3

	phase float32
}

// frequencyToColor buckets a frequency into one of three bands for
// visualization, matching the reference's coarse RF/color mapping.
func frequencyToColor(freq float32) types.Vec3 {
	switch {
	case freq < 1e9:
		return types.XYZ(1.0, 0.3, 0.3)
	case freq < 2.5e9:
		return types.XYZ(0.3, 1.0, 0.3)
	default:
		return types.XYZ(0.3, 0.3, 1.0)
	}
}

// Manager owns the source list. Add/Remove are the only UI-thread
// mutators; the driver reads the list between ticks. Implementations that
// split UI and simulation across threads must serialize on Add/Remove
// (spec §5).
type Manager struct {
	mu      sync.Mutex
	sources []*RadioSource
	nextID  int
}

// NewManager returns an empty source catalog. IDs start at 1 and are
// never reused within the process.
func NewManager() *Manager {
	return &Manager{nextID: 1}
}

// Add appends a new source and returns its freshly allocated id.
func (m *Manager) Add(pos types.Vec3, frequency float32, variant Variant) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	s := &RadioSource{
		ID:        id,
		Name:      fmt.Sprintf("Node_%d", id),
		Variant:   variant,
		Position:  pos,
		Frequency: frequency,
		Power:     0,
		Active:    true,
		Visible:   true,
		Color:     frequencyToColor(frequency),
	}
	m.sources = append(m.sources, s)
	return id
}

// Remove deletes the source with the given id, if present. It is O(n) and
// preserves the relative order of the remaining sources so index-based UI
// bindings stay valid.
func (m *Manager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.sources {
		if s.ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return
		}
	}
}

// Get returns the source with the given id, or nil if not found.
func (m *Manager) Get(id int) *RadioSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// All returns a snapshot of the current source list. Callers must not
// retain it across a Add/Remove call.
func (m *Manager) All() []*RadioSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*RadioSource, len(m.sources))
	copy(out, m.sources)
	return out
}

// ActiveTransmitterBounds returns the AABB of every active transmitter's
// position, used by the driver's auto-center feature. ok is false when
// there are no active transmitters.
func (m *Manager) ActiveTransmitterBounds() (bounds geom.AABB, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bounds = geom.EmptyAABB()
	for _, s := range m.sources {
		if s.Active && s.Variant == Transmitter {
			bounds.ExpandPoint(s.Position)
			ok = true
		}
	}
	return bounds, ok
}

// InjectCurrents writes one J value per active transmitter into field,
// per §4.7: the world position maps to a grid voxel, and the injected
// value oscillates at 2π·frequency, with phase advancing by ω·PhaseStep
// each call. amp is the UI-driven emission strength shared by all active
// transmitters.
func (m *Manager) InjectCurrents(field *fdtd.Field, grid fdtd.Grid, amp float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if !s.Active || s.Variant != Transmitter {
			continue
		}

		omega := 2 * math.Pi * float64(s.Frequency)
		s.phase += float32(omega) * PhaseStep

		value := amp * float32(math.Sin(float64(s.phase)))

		x, y, z := grid.VoxelIndex(s.Position)
		field.AddEmission(x, y, z, value)
	}
}

// PickNearest returns the id of the visible source whose pick sphere (of
// radius pickRadius around its position) the ray reaches first, at a
// distance below ray.TMax, or -1 if none qualifies. This is a lightweight ray-sphere pick used for node
// selection, distinct from the BVH's triangle-accurate ray query.
func (m *Manager) PickNearest(ray geom.Ray, pickRadius float32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	closestID := -1
	closestDist := ray.TMax

	for _, s := range m.sources {
		if !s.Visible {
			continue
		}
		if dist, hit := raySphereIntersect(ray, s.Position, pickRadius); hit && dist < closestDist {
			closestDist = dist
			closestID = s.ID
		}
	}
	return closestID
}

func raySphereIntersect(ray geom.Ray, center types.Vec3, radius float32) (float32, bool) {
	oc := ray.Origin.Sub(center)
	a := ray.Dir.Dot(ray.Dir)
	b := 2 * oc.Dot(ray.Dir)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}

	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t := (-b - sqrtDisc) / (2 * a)
	if t < 0 {
		t = (-b + sqrtDisc) / (2 * a)
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
