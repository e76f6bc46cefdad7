// Package observability bundles the workbench's structured logging setup
// and Prometheus metrics collector.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics the driver loop and stepper
// report against.
type Collector struct {
	gatherer prometheus.Gatherer

	TickDuration *prometheus.HistogramVec
	FieldEnergy  prometheus.Gauge
	SubSteps     prometheus.Counter
	Revoxelizations prometheus.Counter
}

// NewCollector registers the workbench's metrics against reg, defaulting
// to the global Prometheus registry when reg is nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tickDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rfbench_tick_duration_seconds",
		Help:    "Driver Tick() wall-clock duration in seconds, labeled by phase.",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5},
	}, []string{"phase"})
	tickDuration, err := registerHistogramVec(reg, tickDuration, "rfbench_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	fieldEnergy, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rfbench_field_energy",
		Help: "Sum of squared E and H field components across the current grid.",
	}), "rfbench_field_energy")
	if err != nil {
		return nil, err
	}

	subSteps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rfbench_substeps_total",
		Help: "Total number of FDTD Stepper.Update() calls executed.",
	}), "rfbench_substeps_total")
	if err != nil {
		return nil, err
	}

	revoxelizations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rfbench_revoxelizations_total",
		Help: "Total number of times the driver re-voxelized the scene.",
	}), "rfbench_revoxelizations_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		TickDuration:    tickDuration,
		FieldEnergy:     fieldEnergy,
		SubSteps:        subSteps,
		Revoxelizations: revoxelizations,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
