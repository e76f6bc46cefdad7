package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli"

	"github.com/signalwave/rfbench/driver"
	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/observability"
	"github.com/signalwave/rfbench/source"
	"github.com/signalwave/rfbench/types"
)

// ServeMetrics runs the Driver Loop in the background against the
// built-in synthetic scene and exposes /metrics for scraping, so the
// FDTD tick-timing and field-energy series can be observed independently
// of any visualization host.
func ServeMetrics(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("registering metrics: %v", err), 1)
	}

	_, _, tree, err := loadSceneWithBVH("")
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	half := ctx.Float64("half-extent")
	d := driver.New(driver.Config{
		Delta:           float32(ctx.Float64("delta")),
		InitialHalf:     types.XYZ(float32(half), float32(half), float32(half)),
		InitialCenter:   types.XYZ(0, 0, 0),
		WorkerCount:     ctx.Int("workers"),
		EmissionAmp:     float32(ctx.Float64("amplitude")),
		SimulationSpeed: ctx.Int("simulation-speed"),
	}, log.New("rfbench.driver"))
	defer d.Close()

	d.SetMeshFromBVH(tree)
	d.Sources().Add(types.XYZ(0, 5, 0), float32(ctx.Float64("frequency")), source.Transmitter)

	go tickLoop(d, collector)

	addr := ctx.String("addr")
	logger.Noticef("serving /metrics on %s", addr)
	http.Handle("/metrics", collector.Handler())
	return http.ListenAndServe(addr, nil)
}

func tickLoop(d *driver.Driver, collector *observability.Collector) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		start := time.Now()
		stats := d.Tick(16 * time.Millisecond)
		collector.TickDuration.WithLabelValues("tick").Observe(time.Since(start).Seconds())
		collector.SubSteps.Add(float64(stats.SubSteps))
		if stats.Revoxelized {
			collector.Revoxelizations.Inc()
		}
		collector.FieldEnergy.Set(fieldEnergy(d))
	}
}

func fieldEnergy(d *driver.Driver) float64 {
	return d.Field().EnergyDensity()
}
