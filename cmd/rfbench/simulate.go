package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/signalwave/rfbench/driver"
	"github.com/signalwave/rfbench/log"
	"github.com/signalwave/rfbench/source"
	"github.com/signalwave/rfbench/types"
)

// Simulate runs the Driver Loop headlessly for a fixed number of frames
// and reports per-frame statistics, standing in for the interactive
// visualization sink this library does not implement (spec's windowing
// Non-goal).
func Simulate(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	_, _, tree, err := loadSceneWithBVH(ctx.String("mesh"))
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
		AutoCenter:      ctx.Bool("auto-center"),
	}, log.New("rfbench.driver"))
	defer d.Close()

	d.SetMeshFromBVH(tree)
	d.Sources().Add(types.XYZ(0, 5, 0), float32(ctx.Float64("frequency")), source.Transmitter)

	frames := ctx.Int("frames")
	rows := make([][]string, 0, frames)
	var total time.Duration

	for i := 0; i < frames; i++ {
		stats := d.Tick(16 * time.Millisecond)
		total += stats.TickTime
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", stats.SubSteps),
			fmt.Sprintf("%t", stats.Reinitialized),
			fmt.Sprintf("%t", stats.Revoxelized),
			stats.TickTime.String(),
		})
	}

	displayTickStats(rows, total)
	return nil
}

func displayTickStats(rows [][]string, total time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Sub-steps", "Resized", "Revoxelized", "Tick time"})
	for _, row := range rows {
		table.Append(row)
	}
	table.SetFooter([]string{"", "", "", "TOTAL", total.String()})
	table.Render()
	logger.Noticef("simulation statistics\n%s", buf.String())
}
