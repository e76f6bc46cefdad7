package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rfbench"
	app.Usage = "interactive 3D radio-frequency propagation workbench"
	app.Version = "0.1.0"
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:      "build-bvh",
			Usage:     "build and cache a BVH for a mesh",
			ArgsUsage: "[mesh_file.mesh]",
			Description: `
Build a Bounding Volume Hierarchy over a (positions, indices) mesh and
write it to a .bvh cache file next to the source mesh. With no argument,
builds and caches the workbench's built-in synthetic demo scene.`,
			Action: BuildBVH,
		},
		{
			Name:   "simulate",
			Usage:  "run the FDTD driver loop headlessly and report per-frame statistics",
			Flags:  simulateFlags,
			Action: Simulate,
		},
		{
			Name:   "list-cl-devices",
			Usage:  "report the OpenCL device the GPU stepper would use",
			Action: ListCLDevices,
		},
		{
			Name:   "serve-metrics",
			Usage:  "run the driver loop against the demo scene and serve /metrics",
			Flags:  serveMetricsFlags,
			Action: ServeMetrics,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Criticalf("rfbench: %v", err)
		os.Exit(1)
	}
}
