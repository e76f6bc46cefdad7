package main

import "github.com/urfave/cli"

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "log-level",
		Value: "notice",
		Usage: "log verbosity: debug, info, notice, warning, error, critical",
	},
}

var simulateFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "mesh",
		Usage: "path to a .mesh file (positions/indices); uses a built-in demo scene if omitted",
	},
	cli.Float64Flag{
		Name:  "delta",
		Value: 5,
		Usage: "grid voxel spacing, in world units",
	},
	cli.Float64Flag{
		Name:  "half-extent",
		Value: 80,
		Usage: "grid half-extent along each axis, in world units",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 4,
		Usage: "CPU stepper worker goroutine count",
	},
	cli.Float64Flag{
		Name:  "amplitude",
		Value: 1.0,
		Usage: "UI-driven emission current amplitude",
	},
	cli.Float64Flag{
		Name:  "frequency",
		Value: 2.4e9,
		Usage: "demo transmitter frequency, in Hz",
	},
	cli.IntFlag{
		Name:  "simulation-speed",
		Value: driverDefaultSimSpeed,
		Usage: "FDTD sub-steps per frame, clamped to [1, 10]",
	},
	cli.BoolFlag{
		Name:  "auto-center",
		Usage: "recenter the grid on the active transmitter set each frame",
	},
	cli.IntFlag{
		Name:  "frames",
		Value: 60,
		Usage: "number of frames to simulate",
	},
}

var serveMetricsFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "addr",
		Value: ":9090",
		Usage: "listen address for the /metrics HTTP endpoint",
	},
	cli.Float64Flag{
		Name:  "delta",
		Value: 5,
		Usage: "grid voxel spacing, in world units",
	},
	cli.Float64Flag{
		Name:  "half-extent",
		Value: 80,
		Usage: "grid half-extent along each axis, in world units",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 4,
		Usage: "CPU stepper worker goroutine count",
	},
	cli.Float64Flag{
		Name:  "amplitude",
		Value: 1.0,
		Usage: "UI-driven emission current amplitude",
	},
	cli.Float64Flag{
		Name:  "frequency",
		Value: 2.4e9,
		Usage: "demo transmitter frequency, in Hz",
	},
	cli.IntFlag{
		Name:  "simulation-speed",
		Value: driverDefaultSimSpeed,
		Usage: "FDTD sub-steps per frame, clamped to [1, 10]",
	},
}

const driverDefaultSimSpeed = 1
