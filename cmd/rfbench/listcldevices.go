package main

import (
	"github.com/urfave/cli"

	"github.com/signalwave/rfbench/fdtd/openclstep"
)

// ListCLDevices reports the OpenCL device the GPU stepper would bind to,
// or explains why none is available (spec §9's GPU-vs-CPU design note).
func ListCLDevices(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	stepper, err := openclstep.New(logger)
	if err != nil {
		logger.Warningf("no OpenCL FDTD stepper available: %v", err)
		return nil
	}
	defer stepper.Close()

	logger.Noticef("OpenCL device: %s", stepper.DeviceName())
	return nil
}
