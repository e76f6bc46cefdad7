//go:build !opencl

package openclstep

import (
	"errors"

	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/log"
)

// Stepper is a placeholder used when the binary is built without the
// opencl tag; New always fails, following the reference's stub pattern
// for optional hardware backends.
type Stepper struct{}

// New returns an error indicating that OpenCL support was not compiled
// in. Rebuild with -tags opencl on a machine with an OpenCL ICD loader
// installed to use the GPU stepper.
func New(_ log.Logger) (*Stepper, error) {
	return nil, errors.New("fdtd/openclstep: OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *Stepper) Update(_ *fdtd.Field) {}

func (s *Stepper) Close() {}

func (s *Stepper) DeviceName() string { return "" }
