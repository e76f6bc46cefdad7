//go:build opencl

// Package openclstep implements fdtd.Stepper on top of an OpenCL compute
// queue, dispatching the same leapfrog E/H stencil as fdtd.CPUStepper to
// a GPU (falling back to a CPU OpenCL device when no GPU is found).
package openclstep

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/signalwave/rfbench/fdtd"
	"github.com/signalwave/rfbench/log"
)

const kernelSource = `__kernel void update_e(
    const int n,
    const float delta,
    const float dt,
    const float eps0,
    const float damping,
    __global float* ex,
    __global float* ey,
    __global float* ez,
    __global const float* hx,
    __global const float* hy,
    __global const float* hz,
    __global const float* epsilon,
    __global const float* j)
{
    int idx = get_global_id(0);
    int size = n * n * n;
    if (idx >= size) {
        return;
    }
    int x = idx % n;
    int y = (idx / n) % n;
    int z = idx / (n * n);

    if (x >= 1 && y >= 1 && z >= 1) {
        float coeff = dt / (eps0 * epsilon[idx]);
        int idxYm1 = x + n * ((y - 1) + n * z);
        int idxZm1 = x + n * (y + n * (z - 1));
        int idxXm1 = (x - 1) + n * (y + n * z);

        float curlEx = (hz[idx] - hz[idxYm1]) / delta - (hy[idx] - hy[idxZm1]) / delta;
        float curlEy = (hx[idx] - hx[idxZm1]) / delta - (hz[idx] - hz[idxXm1]) / delta;
        float curlEz = (hy[idx] - hy[idxXm1]) / delta - (hx[idx] - hx[idxYm1]) / delta;

        ex[idx] += coeff * curlEx;
        ey[idx] += coeff * curlEy;
        ez[idx] += coeff * curlEz + j[idx] * (dt / eps0);
    }

    ex[idx] *= damping;
    ey[idx] *= damping;
    ez[idx] *= damping;
}

__kernel void update_h(
    const int n,
    const float delta,
    const float dt,
    const float mu0,
    const float damping,
    __global const float* ex,
    __global const float* ey,
    __global const float* ez,
    __global float* hx,
    __global float* hy,
    __global float* hz)
{
    int idx = get_global_id(0);
    int size = n * n * n;
    if (idx >= size) {
        return;
    }
    int x = idx % n;
    int y = (idx / n) % n;
    int z = idx / (n * n);

    if (x < n - 1 && y < n - 1 && z < n - 1) {
        float coeff = dt / mu0;
        int idxXp1 = (x + 1) + n * (y + n * z);
        int idxYp1 = x + n * ((y + 1) + n * z);
        int idxZp1 = x + n * (y + n * (z + 1));

        float curlHx = (ey[idxZp1] - ey[idx]) / delta - (ez[idxYp1] - ez[idx]) / delta;
        float curlHy = (ez[idxXp1] - ez[idx]) / delta - (ex[idxZp1] - ex[idx]) / delta;
        float curlHz = (ex[idxYp1] - ex[idx]) / delta - (ey[idxXp1] - ey[idx]) / delta;

        hx[idx] += coeff * curlHx;
        hy[idx] += coeff * curlHy;
        hz[idx] += coeff * curlHz;
    }

    hx[idx] *= damping;
    hy[idx] *= damping;
    hz[idx] *= damping;
}`

// Stepper dispatches the FDTD leapfrog stencil to an OpenCL device. It
// satisfies fdtd.Stepper.
type Stepper struct {
	logger log.Logger

	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	eKernel *cl.Kernel
	hKernel *cl.Kernel

	deviceName string

	n int

	exBuf, eyBuf, ezBuf *cl.MemObject
	hxBuf, hyBuf, hzBuf *cl.MemObject
	epsilonBuf, jBuf    *cl.MemObject
}

// New selects a GPU OpenCL device (falling back to a CPU device) and
// compiles the FDTD kernels. It returns an error if no OpenCL platform or
// device is usable, following the reference's device-selection order.
func New(logger log.Logger) (*Stepper, error) {
	if logger == nil {
		logger = log.New("fdtd.openclstep")
	}

	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}

	device := selectDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = selectDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	program, err := context.CreateProgramWithSource([]string{kernelSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	eKernel, err := program.CreateKernel("update_e")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating update_e kernel: %w", err)
	}
	hKernel, err := program.CreateKernel("update_h")
	if err != nil {
		eKernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating update_h kernel: %w", err)
	}

	s := &Stepper{
		logger:     logger,
		context:    context,
		queue:      queue,
		program:    program,
		eKernel:    eKernel,
		hKernel:    hKernel,
		deviceName: device.Name(),
	}
	logger.Noticef("fdtd/openclstep: using device %q", s.deviceName)
	return s, nil
}

func selectDevice(platforms []*cl.Platform, deviceType cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(deviceType)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// DeviceName reports the OpenCL device this stepper dispatches to.
func (s *Stepper) DeviceName() string {
	return s.deviceName
}

// Update advances field by one tick on the OpenCL device: it allocates
// or resizes device buffers as needed, uploads J and, on grid changes,
// Epsilon, dispatches update_e then update_h, and blocks until the
// updated E/H arrays are copied back into field's host slices.
func (s *Stepper) Update(field *fdtd.Field) {
	grid := field.Grid()
	if s.n != grid.N {
		if err := s.reallocate(grid.N); err != nil {
			s.logger.Errorf("fdtd/openclstep: reallocating device buffers: %v", err)
			return
		}
		if err := s.uploadAll(field); err != nil {
			s.logger.Errorf("fdtd/openclstep: uploading field state: %v", err)
			return
		}
	}

	if _, err := s.queue.EnqueueWriteBufferFloat32(s.jBuf, false, 0, field.J, nil); err != nil {
		s.logger.Errorf("fdtd/openclstep: uploading J: %v", err)
		return
	}

	dt := grid.DeltaT()
	global := []int{grid.N * grid.N * grid.N}

	if err := s.eKernel.SetArgs(
		int32(grid.N), grid.Delta, dt, float32(fdtd.Epsilon0), float32(fdtd.Damping),
		s.exBuf, s.eyBuf, s.ezBuf, s.hxBuf, s.hyBuf, s.hzBuf, s.epsilonBuf, s.jBuf,
	); err != nil {
		s.logger.Errorf("fdtd/openclstep: setting update_e args: %v", err)
		return
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.eKernel, nil, global, nil, nil); err != nil {
		s.logger.Errorf("fdtd/openclstep: enqueueing update_e: %v", err)
		return
	}

	if err := s.hKernel.SetArgs(
		int32(grid.N), grid.Delta, dt, float32(fdtd.Mu0), float32(fdtd.Damping),
		s.exBuf, s.eyBuf, s.ezBuf, s.hxBuf, s.hyBuf, s.hzBuf,
	); err != nil {
		s.logger.Errorf("fdtd/openclstep: setting update_h args: %v", err)
		return
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.hKernel, nil, global, nil, nil); err != nil {
		s.logger.Errorf("fdtd/openclstep: enqueueing update_h: %v", err)
		return
	}

	for _, pair := range []struct {
		buf  *cl.MemObject
		host []float32
	}{
		{s.exBuf, field.Ex}, {s.eyBuf, field.Ey}, {s.ezBuf, field.Ez},
		{s.hxBuf, field.Hx}, {s.hyBuf, field.Hy}, {s.hzBuf, field.Hz},
	} {
		if _, err := s.queue.EnqueueReadBufferFloat32(pair.buf, true, 0, pair.host, nil); err != nil {
			s.logger.Errorf("fdtd/openclstep: reading back field state: %v", err)
			return
		}
	}
}

func (s *Stepper) reallocate(n int) error {
	s.releaseBuffers()

	size := n * n * n
	byteSize := size * int(unsafe.Sizeof(float32(0)))

	targets := []**cl.MemObject{
		&s.exBuf, &s.eyBuf, &s.ezBuf,
		&s.hxBuf, &s.hyBuf, &s.hzBuf,
		&s.epsilonBuf, &s.jBuf,
	}
	allocated := make([]*cl.MemObject, 0, len(targets))
	for _, target := range targets {
		buf, err := s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
		if err != nil {
			for _, b := range allocated {
				b.Release()
			}
			s.n = 0
			return err
		}
		*target = buf
		allocated = append(allocated, buf)
	}

	s.n = n
	return nil
}

func (s *Stepper) uploadAll(field *fdtd.Field) error {
	uploads := []struct {
		buf  *cl.MemObject
		host []float32
	}{
		{s.exBuf, field.Ex}, {s.eyBuf, field.Ey}, {s.ezBuf, field.Ez},
		{s.hxBuf, field.Hx}, {s.hyBuf, field.Hy}, {s.hzBuf, field.Hz},
		{s.epsilonBuf, field.Epsilon}, {s.jBuf, field.J},
	}
	for _, u := range uploads {
		if _, err := s.queue.EnqueueWriteBufferFloat32(u.buf, false, 0, u.host, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stepper) releaseBuffers() {
	for _, b := range []*cl.MemObject{s.exBuf, s.eyBuf, s.ezBuf, s.hxBuf, s.hyBuf, s.hzBuf, s.epsilonBuf, s.jBuf} {
		if b != nil {
			b.Release()
		}
	}
	s.exBuf, s.eyBuf, s.ezBuf = nil, nil, nil
	s.hxBuf, s.hyBuf, s.hzBuf = nil, nil, nil
	s.epsilonBuf, s.jBuf = nil, nil
}

// Close releases the OpenCL context, queue, program, kernels, and device
// buffers.
func (s *Stepper) Close() {
	s.releaseBuffers()
	if s.eKernel != nil {
		s.eKernel.Release()
		s.eKernel = nil
	}
	if s.hKernel != nil {
		s.hKernel.Release()
		s.hKernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
