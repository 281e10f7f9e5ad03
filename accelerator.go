package fractal

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot handle this frame.
// The caller should transparently fall back to CPU evaluation.
var ErrFallbackToCPU = errors.New("fractal: falling back to CPU evaluation")

// AcceleratedOp describes operation types for capability checking.
type AcceleratedOp uint32

const (
	// AccelMandelbrot represents Mandelbrot frame evaluation.
	AccelMandelbrot AcceleratedOp = 1 << iota

	// AccelJulia represents Julia frame evaluation.
	AccelJulia
)

// accelOp maps an iteration family to its capability bit.
func accelOp(f Family) AcceleratedOp {
	if f == FamilyJulia {
		return AccelJulia
	}
	return AccelMandelbrot
}

// EvalTarget receives per-pixel iteration results from an accelerator.
// Both slices are row-major with Width*Height elements. Iterations
// holds the per-pixel iteration count, with the iteration limit marking
// interior points. MagSquared holds |z|² at the point iteration
// stopped.
type EvalTarget struct {
	Iterations    []uint32
	MagSquared    []float32
	Width, Height int
}

// FrameAccelerator is an optional GPU evaluation provider.
//
// When registered via RegisterAccelerator, the renderer tries the
// accelerator first for whole-frame evaluation. If the accelerator
// returns ErrFallbackToCPU or any error, evaluation transparently falls
// back to the CPU path.
//
// Implementations should be provided by GPU backend packages (e.g.,
// fractal/gpu). Users opt in to GPU evaluation via blank import:
//
//	import _ "github.com/gogpu/fractal/gpu" // enables GPU evaluation
type FrameAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu", "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given
	// operation. This is a fast check used to skip the GPU entirely for
	// unsupported operations.
	CanAccelerate(op AcceleratedOp) bool

	// EvaluateFrame evaluates every pixel of the viewport and writes
	// the results into target. Returns ErrFallbackToCPU if the frame
	// cannot be accelerated (e.g., the scale exceeds the precision the
	// device arithmetic can resolve).
	EvaluateFrame(target EvalTarget, viewport Viewport, eval Evaluator) error
}

// DeviceProviderAware is an optional interface for accelerators that
// can share GPU resources with an external provider (e.g., a window
// backend). When SetDeviceProvider is called, the accelerator reuses
// the provided GPU device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   FrameAccelerator
)

// RegisterAccelerator registers an accelerator for optional GPU
// evaluation.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and
// the error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    fractal.RegisterAccelerator(NewWGPUAccelerator())
//	}
func RegisterAccelerator(a FrameAccelerator) error {
	if a == nil {
		return errors.New("fractal: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Accelerator returns the currently registered accelerator, or nil if none.
func Accelerator() FrameAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the
// registered accelerator, enabling GPU device sharing. If no
// accelerator is registered or it doesn't support device sharing, this
// is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any
// methods that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
