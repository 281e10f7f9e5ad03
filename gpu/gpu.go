//go:build !nogpu

// Package gpu registers the GPU frame accelerator for hardware-accelerated
// escape-time evaluation.
//
// Import this package to evaluate Mandelbrot and Julia frames with wgpu/hal
// compute shaders. The accelerator initializes lazily on the first frame; if
// no Vulkan/Metal/DX12 device is available, evaluation transparently falls
// back to the float64 CPU path. Deep zooms beyond f32 precision always use
// the CPU regardless of GPU availability.
//
// Usage:
//
//	import _ "github.com/gogpu/fractal/gpu" // enable GPU evaluation
package gpu

import (
	"github.com/gogpu/fractal"
	gpuimpl "github.com/gogpu/fractal/internal/gpu"
)

func init() {
	accel := &gpuimpl.EscapeAccelerator{}
	if err := fractal.RegisterAccelerator(accel); err != nil {
		fractal.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). This avoids creating a separate
// GPU instance and enables efficient device sharing.
//
// The provider should be a gpucontext.DeviceProvider that also implements
// gpucontext.HalProvider for direct HAL access.
//
// Call this after importing the package, before the first render.
func SetDeviceProvider(provider any) error {
	return fractal.SetAcceleratorDeviceProvider(provider)
}
