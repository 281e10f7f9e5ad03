//go:build !nogpu

// Package gpu provides a Pure Go GPU-accelerated escape-time evaluator.
//
// This is an internal package used by the fractal library for frame
// evaluation. It leverages WebGPU compute shaders via the gogpu/wgpu Pure Go
// WebGPU implementation (zero CGO), which supports Vulkan, Metal, and DX12
// backends depending on the platform.
//
// # Architecture Overview
//
// The accelerator evaluates a whole frame per dispatch:
//
//	Viewport + Evaluator -> uniform params -> N compute passes -> state readback
//
// Each pixel carries a small state record (z, iteration count, status) in a
// storage buffer. One compute pass advances every still-active pixel by a
// single iteration of z = z^2 + c; the host encodes max-iterations passes
// into one command buffer and submits once. Storage barriers between passes
// order the steps, so the shader itself needs no loop. The final state is
// copied to a staging buffer and read back as iteration counts and escape
// magnitudes.
//
// Key components:
//
//   - EscapeAccelerator: implements fractal.FrameAccelerator
//   - escape.wgsl: single-step iteration kernel for Mandelbrot and Julia
//   - escapeParams / pixelState: Go mirrors of the WGSL buffer layouts
//
// # Precision
//
// The kernel computes in f32. Below a scale of about 1e-5 plane units per
// pixel, adjacent pixels map to identical f32 coordinates and the image
// degrades, so EvaluateFrame returns fractal.ErrFallbackToCPU and the
// float64 CPU path takes over. Deep zooms are therefore always exact; the
// GPU covers the shallow range where it is fastest.
//
// # Requirements
//
//   - gogpu/wgpu module (github.com/gogpu/wgpu)
//   - A GPU that supports Vulkan, Metal, or DX12
//
// Without a usable GPU the accelerator reports fallback on every frame and
// rendering proceeds on the CPU.
package gpu
