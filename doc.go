// Package fractal provides an escape-time fractal rendering engine for Go.
//
// # Overview
//
// fractal renders Mandelbrot and Julia sets into pixel surfaces. It maps a
// pixel grid onto a region of the complex plane through a viewport, iterates
// the escape-time recurrence for every pixel in parallel, colors the result
// through a palette, and presents complete frames to a pluggable surface
// backend. Rendering runs on the CPU by default, with optional GPU
// acceleration via gogpu/wgpu.
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	// Create an engine and bind it to an in-memory surface
//	eng := fractal.NewEngine()
//	if err := eng.Init("image:800x600"); err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	// Zoom in 2x around the pixel under the cursor
//	if err := eng.ZoomAt(400, 300, 2.0); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Viewport, Evaluator, Palette, Pixmap
//   - Internal: parallel (tile worker pool), gpu (wgpu compute kernels)
//   - Surfaces: surface (registry, in-memory), surface/fbdev (Linux framebuffer)
//
// # Coordinate System
//
// Pixel coordinates use standard computer graphics conventions, origin (0,0)
// at the top-left, X increasing right, Y increasing down. The viewport maps
// pixel centers to plane points without flipping either axis, so the
// imaginary axis also increases downward on screen. Zooming divides the
// plane-units-per-pixel scale, so larger zoom factors magnify.
//
// # Determinism
//
// CPU evaluation is float64 throughout. Rendering the same viewport with the
// same configuration produces byte-identical frames regardless of worker
// count or tile order.
package fractal

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
