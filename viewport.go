package fractal

import "fmt"

// Default framing for a fresh viewport: the classic Mandelbrot view
// centered slightly left of the origin with a 3.0 vertical span.
const (
	DefaultCenterReal   = -0.5
	DefaultCenterImag   = 0.0
	DefaultVerticalSpan = 3.0
)

// PlanePoint is a point on the complex plane.
type PlanePoint struct {
	Real float64
	Imag float64
}

// String returns the point in complex notation.
func (p PlanePoint) String() string {
	return fmt.Sprintf("(%g%+gi)", p.Real, p.Imag)
}

// Viewport maps a pixel grid onto a region of the complex plane.
//
// The mapping is fully determined by the plane coordinates of the pixel
// grid's center and a single scale factor in plane units per pixel.
// Pixels are square; the aspect ratio of the viewed region follows the
// pixel dimensions.
//
// Viewport is a value type: transformations return new viewports and
// never mutate the receiver.
type Viewport struct {
	// CenterReal and CenterImag are the plane coordinates of the pixel
	// grid center.
	CenterReal float64
	CenterImag float64

	// Scale is the width of one pixel in plane units. Always positive.
	Scale float64

	// PixelWidth and PixelHeight are the pixel grid dimensions.
	PixelWidth  uint32
	PixelHeight uint32
}

// NewViewport returns the default framing for the given pixel
// dimensions: centered at (-0.5, 0) with a vertical span of 3.0 plane
// units. Dimensions must be nonzero.
func NewViewport(pixelWidth, pixelHeight uint32) Viewport {
	return Viewport{
		CenterReal:  DefaultCenterReal,
		CenterImag:  DefaultCenterImag,
		Scale:       DefaultVerticalSpan / float64(pixelHeight),
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
	}
}

// PixelToPlane maps pixel coordinates to the complex plane.
//
// The pixel grid center maps to (CenterReal, CenterImag); the real axis
// grows rightward and the imaginary axis grows downward with increasing
// py. Fractional pixel coordinates are valid.
func (v Viewport) PixelToPlane(px, py float64) PlanePoint {
	return PlanePoint{
		Real: v.CenterReal + (px-float64(v.PixelWidth)/2)*v.Scale,
		Imag: v.CenterImag + (py-float64(v.PixelHeight)/2)*v.Scale,
	}
}

// PlaneToPixel maps a plane point back to pixel coordinates. It is the
// inverse of PixelToPlane.
func (v Viewport) PlaneToPixel(p PlanePoint) (px, py float64) {
	px = (p.Real-v.CenterReal)/v.Scale + float64(v.PixelWidth)/2
	py = (p.Imag-v.CenterImag)/v.Scale + float64(v.PixelHeight)/2
	return px, py
}

// RecenterAndScale returns the viewport recentered on the plane point
// under (px, py) with the scale divided by factor.
//
// The new center is computed with the current scale, so the plane point
// under the given pixel before the zoom is the plane point under the
// grid center after it. A factor of 1.0 recenters without zooming;
// factors above 1.0 zoom in, factors below 1.0 zoom out.
func (v Viewport) RecenterAndScale(px, py, factor float64) Viewport {
	center := v.PixelToPlane(px, py)
	out := v
	out.CenterReal = center.Real
	out.CenterImag = center.Imag
	out.Scale = v.Scale / factor
	return out
}

// ClampScale limits the scale to [minScale, maxScale] and reports
// whether clamping changed it.
func (v Viewport) ClampScale(minScale, maxScale float64) (Viewport, bool) {
	out := v
	switch {
	case v.Scale < minScale:
		out.Scale = minScale
	case v.Scale > maxScale:
		out.Scale = maxScale
	default:
		return out, false
	}
	return out, true
}

// Contains reports whether the pixel coordinates fall inside the pixel
// grid. The top-left pixel is (0, 0); coordinates on the right and
// bottom edges are outside.
func (v Viewport) Contains(px, py float64) bool {
	return px >= 0 && px < float64(v.PixelWidth) &&
		py >= 0 && py < float64(v.PixelHeight)
}

// PlaneWidth returns the viewed region's width in plane units.
func (v Viewport) PlaneWidth() float64 {
	return float64(v.PixelWidth) * v.Scale
}

// PlaneHeight returns the viewed region's height in plane units.
func (v Viewport) PlaneHeight() float64 {
	return float64(v.PixelHeight) * v.Scale
}

// Magnification returns how many times the default framing is
// magnified at the current scale.
func (v Viewport) Magnification() float64 {
	return DefaultVerticalSpan / float64(v.PixelHeight) / v.Scale
}

// String returns a compact description for logs.
func (v Viewport) String() string {
	return fmt.Sprintf("viewport{center=(%g, %g) scale=%g size=%dx%d}",
		v.CenterReal, v.CenterImag, v.Scale, v.PixelWidth, v.PixelHeight)
}
