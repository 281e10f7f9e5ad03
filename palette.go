package fractal

import (
	"math"
	"sort"
)

// Palette maps a normalized escape speed t in [0, 1] to a color.
// Implementations must be deterministic and continuous in t so that
// neighboring iteration counts shade into each other without banding.
type Palette interface {
	At(t float64) RGBA
}

// BernsteinPalette is the default palette: a polynomial orange/blue ramp
// evaluated on u = sqrt(t). Interior-adjacent speeds stay dark, fast
// escapes run through orange into white-blue.
type BernsteinPalette struct{}

// At returns the ramp color for the given escape speed.
func (BernsteinPalette) At(t float64) RGBA {
	u := math.Sqrt(clamp01(t))
	v := 1 - u
	return RGB(
		clamp01(9*v*u*u*u),
		clamp01(15*v*v*u*u),
		clamp01(8.5*v*v*v*u),
	)
}

// HSVPalette sweeps the hue circle once over t at fixed saturation and
// value. The sweep is cyclic, so t=0 and t=1 meet in the same color.
type HSVPalette struct {
	Saturation float64
	Value      float64
}

// At returns the hue-ramp color for the given escape speed.
func (p HSVPalette) At(t float64) RGBA {
	return HSV(360*clamp01(t), p.Saturation, p.Value)
}

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  RGBA    // Color at this position
}

// GradientPalette interpolates linearly between ordered color stops.
// Speeds outside the stop range pad with the edge colors.
type GradientPalette struct {
	stops []ColorStop
}

// NewGradientPalette creates a palette from the given stops.
// The stops are copied and sorted by offset; the caller's slice is not
// modified.
func NewGradientPalette(stops ...ColorStop) *GradientPalette {
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return &GradientPalette{stops: sorted}
}

// At returns the interpolated color at the given escape speed.
// Handles edge cases: no stops, single stop, out-of-range t.
func (p *GradientPalette) At(t float64) RGBA {
	if len(p.stops) == 0 {
		return Black
	}
	if len(p.stops) == 1 {
		return p.stops[0].Color
	}

	t = clamp01(t)

	// Binary search for the first stop at or beyond t.
	idx := sort.Search(len(p.stops), func(i int) bool {
		return p.stops[i].Offset >= t
	})

	if idx == 0 {
		return p.stops[0].Color
	}
	if idx >= len(p.stops) {
		return p.stops[len(p.stops)-1].Color
	}

	stop1 := p.stops[idx-1]
	stop2 := p.stops[idx]

	// Coincident stops would divide by zero.
	if stop2.Offset == stop1.Offset {
		return stop1.Color
	}

	localT := (t - stop1.Offset) / (stop2.Offset - stop1.Offset)
	return stop1.Color.Lerp(stop2.Color, localT)
}

// ClassicPalette returns the well-known 16-stop deep-zoom ramp: dark blue
// through white into orange and brown, spread evenly over [0, 1].
func ClassicPalette() *GradientPalette {
	ramp := []RGBA{
		RGB8(66, 30, 15),
		RGB8(25, 7, 26),
		RGB8(9, 1, 47),
		RGB8(4, 4, 73),
		RGB8(0, 7, 100),
		RGB8(12, 44, 138),
		RGB8(24, 82, 177),
		RGB8(57, 125, 209),
		RGB8(134, 181, 229),
		RGB8(211, 236, 248),
		RGB8(241, 233, 191),
		RGB8(248, 201, 95),
		RGB8(255, 170, 0),
		RGB8(204, 128, 0),
		RGB8(153, 87, 0),
		RGB8(106, 52, 3),
	}
	stops := make([]ColorStop, len(ramp))
	for i, c := range ramp {
		stops[i] = ColorStop{Offset: float64(i) / float64(len(ramp)-1), Color: c}
	}
	return NewGradientPalette(stops...)
}

// PaletteByName resolves a palette preset by name: "bernstein", "hsv" or
// "classic". The boolean reports whether the name was recognized.
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "bernstein":
		return BernsteinPalette{}, true
	case "hsv":
		return HSVPalette{Saturation: 1, Value: 1}, true
	case "classic":
		return ClassicPalette(), true
	}
	return nil, false
}

// PaletteNames lists the palette presets PaletteByName accepts.
func PaletteNames() []string {
	return []string{"bernstein", "hsv", "classic"}
}

// ColorMapper turns iteration results into pixel colors.
//
// Interior points (never escaped) take the fixed Interior color. Escaped
// points map through the palette on the normalized escape speed
// t = iterations/maxIterations, refined by the fractional escape estimate
// when Smooth is set.
type ColorMapper struct {
	Palette  Palette
	Interior RGBA
	Smooth   bool
}

// MapColor returns the pixel color for one evaluator result.
// It is pure: identical inputs always produce identical colors.
func (m *ColorMapper) MapColor(res IterationResult, maxIterations uint32) RGBA {
	if !res.Escaped {
		return m.Interior
	}
	if maxIterations == 0 {
		return m.Interior
	}

	t := float64(res.Iterations) / float64(maxIterations)
	if m.Smooth && res.LastMagnitudeSquared > 1 {
		// nu = n + 1 - log2(log|z|), with log|z| = log(|z|^2)/2.
		nu := float64(res.Iterations) + 1 -
			math.Log(0.5*math.Log(res.LastMagnitudeSquared))/math.Ln2
		t = nu / float64(maxIterations)
	}
	return m.Palette.At(clamp01(t))
}

// clamp01 clamps a value to [0, 1] range.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
