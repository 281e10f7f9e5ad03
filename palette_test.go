package fractal

import (
	"math"
	"testing"
)

const colorEpsilon = 1e-9

func rgbaEqual(a, b RGBA, eps float64) bool {
	return math.Abs(a.R-b.R) <= eps &&
		math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps &&
		math.Abs(a.A-b.A) <= eps
}

func TestBernsteinPaletteEndpoints(t *testing.T) {
	p := BernsteinPalette{}

	// Both ends of the ramp are black: u(1-u) factors vanish at 0 and 1.
	if got := p.At(0); !rgbaEqual(got, Black, colorEpsilon) {
		t.Errorf("At(0) = %+v, want black", got)
	}
	if got := p.At(1); !rgbaEqual(got, Black, colorEpsilon) {
		t.Errorf("At(1) = %+v, want black", got)
	}

	// The middle of the ramp is visibly lit.
	mid := p.At(0.5)
	if mid.R+mid.G+mid.B < 0.5 {
		t.Errorf("At(0.5) = %+v, too dark for the ramp middle", mid)
	}

	// Out-of-range speeds clamp instead of extrapolating.
	if got := p.At(-1); !rgbaEqual(got, p.At(0), colorEpsilon) {
		t.Errorf("At(-1) = %+v, want At(0)", got)
	}
	if got := p.At(2); !rgbaEqual(got, p.At(1), colorEpsilon) {
		t.Errorf("At(2) = %+v, want At(1)", got)
	}
}

// TestBernsteinPaletteContinuity samples the ramp densely and rejects
// jumps large enough to band at high iteration counts. The sqrt
// reparameterization makes the slope steep near t=0, so continuity is
// checked in u space where the polynomial slope is bounded.
func TestBernsteinPaletteContinuity(t *testing.T) {
	p := BernsteinPalette{}
	const steps = 1000

	prev := p.At(0)
	for i := 1; i <= steps; i++ {
		u := float64(i) / steps
		cur := p.At(u * u)
		jump := math.Abs(cur.R-prev.R) + math.Abs(cur.G-prev.G) + math.Abs(cur.B-prev.B)
		if jump > 0.05 {
			t.Fatalf("color jump %v at t=%v", jump, u*u)
		}
		prev = cur
	}
}

func TestHSVPalette(t *testing.T) {
	p := HSVPalette{Saturation: 1, Value: 1}

	// t=0 starts at red.
	if got := p.At(0); !rgbaEqual(got, RGB(1, 0, 0), colorEpsilon) {
		t.Errorf("At(0) = %+v, want pure red", got)
	}
	// A third of the way around the circle is green.
	if got := p.At(1.0 / 3.0); !rgbaEqual(got, RGB(0, 1, 0), 1e-6) {
		t.Errorf("At(1/3) = %+v, want pure green", got)
	}
	// Alpha is always opaque.
	for _, tt := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if got := p.At(tt); got.A != 1 {
			t.Errorf("At(%v).A = %v, want 1", tt, got.A)
		}
	}
}

func TestGradientPaletteEmpty(t *testing.T) {
	p := NewGradientPalette()
	if got := p.At(0.5); !rgbaEqual(got, Black, colorEpsilon) {
		t.Errorf("empty palette At(0.5) = %+v, want black", got)
	}
}

func TestGradientPaletteSingleStop(t *testing.T) {
	red := RGB(1, 0, 0)
	p := NewGradientPalette(ColorStop{Offset: 0.5, Color: red})
	for _, tt := range []float64{0, 0.5, 1} {
		if got := p.At(tt); !rgbaEqual(got, red, colorEpsilon) {
			t.Errorf("At(%v) = %+v, want the single stop color", tt, got)
		}
	}
}

func TestGradientPaletteInterpolation(t *testing.T) {
	p := NewGradientPalette(
		ColorStop{Offset: 0, Color: Black},
		ColorStop{Offset: 1, Color: White},
	)

	tests := []struct {
		t    float64
		want RGBA
	}{
		{0, Black},
		{0.25, RGBA{R: 0.25, G: 0.25, B: 0.25, A: 1}},
		{0.5, RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}},
		{1, White},
		{-0.5, Black}, // pads below
		{1.5, White},  // pads above
	}
	for _, tt := range tests {
		if got := p.At(tt.t); !rgbaEqual(got, tt.want, colorEpsilon) {
			t.Errorf("At(%v) = %+v, want %+v", tt.t, got, tt.want)
		}
	}
}

func TestGradientPaletteSortsStops(t *testing.T) {
	// Stops given out of order behave as if sorted.
	p := NewGradientPalette(
		ColorStop{Offset: 1, Color: White},
		ColorStop{Offset: 0, Color: Black},
	)
	if got := p.At(0.5); !rgbaEqual(got, RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}, colorEpsilon) {
		t.Errorf("At(0.5) = %+v, want mid gray", got)
	}
}

func TestGradientPaletteCoincidentStops(t *testing.T) {
	red := RGB(1, 0, 0)
	blue := RGB(0, 0, 1)
	p := NewGradientPalette(
		ColorStop{Offset: 0, Color: Black},
		ColorStop{Offset: 0.5, Color: red},
		ColorStop{Offset: 0.5, Color: blue},
		ColorStop{Offset: 1, Color: White},
	)
	// At the coincident offset one of the two stop colors wins; it must
	// not divide by zero or produce garbage.
	got := p.At(0.5)
	if !rgbaEqual(got, red, colorEpsilon) && !rgbaEqual(got, blue, colorEpsilon) {
		t.Errorf("At(0.5) = %+v, want one of the coincident stop colors", got)
	}
}

func TestGradientPaletteDoesNotAliasInput(t *testing.T) {
	stops := []ColorStop{
		{Offset: 1, Color: White},
		{Offset: 0, Color: Black},
	}
	p := NewGradientPalette(stops...)

	// Mutating the caller's slice after construction changes nothing.
	stops[0].Color = RGB(1, 0, 0)
	if got := p.At(1); !rgbaEqual(got, White, colorEpsilon) {
		t.Errorf("At(1) = %+v after caller mutation, want white", got)
	}
	// And the caller's order is untouched.
	if stops[0].Offset != 1 {
		t.Errorf("caller slice reordered: stops[0].Offset = %v", stops[0].Offset)
	}
}

func TestClassicPalette(t *testing.T) {
	p := ClassicPalette()

	if got, want := p.At(0), RGB8(66, 30, 15); !rgbaEqual(got, want, colorEpsilon) {
		t.Errorf("At(0) = %+v, want first ramp color %+v", got, want)
	}
	if got, want := p.At(1), RGB8(106, 52, 3); !rgbaEqual(got, want, colorEpsilon) {
		t.Errorf("At(1) = %+v, want last ramp color %+v", got, want)
	}
}

func TestPaletteByName(t *testing.T) {
	for _, name := range PaletteNames() {
		p, ok := PaletteByName(name)
		if !ok || p == nil {
			t.Errorf("PaletteByName(%q) = (%v, %v), want a palette", name, p, ok)
		}
	}
	if _, ok := PaletteByName("no-such-palette"); ok {
		t.Error("PaletteByName accepted an unknown name")
	}
}

func TestMapColorInterior(t *testing.T) {
	m := ColorMapper{Palette: BernsteinPalette{}, Interior: Black, Smooth: true}

	res := IterationResult{Escaped: false, Iterations: 256, LastMagnitudeSquared: 0.3}
	if got := m.MapColor(res, 256); !rgbaEqual(got, Black, colorEpsilon) {
		t.Errorf("interior color = %+v, want black", got)
	}

	// The interior color is configurable.
	m.Interior = White
	if got := m.MapColor(res, 256); !rgbaEqual(got, White, colorEpsilon) {
		t.Errorf("interior color = %+v, want white", got)
	}
}

func TestMapColorStepped(t *testing.T) {
	m := ColorMapper{Palette: BernsteinPalette{}, Interior: Black, Smooth: false}

	// Without smoothing the color depends only on the iteration count.
	a := m.MapColor(IterationResult{Escaped: true, Iterations: 50, LastMagnitudeSquared: 4.1}, 256)
	b := m.MapColor(IterationResult{Escaped: true, Iterations: 50, LastMagnitudeSquared: 100}, 256)
	if !rgbaEqual(a, b, colorEpsilon) {
		t.Errorf("stepped mapping varied with magnitude: %+v vs %+v", a, b)
	}

	want := BernsteinPalette{}.At(50.0 / 256.0)
	if !rgbaEqual(a, want, colorEpsilon) {
		t.Errorf("stepped color = %+v, want palette at 50/256 = %+v", a, want)
	}
}

func TestMapColorSmooth(t *testing.T) {
	m := ColorMapper{Palette: BernsteinPalette{}, Interior: Black, Smooth: true}

	// With smoothing the escape magnitude shifts the color between
	// integer iteration counts.
	a := m.MapColor(IterationResult{Escaped: true, Iterations: 50, LastMagnitudeSquared: 4.1}, 256)
	b := m.MapColor(IterationResult{Escaped: true, Iterations: 50, LastMagnitudeSquared: 100}, 256)
	if rgbaEqual(a, b, colorEpsilon) {
		t.Error("smooth mapping ignored the escape magnitude")
	}
}

func TestMapColorDeterminism(t *testing.T) {
	m := ColorMapper{Palette: ClassicPalette(), Interior: Black, Smooth: true}
	res := IterationResult{Escaped: true, Iterations: 37, LastMagnitudeSquared: 11.5}

	first := m.MapColor(res, 256)
	for i := 0; i < 100; i++ {
		if got := m.MapColor(res, 256); !rgbaEqual(got, first, 0) {
			t.Fatalf("call %d: color %+v differs from first %+v", i, got, first)
		}
	}
}

func TestMapColorZeroBudget(t *testing.T) {
	m := ColorMapper{Palette: BernsteinPalette{}, Interior: Black, Smooth: true}
	res := IterationResult{Escaped: true, Iterations: 0, LastMagnitudeSquared: 5}
	// Degenerate budget must not divide by zero.
	if got := m.MapColor(res, 0); !rgbaEqual(got, Black, colorEpsilon) {
		t.Errorf("zero-budget color = %+v, want interior", got)
	}
}

func BenchmarkMapColorSmooth(b *testing.B) {
	m := ColorMapper{Palette: BernsteinPalette{}, Interior: Black, Smooth: true}
	res := IterationResult{Escaped: true, Iterations: 73, LastMagnitudeSquared: 8.25}
	b.ReportAllocs()
	for b.Loop() {
		m.MapColor(res, 256)
	}
}
