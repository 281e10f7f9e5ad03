package fractal

import "fmt"

// Family selects the escape-time iteration family.
type Family uint8

const (
	// FamilyMandelbrot iterates z = z² + c with z₀ = 0 and c the
	// sampled plane point.
	FamilyMandelbrot Family = iota

	// FamilyJulia iterates z = z² + c with z₀ the sampled plane point
	// and c a fixed seed.
	FamilyJulia
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyMandelbrot:
		return "mandelbrot"
	case FamilyJulia:
		return "julia"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// ParseFamily parses a family name as produced by String.
func ParseFamily(s string) (Family, bool) {
	switch s {
	case "mandelbrot":
		return FamilyMandelbrot, true
	case "julia":
		return FamilyJulia, true
	default:
		return FamilyMandelbrot, false
	}
}

// IterationResult is the outcome of iterating a single plane point.
type IterationResult struct {
	// Escaped reports whether the orbit left the escape radius before
	// the iteration limit.
	Escaped bool

	// Iterations is the number of iterations applied when escape was
	// detected, or the iteration limit for interior points.
	Iterations uint32

	// LastMagnitudeSquared is |z|² at the point iteration stopped. For
	// escaped points it exceeds the escape radius squared and feeds the
	// smooth coloring estimate.
	LastMagnitudeSquared float64
}

// Evaluator iterates plane points under an escape-time family.
//
// Evaluator is a pure value: Evaluate depends only on the fields and
// the input point, so results are deterministic and safe to compute
// from any number of goroutines.
type Evaluator struct {
	Family              Family
	MaxIterations       uint32
	EscapeRadiusSquared float64

	// JuliaSeed is the fixed c parameter. Only read for FamilyJulia.
	JuliaSeed PlanePoint
}

// Evaluate iterates the orbit for a single plane point.
//
// The orbit is checked against the escape radius before each iteration:
// a point whose starting value already lies outside escapes with zero
// iterations. Increasing MaxIterations never decreases the iteration
// count an escaping point reports.
func (e Evaluator) Evaluate(p PlanePoint) IterationResult {
	var zr, zi, cr, ci float64
	if e.Family == FamilyJulia {
		zr, zi = p.Real, p.Imag
		cr, ci = e.JuliaSeed.Real, e.JuliaSeed.Imag
	} else {
		cr, ci = p.Real, p.Imag
	}

	zr2 := zr * zr
	zi2 := zi * zi
	for n := uint32(0); n < e.MaxIterations; n++ {
		if zr2+zi2 > e.EscapeRadiusSquared {
			return IterationResult{
				Escaped:              true,
				Iterations:           n,
				LastMagnitudeSquared: zr2 + zi2,
			}
		}
		zi = 2*zr*zi + ci
		zr = zr2 - zi2 + cr
		zr2 = zr * zr
		zi2 = zi * zi
	}

	return IterationResult{
		Iterations:           e.MaxIterations,
		LastMagnitudeSquared: zr2 + zi2,
	}
}
