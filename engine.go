package fractal

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/fractal/surface"
)

// EngineState identifies the engine lifecycle state.
type EngineState uint8

const (
	// StateUninitialized is the state before the first successful Init
	// and after Close.
	StateUninitialized EngineState = iota

	// StateReady means a surface is bound and the viewport is live.
	StateReady
)

// String returns the state name.
func (s EngineState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Engine binds a viewport to a surface and serializes operations on it.
//
// The engine is the stateful entry point: Init resolves a surface,
// frames the default view and presents the first frame; ZoomAt
// recenters and rescales the viewport and presents the result. All
// operations are serialized internally, so a second caller blocks until
// the in-flight render finishes.
//
// Example:
//
//	eng := fractal.NewEngine()
//	if err := eng.Init("image:800x600"); err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	// Zoom 2x into the pixel under the cursor.
//	if err := eng.ZoomAt(400, 300, 2.0); err != nil {
//	    if !errors.Is(err, fractal.ErrScaleClamped) {
//	        return err
//	    }
//	}
type Engine struct {
	mu sync.Mutex

	state     EngineState
	surf      surface.Surface
	surfaceID string
	vp        Viewport
	cfg       config
	mapper    ColorMapper
	renderer  *FrameRenderer

	// cancelMu guards cancel so Close can interrupt an in-flight
	// render without waiting for the operation lock.
	cancelMu sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewEngine creates an engine in the Uninitialized state.
func NewEngine() *Engine {
	return &Engine{}
}

// Init binds the engine to the surface identified by surfaceID (see
// surface.Open for the ID syntax), applies the options, frames the
// default view and presents the first frame.
//
// Calling Init on a Ready engine rebuilds everything: the previous
// surface is closed and no prior state survives. Validation failures
// (*InvalidArgumentError) mutate nothing, so a failed re-Init with a
// bad surface ID leaves the previous session intact. Failures past
// validation leave the engine Uninitialized.
func (e *Engine) Init(surfaceID string, opts ...Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := resolveConfig(opts)

	surf, err := surface.Open(surfaceID)
	if err != nil {
		return &InvalidArgumentError{Op: "init", Detail: fmt.Sprintf("surface %q", surfaceID), Err: err}
	}
	width, height := surf.Size()
	if width == 0 || height == 0 {
		surf.Close()
		return invalidArgf("init", "surface %q has zero dimensions %dx%d", surfaceID, width, height)
	}

	// Validation passed: from here on the previous session is gone.
	e.teardownLocked()

	e.cfg = cfg
	e.surf = surf
	e.surfaceID = surfaceID
	e.vp = NewViewport(width, height)
	e.mapper = ColorMapper{Palette: cfg.palette, Interior: cfg.interior, Smooth: cfg.smooth}
	e.renderer = NewFrameRenderer(cfg.workers, cfg.tileSize)

	e.cancelMu.Lock()
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.cancelMu.Unlock()

	if err := e.renderLocked(); err != nil {
		e.teardownLocked()
		return err
	}

	e.state = StateReady
	Logger().Info("engine initialized",
		"surface", surfaceID,
		"width", width,
		"height", height,
		"family", cfg.family.String(),
		"max_iterations", cfg.maxIterations,
		"workers", e.renderer.Workers())
	return nil
}

// ZoomAt recenters the viewport on the plane point under pixel
// (px, py) and divides the scale by factor, then renders and presents
// the new view.
//
// The pixel must lie within the grid and the factor must be finite and
// positive; violations return *InvalidArgumentError with the viewport
// untouched. When the resulting scale hits a configured limit the zoom
// completes at the clamped scale and returns *ScaleClampedError. A
// failed render or presentation returns *RenderError with the viewport
// deliberately kept at its new value: the viewport is the source of
// truth, and the next successful render shows it.
func (e *Engine) ZoomAt(px, py, factor float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return ErrNotReady
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return invalidArgf("zoom_at", "factor %v must be finite and positive", factor)
	}
	if math.IsNaN(px) || math.IsInf(px, 0) || math.IsNaN(py) || math.IsInf(py, 0) {
		return invalidArgf("zoom_at", "pixel (%v, %v) must be finite", px, py)
	}
	if !e.vp.Contains(px, py) {
		return invalidArgf("zoom_at", "pixel (%v, %v) outside %dx%d grid",
			px, py, e.vp.PixelWidth, e.vp.PixelHeight)
	}

	next := e.vp.RecenterAndScale(px, py, factor)
	requested := next.Scale

	next, clamped := next.ClampScale(e.cfg.minScale, e.cfg.maxScale)
	var clampErr *ScaleClampedError
	if clamped {
		clampErr = &ScaleClampedError{Requested: requested, Clamped: next.Scale}
		Logger().Warn("scale clamped",
			"requested", requested,
			"clamped", next.Scale,
			"min", e.cfg.minScale,
			"max", e.cfg.maxScale)
	}

	// Commit before rendering: render failures never roll the viewport
	// back.
	e.vp = next

	if err := e.renderLocked(); err != nil {
		return err
	}

	Logger().Debug("zoom applied",
		"px", px,
		"py", py,
		"factor", factor,
		"viewport", e.vp.String())

	if clampErr != nil {
		return clampErr
	}
	return nil
}

// State returns the engine lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Viewport returns a snapshot of the current viewport. The zero
// viewport is returned before Init.
func (e *Engine) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp
}

// Config returns a snapshot of the resolved configuration. The zero
// config is returned before Init.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return Config{}
	}
	return e.cfg.snapshot()
}

// Surface returns the bound surface, or nil before Init. The engine
// keeps ownership; callers must not Close it.
func (e *Engine) Surface() surface.Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surf
}

// Close cancels any in-flight render, closes the surface and returns
// the engine to Uninitialized. Close is idempotent.
func (e *Engine) Close() error {
	// Cancel outside the operation lock so an in-flight render is
	// interrupted instead of waited for.
	e.cancelMu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancelMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
	return nil
}

// teardownLocked releases all session state. Callers hold e.mu.
func (e *Engine) teardownLocked() {
	e.cancelMu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.ctx, e.cancel = nil, nil
	}
	e.cancelMu.Unlock()

	if e.renderer != nil {
		e.renderer.Close()
		e.renderer = nil
	}
	if e.surf != nil {
		if err := e.surf.Close(); err != nil {
			Logger().Warn("surface close failed", "surface", e.surfaceID, "error", err)
		}
		e.surf = nil
	}
	e.surfaceID = ""
	e.vp = Viewport{}
	e.state = StateUninitialized
}

// renderLocked renders the current viewport and presents the frame.
// Callers hold e.mu.
func (e *Engine) renderLocked() error {
	e.cancelMu.Lock()
	ctx := e.ctx
	e.cancelMu.Unlock()

	pm, err := e.renderer.Render(ctx, e.vp, e.evaluator(), &e.mapper)
	if err != nil {
		return &RenderError{Stage: "render", Err: err}
	}
	if err := e.surf.Present(pm.Data(), e.vp.PixelWidth, e.vp.PixelHeight); err != nil {
		return &RenderError{Stage: "present", Err: err}
	}
	return nil
}

// evaluator builds the evaluator for the current configuration.
func (e *Engine) evaluator() Evaluator {
	return Evaluator{
		Family:              e.cfg.family,
		MaxIterations:       e.cfg.maxIterations,
		EscapeRadiusSquared: e.cfg.escapeRadiusSquared,
		JuliaSeed:           e.cfg.juliaSeed,
	}
}
