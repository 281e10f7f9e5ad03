package fractal

import (
	"context"
	"errors"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// FrameRenderer renders viewports into pixmaps.
//
// Each Render call produces one complete frame: the renderer evaluates
// every pixel of the viewport, maps the results to colors, and returns
// the finished pixmap. Nothing observes the pixmap until Render
// returns, so callers always present complete frames and never
// interleaved ones.
//
// Frames are evaluated tile by tile on a work-stealing worker pool.
// When an accelerator is registered and supports the iteration family,
// the renderer tries whole-frame GPU evaluation first and falls back to
// the CPU path on ErrFallbackToCPU or any other accelerator error.
type FrameRenderer struct {
	pool     *parallel.WorkerPool
	tileSize int
}

// NewFrameRenderer creates a renderer with the given worker count and
// tile size. Zero or negative values select the defaults (one worker
// per CPU, 64 pixel tiles).
func NewFrameRenderer(workers, tileSize int) *FrameRenderer {
	return &FrameRenderer{
		pool:     parallel.NewWorkerPool(workers),
		tileSize: tileSize,
	}
}

// Workers returns the number of evaluation workers.
func (r *FrameRenderer) Workers() int {
	return r.pool.Workers()
}

// Close shuts down the worker pool. The renderer must not be used
// after Close.
func (r *FrameRenderer) Close() {
	r.pool.Close()
}

// Render evaluates the viewport and returns the finished frame.
//
// The returned pixmap is freshly allocated and owned by the caller.
// Cancelling the context abandons the render between tiles; Render
// waits for in-flight tiles to finish before returning ctx.Err(), so no
// evaluation goroutine outlives the call.
func (r *FrameRenderer) Render(ctx context.Context, vp Viewport, ev Evaluator, cm *ColorMapper) (*Pixmap, error) {
	if vp.PixelWidth == 0 || vp.PixelHeight == 0 {
		return nil, invalidArgf("render", "empty viewport %dx%d", vp.PixelWidth, vp.PixelHeight)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := int(vp.PixelWidth)
	height := int(vp.PixelHeight)
	pm := NewPixmap(width, height)
	start := time.Now()

	if a := Accelerator(); a != nil && a.CanAccelerate(accelOp(ev.Family)) {
		err := r.renderAccelerated(ctx, a, pm, vp, ev, cm)
		if err == nil {
			Logger().Debug("frame rendered",
				"path", a.Name(),
				"duration", time.Since(start),
				"viewport", vp.String())
			return pm, nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("accelerator failed, falling back to CPU",
				"accelerator", a.Name(), "error", err)
		}
	}

	tiles := parallel.Grid(width, height, r.tileSize)
	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			for py := tile.Y; py < tile.Y+tile.Height; py++ {
				for px := tile.X; px < tile.X+tile.Width; px++ {
					res := ev.Evaluate(vp.PixelToPlane(float64(px), float64(py)))
					pm.SetPixel(px, py, cm.MapColor(res, ev.MaxIterations))
				}
			}
		}
	}
	r.pool.ExecuteAll(work)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Logger().Debug("frame rendered",
		"path", "cpu",
		"duration", time.Since(start),
		"tiles", len(tiles),
		"viewport", vp.String())
	return pm, nil
}

// renderAccelerated evaluates the whole frame on the accelerator and
// maps the per-pixel results to colors on the worker pool.
func (r *FrameRenderer) renderAccelerated(ctx context.Context, a FrameAccelerator, pm *Pixmap, vp Viewport, ev Evaluator, cm *ColorMapper) error {
	width := int(vp.PixelWidth)
	height := int(vp.PixelHeight)
	n := width * height

	target := EvalTarget{
		Iterations: make([]uint32, n),
		MagSquared: make([]float32, n),
		Width:      width,
		Height:     height,
	}
	if err := a.EvaluateFrame(target, vp, ev); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tiles := parallel.Grid(width, height, r.tileSize)
	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			for py := tile.Y; py < tile.Y+tile.Height; py++ {
				for px := tile.X; px < tile.X+tile.Width; px++ {
					idx := py*width + px
					res := IterationResult{
						Escaped:              target.Iterations[idx] < ev.MaxIterations,
						Iterations:           target.Iterations[idx],
						LastMagnitudeSquared: float64(target.MagSquared[idx]),
					}
					pm.SetPixel(px, py, cm.MapColor(res, ev.MaxIterations))
				}
			}
		}
	}
	r.pool.ExecuteAll(work)
	return ctx.Err()
}
