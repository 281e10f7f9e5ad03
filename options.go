package fractal

// Option configures an Engine during Init.
// Use functional options to customize engine behavior.
//
// Example:
//
//	// Defaults: Mandelbrot, 256 iterations, Bernstein palette
//	err := eng.Init("image:800x600")
//
//	// Custom iteration budget and palette
//	err := eng.Init("image:800x600",
//	    fractal.WithMaxIterations(1000),
//	    fractal.WithPalette(fractal.ClassicPalette()))
type Option func(*config)

// config holds the resolved engine configuration. It is immutable after
// Init; re-Init resolves a fresh config from defaults plus options.
type config struct {
	maxIterations       uint32
	escapeRadiusSquared float64
	palette             Palette
	interior            RGBA
	smooth              bool
	family              Family
	juliaSeed           PlanePoint
	minScale            float64
	maxScale            float64
	workers             int
	tileSize            int
}

// Default configuration values.
const (
	DefaultMaxIterations       = 256
	DefaultEscapeRadiusSquared = 4.0
	DefaultMinScale            = 1e-15
	DefaultMaxScale            = 1.0
	DefaultTileSize            = 64
)

// defaultConfig returns the default engine configuration.
func defaultConfig() config {
	return config{
		maxIterations:       DefaultMaxIterations,
		escapeRadiusSquared: DefaultEscapeRadiusSquared,
		palette:             BernsteinPalette{},
		interior:            Black,
		smooth:              true,
		family:              FamilyMandelbrot,
		juliaSeed:           PlanePoint{Real: -0.8, Imag: 0.156},
		minScale:            DefaultMinScale,
		maxScale:            DefaultMaxScale,
		workers:             0, // one per CPU
		tileSize:            DefaultTileSize,
	}
}

// resolve applies options to the defaults and sanitizes the result.
func resolveConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxIterations == 0 {
		cfg.maxIterations = DefaultMaxIterations
	}
	if cfg.escapeRadiusSquared <= 0 {
		cfg.escapeRadiusSquared = DefaultEscapeRadiusSquared
	}
	if cfg.palette == nil {
		cfg.palette = BernsteinPalette{}
	}
	if cfg.minScale <= 0 {
		cfg.minScale = DefaultMinScale
	}
	if cfg.maxScale < cfg.minScale {
		cfg.maxScale = DefaultMaxScale
	}
	if cfg.workers < 0 {
		cfg.workers = 0
	}
	if cfg.tileSize < 1 {
		cfg.tileSize = DefaultTileSize
	}
	return cfg
}

// Config is a read-only snapshot of a resolved engine configuration.
type Config struct {
	MaxIterations       uint32
	EscapeRadiusSquared float64
	Palette             Palette
	InteriorColor       RGBA
	SmoothColoring      bool
	Family              Family
	JuliaSeed           PlanePoint
	MinScale            float64
	MaxScale            float64
	Workers             int
	TileSize            int
}

func (c config) snapshot() Config {
	return Config{
		MaxIterations:       c.maxIterations,
		EscapeRadiusSquared: c.escapeRadiusSquared,
		Palette:             c.palette,
		InteriorColor:       c.interior,
		SmoothColoring:      c.smooth,
		Family:              c.family,
		JuliaSeed:           c.juliaSeed,
		MinScale:            c.minScale,
		MaxScale:            c.maxScale,
		Workers:             c.workers,
		TileSize:            c.tileSize,
	}
}

// WithMaxIterations sets the iteration budget per pixel.
// Zero falls back to the default.
func WithMaxIterations(n uint32) Option {
	return func(c *config) {
		c.maxIterations = n
	}
}

// WithEscapeRadiusSquared sets the squared magnitude beyond which a point
// counts as escaped. Non-positive values fall back to the default 4.0.
func WithEscapeRadiusSquared(r2 float64) Option {
	return func(c *config) {
		c.escapeRadiusSquared = r2
	}
}

// WithPalette sets the palette used for escaped points.
func WithPalette(p Palette) Option {
	return func(c *config) {
		c.palette = p
	}
}

// WithInteriorColor sets the color for points that never escape.
func WithInteriorColor(col RGBA) Option {
	return func(c *config) {
		c.interior = col
	}
}

// WithSmoothColoring toggles the fractional escape refinement.
// Disabled, the escape speed steps at whole iteration counts.
func WithSmoothColoring(on bool) Option {
	return func(c *config) {
		c.smooth = on
	}
}

// WithFamily selects the iteration family.
//
// Example:
//
//	err := eng.Init("image:800x600",
//	    fractal.WithFamily(fractal.FamilyJulia),
//	    fractal.WithJuliaSeed(fractal.PlanePoint{Real: -0.4, Imag: 0.6}))
func WithFamily(f Family) Option {
	return func(c *config) {
		c.family = f
	}
}

// WithJuliaSeed sets the constant c of the Julia recurrence.
// Ignored unless the family is FamilyJulia.
func WithJuliaSeed(seed PlanePoint) Option {
	return func(c *config) {
		c.juliaSeed = seed
	}
}

// WithScaleLimits sets the clamp bounds for the viewport scale.
// Zooming past a bound clamps the scale and reports ErrScaleClamped.
func WithScaleLimits(minScale, maxScale float64) Option {
	return func(c *config) {
		c.minScale = minScale
		c.maxScale = maxScale
	}
}

// WithWorkers sets the number of render workers.
// Zero means one worker per CPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithTileSize sets the edge length of render tiles in pixels.
func WithTileSize(px int) Option {
	return func(c *config) {
		c.tileSize = px
	}
}
