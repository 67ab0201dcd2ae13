package pixlato

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"
	"github.com/setanarut/pixlato/downsample"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/parallel"
	"github.com/setanarut/pixlato/quantize"
)

const (
	// autoExtractColors is the generous palette auto-optimal extracts before
	// merging near duplicates.
	autoExtractColors = 64
	stabilityPasses   = 1
	// autoStabilityPasses is the cleanup strength of auto-optimal.
	autoStabilityPasses = 3
	// medianSize is the auto-optimal pre-smoothing window.
	medianSize = 3
)

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	workers int
	backend *quantize.Backend
}

// WithWorkers sets the number of worker goroutines. n < 1 means
// GOMAXPROCS, which is the default; 1 runs everything on the calling
// goroutine.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithBackend forces the LAB search backend instead of
// quantize.DetectBackend.
func WithBackend(b quantize.Backend) EngineOption {
	return func(o *engineOptions) {
		o.backend = &b
	}
}

// Engine runs quantization pipelines. It owns a worker pool and the LAB
// backend, both chosen once at construction. An Engine is safe for
// concurrent use on different images. Call Close when done.
type Engine struct {
	pool    *parallel.Pool
	mapper  *quantize.Mapper
	sampler *downsample.Downsampler
}

// Result is the output of Engine.Quantize.
type Result struct {
	// Image has the same size as the input, alpha copied unchanged.
	Image *image.NRGBA
	// Palette is the target palette the image was mapped onto. It is empty
	// for PaletteOriginal and PaletteBitDepth. It can be fed back as
	// Config.Custom.
	Palette palette.Palette
}

// NewEngine starts an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	backend := quantize.DetectBackend()
	if o.backend != nil {
		backend = *o.backend
	}

	pool := parallel.New(o.workers)
	Logger().Debug("pixlato: engine ready", "workers", pool.NumWorkers(), "backend", backend)
	return &Engine{
		pool:    pool,
		mapper:  quantize.NewMapper(pool, backend),
		sampler: downsample.New(pool),
	}
}

// Close stops the worker pool. Calls made after Close still work but run
// on the calling goroutine.
func (e *Engine) Close() {
	e.pool.Close()
}

// Backend returns the LAB search backend in use.
func (e *Engine) Backend() quantize.Backend {
	return e.mapper.Backend()
}

// Quantize reduces img to the palette described by cfg. The input is
// never modified.
func (e *Engine) Quantize(img image.Image, cfg Config) (*Result, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("could not quantize: %w", err)
	}

	src := FromImage(img)
	if cfg.Palette == PaletteOriginal {
		return &Result{Image: src}, nil
	}

	rgb := src
	if cfg.AutoOptimal {
		rgb = smooth(src)
	}

	switch cfg.Palette {
	case PaletteBitDepth:
		out, err := e.mapper.BitDepth(rgb, cfg.Dither)
		if err != nil {
			return nil, fmt.Errorf("could not reduce bit depth: %w", err)
		}
		pixbuf.CopyAlpha(out, src)
		return &Result{Image: out}, nil
	case PaletteGrayscale:
		levels := cfg.grayLevels()
		out, err := e.mapper.Grayscale(rgb, levels, cfg.Dither)
		if err != nil {
			return nil, fmt.Errorf("could not convert to grayscale: %w", err)
		}
		pixbuf.CopyAlpha(out, src)
		return &Result{Image: out, Palette: palette.GrayRamp(levels)}, nil
	}

	target, err := e.target(rgb, cfg)
	if err != nil {
		return nil, err
	}

	policy := cfg.Mapping
	if cfg.AutoOptimal {
		policy = quantize.Perceptual
	}
	Logger().Debug("pixlato: mapping", "palette", cfg.Palette, "colors", target.Len(),
		"policy", policy, "dither", cfg.Dither)

	out, err := e.mapper.Map(rgb, target, cfg.Dither, policy)
	if err != nil {
		return nil, fmt.Errorf("could not map to palette: %w", err)
	}
	if !cfg.Dither {
		passes := stabilityPasses
		if cfg.AutoOptimal {
			passes = autoStabilityPasses
		}
		out = e.mapper.StabilityFilter(out, passes)
	}
	pixbuf.CopyAlpha(out, src)
	return &Result{Image: out, Palette: target}, nil
}

// target resolves the palette to map onto.
func (e *Engine) target(img *image.NRGBA, cfg Config) (palette.Palette, error) {
	if p, ok := cfg.Palette.Preset(); ok {
		return p, nil
	}
	switch cfg.Palette {
	case PaletteCustom:
		return cfg.Custom, nil
	case PaletteLimited:
		if cfg.AutoOptimal {
			raw := palette.ExtractGeometric(img, autoExtractColors)
			p := palette.Consolidate(raw, palette.DefaultMergeThreshold)
			Logger().Debug("pixlato: auto-optimal palette", "extracted", raw.Len(), "kept", p.Len())
			return nonEmpty(p, img), nil
		}
		p, err := e.ExtractPalette(img, cfg.limitedColors(), cfg.Extract, cfg.Weights)
		if err != nil {
			return palette.Palette{}, err
		}
		return nonEmpty(p, img), nil
	}
	return palette.Palette{}, fmt.Errorf("palette %v has no target: %w", cfg.Palette, ErrUnknownPolicy)
}

// nonEmpty substitutes a single black slot for an empty extraction, which
// only happens for empty images.
func nonEmpty(p palette.Palette, img *image.NRGBA) palette.Palette {
	if p.Len() > 0 {
		return p
	}
	Logger().Warn("pixlato: extraction returned no colors", "bounds", img.Rect)
	return palette.New(palette.Color{})
}

// ExtractPalette builds a palette of at most count colors from img.
func (e *Engine) ExtractPalette(img image.Image, count int, policy palette.ExtractPolicy, w palette.Weights) (palette.Palette, error) {
	if img == nil {
		return palette.Palette{}, ErrNilImage
	}
	p, err := palette.Extract(img, count, policy, w)
	if err != nil {
		return palette.Palette{}, err
	}
	Logger().Debug("pixlato: extracted palette", "policy", policy, "requested", count, "colors", p.Len())
	return p, nil
}

// Downsample is downsample.Adaptive on the Engine's workers.
func (e *Engine) Downsample(img image.Image, blockSize, outW, outH int) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	return e.sampler.Adaptive(img, blockSize, outW, outH), nil
}

// StabilityFilter is quantize.StabilityFilter on the Engine's workers.
func (e *Engine) StabilityFilter(img image.Image, passes int) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	return e.mapper.StabilityFilter(FromImage(img), passes), nil
}

// FromImage returns a zero-origin NRGBA copy of img.
func FromImage(img image.Image) *image.NRGBA {
	return pixbuf.FromImage(img)
}

// smooth median-filters RGB with a 3x3 window. Alpha is kept.
func smooth(img *image.NRGBA) *image.NRGBA {
	g := gift.New(gift.Median(medianSize, false))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	pixbuf.CopyAlpha(dst, img)
	return dst
}
