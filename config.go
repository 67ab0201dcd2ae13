package pixlato

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/quantize"
)

var (
	// ErrUnknownPolicy is returned, wrapped, for any enum value or name that
	// is not one of the known variants.
	ErrUnknownPolicy = palette.ErrUnknownPolicy
	// ErrEmptyPalette is returned when PaletteCustom has no colors.
	ErrEmptyPalette = quantize.ErrEmptyPalette
	// ErrNilImage is returned when a nil image is passed to the engine.
	ErrNilImage = quantize.ErrNilImage
	// ErrInvalidConfig is returned for out-of-range numeric settings.
	ErrInvalidConfig = errors.New("invalid config")
)

// PaletteName selects the target palette of a quantization.
type PaletteName int

const (
	// PaletteOriginal leaves the image untouched.
	PaletteOriginal PaletteName = iota
	// PaletteLimited extracts Config.Colors colors from the image itself.
	PaletteLimited
	// PaletteBitDepth reduces each channel to 16 levels (4096 colors).
	PaletteBitDepth
	// PaletteGrayscale maps onto Config.Colors evenly spaced grays.
	PaletteGrayscale
	PaletteGameBoy
	PaletteCGA
	PalettePico8
	// PaletteCustom maps onto Config.Custom.
	PaletteCustom
)

var paletteNames = [...]string{
	PaletteOriginal:  "original",
	PaletteLimited:   "limited",
	PaletteBitDepth:  "bitdepth",
	PaletteGrayscale: "grayscale",
	PaletteGameBoy:   "gameboy",
	PaletteCGA:       "cga",
	PalettePico8:     "pico8",
	PaletteCustom:    "custom",
}

func (n PaletteName) String() string {
	if n.Valid() {
		return paletteNames[n]
	}
	return fmt.Sprintf("PaletteName(%d)", int(n))
}

// Valid reports whether n is a known palette name.
func (n PaletteName) Valid() bool {
	return n >= PaletteOriginal && n <= PaletteCustom
}

// ParsePaletteName parses a palette name, case-insensitively. Dashes,
// underscores and spaces are ignored, so "Pico-8" and "game_boy" work.
func ParsePaletteName(s string) (PaletteName, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	switch key {
	case "16bit", "custom16bit", "4096":
		return PaletteBitDepth, nil
	case "gray", "grey", "greyscale":
		return PaletteGrayscale, nil
	case "customuser", "user":
		return PaletteCustom, nil
	}
	for i, name := range paletteNames {
		if key == name {
			return PaletteName(i), nil
		}
	}
	return 0, fmt.Errorf("palette %q: %w", s, ErrUnknownPolicy)
}

// Preset returns the fixed palette of a preset name and whether n is one.
func (n PaletteName) Preset() (palette.Palette, bool) {
	switch n {
	case PaletteGameBoy:
		return palette.GameBoy(), true
	case PaletteCGA:
		return palette.CGA(), true
	case PalettePico8:
		return palette.Pico8(), true
	}
	return palette.Palette{}, false
}

// Config controls one quantization. The zero value is PaletteOriginal,
// which returns the image unchanged.
type Config struct {
	// Target palette.
	Palette PaletteName
	// Color count. For PaletteLimited the extracted palette size, clamped to
	// [1, 256], 16 when <= 0. For PaletteGrayscale the number of gray
	// levels, clamped to [2, 256], 256 when <= 0. Ignored otherwise.
	Colors int
	// Floyd-Steinberg error diffusion. When off, isolated pixels are
	// cleaned up after mapping.
	Dither bool
	// Extraction strategy for PaletteLimited.
	Extract palette.ExtractPolicy
	// Distance used for mapping. Overridden to Perceptual by AutoOptimal.
	Mapping quantize.MappingPolicy
	// Aesthetic score weights. All zero means palette.DefaultWeights.
	Weights palette.Weights
	// AutoOptimal median-smooths the source, extracts a generous geometric
	// palette and merges near duplicates, maps perceptually and cleans up
	// more aggressively.
	AutoOptimal bool
	// Colors for PaletteCustom, in slot order.
	Custom palette.Palette
}

// DefaultConfig returns a 16-color limited palette with dithering, the
// geometric extractor and classic mapping.
func DefaultConfig() Config {
	return Config{
		Palette: PaletteLimited,
		Colors:  16,
		Dither:  true,
		Extract: palette.Standard,
		Mapping: quantize.Classic,
		Weights: palette.DefaultWeights(),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !c.Palette.Valid() {
		return fmt.Errorf("palette %d: %w", int(c.Palette), ErrUnknownPolicy)
	}
	if !c.Extract.Valid() {
		return fmt.Errorf("extract policy %d: %w", int(c.Extract), ErrUnknownPolicy)
	}
	if !c.Mapping.Valid() {
		return fmt.Errorf("mapping policy %d: %w", int(c.Mapping), ErrUnknownPolicy)
	}
	for _, w := range []float64{c.Weights.Saturation, c.Weights.Contrast, c.Weights.Rarity} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weights %+v: %w", c.Weights, ErrInvalidConfig)
		}
	}
	if c.Palette == PaletteCustom && c.Custom.Len() == 0 {
		return fmt.Errorf("custom palette: %w", ErrEmptyPalette)
	}
	return nil
}

func (c Config) limitedColors() int {
	if c.Colors <= 0 {
		return 16
	}
	if c.Colors > palette.MaxSize {
		Logger().Warn("pixlato: palette size clamped", "requested", c.Colors, "used", palette.MaxSize)
		return palette.MaxSize
	}
	return c.Colors
}

func (c Config) grayLevels() int {
	if c.Colors <= 0 {
		return palette.MaxSize
	}
	n := min(max(c.Colors, 2), palette.MaxSize)
	if n != c.Colors {
		Logger().Warn("pixlato: gray levels clamped", "requested", c.Colors, "used", n)
	}
	return n
}
