package pixlato

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/quantize"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e := NewEngine(opts...)
	t.Cleanup(e.Close)
	return e
}

func photo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8((x*y + 40) % 256),
				B: uint8(y * 255 / max(h-1, 1)),
				A: uint8(255 - (x+y)%3*60),
			})
		}
	}
	return img
}

func grayRamp(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8(x * 255 / max(w-1, 1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func colorsOf(img *image.NRGBA) map[palette.Color]int {
	out := map[palette.Color]int{}
	for y := range img.Rect.Dy() {
		for x := range img.Rect.Dx() {
			c := img.NRGBAAt(x, y)
			out[palette.Color{R: c.R, G: c.G, B: c.B}]++
		}
	}
	return out
}

func assertAlphaKept(t *testing.T, got, want *image.NRGBA) {
	t.Helper()
	for y := range want.Rect.Dy() {
		for x := range want.Rect.Dx() {
			if a, b := got.NRGBAAt(x, y).A, want.NRGBAAt(x, y).A; a != b {
				t.Fatalf("alpha at (%d,%d) = %d, want %d", x, y, a, b)
			}
		}
	}
}

func TestQuantizeOriginalIsIdentity(t *testing.T) {
	e := newTestEngine(t)
	img := photo(17, 9)
	res, err := e.Quantize(img, Config{Palette: PaletteOriginal})
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Pix {
		if res.Image.Pix[i] != img.Pix[i] {
			t.Fatalf("Quantize(original) byte %d = %d, want %d", i, res.Image.Pix[i], img.Pix[i])
		}
	}
	res.Image.Pix[0]++
	if res.Image.Pix[0] == img.Pix[0] {
		t.Error("Quantize(original) result aliases the input")
	}
	if res.Palette.Len() != 0 {
		t.Errorf("Quantize(original).Palette.Len() = %d, want 0", res.Palette.Len())
	}
}

func TestQuantizePresetsOnlyUsePaletteColors(t *testing.T) {
	img := grayRamp(64, 8)
	for _, backend := range []quantize.Backend{quantize.BackendScalar, quantize.BackendAccelerated} {
		e := newTestEngine(t, WithWorkers(3), WithBackend(backend))
		for _, name := range []PaletteName{PaletteGameBoy, PaletteCGA, PalettePico8} {
			want, _ := name.Preset()
			for _, mapping := range []quantize.MappingPolicy{quantize.Classic, quantize.Perceptual} {
				for _, dither := range []bool{false, true} {
					cfg := Config{Palette: name, Dither: dither, Mapping: mapping}
					res, err := e.Quantize(img, cfg)
					if err != nil {
						t.Fatalf("Quantize(%+v) error: %v", cfg, err)
					}
					for c := range colorsOf(res.Image) {
						if !want.Contains(c) {
							t.Fatalf("Quantize(%v, %v, dither=%v) produced %v", name, mapping, dither, c)
						}
					}
				}
			}
		}
	}
}

func TestQuantizeLimited(t *testing.T) {
	e := newTestEngine(t)
	img := photo(40, 30)
	for _, policy := range []palette.ExtractPolicy{palette.Standard, palette.Aesthetic} {
		for _, colors := range []int{1, 4, 16} {
			for _, dither := range []bool{false, true} {
				cfg := DefaultConfig()
				cfg.Extract = policy
				cfg.Colors = colors
				cfg.Dither = dither
				res, err := e.Quantize(img, cfg)
				if err != nil {
					t.Fatalf("Quantize(%+v) error: %v", cfg, err)
				}
				if n := res.Palette.Len(); n < 1 || n > colors {
					t.Fatalf("Quantize(%v, %d) palette size %d", policy, colors, n)
				}
				if colors == 1 && res.Palette.Len() != 1 {
					t.Fatalf("Quantize(%v, 1) palette size %d, want 1", policy, res.Palette.Len())
				}
				for c := range colorsOf(res.Image) {
					if !res.Palette.Contains(c) {
						t.Fatalf("Quantize(%v, %d, dither=%v) produced %v outside %v", policy, colors, dither, c, res.Palette)
					}
				}
				assertAlphaKept(t, res.Image, img)
			}
		}
	}
}

func TestQuantizeAutoOptimal(t *testing.T) {
	e := newTestEngine(t)
	img := photo(48, 32)
	cfg := DefaultConfig()
	cfg.AutoOptimal = true
	cfg.Dither = false
	res, err := e.Quantize(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n := res.Palette.Len(); n < 1 || n > autoExtractColors {
		t.Errorf("auto-optimal palette size %d, want 1..%d", n, autoExtractColors)
	}
	if again := palette.Consolidate(res.Palette, palette.DefaultMergeThreshold); again.Len() != res.Palette.Len() {
		t.Errorf("auto-optimal palette not consolidated: %d -> %d", res.Palette.Len(), again.Len())
	}
	for c := range colorsOf(res.Image) {
		if !res.Palette.Contains(c) {
			t.Fatalf("auto-optimal produced %v outside the palette", c)
		}
	}
	assertAlphaKept(t, res.Image, img)
}

func TestQuantizeCustomRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	img := photo(20, 20)
	first, err := e.Quantize(img, Config{Palette: PaletteLimited, Colors: 6})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Quantize(img, Config{Palette: PaletteCustom, Custom: first.Palette})
	if err != nil {
		t.Fatal(err)
	}
	if second.Palette.String() != first.Palette.String() {
		t.Errorf("custom palette = %v, want %v", second.Palette, first.Palette)
	}
}

func TestQuantizeSpecialModes(t *testing.T) {
	e := newTestEngine(t)
	img := photo(30, 20)

	res, err := e.Quantize(img, Config{Palette: PaletteBitDepth})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range res.Image.Pix {
		if i%4 != 3 && v%17 != 0 {
			t.Fatalf("bit depth byte %d = %d", i, v)
		}
	}
	assertAlphaKept(t, res.Image, img)

	res, err = e.Quantize(img, Config{Palette: PaletteGrayscale, Colors: 4, Dither: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Palette.Len() != 4 {
		t.Errorf("grayscale palette size %d, want 4", res.Palette.Len())
	}
	for c := range colorsOf(res.Image) {
		if !res.Palette.Contains(c) {
			t.Fatalf("grayscale produced %v", c)
		}
	}
	assertAlphaKept(t, res.Image, img)
}

func TestQuantizeErrors(t *testing.T) {
	e := newTestEngine(t)
	img := photo(4, 4)
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"empty custom", Config{Palette: PaletteCustom}, ErrEmptyPalette},
		{"unknown palette", Config{Palette: PaletteName(99)}, ErrUnknownPolicy},
		{"unknown extract", Config{Palette: PaletteLimited, Extract: palette.ExtractPolicy(7)}, ErrUnknownPolicy},
		{"unknown mapping", Config{Palette: PaletteGameBoy, Mapping: quantize.MappingPolicy(7)}, ErrUnknownPolicy},
		{"negative weight", Config{Palette: PaletteLimited, Weights: palette.Weights{Rarity: -1}}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Quantize(img, tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("Quantize() error = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := e.Quantize(nil, DefaultConfig()); !errors.Is(err, ErrNilImage) {
		t.Errorf("Quantize(nil) error = %v, want ErrNilImage", err)
	}
}

func TestQuantizeConcurrent(t *testing.T) {
	e := newTestEngine(t, WithWorkers(4))
	img := photo(32, 32)
	want, err := e.Quantize(img, Config{Palette: PalettePico8, Mapping: quantize.Perceptual})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Go(func() {
			got, err := e.Quantize(img, Config{Palette: PalettePico8, Mapping: quantize.Perceptual})
			if err != nil {
				errs <- err
				return
			}
			for i := range want.Image.Pix {
				if got.Image.Pix[i] != want.Image.Pix[i] {
					errs <- errors.New("concurrent result differs")
					return
				}
			}
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestEngineLowerLevel(t *testing.T) {
	e := newTestEngine(t, WithWorkers(1))
	img := photo(16, 16)

	p, err := e.ExtractPalette(img, 5, palette.Aesthetic, palette.Weights{})
	if err != nil || p.Len() < 1 || p.Len() > 5 {
		t.Errorf("ExtractPalette() = %v, %v", p, err)
	}
	small, err := e.Downsample(img, 4, 4, 4)
	if err != nil || small.Rect.Dx() != 4 || small.Rect.Dy() != 4 {
		t.Errorf("Downsample() = %v, %v", small.Rect, err)
	}
	clean, err := e.StabilityFilter(img, 2)
	if err != nil || clean.Rect != img.Rect {
		t.Errorf("StabilityFilter() = %v, %v", clean.Rect, err)
	}
	if _, err := e.Downsample(nil, 2, 1, 1); !errors.Is(err, ErrNilImage) {
		t.Errorf("Downsample(nil) error = %v", err)
	}
}

func TestEngineAfterClose(t *testing.T) {
	e := NewEngine(WithWorkers(2))
	e.Close()
	if _, err := e.Quantize(photo(8, 8), Config{Palette: PaletteCGA}); err != nil {
		t.Errorf("Quantize() after Close error: %v", err)
	}
}
