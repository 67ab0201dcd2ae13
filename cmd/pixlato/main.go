// Command pixlato turns an image into pixel art: optional background
// removal and pixelation, palette quantization, then outline, grain and
// preview upscale.
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/setanarut/pixlato"
	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/quantize"
	"github.com/setanarut/pixlato/utils"
)

type CLICmd struct {
	Input   string `arg:"" help:"Source image (png, jpeg, gif, bmp, tiff, webp)" type:"existingfile"`
	Output  string `short:"o" help:"Destination image. Format follows the extension" default:"out.png"`
	Workers int    `help:"Worker goroutines, 0 for one per CPU" default:"0"`
	Verbose bool   `short:"v" help:"Log pipeline decisions"`

	Palette   string    `short:"p" help:"Target palette (original, limited, bitdepth, grayscale, gameboy, cga, pico8, custom)" default:"limited" group:"palette"`
	Colors    int       `short:"c" help:"Palette size for limited, gray levels for grayscale" default:"16" group:"palette"`
	Dither    bool      `help:"Floyd-Steinberg dithering" default:"true" negatable:"" group:"palette"`
	Extract   string    `help:"Extraction policy for limited" enum:"standard,aesthetic" default:"standard" group:"palette"`
	Mapping   string    `help:"Color distance used for matching" enum:"classic,perceptual" default:"classic" group:"palette"`
	Auto      bool      `help:"Auto-optimal: smooth, extract and merge a generous palette, map perceptually" group:"palette"`
	Custom    string    `help:"Palette file (.gpl, .pal, .hex) for --palette=custom" type:"existingfile" group:"palette"`
	Reference string    `help:"Build the custom palette from this image instead of a file" type:"existingfile" group:"palette"`
	RefMethod string    `help:"Reference palette method" enum:"dominant,kmeans" default:"dominant" group:"palette"`
	Weights   []float64 `help:"Aesthetic weights: saturation,contrast,rarity" group:"palette"`

	RemoveBg    bool    `help:"Clear the background by flood-filling from the corners" group:"pixelate"`
	BgTolerance int     `help:"Summed RGBA difference still counted as background" default:"40" group:"pixelate"`
	PixelSize   int     `help:"Pixelate with blocks of this size, 0 to skip" default:"0" group:"pixelate"`
	TargetWidth int     `help:"Pixelate to this width, overrides --pixel-size" default:"0" group:"pixelate"`
	AutoSize    bool    `help:"Pick a pixel size that brings the longer side to about 128" group:"pixelate"`
	Downsample  string  `help:"Block reduction" enum:"box,adaptive" default:"adaptive" group:"pixelate"`
	Edge        float64 `help:"Edge enhancement strength (0-2), 0 to skip" default:"0" group:"pixelate"`

	Outline   string `help:"Outline color as #rgb, #rgba, #rrggbb or #rrggbbaa" group:"output"`
	Grain     int    `help:"Film grain intensity, 0 to skip" default:"0" group:"output"`
	GrainSeed uint64 `help:"Seed of the grain noise" default:"1" group:"output"`
	Upscale   int    `help:"Nearest-neighbor upscale factor of the result" default:"1" group:"output"`
	GPL       string `help:"Export the result palette as a GIMP palette" group:"output"`
	Swatch    string `help:"Export the result palette as a swatch image" group:"output"`
	Sort      string `help:"Order of exported palette colors" enum:"original,luminance,hue" default:"original" group:"output"`

	config       pixlato.Config           `kong:"-"`
	pixelate     *pixlato.PixelateOptions `kong:"-"`
	outlineColor *color.NRGBA             `kong:"-"`
	sort         palette.SortMethod       `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	var err error
	cfg := pixlato.DefaultConfig()
	if cfg.Palette, err = pixlato.ParsePaletteName(c.Palette); err != nil {
		return err
	}
	if cfg.Extract, err = palette.ParseExtractPolicy(c.Extract); err != nil {
		return err
	}
	if cfg.Mapping, err = quantize.ParseMappingPolicy(c.Mapping); err != nil {
		return err
	}
	cfg.Colors = c.Colors
	cfg.Dither = c.Dither
	cfg.AutoOptimal = c.Auto

	switch len(c.Weights) {
	case 0:
	case 3:
		cfg.Weights = palette.Weights{Saturation: c.Weights[0], Contrast: c.Weights[1], Rarity: c.Weights[2]}
	default:
		return fmt.Errorf("invalid weights: want 3 values, got %d", len(c.Weights))
	}

	if cfg.Palette == pixlato.PaletteCustom {
		if cfg.Custom, err = c.customPalette(); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg

	if c.RemoveBg && c.BgTolerance < 0 {
		return fmt.Errorf("invalid background tolerance: %d", c.BgTolerance)
	}
	if c.PixelSize < 0 || c.TargetWidth < 0 {
		return fmt.Errorf("invalid pixel size %d / target width %d", c.PixelSize, c.TargetWidth)
	}
	if c.PixelSize > 0 || c.TargetWidth > 0 || c.AutoSize {
		method, err := pixlato.ParseDownsampleMethod(c.Downsample)
		if err != nil {
			return err
		}
		c.pixelate = &pixlato.PixelateOptions{
			PixelSize:       c.PixelSize,
			TargetWidth:     c.TargetWidth,
			Method:          method,
			EdgeEnhance:     c.Edge > 0,
			EdgeSensitivity: c.Edge,
		}
	}

	if c.Outline != "" {
		col, err := parseHexToColor(c.Outline)
		if err != nil {
			return err
		}
		c.outlineColor = &col
	}
	if c.Grain < 0 {
		return fmt.Errorf("invalid grain intensity: %d", c.Grain)
	}
	if c.Upscale < 1 {
		return fmt.Errorf("invalid upscale factor: %d", c.Upscale)
	}
	if c.sort, err = palette.ParseSortMethod(c.Sort); err != nil {
		return err
	}
	return nil
}

func (c *CLICmd) customPalette() (palette.Palette, error) {
	switch {
	case c.Reference != "":
		method, err := palette.ParseReferenceMethod(c.RefMethod)
		if err != nil {
			return palette.Palette{}, err
		}
		ref, err := utils.ReadImage(c.Reference)
		if err != nil {
			return palette.Palette{}, err
		}
		return palette.FromReference(ref, max(c.Colors, 1), method), nil
	case c.Custom != "":
		return utils.LoadPalette(c.Custom)
	}
	return palette.Palette{}, fmt.Errorf("--palette=custom needs --custom or --reference")
}

func (c *CLICmd) Run() error {
	if c.Verbose {
		pixlato.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	logger := slog.Default().With("file", c.Input)

	img, err := utils.ReadImage(c.Input)
	if err != nil {
		return err
	}

	e := pixlato.NewEngine(pixlato.WithWorkers(c.Workers))
	defer e.Close()

	src := pixlato.FromImage(img)
	if c.RemoveBg {
		src = pixlato.RemoveBackground(src, c.BgTolerance)
		logger.Info("removed background", "tolerance", c.BgTolerance)
	}
	if c.pixelate != nil {
		opt := *c.pixelate
		if c.AutoSize && opt.PixelSize == 0 && opt.TargetWidth == 0 {
			opt.PixelSize = pixlato.PixelateOptionsFromSize(src.Rect.Size()).PixelSize
		}
		if src, err = e.Pixelate(src, opt); err != nil {
			return fmt.Errorf("could not pixelate: %w", err)
		}
		logger.Info("pixelated", "size", src.Rect.Size(), "method", opt.Method)
	}

	res, err := e.Quantize(src, c.config)
	if err != nil {
		return err
	}
	logger.Info("quantized", "palette", c.config.Palette, "colors", res.Palette.Len(), "backend", e.Backend())

	out := res.Image
	if c.outlineColor != nil {
		out = pixlato.Outline(out, *c.outlineColor)
	}
	if c.Grain > 0 {
		out = pixlato.Grain(out, c.Grain, c.GrainSeed)
	}
	if c.Upscale > 1 {
		out = pixlato.UpscalePreview(out, out.Rect.Dx()*c.Upscale, out.Rect.Dy()*c.Upscale)
	}
	if err := utils.SaveImage(out, c.Output); err != nil {
		return err
	}
	logger.Info("saved", "to", c.Output, "size", out.Rect.Size())

	return c.exportPalette(logger, res.Palette)
}

func (c *CLICmd) exportPalette(logger *slog.Logger, p palette.Palette) error {
	if c.GPL == "" && c.Swatch == "" {
		return nil
	}
	if p.Len() == 0 {
		logger.Warn("no palette to export", "palette", c.config.Palette)
		return nil
	}
	p = palette.Sort(p, c.sort)
	if c.GPL != "" {
		name := strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
		if err := utils.SaveGPL(p, "pixlato "+name, c.GPL); err != nil {
			return err
		}
		logger.Info("exported palette", "to", c.GPL, "colors", p.Len())
	}
	if c.Swatch != "" {
		if err := utils.SavePalette(p, 32, c.Swatch); err != nil {
			return err
		}
		logger.Info("exported swatch", "to", c.Swatch)
	}
	return nil
}

func parseHexToColor(s string) (color.NRGBA, error) {
	var c color.NRGBA
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4:
		var v [4]uint8
		v[3] = 0xf
		for i := range len(s) {
			n, err := parseHexDigit(s[i])
			if err != nil {
				return c, err
			}
			v[i] = n
		}
		c = color.NRGBA{R: v[0] * 0x11, G: v[1] * 0x11, B: v[2] * 0x11, A: v[3] * 0x11}
	case 6, 8:
		c.A = 0xff
		dst := []*uint8{&c.R, &c.G, &c.B, &c.A}
		for i := 0; i < len(s); i += 2 {
			hi, err := parseHexDigit(s[i])
			if err != nil {
				return c, err
			}
			lo, err := parseHexDigit(s[i+1])
			if err != nil {
				return c, err
			}
			*dst[i/2] = hi<<4 | lo
		}
	default:
		return c, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

func parseHexDigit(b byte) (uint8, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", b)
}

func main() {
	var cli CLICmd
	kctx := kong.Parse(&cli,
		kong.Name("pixlato"),
		kong.Description("Pixel-art palette quantizer."),
		kong.UsageOnError(),
	)
	if err := kctx.Run(); err != nil {
		slog.Error("pixlato failed", "error", err)
		os.Exit(1)
	}
}
