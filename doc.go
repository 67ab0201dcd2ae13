// Package pixlato reduces images to small, coherent palettes for pixel art.
//
// # Quick Start
//
//	e := pixlato.NewEngine()
//	defer e.Close()
//
//	small, _ := e.Pixelate(img, pixlato.PixelateOptionsFromSize(img.Bounds().Size()))
//	res, _ := e.Quantize(small, pixlato.Config{Palette: pixlato.PalettePico8, Dither: true})
//
// # Pipeline
//
// Quantize resolves a target palette (a preset, a custom palette, or one
// extracted from the image by the palette package), maps every pixel onto
// it with the quantize package and, without dithering, removes isolated
// pixels. Alpha is carried through unchanged.
//
// The stages are usable on their own:
//   - palette: LAB extraction (geometric and aesthetic), consolidation, sorting
//   - quantize: RGB and LAB mapping, Floyd-Steinberg, bit depth, grayscale
//   - downsample: block reduction that keeps edge contrast
//
// # Logging
//
// Nothing is logged by default. See SetLogger.
package pixlato
