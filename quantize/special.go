package quantize

import (
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"github.com/setanarut/pixlato/palette"
)

// bitDepthStep is the spacing of the 16 levels per channel (0, 17, ... 255).
const bitDepthStep = 17

// BitDepth reduces every channel to 16 levels, 4096 colors in all. Without
// dither a channel v becomes (v/16)*17. With dither the error of snapping
// to the nearest level is diffused Floyd-Steinberg style. Alpha is copied.
func (m *Mapper) BitDepth(img *image.NRGBA, dither bool) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	dst := pixbuf.FromImage(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	if !dither {
		m.pool.ParallelFor(h, func(start, end int) {
			for y := start; y < end; y++ {
				row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
				for x := 0; x < len(row); x += 4 {
					row[x] = row[x] / 16 * bitDepthStep
					row[x+1] = row[x+1] / 16 * bitDepthStep
					row[x+2] = row[x+2] / 16 * bitDepthStep
				}
			}
		})
		return dst, nil
	}

	rgb := pixbuf.RGB(dst)
	diffuse(rgb, w, h, func(v float64) float64 {
		return math.Round(min(max(v, 0), 255)/bitDepthStep) * bitDepthStep
	})
	for y := range h {
		for x := range w {
			i := (y*w + x) * 3
			setRGB(dst, y*dst.Stride+x*4, palette.Color{
				R: uint8(rgb[i]), G: uint8(rgb[i+1]), B: uint8(rgb[i+2]),
			})
		}
	}
	return dst, nil
}

// Grayscale converts img to its 601 luma and snaps it to levels evenly
// spaced grays; levels is clamped to [2, 256]. With dither the snapping is
// Floyd-Steinberg diffused. Alpha is copied.
func (m *Mapper) Grayscale(img *image.NRGBA, levels int, dither bool) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	ramp := palette.GrayRamp(levels)
	dst := pixbuf.FromImage(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			o := y*dst.Stride + x*4
			gray.Pix[y*gray.Stride+x] = pixbuf.Gray(dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2])
		}
	}

	if dither {
		if out := ditherGray(gray, ramp); out != nil {
			for y := range h {
				for x := range w {
					v := color.GrayModel.Convert(out.At(x, y)).(color.Gray).Y
					setRGB(dst, y*dst.Stride+x*4, palette.Color{R: v, G: v, B: v})
				}
			}
			return dst, nil
		}
	}

	var lut [256]uint8
	for v := range lut {
		lut[v] = ramp.Convert(palette.Color{R: uint8(v), G: uint8(v), B: uint8(v)}).R
	}
	m.pool.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := range w {
				v := lut[gray.Pix[y*gray.Stride+x]]
				setRGB(dst, y*dst.Stride+x*4, palette.Color{R: v, G: v, B: v})
			}
		}
	})
	return dst, nil
}

// ditherGray runs the dither library on a private copy of gray.
func ditherGray(gray *image.Gray, ramp palette.Palette) image.Image {
	pal := make([]color.Color, ramp.Len())
	for i, c := range ramp.Colors() {
		pal[i] = color.Gray{Y: c.R}
	}
	d := dither.NewDitherer(pal)
	if d == nil {
		return nil
	}
	d.Matrix = dither.FloydSteinberg

	src := image.NewGray(gray.Rect)
	copy(src.Pix, gray.Pix)
	return d.Dither(src)
}
