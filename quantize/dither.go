package quantize

import (
	"image"

	"github.com/setanarut/pixlato/palette"
	"golang.org/x/image/draw"
)

// ditherInto Floyd-Steinberg diffuses src onto the meaningful slots of p
// and writes the chosen colors into dst's RGB. src must be opaque, since
// the drawer reads premultiplied colors.
func ditherInto(dst, src *image.NRGBA, p palette.Palette) {
	r := image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy())
	paletted := image.NewPaletted(r, p.ColorPalette())
	draw.FloydSteinberg.Draw(paletted, r, src, src.Rect.Min)

	slots := p.Colors()
	for y := range r.Dy() {
		for x := range r.Dx() {
			setRGB(dst, y*dst.Stride+x*4, slots[paletted.Pix[y*paletted.Stride+x]])
		}
	}
}

// kernelTap spreads weight of the quantization error to the pixel at
// (x+dx, y+dy).
type kernelTap struct {
	weight float64
	dx, dy int
}

var floydSteinberg = []kernelTap{
	{7.0 / 16.0, 1, 0},
	{3.0 / 16.0, -1, 1},
	{5.0 / 16.0, 0, 1},
	{1.0 / 16.0, 1, 1},
}

// diffuse runs raster-order Floyd-Steinberg over interleaved RGB floats of
// a w-pixel-wide image. quant maps one channel value to its target level.
// The error is carried unclamped.
func diffuse(rgb []float64, w, h int, quant func(float64) float64) {
	for y := range h {
		for x := range w {
			i := (y*w + x) * 3
			for c := range 3 {
				old := rgb[i+c]
				q := quant(old)
				rgb[i+c] = q
				e := old - q
				if e == 0 {
					continue
				}
				for _, k := range floydSteinberg {
					nx, ny := x+k.dx, y+k.dy
					if nx < 0 || nx >= w || ny >= h {
						continue
					}
					rgb[(ny*w+nx)*3+c] += e * k.weight
				}
			}
		}
	}
}
