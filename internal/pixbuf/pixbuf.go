// Package pixbuf holds the small NRGBA buffer helpers shared by the
// quantization packages.
package pixbuf

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// FromImage returns a zero-origin NRGBA copy of img. The result never
// aliases img.
func FromImage(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		for y := range b.Dy() {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[so:so+b.Dx()*4])
		}
		return dst
	}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Opaque returns a zero-origin copy of img with every alpha set to 255 and
// the straight RGB values kept.
func Opaque(img image.Image) *image.NRGBA {
	dst := FromImage(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// RGB returns the interleaved RGB samples of a zero-origin NRGBA buffer as
// floats in 0-255.
func RGB(img *image.NRGBA) []float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]float64, 0, w*h*3)
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, float64(row[x]), float64(row[x+1]), float64(row[x+2]))
		}
	}
	return out
}

// Offset returns the Pix offset of (x, y) in a zero-origin buffer.
func Offset(img *image.NRGBA, x, y int) int {
	return y*img.Stride + x*4
}

// Transparent reports whether img has any pixel that is not fully opaque.
func Transparent(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return true
		}
	}
	return false
}

// CopyAlpha copies the alpha channel of src into dst. Both buffers must be
// zero-origin and the same size.
func CopyAlpha(dst, src *image.NRGBA) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := range h {
		for x := range w {
			dst.Pix[Offset(dst, x, y)+3] = src.Pix[Offset(src, x, y)+3]
		}
	}
}

// Gray returns the 8-bit ITU-R 601 luma of an RGB triple, rounded the way
// 8-bit "L" conversions do it.
func Gray(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// NRGBA returns a w x h buffer filled with c.
func NRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
