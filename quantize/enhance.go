package quantize

import (
	"image"

	"github.com/setanarut/pixlato/internal/pixbuf"
)

const (
	// perceptualSaturation compensates for palettes that read desaturated
	// after LAB matching.
	perceptualSaturation = 1.2
	// lowColorContrast separates darks from lights before dithering onto
	// palettes of LowColorLimit slots or fewer.
	lowColorContrast = 1.15
)

// Saturate blends each pixel away from its own 601 luma by factor:
// out = luma + factor*(c - luma), clipped and truncated. Factor 1 is the
// identity, 0 gives grayscale. Alpha is copied.
func Saturate(img *image.NRGBA, factor float64) *image.NRGBA {
	dst := pixbuf.FromImage(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		px := dst.Pix[i : i+3 : i+3]
		l := float64(pixbuf.Gray(px[0], px[1], px[2]))
		px[0] = blend(l, float64(px[0]), factor)
		px[1] = blend(l, float64(px[1]), factor)
		px[2] = blend(l, float64(px[2]), factor)
	}
	return dst
}

// Contrast blends each channel away from the image's mean luma by factor.
// Alpha is copied.
func Contrast(img *image.NRGBA, factor float64) *image.NRGBA {
	dst := pixbuf.FromImage(img)
	n := len(dst.Pix) / 4
	if n == 0 {
		return dst
	}
	var sum int
	for i := 0; i < len(dst.Pix); i += 4 {
		sum += int(pixbuf.Gray(dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2]))
	}
	mean := float64(int(float64(sum)/float64(n) + 0.5))
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := range 3 {
			dst.Pix[i+c] = blend(mean, float64(dst.Pix[i+c]), factor)
		}
	}
	return dst
}

func blend(base, v, factor float64) uint8 {
	out := base + factor*(v-base)
	switch {
	case out <= 0:
		return 0
	case out >= 255:
		return 255
	}
	return uint8(out)
}
