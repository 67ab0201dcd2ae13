package pixlato

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultBackgroundTolerance is the corner flood-fill tolerance used by
// the command line tool.
const DefaultBackgroundTolerance = 40

// Outline draws a 1-pixel border of c around the non-transparent pixels
// of img. Existing pixels are composited over the border by their own
// alpha, so the sprite grows by one pixel on every side.
func Outline(img image.Image, c color.NRGBA) *image.NRGBA {
	src := FromImage(img)
	if !pixbuf.Transparent(src) {
		return src
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()

	mask := image.NewGray(src.Rect)
	for y := range h {
		for x := range w {
			if src.Pix[pixbuf.Offset(src, x, y)+3] > 0 {
				mask.Pix[y*mask.Stride+x] = 0xff
			}
		}
	}
	g := gift.New(gift.Maximum(3, false))
	grown := image.NewGray(g.Bounds(mask.Bounds()))
	g.Draw(grown, mask)

	dst := image.NewNRGBA(src.Rect)
	border := [4]uint8{c.R, c.G, c.B, c.A}
	for y := range h {
		for x := range w {
			var base [4]uint8
			if grown.Pix[y*grown.Stride+x] > 0 {
				base = border
			}
			o := pixbuf.Offset(src, x, y)
			a := int(src.Pix[o+3])
			for ch := range 4 {
				v := int(src.Pix[o+ch])*a + int(base[ch])*(255-a)
				dst.Pix[o+ch] = uint8((v + 127) / 255)
			}
		}
	}
	return dst
}

// RemoveBackground makes the background transparent by flood-filling from
// the image corners. A pixel joins the fill when it is 4-connected to a
// filled pixel and the sum of its absolute RGBA differences from the
// corner's color is at most tolerance. Each opaque corner seeds its own
// fill with its own color. If the top-left corner is already fully
// transparent the image is returned unchanged. Cleared pixels become
// transparent black.
func RemoveBackground(img image.Image, tolerance int) *image.NRGBA {
	dst := FromImage(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if w == 0 || h == 0 || dst.Pix[3] == 0 {
		return dst
	}
	for _, c := range [4]image.Point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if dst.Pix[pixbuf.Offset(dst, c.X, c.Y)+3] != 0 {
			floodClear(dst, c, tolerance)
		}
	}
	return dst
}

func floodClear(img *image.NRGBA, seed image.Point, tolerance int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	o := pixbuf.Offset(img, seed.X, seed.Y)
	var bg [4]int
	for ch := range 4 {
		bg[ch] = int(img.Pix[o+ch])
	}
	match := func(x, y int) bool {
		o := pixbuf.Offset(img, x, y)
		d := 0
		for ch := range 4 {
			d += abs(int(img.Pix[o+ch]) - bg[ch])
		}
		return d <= tolerance
	}

	seen := make([]bool, w*h)
	seen[seed.Y*w+seed.X] = true
	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range [4]image.Point{{p.X - 1, p.Y}, {p.X + 1, p.Y}, {p.X, p.Y - 1}, {p.X, p.Y + 1}} {
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h || seen[n.Y*w+n.X] {
				continue
			}
			if match(n.X, n.Y) {
				seen[n.Y*w+n.X] = true
				stack = append(stack, n)
			}
		}
		clear(img.Pix[pixbuf.Offset(img, p.X, p.Y):][:4])
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grain adds monochrome film grain: every pixel gets one integer offset,
// uniform in [-intensity, intensity], added to R, G and B and clipped.
// Alpha is copied. The noise is drawn from a generator seeded with seed, so
// equal seeds give equal output. intensity <= 0 returns a copy.
func Grain(img image.Image, intensity int, seed uint64) *image.NRGBA {
	dst := FromImage(img)
	if intensity <= 0 {
		return dst
	}
	noise := distuv.Uniform{
		Min: -float64(intensity),
		Max: float64(intensity) + 1,
		Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		n := int(math.Floor(noise.Rand()))
		for ch := range 3 {
			dst.Pix[i+ch] = uint8(min(max(int(dst.Pix[i+ch])+n, 0), 255))
		}
	}
	return dst
}

// UpscalePreview enlarges img to w x h with nearest-neighbor sampling so
// every pixel stays a crisp square.
func UpscalePreview(img image.Image, w, h int) *image.NRGBA {
	if img == nil || w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	return FromImage(resize.Resize(uint(w), uint(h), img, resize.NearestNeighbor))
}
