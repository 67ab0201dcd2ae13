package palette

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/pixlato/colorspace"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"gonum.org/v1/gonum/floats"
)

const (
	hueBuckets = 36
	// After each pick a pixel's score is scaled by its squared Delta-E to the
	// pick over this, capped at 1: zero on the pick, rising linearly in d²
	// to full weight at a Delta-E of 15.
	suppressRadiusSq = 15.0 * 15.0
)

// ExtractAesthetic picks up to count pixels by a weighted score of
// saturation, contrast and hue rarity. After each pick every remaining
// score is attenuated by the pixel's LAB distance to the pick, so the
// palette spreads across the image's visual extremes. All-zero weights are
// replaced by DefaultWeights. The returned colors are exact pixel values
// of the analysis image.
func ExtractAesthetic(img image.Image, count int, w Weights) Palette {
	count = clampCount(count)
	if w.isZero() {
		w = DefaultWeights()
	}
	src := analysisImage(img)
	if src == nil {
		return Palette{}
	}

	rgb := pixbuf.RGB(src)
	n := len(rgb) / 3

	sat := make([]float64, n)
	contrast := make([]float64, n)
	bucket := make([]int, n)
	var hist [hueBuckets]float64
	for i := range n {
		c := colorful.Color{R: rgb[i*3] / 255, G: rgb[i*3+1] / 255, B: rgb[i*3+2] / 255}
		hi := max(c.R, c.G, c.B)
		lo := min(c.R, c.G, c.B)
		sat[i] = hi - lo
		contrast[i] = math.Abs(hi-0.5) * 2

		h, _, _ := c.Hsv()
		b := min(max(int(h/360*hueBuckets), 0), hueBuckets-1)
		bucket[i] = b
		hist[b]++
	}

	scores := make([]float64, n)
	maxRarity := 0.0
	for i := range n {
		scores[i] = 1 / (hist[bucket[i]] + 1)
		maxRarity = max(maxRarity, scores[i])
	}
	for i := range n {
		rarity := scores[i] / (maxRarity + 1e-6)
		scores[i] = w.Saturation*sat[i] + w.Contrast*contrast[i] + w.Rarity*rarity
	}
	fallback := floats.MaxIdx(scores)

	lab := colorspace.ToLab(rgb)
	var p Palette
	for range count {
		best := floats.MaxIdx(scores)
		if scores[best] <= 0 {
			break
		}
		p.Append(pixelColor(rgb, best))

		pick := colorspace.At(lab, best)
		for i := range n {
			d := colorspace.DistanceSq(colorspace.At(lab, i), pick)
			scores[i] *= min(d/suppressRadiusSq, 1)
		}
	}

	if p.Len() == 0 {
		p.Append(pixelColor(rgb, fallback))
	}
	return p
}

func pixelColor(rgb []float64, i int) Color {
	return Color{R: uint8(rgb[i*3]), G: uint8(rgb[i*3+1]), B: uint8(rgb[i*3+2])}
}
