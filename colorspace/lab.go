// Package colorspace converts sRGB colors to CIE LAB (D65, 2° observer).
package colorspace

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// D65 reference white.
const (
	WhiteX = 0.95047
	WhiteY = 1.0
	WhiteZ = 1.08883
)

const (
	labEpsilon = 0.008856
	labKappa   = 7.787
)

// Linear sRGB -> XYZ, D65 (Lindbloom).
var rgbToXYZ = mat.NewDense(3, 3, []float64{
	0.4124564, 0.3575761, 0.1804375,
	0.2126729, 0.7151522, 0.0721750,
	0.0193339, 0.1191920, 0.9503041,
})

// Lab is a CIE LAB color. L is in [0, 100], A and B roughly in [-128, 127].
type Lab struct {
	L, A, B float64
}

// ToLab converts interleaved RGB triples (0-255) to interleaved LAB triples.
// The result has the same length as rgb; a trailing partial triple is
// left as zero.
func ToLab(rgb []float64) []float64 {
	dst := make([]float64, len(rgb))
	ToLabInto(dst, rgb)
	return dst
}

// ToLabInto is ToLab writing into dst, which must be at least as long as src.
// dst and src may not overlap.
func ToLabInto(dst, src []float64) {
	n := len(src) / 3
	if n == 0 {
		return
	}

	lin := make([]float64, n*3)
	for i, v := range src[:n*3] {
		lin[i] = toLinear(clamp01(v / 255))
	}

	out := mat.NewDense(n, 3, dst[:n*3])
	out.Mul(mat.NewDense(n, 3, lin), rgbToXYZ.T())

	for i := range n {
		px := dst[i*3 : i*3+3]
		fx := f(px[0] / WhiteX)
		fy := f(px[1] / WhiteY)
		fz := f(px[2] / WhiteZ)
		px[0] = 116*fy - 16
		px[1] = 500 * (fx - fy)
		px[2] = 200 * (fy - fz)
	}
}

// FromRGB8 converts a single 8-bit color.
func FromRGB8(r, g, b uint8) Lab {
	var out [3]float64
	ToLabInto(out[:], []float64{float64(r), float64(g), float64(b)})
	return Lab{L: out[0], A: out[1], B: out[2]}
}

// DistanceSq returns the squared Euclidean distance (Delta-E 1976 squared).
func DistanceSq(a, b Lab) float64 {
	dL := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return dL*dL + da*da + db*db
}

// Distance returns the Euclidean distance (Delta-E 1976).
func Distance(a, b Lab) float64 {
	return math.Sqrt(DistanceSq(a, b))
}

// At returns the i-th triple of an interleaved LAB slice.
func At(lab []float64, i int) Lab {
	return Lab{L: lab[i*3], A: lab[i*3+1], B: lab[i*3+2]}
}

func toLinear(x float64) float64 {
	if x > 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

func f(t float64) float64 {
	t = max(t, 0)
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + 16.0/116.0
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
