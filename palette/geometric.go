package palette

import (
	"cmp"
	"image"
	"slices"

	"github.com/setanarut/pixlato/colorspace"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"gonum.org/v1/gonum/floats"
)

const (
	voxelBins  = 16
	voxelWidth = 256 / voxelBins
	// Voxel candidates must be farther than this from every chosen color.
	admitRadiusSq = 20.0 * 20.0
)

type voxel struct {
	index   int
	density int
}

// ExtractGeometric builds a palette that preserves the image's color gamut.
// Up to count/2 slots go to extreme anchors (per-channel minima and maxima,
// darkest, brightest and most saturated pixel); the rest are filled from
// the densest voxels of a 16x16x16 RGB histogram whose centers are far
// enough, in LAB, from everything already chosen.
func ExtractGeometric(img image.Image, count int) Palette {
	count = clampCount(count)
	src := analysisImage(img)
	if src == nil {
		return Palette{}
	}
	rgb := pixbuf.RGB(src)
	n := len(rgb) / 3

	var p Palette
	var chosen []colorspace.Lab
	for _, c := range anchors(rgb, n) {
		if p.Len() >= count/2 {
			break
		}
		p.Append(c)
		chosen = append(chosen, c.Lab())
	}

	var hist [voxelBins * voxelBins * voxelBins]int
	for i := range n {
		hist[voxelIndex(rgb[i*3], rgb[i*3+1], rgb[i*3+2])]++
	}
	voxels := make([]voxel, 0, 256)
	for i, d := range hist {
		if d > 0 {
			voxels = append(voxels, voxel{index: i, density: d})
		}
	}
	slices.SortStableFunc(voxels, func(a, b voxel) int {
		return cmp.Compare(b.density, a.density)
	})

	for _, v := range voxels {
		if p.Len() >= count {
			break
		}
		c := voxelCenter(v.index)
		lab := c.Lab()
		admit := true
		for _, o := range chosen {
			if colorspace.DistanceSq(lab, o) <= admitRadiusSq {
				admit = false
				break
			}
		}
		if admit {
			p.Append(c)
			chosen = append(chosen, lab)
		}
	}
	return p
}

// anchors returns the deduplicated extreme pixels in a fixed order: min R,
// max R, min G, max G, min B, max B, min sum, max sum, max saturation.
func anchors(rgb []float64, n int) []Color {
	ch := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	sum := make([]float64, n)
	sat := make([]float64, n)
	for i := range n {
		r, g, b := rgb[i*3], rgb[i*3+1], rgb[i*3+2]
		ch[0][i], ch[1][i], ch[2][i] = r, g, b
		sum[i] = r + g + b
		sat[i] = max(r, g, b) - min(r, g, b)
	}

	idx := make([]int, 0, 9)
	for _, c := range ch {
		idx = append(idx, floats.MinIdx(c), floats.MaxIdx(c))
	}
	idx = append(idx, floats.MinIdx(sum), floats.MaxIdx(sum), floats.MaxIdx(sat))

	out := make([]Color, 0, len(idx))
	for _, i := range idx {
		c := pixelColor(rgb, i)
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func voxelIndex(r, g, b float64) int {
	bin := func(v float64) int {
		return min(int(v*voxelBins/255), voxelBins-1)
	}
	return (bin(r)*voxelBins+bin(g))*voxelBins + bin(b)
}

func voxelCenter(index int) Color {
	b := index % voxelBins
	g := index / voxelBins % voxelBins
	r := index / (voxelBins * voxelBins)
	return Color{
		R: uint8(r*voxelWidth + voxelWidth/2),
		G: uint8(g*voxelWidth + voxelWidth/2),
		B: uint8(b*voxelWidth + voxelWidth/2),
	}
}
