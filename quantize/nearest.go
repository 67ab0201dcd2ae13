package quantize

import (
	"image"
	"math"

	"github.com/setanarut/pixlato/colorspace"
	"github.com/setanarut/pixlato/palette"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// chunkPixels bounds the LAB working set of one conversion.
	chunkPixels = 100_000
	// tileRows bounds the distance matrix of one product to
	// tileRows x palette.MaxSize.
	tileRows = 4096
)

// nearestRGB writes the RGB-nearest slot of every src pixel into dst.
// Both buffers are zero-origin and the same size.
func (m *Mapper) nearestRGB(dst, src *image.NRGBA, p palette.Palette) {
	w := src.Rect.Dx()
	m.pool.ParallelFor(src.Rect.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			for x := range w {
				o := y*src.Stride + x*4
				c := p.Convert(palette.Color{R: src.Pix[o], G: src.Pix[o+1], B: src.Pix[o+2]})
				setRGB(dst, y*dst.Stride+x*4, c)
			}
		}
	})
}

// nearestLab writes the LAB-nearest slot of every src pixel into dst.
// Pixels are converted chunkPixels at a time.
func (m *Mapper) nearestLab(dst, src *image.NRGBA, p palette.Palette) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	n := w * h
	if n == 0 {
		return
	}
	slots := p.Colors()
	labs := p.Labs()

	rgb := make([]float64, min(n, chunkPixels)*3)
	lab := make([]float64, len(rgb))
	idx := make([]int, min(n, chunkPixels))
	for start := 0; start < n; start += chunkPixels {
		end := min(start+chunkPixels, n)
		cn := end - start
		for i := range cn {
			x, y := (start+i)%w, (start+i)/w
			o := y*src.Stride + x*4
			rgb[i*3] = float64(src.Pix[o])
			rgb[i*3+1] = float64(src.Pix[o+1])
			rgb[i*3+2] = float64(src.Pix[o+2])
		}
		colorspace.ToLabInto(lab[:cn*3], rgb[:cn*3])

		if m.backend == BackendAccelerated {
			m.argminBatched(idx[:cn], lab[:cn*3], labs)
		} else {
			m.argminScalar(idx[:cn], lab[:cn*3], labs)
		}

		for i := range cn {
			x, y := (start+i)%w, (start+i)/w
			setRGB(dst, y*dst.Stride+x*4, slots[idx[i]])
		}
	}
}

// argminScalar stores in idx the nearest slot of every LAB triple.
func (m *Mapper) argminScalar(idx []int, lab, labs []float64) {
	k := len(labs) / 3
	m.pool.ParallelFor(len(idx), func(start, end int) {
		for i := start; i < end; i++ {
			px := colorspace.At(lab, i)
			best, bestD := 0, math.Inf(1)
			for j := range k {
				if d := colorspace.DistanceSq(px, colorspace.At(labs, j)); d < bestD {
					best, bestD = j, d
				}
			}
			idx[i] = best
		}
	})
}

// argminBatched is argminScalar computing each tile's distances as
// |p|^2 - 2 x.p, the |x|^2 term being constant per row.
func (m *Mapper) argminBatched(idx []int, lab, labs []float64) {
	k := len(labs) / 3
	pal := mat.NewDense(k, 3, labs)
	norms := make([]float64, k)
	for j := range k {
		row := labs[j*3 : j*3+3]
		norms[j] = floats.Dot(row, row)
	}

	tiles := (len(idx) + tileRows - 1) / tileRows
	m.pool.ParallelFor(tiles, func(start, end int) {
		var prod mat.Dense
		for t := start; t < end; t++ {
			lo := t * tileRows
			hi := min(lo+tileRows, len(idx))
			x := mat.NewDense(hi-lo, 3, lab[lo*3:hi*3])
			prod.Reset()
			prod.Mul(x, pal.T())
			for i := range hi - lo {
				row := prod.RawRowView(i)
				floats.Scale(-2, row)
				floats.Add(row, norms)
				idx[lo+i] = floats.MinIdx(row)
			}
		}
	})
}

func setRGB(img *image.NRGBA, o int, c palette.Color) {
	img.Pix[o] = c.R
	img.Pix[o+1] = c.G
	img.Pix[o+2] = c.B
}
