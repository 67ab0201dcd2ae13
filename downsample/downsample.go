// Package downsample reduces images to one pixel per block.
package downsample

import (
	"image"

	"github.com/disintegration/gift"
	"github.com/muesli/clusters"
	"github.com/setanarut/pixlato/internal/pixbuf"
	"github.com/setanarut/pixlato/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// VarianceThreshold is the summed per-channel variance above which a
	// block is split in two instead of averaged.
	VarianceThreshold = 40.0 * 3
	// Iterations of the per-block 2-means.
	Iterations = 4
)

// Downsampler runs block reductions across a worker pool. The zero value
// runs on the calling goroutine.
type Downsampler struct {
	pool *parallel.Pool
}

// New returns a Downsampler using pool, which may be nil.
func New(pool *parallel.Pool) *Downsampler {
	return &Downsampler{pool: pool}
}

// Dims returns the output size of reducing a w x h image by blockSize,
// at least 1x1. blockSize < 1 is treated as 1.
func Dims(w, h, blockSize int) (int, int) {
	bs := max(blockSize, 1)
	return max(1, w/bs), max(1, h/bs)
}

// Adaptive is Downsampler.Adaptive on the calling goroutine.
func Adaptive(img image.Image, blockSize, outW, outH int) *image.NRGBA {
	return (&Downsampler{}).Adaptive(img, blockSize, outW, outH)
}

// Adaptive reduces img to outW x outH, one pixel per blockSize x blockSize
// block, cropping whatever does not fill a block. Smooth blocks become
// their mean color. Blocks whose variance exceeds VarianceThreshold are
// split by 2-means seeded with their darkest and brightest pixel, and the
// center farther from the block mean wins, so edges keep their contrast.
// Alpha is always the block mean.
//
// blockSize is clamped to [1, w] horizontally and [1, h] vertically, so a
// block larger than one side becomes a full-width or full-height strip.
// The output size is clamped to [1, w/bw] x [1, h/bh] for the clamped
// block sides bw and bh. An empty image returns an empty image.
func (d *Downsampler) Adaptive(img image.Image, blockSize, outW, outH int) *image.NRGBA {
	src := pixbuf.FromImage(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	bs := max(blockSize, 1)
	bw, bh := min(bs, w), min(bs, h)
	outW = min(max(outW, 1), w/bw)
	outH = min(max(outH, 1), h/bh)

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	d.pool.ParallelFor(outW*outH, func(start, end int) {
		b := newBlock(bw * bh)
		for i := start; i < end; i++ {
			bx, by := i%outW, i/outW
			b.load(src, bx*bw, by*bh, bw, bh)
			o := by*dst.Stride + bx*4
			copy(dst.Pix[o:o+4], b.reduce())
		}
	})
	return dst
}

// block holds one block's channels as separate slices.
type block struct {
	ch  [4][]float64
	lum []float64
	obs clusters.Observations
}

func newBlock(n int) *block {
	b := &block{lum: make([]float64, n), obs: make(clusters.Observations, n)}
	for c := range b.ch {
		b.ch[c] = make([]float64, n)
	}
	return b
}

func (b *block) load(src *image.NRGBA, x0, y0, bw, bh int) {
	i := 0
	for y := y0; y < y0+bh; y++ {
		for x := x0; x < x0+bw; x++ {
			o := y*src.Stride + x*4
			for c := range 4 {
				b.ch[c][i] = float64(src.Pix[o+c])
			}
			i++
		}
	}
}

func (b *block) reduce() []byte {
	mean := clusters.Coordinates{stat.Mean(b.ch[0], nil), stat.Mean(b.ch[1], nil), stat.Mean(b.ch[2], nil)}
	alpha := stat.Mean(b.ch[3], nil)

	out := mean
	if b.variance() > VarianceThreshold {
		out = b.split(mean)
	}
	return []byte{uint8(out[0]), uint8(out[1]), uint8(out[2]), uint8(alpha)}
}

// variance is the sum of the unbiased per-channel RGB variances, 0 for a
// single pixel.
func (b *block) variance() float64 {
	if len(b.lum) < 2 {
		return 0
	}
	return stat.Variance(b.ch[0], nil) + stat.Variance(b.ch[1], nil) + stat.Variance(b.ch[2], nil)
}

// split runs 2-means on the block and returns the center farther from mean.
func (b *block) split(mean clusters.Coordinates) clusters.Coordinates {
	for i := range b.lum {
		r, g, bl := b.ch[0][i], b.ch[1][i], b.ch[2][i]
		b.lum[i] = 0.299*r + 0.587*g + 0.114*bl
		b.obs[i] = clusters.Coordinates{r, g, bl}
	}
	dark := b.obs[floats.MinIdx(b.lum)].Coordinates()
	bright := b.obs[floats.MaxIdx(b.lum)].Coordinates()

	cc := clusters.Clusters{
		{Center: append(clusters.Coordinates(nil), dark...)},
		{Center: append(clusters.Coordinates(nil), bright...)},
	}
	for range Iterations {
		cc.Reset()
		for _, o := range b.obs {
			ci := cc.Nearest(o)
			cc[ci].Append(o)
		}
		for ci := range cc {
			if len(cc[ci].Observations) == 0 {
				cc[ci].Center = append(clusters.Coordinates(nil), mean...)
				continue
			}
			cc[ci].Recenter()
		}
	}

	if cc[1].Center.Distance(mean) > cc[0].Center.Distance(mean) {
		return cc[1].Center
	}
	return cc[0].Center
}

// Box reduces img to outW x outH (at least 1x1) by box-filter averaging.
func Box(img image.Image, outW, outH int) *image.NRGBA {
	src := pixbuf.FromImage(img)
	if src.Rect.Empty() {
		return src
	}
	g := gift.New(gift.Resize(max(outW, 1), max(outH, 1), gift.BoxResampling))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
