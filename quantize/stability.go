package quantize

import (
	"bytes"
	"image"
	"sync/atomic"

	"github.com/setanarut/pixlato/internal/pixbuf"
)

// neighbors lists the 8-connected offsets as (dx, dy).
var neighbors = [8][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// StabilityFilter removes isolated pixels: a pixel whose RGB matches none
// of its 8 neighbors takes the RGB of the pixel below it. Edges wrap
// around. Every pass decides from the state at the start of the pass, and
// passes stop early once nothing is isolated. passes < 1 is treated as 1.
// Alpha is copied.
func (m *Mapper) StabilityFilter(img *image.NRGBA, passes int) *image.NRGBA {
	if img == nil {
		return nil
	}
	cur := pixbuf.FromImage(img)
	w, h := cur.Rect.Dx(), cur.Rect.Dy()
	if w == 0 || h == 0 {
		return cur
	}
	next := pixbuf.FromImage(cur)

	for range max(passes, 1) {
		var changed atomic.Bool
		m.pool.ParallelFor(h, func(start, end int) {
			for y := start; y < end; y++ {
				for x := range w {
					o := y*cur.Stride + x*4
					px := cur.Pix[o : o+3]
					if !isolated(cur, px, x, y, w, h) {
						copy(next.Pix[o:o+3], px)
						continue
					}
					b := (y+1)%h*cur.Stride + x*4
					copy(next.Pix[o:o+3], cur.Pix[b:b+3])
					changed.Store(true)
				}
			}
		})
		if !changed.Load() {
			break
		}
		cur, next = next, cur
	}
	return cur
}

func isolated(img *image.NRGBA, px []byte, x, y, w, h int) bool {
	for _, d := range neighbors {
		nx := (x + d[0] + w) % w
		ny := (y + d[1] + h) % h
		o := ny*img.Stride + nx*4
		if bytes.Equal(px, img.Pix[o:o+3]) {
			return false
		}
	}
	return true
}

// StabilityFilter is Mapper.StabilityFilter on the calling goroutine.
func StabilityFilter(img *image.NRGBA, passes int) *image.NRGBA {
	return (&Mapper{}).StabilityFilter(img, passes)
}
