// Package palette holds fixed-capacity color palettes and the strategies
// that build them from images.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/setanarut/pixlato/colorspace"
)

// MaxSize is the maximum number of meaningful slots in a Palette.
const MaxSize = 256

// LowColorLimit is the largest palette still treated as "low color"
// (retro 2-4 color presets).
const LowColorLimit = 4

// ErrUnknownPolicy is returned when a policy or palette name is not one of
// the known variants.
var ErrUnknownPolicy = errors.New("unknown policy")

// Color is an opaque 8-bit sRGB color.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Lab returns the CIE LAB coordinates of c.
func (c Color) Lab() colorspace.Lab {
	return colorspace.FromRGB8(c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorOf drops the alpha of any color.Color, keeping straight RGB.
func ColorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// Palette is an ordered set of up to MaxSize colors. Only the first Len()
// slots are meaningful; the rest of the backing array is never matched.
type Palette struct {
	slots [MaxSize]Color
	n     int
}

// New builds a palette from colors, keeping at most MaxSize of them.
func New(colors ...Color) Palette {
	var p Palette
	for _, c := range colors {
		if !p.Append(c) {
			break
		}
	}
	return p
}

// FromColorPalette converts a standard library palette.
func FromColorPalette(cp color.Palette) Palette {
	var p Palette
	for _, c := range cp {
		if !p.Append(ColorOf(c)) {
			break
		}
	}
	return p
}

// Append adds c to the next free slot. It reports false when full.
func (p *Palette) Append(c Color) bool {
	if p.n >= MaxSize {
		return false
	}
	p.slots[p.n] = c
	p.n++
	return true
}

// Len returns the number of meaningful slots.
func (p Palette) Len() int { return p.n }

// At returns slot i. It panics if i is not a meaningful slot.
func (p Palette) At(i int) Color {
	if i < 0 || i >= p.n {
		panic(fmt.Sprintf("palette: slot %d out of range [0, %d)", i, p.n))
	}
	return p.slots[i]
}

// IsLowColor reports whether the palette has at most LowColorLimit
// meaningful slots.
func (p Palette) IsLowColor() bool { return p.n <= LowColorLimit }

// Colors returns a copy of the meaningful slots.
func (p Palette) Colors() []Color {
	out := make([]Color, p.n)
	copy(out, p.slots[:p.n])
	return out
}

// ColorPalette returns the meaningful slots as a color.Palette.
func (p Palette) ColorPalette() color.Palette {
	out := make(color.Palette, p.n)
	for i, c := range p.slots[:p.n] {
		out[i] = c
	}
	return out
}

// Labs returns the LAB coordinates of the meaningful slots as interleaved
// triples.
func (p Palette) Labs() []float64 {
	rgb := make([]float64, 0, p.n*3)
	for _, c := range p.slots[:p.n] {
		rgb = append(rgb, float64(c.R), float64(c.G), float64(c.B))
	}
	return colorspace.ToLab(rgb)
}

// Index returns the slot nearest to c in RGB, or -1 for an empty palette.
func (p Palette) Index(c Color) int {
	ret, bestSum := -1, math.MaxInt
	for i, v := range p.slots[:p.n] {
		dr := int(c.R) - int(v.R)
		dg := int(c.G) - int(v.G)
		db := int(c.B) - int(v.B)
		sum := dr*dr + dg*dg + db*db
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

// Convert returns the slot nearest to c. An empty palette returns c.
func (p Palette) Convert(c Color) Color {
	if i := p.Index(c); i >= 0 {
		return p.slots[i]
	}
	return c
}

// Contains reports whether c is one of the meaningful slots.
func (p Palette) Contains(c Color) bool {
	for _, v := range p.slots[:p.n] {
		if v == c {
			return true
		}
	}
	return false
}

func (p Palette) String() string {
	parts := make([]string, p.n)
	for i, c := range p.slots[:p.n] {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func clampCount(count int) int {
	return min(max(count, 1), MaxSize)
}
