package palette

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// SortMethod orders the slots of a palette.
type SortMethod int

const (
	SortOriginal SortMethod = iota
	// SortLuminance puts the brightest color first.
	SortLuminance
	// SortHue orders by HSV hue. Grays have hue 0.
	SortHue
)

func (m SortMethod) String() string {
	switch m {
	case SortOriginal:
		return "original"
	case SortLuminance:
		return "luminance"
	case SortHue:
		return "hue"
	default:
		return fmt.Sprintf("SortMethod(%d)", int(m))
	}
}

// ParseSortMethod parses a sort method name.
func ParseSortMethod(s string) (SortMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "original", "":
		return SortOriginal, nil
	case "luminance", "brightness":
		return SortLuminance, nil
	case "hue":
		return SortHue, nil
	}
	return 0, fmt.Errorf("sort method %q: %w", s, ErrUnknownPolicy)
}

// Sort returns a reordered copy of p. Equal keys keep their relative order.
func Sort(p Palette, m SortMethod) Palette {
	colors := p.Colors()
	switch m {
	case SortLuminance:
		slices.SortStableFunc(colors, func(a, b Color) int {
			return cmp.Compare(luminance(b), luminance(a))
		})
	case SortHue:
		slices.SortStableFunc(colors, func(a, b Color) int {
			return cmp.Compare(hue(a), hue(b))
		})
	}
	return New(colors...)
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// luminance weights the encoded channels with the Rec. 709 coefficients.
func luminance(c Color) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

func hue(c Color) float64 {
	h, _, _ := toColorful(c).Hsv()
	return h
}
