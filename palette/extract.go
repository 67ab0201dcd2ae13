package palette

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
	"github.com/setanarut/pixlato/internal/pixbuf"
)

// AnalysisSize is the edge length of the square copy extraction works on
// when the source is larger.
const AnalysisSize = 256

// ExtractPolicy selects the palette extraction strategy.
type ExtractPolicy int

const (
	// Standard preserves the gamut volume: extreme anchors plus the densest
	// voxels of a 16x16x16 histogram.
	Standard ExtractPolicy = iota
	// Aesthetic greedily picks salient pixels scored by saturation, contrast
	// and hue rarity.
	Aesthetic
)

func (p ExtractPolicy) String() string {
	switch p {
	case Standard:
		return "standard"
	case Aesthetic:
		return "aesthetic"
	default:
		return fmt.Sprintf("ExtractPolicy(%d)", int(p))
	}
}

// Valid reports whether p is a known policy.
func (p ExtractPolicy) Valid() bool {
	return p == Standard || p == Aesthetic
}

// ParseExtractPolicy parses a policy name, case-insensitively.
// "geometric" is accepted as an alias for Standard.
func ParseExtractPolicy(s string) (ExtractPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "geometric", "":
		return Standard, nil
	case "aesthetic":
		return Aesthetic, nil
	}
	return 0, fmt.Errorf("extract policy %q: %w", s, ErrUnknownPolicy)
}

// Weights are the relative importances of the aesthetic score terms.
type Weights struct {
	Saturation float64
	Contrast   float64
	Rarity     float64
}

// DefaultWeights returns 0.4 / 0.3 / 0.3.
func DefaultWeights() Weights {
	return Weights{Saturation: 0.4, Contrast: 0.3, Rarity: 0.3}
}

func (w Weights) isZero() bool {
	return w.Saturation == 0 && w.Contrast == 0 && w.Rarity == 0
}

// Extract builds a palette of at most count colors from img. count is
// clamped to [1, MaxSize]. An empty image yields an empty palette.
func Extract(img image.Image, count int, policy ExtractPolicy, w Weights) (Palette, error) {
	switch policy {
	case Standard:
		return ExtractGeometric(img, count), nil
	case Aesthetic:
		return ExtractAesthetic(img, count, w), nil
	}
	return Palette{}, fmt.Errorf("could not extract palette: policy %d: %w", int(policy), ErrUnknownPolicy)
}

// analysisImage returns the opaque copy extraction scores. Sources larger
// than AnalysisSize on either side are resized to exactly
// AnalysisSize x AnalysisSize. It returns nil for an empty image.
func analysisImage(img image.Image) *image.NRGBA {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	src := pixbuf.Opaque(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if max(w, h) <= AnalysisSize {
		return src
	}
	g := gift.New(gift.Resize(AnalysisSize, AnalysisSize, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
