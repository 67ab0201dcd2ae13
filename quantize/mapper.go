package quantize

import (
	"fmt"
	"image"

	"github.com/setanarut/pixlato/internal/pixbuf"
	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/parallel"
)

// Mapper maps pixels onto palettes. A Mapper holds no per-image state and
// is safe for concurrent use. The zero value runs sequentially with the
// scalar backend.
type Mapper struct {
	pool    *parallel.Pool
	backend Backend
}

// NewMapper returns a Mapper that splits work across pool and searches LAB
// with backend. pool may be nil.
func NewMapper(pool *parallel.Pool, backend Backend) *Mapper {
	return &Mapper{pool: pool, backend: backend}
}

// Backend returns the LAB search backend.
func (m *Mapper) Backend() Backend { return m.backend }

// Map replaces every pixel of img with a slot of p. Only the meaningful
// slots are candidates. Alpha never takes part in matching and is copied
// unchanged to the result.
//
// With dither set the image is error-diffused in raster order; palettes of
// palette.LowColorLimit slots or fewer get a contrast pre-boost first.
// Perceptual mapping boosts saturation before matching and, without
// dither, matches in CIE LAB.
func (m *Mapper) Map(img *image.NRGBA, p palette.Palette, dither bool, policy MappingPolicy) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if p.Len() == 0 {
		return nil, ErrEmptyPalette
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("could not map image: %v: %w", policy, ErrUnknownPolicy)
	}

	dst := pixbuf.FromImage(img)
	src := pixbuf.Opaque(img)
	if dither && p.IsLowColor() {
		src = Contrast(src, lowColorContrast)
	}
	if policy == Perceptual {
		src = Saturate(src, perceptualSaturation)
	}

	switch {
	case dither:
		ditherInto(dst, src, p)
	case policy == Perceptual:
		m.nearestLab(dst, src, p)
	default:
		m.nearestRGB(dst, src, p)
	}
	return dst, nil
}
