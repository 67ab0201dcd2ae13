// Package quantize maps images onto fixed palettes and cleans up the result.
package quantize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/setanarut/pixlato/palette"
)

var (
	// ErrUnknownPolicy is palette.ErrUnknownPolicy, repeated here so callers
	// of this package need not import palette to match it.
	ErrUnknownPolicy = palette.ErrUnknownPolicy
	// ErrEmptyPalette is returned when asked to map onto a palette with no
	// meaningful slots.
	ErrEmptyPalette = errors.New("empty palette")
	// ErrNilImage is returned when Map or one of the reductions gets a nil
	// image.
	ErrNilImage = errors.New("nil image")
)

// MappingPolicy selects the distance used to match pixels to palette slots.
type MappingPolicy int

const (
	// Classic matches by squared Euclidean distance in RGB.
	Classic MappingPolicy = iota
	// Perceptual boosts saturation first and matches in CIE LAB.
	Perceptual
)

func (p MappingPolicy) String() string {
	switch p {
	case Classic:
		return "classic"
	case Perceptual:
		return "perceptual"
	default:
		return fmt.Sprintf("MappingPolicy(%d)", int(p))
	}
}

// Valid reports whether p is a known policy.
func (p MappingPolicy) Valid() bool {
	return p == Classic || p == Perceptual
}

// ParseMappingPolicy parses a policy name, case-insensitively.
func ParseMappingPolicy(s string) (MappingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "":
		return Classic, nil
	case "perceptual":
		return Perceptual, nil
	}
	return 0, fmt.Errorf("mapping policy %q: %w", s, ErrUnknownPolicy)
}
