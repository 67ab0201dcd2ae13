package palette

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ReferenceMethod selects how FromReference reads a reference image.
type ReferenceMethod int

const (
	ReferenceDominant ReferenceMethod = iota
	ReferenceKMeans
)

func (m ReferenceMethod) String() string {
	switch m {
	case ReferenceKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParseReferenceMethod parses a reference method name.
func ParseReferenceMethod(s string) (ReferenceMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dominantcolor", "dominant", "":
		return ReferenceDominant, nil
	case "kmeans":
		return ReferenceKMeans, nil
	}
	return 0, fmt.Errorf("reference method %q: %w", s, ErrUnknownPolicy)
}

// maxReferenceSamples bounds the kmeans dataset.
const maxReferenceSamples = 12000

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// FromReference builds a k-color palette from a reference image (a
// screenshot, a swatch sheet). Candidates are weighted by how much of the
// image they cover and then thinned to a diverse subset. KMeans falls back
// to the dominant-color method when clustering yields nothing.
func FromReference(img image.Image, k int, m ReferenceMethod) Palette {
	if img == nil || k <= 0 {
		return Palette{}
	}
	k = min(k, MaxSize)
	if m == ReferenceKMeans {
		if p := kmeansReference(img, k); p.Len() != 0 {
			return p
		}
	}
	return dominantReference(img, k)
}

func dominantReference(img image.Image, k int) Palette {
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: c.Weight})
	}
	return selectDiverse(weighted, k)
}

func kmeansReference(img image.Image, k int) Palette {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return Palette{}
	}

	step := 1
	if width*height > maxReferenceSamples {
		step = int(math.Sqrt(float64(width*height)/maxReferenceSamples)) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxReferenceSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			// Un-premultiply so semi-transparent pixels keep their hue.
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / float64(a),
				float64(g) / float64(a),
				float64(bl) / float64(a),
			})
		}
	}
	if len(dataset) == 0 {
		return Palette{}
	}

	cc, err := kmeans.New().Partition(dataset, min(max(k*4, k+2), len(dataset)))
	if err != nil || len(cc) == 0 {
		return Palette{}
	}
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(b.Observations), len(a.Observations))
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse seeds with the heaviest candidate, then repeatedly adds the
// candidate maximizing its LAB distance to the selection, scaled by its
// relative weight.
func selectDiverse(cands []weightedColor, k int) Palette {
	type item struct {
		col colorful.Color
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		w := c.weight
		if w <= 0 {
			w = 1e-6
		}
		maxW = max(maxW, w)
		items = append(items, item{col: c.col.Clamped(), w: w})
	}
	if len(items) == 0 {
		return Palette{}
	}
	k = min(k, len(items))

	seed := 0
	for i := range items {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	selected := make([]bool, len(items))
	selected[seed] = true
	order := []int{seed}

	for len(order) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range order {
				minD = min(minD, items[i].col.DistanceLab(items[s].col))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		order = append(order, bestIdx)
	}

	var p Palette
	for _, i := range order {
		r, g, b := items[i].col.RGB255()
		p.Append(Color{R: r, G: g, B: b})
	}
	return p
}
