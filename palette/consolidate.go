package palette

import "github.com/setanarut/pixlato/colorspace"

// DefaultMergeThreshold is the Delta-E under which auto-optimal extraction
// merges near-duplicate colors.
const DefaultMergeThreshold = 6.0

// Consolidate drops colors that are perceptually too close to an earlier
// one. Colors are visited in order and kept only when their LAB distance to
// every kept color is strictly greater than threshold. The result is a
// subsequence of p, and consolidating it again changes nothing.
func Consolidate(p Palette, threshold float64) Palette {
	var out Palette
	kept := make([]colorspace.Lab, 0, p.Len())
	for _, c := range p.slots[:p.n] {
		lab := c.Lab()
		keep := true
		for _, k := range kept {
			if colorspace.Distance(lab, k) <= threshold {
				keep = false
				break
			}
		}
		if keep {
			out.Append(c)
			kept = append(kept, lab)
		}
	}
	return out
}
