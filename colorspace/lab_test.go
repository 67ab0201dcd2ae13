package colorspace

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestFromRGB8KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Lab
		tol     float64
	}{
		{"black", 0, 0, 0, Lab{0, 0, 0}, 1e-9},
		{"white", 255, 255, 255, Lab{100, 0, 0}, 0.01},
		{"red", 255, 0, 0, Lab{53.24, 80.09, 67.20}, 0.05},
		{"green", 0, 255, 0, Lab{87.73, -86.18, 83.18}, 0.05},
		{"blue", 0, 0, 255, Lab{32.30, 79.19, -107.86}, 0.05},
		{"mid gray", 128, 128, 128, Lab{53.59, 0, 0}, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRGB8(tt.r, tt.g, tt.b)
			if !near(got.L, tt.want.L, tt.tol) || !near(got.A, tt.want.A, tt.tol) || !near(got.B, tt.want.B, tt.tol) {
				t.Errorf("FromRGB8(%d, %d, %d) = %+v, want %+v (±%v)", tt.r, tt.g, tt.b, got, tt.want, tt.tol)
			}
		})
	}
}

func TestToLabNaNFree(t *testing.T) {
	var rgb []float64
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				rgb = append(rgb, float64(r), float64(g), float64(b))
			}
		}
	}
	for v := range 256 {
		rgb = append(rgb, float64(v), 0, 0, 0, float64(v), 0, 0, 0, float64(v), 255, 255, 255)
	}

	lab := ToLab(rgb)
	if len(lab) != len(rgb) {
		t.Fatalf("len(ToLab()) = %d, want %d", len(lab), len(rgb))
	}
	for i, v := range lab {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("ToLab produced %v at %d (input %v)", v, i, rgb[i/3*3:i/3*3+3])
		}
	}
	for i := range len(lab) / 3 {
		if l := lab[i*3]; l < -1e-9 || l > 100.01 {
			t.Fatalf("L out of range: %v for %v", l, rgb[i*3:i*3+3])
		}
	}
}

func TestToLabDeterministicAndShapePreserving(t *testing.T) {
	rgb := []float64{12, 200, 77, 255, 255, 0, 3}
	a := ToLab(rgb)
	b := ToLab(rgb)
	if len(a) != len(rgb) {
		t.Fatalf("len = %d, want %d", len(a), len(rgb))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ToLab not deterministic at %d: %v != %v", i, a[i], b[i])
		}
	}
	if a[6] != 0 {
		t.Errorf("partial triple written: %v", a[6])
	}

	single := FromRGB8(12, 200, 77)
	if got := At(a, 0); !near(got.L, single.L, 1e-12) || !near(got.A, single.A, 1e-12) || !near(got.B, single.B, 1e-12) {
		t.Errorf("At(ToLab(), 0) = %+v, FromRGB8() = %+v", got, single)
	}
}

func TestToLabToleratesOutOfRange(t *testing.T) {
	lab := ToLab([]float64{-10, 300, math.NaN()})
	for i, v := range lab {
		if math.IsNaN(v) {
			t.Errorf("lab[%d] is NaN", i)
		}
	}
}

func TestDistance(t *testing.T) {
	a := Lab{50, 10, -10}
	b := Lab{53, 14, -10}
	if got := DistanceSq(a, b); got != 25 {
		t.Errorf("DistanceSq() = %v, want 25", got)
	}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}
