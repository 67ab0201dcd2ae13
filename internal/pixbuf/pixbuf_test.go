package pixbuf

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageSubImage(t *testing.T) {
	src := NRGBA(4, 4, color.NRGBA{R: 10, A: 255})
	src.SetNRGBA(2, 2, color.NRGBA{G: 200, A: 128})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	got := FromImage(sub)
	if got.Rect != image.Rect(0, 0, 2, 2) {
		t.Fatalf("FromImage() bounds = %v", got.Rect)
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{G: 200, A: 128}) {
		t.Errorf("FromImage() (0,0) = %v", c)
	}
	got.Pix[0] = 99
	if src.Pix[Offset(src, 2, 2)] == 99 {
		t.Error("FromImage() aliases the source")
	}
}

func TestFromImageConverts(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.Pix[1] = 77
	got := FromImage(src)
	if c := got.NRGBAAt(1, 0); c != (color.NRGBA{R: 77, G: 77, B: 77, A: 255}) {
		t.Errorf("FromImage(gray) = %v", c)
	}
}

func TestOpaqueAndAlpha(t *testing.T) {
	src := NRGBA(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 40})
	if !Transparent(src) {
		t.Error("Transparent() = false for alpha 40")
	}
	op := Opaque(src)
	if Transparent(op) {
		t.Error("Opaque() left transparent pixels")
	}
	if c := op.NRGBAAt(2, 1); c != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("Opaque() pixel = %v", c)
	}
	CopyAlpha(op, src)
	if c := op.NRGBAAt(0, 0); c.A != 40 {
		t.Errorf("CopyAlpha() alpha = %d, want 40", c.A)
	}
}

func TestRGB(t *testing.T) {
	src := NRGBA(2, 1, color.NRGBA{R: 5, G: 6, B: 7, A: 0})
	got := RGB(src)
	want := []float64{5, 6, 7, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("RGB() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RGB()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGray(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
	}
	for _, tt := range tests {
		if got := Gray(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Gray(%d, %d, %d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}
