package downsample

import (
	"image"
	"image/color"
	"testing"

	"github.com/muesli/clusters"
	"github.com/setanarut/pixlato/parallel"
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestAdaptiveUniform(t *testing.T) {
	tests := []struct {
		name         string
		w, h, bs     int
		outW, outH   int
		wantW, wantH int
		c            color.NRGBA
	}{
		{"red 4x4 by 2", 4, 4, 2, 2, 2, 2, 2, color.NRGBA{R: 255, A: 255}},
		{"gray crop", 7, 5, 2, 3, 2, 3, 2, color.NRGBA{R: 90, G: 90, B: 90, A: 128}},
		{"block clamp", 4, 4, 100, 9, 9, 1, 1, color.NRGBA{G: 200, A: 255}},
		{"zero block", 3, 2, 0, 3, 2, 3, 2, color.NRGBA{B: 17, A: 255}},
		{"zero out", 6, 6, 3, 0, -1, 1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Adaptive(fill(tt.w, tt.h, tt.c), tt.bs, tt.outW, tt.outH)
			if out.Rect.Dx() != tt.wantW || out.Rect.Dy() != tt.wantH {
				t.Fatalf("Adaptive() size = %v, want %dx%d", out.Rect.Size(), tt.wantW, tt.wantH)
			}
			for y := range tt.wantH {
				for x := range tt.wantW {
					if got := out.NRGBAAt(x, y); got != tt.c {
						t.Errorf("Adaptive() pixel (%d,%d) = %v, want %v", x, y, got, tt.c)
					}
				}
			}
		})
	}
}

func TestAdaptivePreservesContrast(t *testing.T) {
	img := fill(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{A: 255})

	out := Adaptive(img, 2, 1, 1)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{A: 255}) {
		t.Errorf("Adaptive() = %v, want the black minority kept", got)
	}
}

func TestAdaptiveAveragesSmoothBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 50, B: 10, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 102, G: 52, B: 12, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 100, G: 50, B: 10, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 102, G: 52, B: 12, A: 255})

	out := Adaptive(img, 2, 1, 1)
	want := color.NRGBA{R: 101, G: 51, B: 11, A: 191}
	if got := out.NRGBAAt(0, 0); got != want {
		t.Errorf("Adaptive() = %v, want %v", got, want)
	}
}

func TestAdaptiveParallelMatchesSequential(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 37, 29))
	for y := range 29 {
		for x := range 37 {
			v := uint8((x * 53) ^ (y * 97))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: uint8(x * 7), B: 255 - v, A: 255})
		}
	}
	pool := parallel.New(4)
	defer pool.Close()

	seq := Adaptive(img, 3, 12, 9)
	par := New(pool).Adaptive(img, 3, 12, 9)
	for i := range seq.Pix {
		if seq.Pix[i] != par.Pix[i] {
			t.Fatalf("parallel result differs at byte %d: %d != %d", i, par.Pix[i], seq.Pix[i])
		}
	}
}

func TestAdaptiveBlockLargerThanOneSide(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	img := fill(4, 100, red)
	for y := 50; y < 100; y++ {
		for x := range 4 {
			img.SetNRGBA(x, y, blue)
		}
	}

	w, h := Dims(4, 100, 50)
	out := Adaptive(img, 50, w, h)
	if out.Rect.Dx() != 1 || out.Rect.Dy() != 2 {
		t.Fatalf("Adaptive() size = %v, want 1x2", out.Rect.Size())
	}
	if got := out.NRGBAAt(0, 0); got != red {
		t.Errorf("Adaptive() top = %v, want %v", got, red)
	}
	if got := out.NRGBAAt(0, 1); got != blue {
		t.Errorf("Adaptive() bottom = %v, want %v", got, blue)
	}
}

func TestSplitCoincidentSeedsKeepsMean(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	b := newBlock(4)
	b.load(fill(2, 2, c), 0, 0, 2, 2)

	mean := clusters.Coordinates{200, 100, 50}
	got := b.split(mean)
	for i := range mean {
		if got[i] != mean[i] {
			t.Fatalf("split() = %v, want the block mean %v", got, mean)
		}
	}
}

func TestAdaptiveEmpty(t *testing.T) {
	out := Adaptive(image.NewNRGBA(image.Rect(0, 0, 0, 3)), 2, 1, 1)
	if !out.Rect.Empty() {
		t.Errorf("Adaptive(empty) = %v, want empty", out.Rect)
	}
}

func TestDims(t *testing.T) {
	tests := []struct {
		w, h, bs     int
		wantW, wantH int
	}{
		{100, 50, 4, 25, 12},
		{3, 3, 8, 1, 1},
		{10, 10, 0, 10, 10},
		{10, 7, -2, 10, 7},
	}
	for _, tt := range tests {
		if w, h := Dims(tt.w, tt.h, tt.bs); w != tt.wantW || h != tt.wantH {
			t.Errorf("Dims(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.bs, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestBox(t *testing.T) {
	out := Box(fill(8, 6, color.NRGBA{R: 40, G: 80, B: 120, A: 255}), 4, 3)
	if out.Rect.Dx() != 4 || out.Rect.Dy() != 3 {
		t.Fatalf("Box() size = %v, want 4x3", out.Rect.Size())
	}
	c := out.NRGBAAt(1, 1)
	if c.R < 39 || c.R > 41 || c.G < 79 || c.G > 81 {
		t.Errorf("Box() pixel = %v, want about {40 80 120 255}", c)
	}
	if out := Box(fill(2, 2, color.NRGBA{A: 255}), 0, 0); out.Rect.Dx() != 1 || out.Rect.Dy() != 1 {
		t.Errorf("Box(0, 0) size = %v, want 1x1", out.Rect.Size())
	}
}
