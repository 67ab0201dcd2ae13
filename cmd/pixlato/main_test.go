package main

import (
	"image/color"
	"testing"
)

func TestParseHexToColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#000", color.NRGBA{A: 255}, false},
		{"#f0a", color.NRGBA{R: 255, B: 170, A: 255}, false},
		{"#f0a8", color.NRGBA{R: 255, B: 170, A: 136}, false},
		{"#102030", color.NRGBA{R: 16, G: 32, B: 48, A: 255}, false},
		{"10203040", color.NRGBA{R: 16, G: 32, B: 48, A: 64}, false},
		{"#12345", color.NRGBA{}, true},
		{"#gg0000", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := parseHexToColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexToColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHexToColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CLICmd
		wantErr bool
	}{
		{"defaults", CLICmd{Palette: "limited", Extract: "standard", Mapping: "classic", Sort: "original", Upscale: 1}, false},
		{"preset", CLICmd{Palette: "pico-8", Extract: "aesthetic", Mapping: "perceptual", Sort: "hue", Upscale: 4, Outline: "#000"}, false},
		{"pixelate", CLICmd{Palette: "gameboy", PixelSize: 4, Downsample: "box", Sort: "original", Upscale: 1}, false},
		{"bad palette", CLICmd{Palette: "nes", Upscale: 1}, true},
		{"custom without source", CLICmd{Palette: "custom", Upscale: 1}, true},
		{"bad weights", CLICmd{Palette: "limited", Weights: []float64{1, 2}, Upscale: 1}, true},
		{"bad upscale", CLICmd{Palette: "limited", Upscale: 0}, true},
		{"bad outline", CLICmd{Palette: "limited", Outline: "red", Upscale: 1}, true},
		{"effects", CLICmd{Palette: "limited", RemoveBg: true, BgTolerance: 40, Grain: 15, Sort: "original", Upscale: 1}, false},
		{"bad tolerance", CLICmd{Palette: "limited", RemoveBg: true, BgTolerance: -1, Upscale: 1}, true},
		{"bad grain", CLICmd{Palette: "limited", Grain: -3, Upscale: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
