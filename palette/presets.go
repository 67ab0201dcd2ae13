package palette

// GameBoy is the 4-shade DMG green ramp.
func GameBoy() Palette {
	return New(
		Color{15, 56, 15}, Color{48, 98, 48}, Color{139, 172, 15}, Color{155, 188, 15},
	)
}

// CGA is CGA mode 4, palette 1, high intensity.
func CGA() Palette {
	return New(
		Color{0, 0, 0}, Color{85, 255, 255}, Color{255, 85, 255}, Color{255, 255, 255},
	)
}

// Pico8 is the PICO-8 fantasy console palette.
func Pico8() Palette {
	return New(
		Color{0, 0, 0}, Color{29, 43, 83}, Color{126, 37, 83}, Color{0, 135, 81},
		Color{171, 82, 54}, Color{95, 87, 79}, Color{194, 195, 199}, Color{255, 241, 232},
		Color{255, 0, 77}, Color{255, 163, 0}, Color{255, 236, 39}, Color{0, 228, 54},
		Color{41, 173, 255}, Color{131, 118, 156}, Color{255, 119, 168}, Color{255, 204, 170},
	)
}

// GrayRamp returns levels evenly spaced grays from black to white. levels is
// clamped to [2, MaxSize].
func GrayRamp(levels int) Palette {
	levels = min(max(levels, 2), MaxSize)
	var p Palette
	for i := range levels {
		v := uint8(i * 255 / (levels - 1))
		p.Append(Color{v, v, v})
	}
	return p
}
