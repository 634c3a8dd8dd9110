package render

// Palette holds the seed-derived visual parameters shared by all templates.
type Palette struct {
	Hue       int // base hue in degrees
	AccentHue int
	Angle     int // gradient angle in degrees
	Lightness int // background lightness percentage, depends on theme
}

// NewPalette derives a palette from seed. Identical inputs give identical palettes.
func NewPalette(seed float64, theme string) Palette {
	if seed < 0 || seed >= 1 {
		seed = 0
	}

	hue := int(seed * 360)
	p := Palette{
		Hue:       hue,
		AccentHue: (hue + 30 + int(seed*1000)%60) % 360,
		Angle:     100 + int(seed*10000)%80,
		Lightness: 14,
	}
	if theme == "light" {
		p.Lightness = 92
	}
	return p
}
