package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the hex colors used in a document.
type Palette struct {
	Accent    string `json:"accent"`
	Halo      string `json:"halo"`
	Plate     string `json:"plate"`
	Text      string `json:"text"`
	BadgeText string `json:"badge_text"`
}

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	black = colorful.Color{R: 0, G: 0, B: 0}
)

// NewPalette derives a palette from one accent color given as "#RRGGBB".
//
// The halo is a pale tint of the accent so connectors stay visible on dark and light
// screenshots alike; label text is a dark shade of the accent.
func NewPalette(accent string) (Palette, error) {
	c, err := colorful.Hex(accent)
	if err != nil {
		return Palette{}, fmt.Errorf("invalid accent color %q: %w", accent, err)
	}
	return Palette{
		Accent:    c.Hex(),
		Halo:      c.BlendLab(white, 0.85).Clamped().Hex(),
		Plate:     "#ffffff",
		Text:      c.BlendLab(black, 0.75).Clamped().Hex(),
		BadgeText: "#ffffff",
	}, nil
}

// elementColor returns the stroke color of the n-th element. With distinct colors
// enabled, hues are spread by the golden angle at constant chroma and lightness.
func (p Palette) elementColor(n int, distinct bool) string {
	if !distinct {
		return p.Accent
	}
	hue := float64((n * 137) % 360)
	return colorful.Hcl(hue, 0.65, 0.5).Clamped().Hex()
}
