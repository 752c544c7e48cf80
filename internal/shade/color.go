package shade

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSL converts hue (turns, wrapped), saturation and lightness to RGB.
func HSL(h, s, l float32) Vec3 {
	c := colorful.Hsl(float64(Fract(h))*360, float64(s), float64(l))
	return Vec3{float32(c.R), float32(c.G), float32(c.B)}
}

// ParseHex parses "#rrggbb" or "#rgb" into an RGB colour.
func ParseHex(s string) (Vec3, error) {
	c, err := colorful.Hex(expandShortHex(s))
	if err != nil {
		return Vec3{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// MustHex is ParseHex for compile-time palette constants.
func MustHex(s string) Vec3 {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as "#rrggbb", clamping out-of-range channels.
func Hex(c Vec3) string {
	return colorful.Color{R: float64(c.X), G: float64(c.Y), B: float64(c.Z)}.Clamped().Hex()
}

func expandShortHex(s string) string {
	if len(s) == 4 && s[0] == '#' {
		return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s
}
