package scale

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// Reported if a color string cannot be parsed.
	ErrBadColor = errors.New("scale: Bad color.")
)

// ParseColor parses a color in the form "#rgb", "#rrggbb" or
// "rgb(r, g, b)" where r, g, b are 0-255.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseRgb(s[len("rgb(") : len(s)-1])
	}
	if !strings.HasPrefix(s, "#") {
		return colorful.Color{}, ErrBadColor
	}
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, ErrBadColor
	}
	return c, nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic("scale: MustParseColor: " + s)
	}
	return c
}

// ListOfColors returns n colors spread evenly from a to b blending in HCL
// space. When n >= 2, the first color is a and the last color is b. When
// n == 1, ListOfColors returns just a. n <= 0 returns an empty slice.
func ListOfColors(n int, a, b colorful.Color) []string {
	if n <= 0 {
		return []string{}
	}
	result := make([]string, n)
	if n == 1 {
		result[0] = a.Hex()
		return result
	}
	result[0] = a.Hex()
	result[n-1] = b.Hex()
	for i := 1; i < n-1; i++ {
		t := float64(i) / float64(n-1)
		result[i] = a.BlendHcl(b, t).Clamped().Hex()
	}
	return result
}

func parseRgb(s string) (colorful.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colorful.Color{}, ErrBadColor
	}
	var channels [3]uint8
	for i := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, ErrBadColor
		}
		channels[i] = uint8(v)
	}
	return colorful.Color{
		R: float64(channels[0]) / 255.0,
		G: float64(channels[1]) / 255.0,
		B: float64(channels[2]) / 255.0,
	}, nil
}
