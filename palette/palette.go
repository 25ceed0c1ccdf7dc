// Package palette holds the color tables shared by indexed PNG documents and
// pixel buffers.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teacat/noire"
)

const MaxEntries = 256

// Color is one palette entry, in R, G, B, A order.
type Color [4]uint8

func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

func (c Color) Opaque() bool {
	return c[3] == 255
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c[0], c[1], c[2], c[3])
}

// ParseColor reads "#rgb", "#rrggbb" or "#rrggbbaa". Alpha is 255 unless given.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == len(s) {
		return Color{}, fmt.Errorf("color %q must start with '#'", s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return Color{}, fmt.Errorf("color %q is not hexadecimal", s)
	}

	alpha := uint8(255)
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	case 8:
		a, _ := strconv.ParseUint(hex[6:], 16, 8)
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("color %q must have 3, 6 or 8 hex digits", s)
	}

	r, g, b := noire.NewHex(hex).RGB()
	return Color{uint8(math.Round(r)), uint8(math.Round(g)), uint8(math.Round(b)), alpha}, nil
}

// Palette is an ordered color table; a pixel value is an index into it.
type Palette []Color

// Parse builds a palette from hex color strings.
func Parse(colors ...string) (Palette, error) {
	if len(colors) > MaxEntries {
		return nil, fmt.Errorf("palette has %d entries, at most %d allowed", len(colors), MaxEntries)
	}
	p := make(Palette, len(colors))
	for i, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	return append(Palette(nil), p...)
}

// HasAlphaBelow reports whether any entry has alpha strictly below threshold.
func (p Palette) HasAlphaBelow(threshold uint8) bool {
	for _, c := range p {
		if c[3] < threshold {
			return true
		}
	}
	return false
}

// Closest returns the index of the entry nearest to channels by squared
// Euclidean distance over the first len(channels) components (at most 4).
// Ties go to the lowest index. Returns -1 for an empty palette.
func (p Palette) Closest(channels []uint8) int {
	n := min(len(channels), 4)
	best, bestDist := -1, math.MaxInt
	for i, c := range p {
		dist := 0
		for ch := 0; ch < n; ch++ {
			d := int(c[ch]) - int(channels[ch])
			dist += d * d
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}
