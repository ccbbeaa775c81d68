package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Lerp interpolates each channel from c toward to by t in [0, 1], rounding
// halves up.
func (c RGB) Lerp(to RGB, t float64) RGB {
	t = clamp01(t)
	mix := func(a, b uint8) uint8 {
		return uint8(math.Floor(float64(a) + (float64(b)-float64(a))*t + 0.5))
	}
	return RGB{R: mix(c.R, to.R), G: mix(c.G, to.G), B: mix(c.B, to.B)}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Palette holds the colors used for version cells. Recent and Old are the
// ends of the age gradient; Unsupported and Unknown are used as is.
type Palette struct {
	Recent      RGB
	Old         RGB
	Unsupported RGB
	Unknown     RGB
}

// DefaultPalette returns yellow for fresh releases, green for releases at
// least three years old and red for missing support.
func DefaultPalette() Palette {
	return Palette{
		Recent:      RGB{0xbb, 0xbb, 0x33},
		Old:         RGB{0x33, 0xe0, 0x33},
		Unsupported: RGB{0xee, 0x22, 0x22},
		Unknown:     RGB{0xbb, 0xbb, 0x33},
	}
}

// NewPalette parses hex colors; empty strings keep the default.
func NewPalette(recent, old, unsupported, unknown string) (Palette, error) {
	p := DefaultPalette()
	for _, c := range []struct {
		hex string
		dst *RGB
	}{
		{recent, &p.Recent},
		{old, &p.Old},
		{unsupported, &p.Unsupported},
		{unknown, &p.Unknown},
	} {
		if c.hex == "" {
			continue
		}
		v, err := ParseHex(c.hex)
		if err != nil {
			return Palette{}, err
		}
		*c.dst = v
	}
	return p, nil
}
