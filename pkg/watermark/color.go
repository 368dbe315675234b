package watermark

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is the reason reported by TryParseColor when a color
// string cannot be parsed and the default color is used instead.
var ErrInvalidColor = errors.New("invalid color")

// Color is a four channel text color. Channels are nominally 0-255 but values
// parsed from the rgb()/rgba() form are kept as given.
type Color struct {
	R, G, B, A int
}

// DefaultColor is semi-transparent white.
var DefaultColor = Color{R: 255, G: 255, B: 255, A: 128}

var namedColors = map[string]Color{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"transparent": DefaultColor,
}

type colorForm int

const (
	formNamed colorForm = iota
	formHex
	formFunctional
)

func classifyColor(spec string) colorForm {
	switch {
	case strings.HasPrefix(spec, "#"):
		return formHex
	case strings.HasPrefix(spec, "rgb("), strings.HasPrefix(spec, "rgba("):
		return formFunctional
	default:
		return formNamed
	}
}

// ParseColor converts a color string into a Color. Accepted forms are
// #RRGGBB, #RRGGBBAA, rgb(r, g, b), rgba(r, g, b, a) and the names white,
// black, red, green, blue, yellow, cyan, magenta, gray and transparent.
// Anything else yields DefaultColor.
func ParseColor(spec string) Color {
	c, _ := TryParseColor(spec)
	return c
}

// TryParseColor behaves like ParseColor but also reports why the default was
// used. The returned Color is always usable.
func TryParseColor(spec string) (Color, error) {
	var (
		c   Color
		err error
	)
	switch classifyColor(spec) {
	case formHex:
		c, err = parseHexColor(strings.TrimLeft(spec, "#"))
	case formFunctional:
		c, err = parseFunctionalColor(spec)
	default:
		var ok bool
		if c, ok = namedColors[strings.ToLower(spec)]; !ok {
			err = fmt.Errorf("%w: unknown color name %q", ErrInvalidColor, spec)
		}
	}
	if err != nil {
		return DefaultColor, err
	}
	return c, nil
}

func parseHexColor(hex string) (Color, error) {
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: hex color %q must have 6 or 8 digits", ErrInvalidColor, hex)
	}
	ch := make([]int, 4)
	ch[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: hex color %q: %v", ErrInvalidColor, hex, err)
		}
		ch[i] = int(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func parseFunctionalColor(spec string) (Color, error) {
	body := strings.TrimPrefix(spec, "rgba(")
	body = strings.TrimPrefix(body, "rgb(")
	body = strings.TrimSuffix(body, ")")

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q has %d components", ErrInvalidColor, spec, len(parts))
	}
	ch := []int{0, 0, 0, 255}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, spec, err)
		}
		ch[i] = v
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// RGB returns the color with its alpha channel dropped (fully opaque).
func (c Color) RGB() Color {
	return Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// NRGBA converts to a non-premultiplied pixel color, saturating every channel
// to 0-255.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: saturate(c.R),
		G: saturate(c.G),
		B: saturate(c.B),
		A: saturate(c.A),
	}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

func saturate(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
