package watermark

import (
	"image"
	"unicode/utf8"
)

// TextSizer is implemented by fonts that report a text's width and height
// directly.
type TextSizer interface {
	TextSize(text string) (width, height int)
}

// TextBounder is implemented by fonts that report the bounding box of the
// inked text relative to the drawing origin.
type TextBounder interface {
	TextBounds(text string) image.Rectangle
}

// TextLengther is implemented by fonts that only report a text's advance
// width.
type TextLengther interface {
	TextLength(text string) int
}

type measureStrategy struct {
	name    string
	measure func(f Font, text string, size int) (Extent, bool)
}

// measureStrategies are tried in order; the first one the font supports wins.
var measureStrategies = []measureStrategy{
	{"size", func(f Font, text string, _ int) (Extent, bool) {
		s, ok := f.(TextSizer)
		if !ok {
			return Extent{}, false
		}
		w, h := s.TextSize(text)
		return Extent{Width: w, Height: h}, true
	}},
	{"bounds", func(f Font, text string, _ int) (Extent, bool) {
		b, ok := f.(TextBounder)
		if !ok {
			return Extent{}, false
		}
		r := b.TextBounds(text)
		return Extent{Width: r.Max.X - r.Min.X, Height: r.Max.Y - r.Min.Y}, true
	}},
	{"length", func(f Font, text string, size int) (Extent, bool) {
		l, ok := f.(TextLengther)
		if !ok {
			return Extent{}, false
		}
		return Extent{Width: l.TextLength(text), Height: size}, true
	}},
}

// MeasureText returns the extent of text rendered with f at the given font
// size, using the most precise measurement the font offers. Without any
// measurement support (or without a font) the extent is estimated from the
// character count.
func MeasureText(f Font, text string, size int) Extent {
	e, _ := measureText(f, text, size)
	return e
}

func measureText(f Font, text string, size int) (Extent, string) {
	if f != nil {
		for _, s := range measureStrategies {
			if e, ok := s.measure(f, text, size); ok {
				return e, s.name
			}
		}
	}
	return Extent{
		Width:  utf8.RuneCountInString(text) * (size / 2),
		Height: size,
	}, "estimate"
}
