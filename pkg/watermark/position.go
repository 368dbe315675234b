package watermark

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// DefaultPadding is the margin in pixels kept between the text and every
// image edge it is anchored to.
const DefaultPadding = 10

// ErrUnknownPosition is returned by ParsePosition for tokens outside the
// nine supported placements.
var ErrUnknownPosition = errors.New("unknown position")

// Position selects where the text is anchored on the image.
type Position string

const (
	LeftTop      Position = "left-top"
	CenterTop    Position = "center-top"
	RightTop     Position = "right-top"
	LeftCenter   Position = "left-center"
	Center       Position = "center"
	RightCenter  Position = "right-center"
	LeftBottom   Position = "left-bottom"
	CenterBottom Position = "center-bottom"
	RightBottom  Position = "right-bottom"
)

// Positions lists the supported placements in row order.
var Positions = []Position{
	LeftTop, CenterTop, RightTop,
	LeftCenter, Center, RightCenter,
	LeftBottom, CenterBottom, RightBottom,
}

type anchor int

const (
	anchorStart anchor = iota
	anchorMiddle
	anchorEnd
)

var positionAnchors = map[Position][2]anchor{
	LeftTop:      {anchorStart, anchorStart},
	CenterTop:    {anchorMiddle, anchorStart},
	RightTop:     {anchorEnd, anchorStart},
	LeftCenter:   {anchorStart, anchorMiddle},
	Center:       {anchorMiddle, anchorMiddle},
	RightCenter:  {anchorEnd, anchorMiddle},
	LeftBottom:   {anchorStart, anchorEnd},
	CenterBottom: {anchorMiddle, anchorEnd},
	RightBottom:  {anchorEnd, anchorEnd},
}

// ParsePosition validates a position token.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.TrimSpace(s))
	if _, ok := positionAnchors[p]; !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownPosition, s, positionList())
	}
	return p, nil
}

func (p Position) String() string {
	return string(p)
}

func positionList() string {
	names := make([]string, len(Positions))
	for i, p := range Positions {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Extent is a width and height in pixels.
type Extent struct {
	Width  int
	Height int
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// ComputePosition returns the top-left pixel at which text of the given
// extent is drawn. Unknown positions are placed like RightBottom. Results
// are not clamped and may be negative when the text does not fit.
func ComputePosition(img, text Extent, pos Position, padding int) image.Point {
	a, ok := positionAnchors[pos]
	if !ok {
		a = positionAnchors[RightBottom]
	}
	return image.Point{
		X: place(a[0], img.Width, text.Width, padding),
		Y: place(a[1], img.Height, text.Height, padding),
	}
}

func place(a anchor, outer, inner, padding int) int {
	switch a {
	case anchorStart:
		return padding
	case anchorMiddle:
		return floorDiv(outer-inner, 2)
	default:
		return outer - inner - padding
	}
}

// floorDiv rounds toward negative infinity so oversized text centers the
// same way on both sides of zero.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
