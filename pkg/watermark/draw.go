package watermark

import (
	"errors"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ErrNoFace is returned when drawing with a font that has no face.
var ErrNoFace = errors.New("font has no face")

// TextDrawer paints text onto an image with its top-left corner at pt.
type TextDrawer interface {
	DrawText(dst draw.Image, pt image.Point, text string, f Font, c Color) error
}

// FaceDrawer draws with golang.org/x/image/font.
type FaceDrawer struct{}

func (FaceDrawer) DrawText(dst draw.Image, pt image.Point, text string, f Font, c Color) error {
	if f == nil || f.Face() == nil {
		return ErrNoFace
	}
	face := f.Face()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(pt.X),
			Y: fixed.I(pt.Y) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
	return nil
}

// drawWithFallback draws with the full color and, if the drawer rejects it,
// once more with the alpha channel dropped.
func drawWithFallback(d TextDrawer, dst draw.Image, pt image.Point, text string, f Font, c Color) error {
	err := d.DrawText(dst, pt, text, f, c)
	if err == nil {
		return nil
	}
	if retryErr := d.DrawText(dst, pt, text, f, c.RGB()); retryErr != nil {
		return errors.Join(err, retryErr)
	}
	return nil
}
