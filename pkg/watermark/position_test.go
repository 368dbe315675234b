package watermark

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePosition(t *testing.T) {
	img := Extent{Width: 200, Height: 100}
	text := Extent{Width: 50, Height: 20}

	test := []struct {
		pos  Position
		want image.Point
	}{
		{LeftTop, image.Pt(10, 10)},
		{CenterTop, image.Pt(75, 10)},
		{RightTop, image.Pt(140, 10)},
		{LeftCenter, image.Pt(10, 40)},
		{Center, image.Pt(75, 40)},
		{RightCenter, image.Pt(140, 40)},
		{LeftBottom, image.Pt(10, 70)},
		{CenterBottom, image.Pt(75, 70)},
		{RightBottom, image.Pt(140, 70)},
	}
	require.Len(t, test, len(Positions))
	for _, tt := range test {
		t.Run(tt.pos.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePosition(img, text, tt.pos, DefaultPadding))
		})
	}
}

func TestComputePositionUnknownToken(t *testing.T) {
	extents := []struct {
		img, text Extent
	}{
		{Extent{200, 100}, Extent{50, 20}},
		{Extent{1920, 1080}, Extent{212, 43}},
		{Extent{30, 30}, Extent{80, 40}},
	}
	for _, e := range extents {
		want := ComputePosition(e.img, e.text, RightBottom, DefaultPadding)
		for _, token := range []Position{"", "bottom-right", "middle", "RIGHT-BOTTOM"} {
			assert.Equal(t, want, ComputePosition(e.img, e.text, token, DefaultPadding), "token %q", token)
		}
	}
}

func TestComputePositionNegative(t *testing.T) {
	img := Extent{Width: 40, Height: 30}
	text := Extent{Width: 100, Height: 35}

	assert.Equal(t, image.Pt(-70, -15), ComputePosition(img, text, RightBottom, DefaultPadding))
	// centering rounds toward negative infinity
	assert.Equal(t, image.Pt(-30, -3), ComputePosition(img, text, Center, DefaultPadding))
	assert.Equal(t, image.Pt(10, 10), ComputePosition(img, text, LeftTop, DefaultPadding))
}

func TestComputePositionPadding(t *testing.T) {
	img := Extent{Width: 200, Height: 100}
	text := Extent{Width: 50, Height: 20}

	assert.Equal(t, image.Pt(0, 0), ComputePosition(img, text, LeftTop, 0))
	assert.Equal(t, image.Pt(150, 80), ComputePosition(img, text, RightBottom, 0))
	assert.Equal(t, image.Pt(75, 40), ComputePosition(img, text, Center, 25))
}

func TestParsePosition(t *testing.T) {
	for _, p := range Positions {
		got, err := ParsePosition(p.String())
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePosition(" center ")
	assert.NoError(t, err)
	assert.Equal(t, Center, got)

	for _, s := range []string{"", "top-left", "Center", "bottom"} {
		_, err := ParsePosition(s)
		assert.ErrorIs(t, err, ErrUnknownPosition, "token %q", s)
	}
}
