package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	assert.Equal(t, image.Rect(8, 12, 12, 16), Cell(2, 3, 4))
	assert.Equal(t, image.Rect(0, 0, 1, 1), Cell(0, 0, 1))
}

func TestInset(t *testing.T) {
	assert.Equal(t, image.Rect(10, 10, 90, 40), Inset(image.Rect(0, 0, 100, 50), 10))
	assert.Equal(t, image.Rect(0, 0, 100, 50), Inset(image.Rect(0, 0, 100, 50), 0))
	// collapsing insets stay normalized
	r := Inset(image.Rect(0, 0, 10, 10), 8)
	assert.True(t, r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y)
}

func TestAnchorTopLeftClamps(t *testing.T) {
	area := image.Rect(5, 5, 25, 15)
	assert.Equal(t, image.Rect(5, 5, 15, 10), AnchorTopLeft(area, 10, 5))
	assert.Equal(t, area, AnchorTopLeft(area, 100, 100))
	assert.Equal(t, image.Rect(5, 5, 5, 5), AnchorTopLeft(area, -1, -1))
}

func TestScale(t *testing.T) {
	assert.Equal(t, 4, Scale(25, 50, 100, 400))
	assert.Equal(t, 2, Scale(25, 50, 100, 100))
	assert.Equal(t, 1, Scale(250, 50, 100, 100))
	assert.Equal(t, 1, Scale(0, 0, 100, 100))
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("640x360")
	require.NoError(t, err)
	assert.Equal(t, []int{640, 360}, []int{w, h})

	w, h, err = ParseSize(" 32X18 ")
	require.NoError(t, err)
	assert.Equal(t, []int{32, 18}, []int{w, h})

	w, h, err = ParseSize("")
	require.NoError(t, err)
	assert.Zero(t, w)
	assert.Zero(t, h)

	for _, bad := range []string{"640", "x360", "640x", "0x10", "-4x4", "axb", "1x2x3"} {
		_, _, err := ParseSize(bad)
		assert.Error(t, err, bad)
	}
}
