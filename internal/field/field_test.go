package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDieOffCenterAndEdges(t *testing.T) {
	for _, xMax := range []float64{1, 7, 20, 25, 33.5, 240, 1079} {
		assert.Equal(t, 255.0, DieOff(xMax/2, xMax), "center of %v", xMax)
		assert.Equal(t, 0.0, DieOff(0, xMax), "left edge of %v", xMax)
		assert.Equal(t, 0.0, DieOff(xMax, xMax), "right edge of %v", xMax)
	}
}

func TestDieOffIsSymmetric(t *testing.T) {
	const xMax = 64.0
	for x := 0.0; x <= xMax/2; x++ {
		assert.Equal(t, DieOff(x, xMax), DieOff(xMax-x, xMax), "x=%v", x)
	}
}

func TestPeriodIsPeriodic(t *testing.T) {
	const p = 40.0
	for _, peak := range []float64{0, 10, 20, 30} {
		for x := -50.0; x < 50; x += 0.75 {
			assert.InDelta(t, Period(x, peak, p), Period(x+p, peak, p), 1e-9)
		}
	}
}

func TestPeriodZeroOutsideWindow(t *testing.T) {
	const p = 40.0
	for _, peak := range []float64{0, 15, 60} {
		assert.InDelta(t, 1.0, Period(peak, peak, p), 1e-12)
		for _, frac := range []float64{0.26, 0.3, 0.5, 0.7, 0.74} {
			assert.Equal(t, 0.0, Period(peak+frac*p, peak, p), "peak=%v frac=%v", peak, frac)
			assert.Equal(t, 0.0, Period(peak-frac*p, peak, p), "peak=%v frac=-%v", peak, frac)
		}
		assert.Greater(t, Period(peak+0.2*p, peak, p), 0.0)
	}
}

func TestChannelsStayInByteRangeOverBuffer(t *testing.T) {
	for _, tc := range []struct{ w, h, px int }{{100, 200, 4}, {1920, 1080, 8}, {81, 37, 3}, {10, 10, 1}} {
		grid := GridFor(tc.w, tc.h, tc.px)
		xMax := float64(tc.w) / float64(tc.px)
		yMax := float64(tc.h) / float64(tc.px)
		for x := 0; x < grid.Width; x++ {
			for y := 0; y < grid.Height; y++ {
				for _, v := range []float64{
					RedPart(float64(x), xMax, float64(y), yMax),
					GreenPart(float64(x), xMax, float64(y), yMax),
					BluePart(float64(x), xMax, float64(y), yMax),
				} {
					require.GreaterOrEqual(t, v, 0.0)
					require.LessOrEqual(t, v, 255.0+1e-9)
				}
			}
		}
	}
}

func TestComputeColorCenterTop(t *testing.T) {
	c := ComputeColor(10, 20, 0, 30)
	assert.Equal(t, RGB{R: 255, G: 51, B: 51}, c)
	assert.Equal(t, "#ff3333", c.Hex())
}

func TestComputeColorDarkAtLeftEdge(t *testing.T) {
	for y := 0; y < 45; y++ {
		assert.Equal(t, RGB{}, ComputeColor(0, 20, y, 30))
	}
}

func TestGridForScenario(t *testing.T) {
	grid := GridFor(100, 200, 4)
	assert.Equal(t, Grid{Width: 25, Height: 75, VisibleRows: 50}, grid)

	// floor throughout when the pixel size does not divide the target
	assert.Equal(t, Grid{Width: 33, Height: 50, VisibleRows: 33}, GridFor(100, 101, 3))
}

func TestGridForRejectsNonPositivePixelSize(t *testing.T) {
	assert.Panics(t, func() { GridFor(100, 100, 0) })
	assert.Panics(t, func() { GridFor(100, 100, -2) })
}

func TestBuildIsIdempotent(t *testing.T) {
	a := Build(100, 200, 4)
	b := Build(100, 200, 4)
	require.Equal(t, Grid{Width: 25, Height: 75, VisibleRows: 50}, a.Grid())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Build(100, 200, 5)))
	assert.True(t, a.Matches(100, 200, 4))
	assert.False(t, a.Matches(100, 200, 5))
	assert.False(t, a.Matches(101, 200, 4))
}

func TestWrapRow(t *testing.T) {
	assert.Equal(t, 74, WrapRow(-1, 75))
	assert.Equal(t, 0, WrapRow(-75, 75))
	assert.Equal(t, 1, WrapRow(76, 75))
	for offset := -1000; offset < 1000; offset += 7 {
		row := WrapRow(offset, 75)
		assert.True(t, row >= 0 && row < 75, "offset %d gave %d", offset, row)
	}
}

func TestBufferImageWraps(t *testing.T) {
	b := Build(40, 40, 4)
	grid := b.Grid()
	img := b.Image(-3, grid.VisibleRows)
	require.Equal(t, grid.Width, img.Bounds().Dx())
	require.Equal(t, grid.VisibleRows, img.Bounds().Dy())
	assert.Equal(t, b.At(5, grid.Height-3).RGBA(), img.RGBAAt(5, 0))
	assert.Equal(t, b.At(5, 0).RGBA(), img.RGBAAt(5, 3))
}
