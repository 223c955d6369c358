package field

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// dieOffExponent flattens the envelope into a near plateau around the center column.
const dieOffExponent = 0.09375

// RGB is one cell of the color field.
type RGB struct {
	R, G, B uint8
}

// RGBA returns the opaque color for drawing.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// DieOff is the brightness envelope: 255 at max/2, 0 at 0 and max.
func DieOff(x, max float64) float64 {
	return math.RoundToEven(255 * (1 - math.Pow(math.Abs(1-x/(max/2)), dieOffExponent)))
}

// Period is a half-wave rectified cosine with the given peak and period.
func Period(x, peak, period float64) float64 {
	return math.Max(math.Cos(2*math.Pi*(x-peak)/period), 0)
}

func RedPart(x, xMax, y, yMax float64) float64 {
	return DieOff(x, xMax) * (0.8*(Period(y, 0, 2*yMax)+Period(y, 1.5*yMax, 2*yMax)) + 0.2)
}

func GreenPart(x, xMax, y, yMax float64) float64 {
	return DieOff(x, xMax) * (0.8*Period(y, 0.5*yMax, 2*yMax) + 0.2)
}

func BluePart(x, xMax, y, yMax float64) float64 {
	return DieOff(x, xMax) * (0.8*Period(y, yMax, 2*yMax) + 0.2)
}

// ComputeColor maps a grid coordinate to its color. Channels are truncated to integers.
// Inside the buffer domain (0 <= x <= xMax, 0 <= y < 1.5*yMax) every channel already lies
// in [0,255]; outside it the red bumps overlap, so channels are clamped into a byte.
func ComputeColor(x int, xMax float64, y int, yMax float64) RGB {
	fx, fy := float64(x), float64(y)
	return RGB{
		R: channel(RedPart(fx, xMax, fy, yMax)),
		G: channel(GreenPart(fx, xMax, fy, yMax)),
		B: channel(BluePart(fx, xMax, fy, yMax)),
	}
}

func channel(v float64) uint8 {
	n := int(v)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
