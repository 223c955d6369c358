package field

import (
	"fmt"
	"image"
)

// Grid is the logical cell layout derived from a target size and a pixel size.
type Grid struct {
	Width       int // columns
	Height      int // buffer rows, 1.5x the visible rows
	VisibleRows int
}

// GridFor computes the grid for a target of width x height physical pixels.
// All divisions floor; pixelSize must be positive.
func GridFor(width, height, pixelSize int) Grid {
	if pixelSize <= 0 {
		panic(fmt.Sprintf("field: pixel size must be positive, got %d", pixelSize))
	}
	return Grid{
		Width:       width / pixelSize,
		Height:      (3 * height) / (2 * pixelSize),
		VisibleRows: height / pixelSize,
	}
}

// Buffer is an immutable, column-major grid of colors.
type Buffer struct {
	grid      Grid
	pixelSize int
	width     int
	height    int
	cells     []RGB
}

// Build materializes the color field for a target of width x height pixels.
func Build(width, height, pixelSize int) *Buffer {
	grid := GridFor(width, height, pixelSize)
	xMax := float64(width) / float64(pixelSize)
	yMax := float64(height) / float64(pixelSize)

	cells := make([]RGB, grid.Width*grid.Height)
	for x := 0; x < grid.Width; x++ {
		column := cells[x*grid.Height : (x+1)*grid.Height]
		for y := range column {
			column[y] = ComputeColor(x, xMax, y, yMax)
		}
	}
	return &Buffer{grid: grid, pixelSize: pixelSize, width: width, height: height, cells: cells}
}

func (b *Buffer) Grid() Grid     { return b.grid }
func (b *Buffer) PixelSize() int { return b.pixelSize }

// TargetSize returns the physical size the buffer was built for.
func (b *Buffer) TargetSize() (width, height int) { return b.width, b.height }

// At returns the color at column x, row y. Both must be in range.
func (b *Buffer) At(x, y int) RGB {
	return b.cells[x*b.grid.Height+y]
}

// Matches reports whether the buffer is still valid for the given target and pixel size.
func (b *Buffer) Matches(width, height, pixelSize int) bool {
	return b != nil && b.pixelSize == pixelSize && b.width == width && b.height == height
}

// Equal reports whether both buffers hold the same grid and colors.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.grid != other.grid || len(b.cells) != len(other.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Image renders the rows [offset, offset+rows) of the buffer, wrapped, one pixel per cell.
func (b *Buffer) Image(offset, rows int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.grid.Width, rows))
	if b.grid.Height == 0 {
		return img
	}
	for x := 0; x < b.grid.Width; x++ {
		for y := 0; y < rows; y++ {
			img.SetRGBA(x, y, b.At(x, WrapRow(y+offset, b.grid.Height)).RGBA())
		}
	}
	return img
}

// WrapRow maps any row index, including negative ones, into [0, height).
func WrapRow(row, height int) int {
	return (row%height + height) % height
}
