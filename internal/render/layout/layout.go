package layout

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Cell returns the size x size square covering grid cell (col, row).
func Cell(col, row, size int) image.Rectangle {
	return image.Rect(col*size, row*size, (col+1)*size, (row+1)*size)
}

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// AnchorTopLeft returns a rectangle of at most (widthPx,heightPx) placed in the top-left of rect.
func AnchorTopLeft(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	return image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+widthPx, rect.Min.Y+heightPx)
}

// Scale fits a (width x height) box into maxWidth x maxHeight keeping integer factors.
// It returns at least 1.
func Scale(width, height, maxWidth, maxHeight int) int {
	if width <= 0 || height <= 0 {
		return 1
	}
	factor := maxWidth / width
	if byHeight := maxHeight / height; byHeight < factor {
		factor = byHeight
	}
	if factor < 1 {
		return 1
	}
	return factor
}

// ParseSize reads a "WxH" size such as "640x360". An empty string is 0x0.
func ParseSize(s string) (width, height int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("size %q: width and height must be positive integers", s)
	}
	return width, height, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
