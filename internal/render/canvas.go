package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Canvas is an offscreen RGBA surface.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// FillRect paints rect clipped to the canvas bounds.
func (c *Canvas) FillRect(rect image.Rectangle, col color.RGBA) {
	rect = rect.Intersect(c.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(c.img, rect, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func (c *Canvas) Image() *image.RGBA { return c.img }

// CanvasTarget presents into memory. It backs the HTTP preview and tests.
type CanvasTarget struct {
	mu      sync.Mutex
	canvas  *Canvas
	ready   bool
	frames  int
	last    *image.RGBA
	Overlay Overlay
}

func NewCanvasTarget(width, height int) *CanvasTarget {
	return &CanvasTarget{canvas: NewCanvas(width, height), ready: true}
}

func (t *CanvasTarget) Start(ctx context.Context) error { return nil }
func (t *CanvasTarget) Stop() error                     { return nil }

// SetReady toggles whether Lock hands out the canvas.
func (t *CanvasTarget) SetReady(ready bool) {
	t.mu.Lock()
	t.ready = ready
	t.mu.Unlock()
}

func (t *CanvasTarget) Lock() Surface {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return nil
	}
	return t.canvas
}

func (t *CanvasTarget) Present(s Surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Overlay != nil {
		t.Overlay.Draw(t.canvas.img)
	}
	frame := image.NewRGBA(t.canvas.img.Bounds())
	copy(frame.Pix, t.canvas.img.Pix)
	t.last = frame
	t.frames++
}

// Frames returns how many frames were presented.
func (t *CanvasTarget) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// LastFrame returns a copy of the most recently presented frame, or nil.
func (t *CanvasTarget) LastFrame() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
