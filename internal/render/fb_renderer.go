package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
)

// FBRenderer renders to the Linux framebuffer using an offscreen canvas.
// With LogicalWidth/LogicalHeight unset the canvas matches the framebuffer resolution;
// otherwise the canvas is scaled nearest-neighbor onto the device at present time.
type FBRenderer struct {
	Path          string
	LogicalWidth  int
	LogicalHeight int
	Overlay       Overlay
	Logger        interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	fbDev   *fb.Device
	canvas  *Canvas
	running atomic.Bool
	frames  uint64
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{Path: DefaultFramebuffer} }

func (r *FBRenderer) Start(ctx context.Context) error {
	path := r.Path
	if path == "" {
		path = DefaultFramebuffer
	}
	dev, err := fb.Open(path)
	if err != nil {
		return err
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	if r.Logger != nil {
		r.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", path, bounds.Dx(), bounds.Dy())
	}

	width, height := r.canvasSize(bounds)
	if r.Logger != nil && (width != bounds.Dx() || height != bounds.Dy()) {
		r.Logger.Infof("fb", "logical size %dx%d, scaled to the device on present", width, height)
	}
	r.canvas = NewCanvas(width, height)
	r.canvas.Clear(Background)

	r.running.Store(true)
	return nil
}

func (r *FBRenderer) canvasSize(device image.Rectangle) (width, height int) {
	if r.LogicalWidth > 0 && r.LogicalHeight > 0 {
		return r.LogicalWidth, r.LogicalHeight
	}
	return device.Dx(), device.Dy()
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// Lock hands out the canvas, or nil while the device is closed.
func (r *FBRenderer) Lock() Surface {
	if !r.running.Load() || r.fbDev == nil || r.canvas == nil {
		return nil
	}
	return r.canvas
}

func (r *FBRenderer) Present(s Surface) {
	if !r.running.Load() || r.fbDev == nil {
		return
	}
	if r.Overlay != nil {
		r.Overlay.Draw(r.canvas.Image())
	}
	blitToFB(r.fbDev, r.canvas.Image())
	r.frames++
	if r.Logger != nil && r.frames%1000 == 0 {
		r.Logger.Infof("fb", "presented %d frames", r.frames)
	}
}

// blitToFB copies canvas onto dst, scaling nearest-neighbor when the sizes differ.
func blitToFB(dst draw.Image, canvas *image.RGBA) {
	if dst == nil {
		return
	}
	bounds := dst.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	canvasWidth := canvas.Bounds().Dx()
	canvasHeight := canvas.Bounds().Dy()
	for y := 0; y < fbHeight; y++ {
		sy := (y * canvasHeight) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * canvasWidth) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
