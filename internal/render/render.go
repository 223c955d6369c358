package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
)

// Surface is the drawable handed out for one lock/present cycle.
type Surface interface {
	// Size returns the drawable size in physical pixels.
	Size() (width int, height int)

	Clear(c color.RGBA)
	FillRect(rect image.Rectangle, c color.RGBA)
}

// Target is where frames are drawn. Lock returns nil when the target is not ready;
// the caller then skips the frame. Every non-nil Lock is followed by one Present.
type Target interface {
	Lock() Surface
	Present(s Surface)
}

// Device is a Target whose lifecycle is owned by the host binary.
type Device interface {
	Target
	Start(ctx context.Context) error
	Stop() error
}

// Overlay is drawn on top of each frame right before it is presented.
type Overlay interface {
	Draw(dst draw.Image)
}

// Stub implementations
type NoopDevice struct{}

func (NoopDevice) Start(ctx context.Context) error { return nil }
func (NoopDevice) Stop() error                     { return nil }
func (NoopDevice) Lock() Surface                   { return nil }
func (NoopDevice) Present(s Surface)               {}
