package render

import "image/color"

// Global render configuration.
var (
	// Background is what every frame is cleared to before the field is drawn.
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

	// HUD colors; the box is composited over the field.
	HUDForeground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	HUDBackground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xA0}

	// DefaultFramebuffer is the device opened by FBRenderer when Path is empty.
	DefaultFramebuffer = "/dev/fb0"
)
