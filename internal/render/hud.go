package render

import (
	"image"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/wanderspectrum/internal/render/layout"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	hudMargin   = 16
	hudPadding  = 8
	hudWidth    = 420
	hudFontSize = 18.0
)

// HUD is a debug overlay listing a few text lines in the top-left corner.
type HUD struct {
	Lines  func() []string
	Logger interface {
		Errorf(string, string, ...interface{})
	}

	ttFont *truetype.Font
}

// NewHUD parses the embedded Go font; on failure the HUD falls back to basicfont.
func NewHUD(lines func() []string) *HUD {
	h := &HUD{Lines: lines}
	if tt, err := truetype.Parse(goregular.TTF); err == nil {
		h.ttFont = tt
	}
	return h
}

// Rect returns where the HUD box lands on dst for n lines.
func (h *HUD) Rect(dst image.Rectangle, n int) image.Rectangle {
	lineHeight := int(hudFontSize*1.25 + 0.5)
	return layout.AnchorTopLeft(layout.Inset(dst, hudMargin), hudWidth, n*lineHeight+2*hudPadding)
}

func (h *HUD) Draw(dst draw.Image) {
	if h.Lines == nil {
		return
	}
	lines := h.Lines()
	if len(lines) == 0 {
		return
	}
	box := h.Rect(dst.Bounds(), len(lines))
	if box.Empty() {
		return
	}
	draw.Draw(dst, box, &image.Uniform{C: HUDBackground}, image.Point{}, draw.Over)
	text := layout.Inset(box, hudPadding)

	if h.ttFont == nil {
		h.drawBasic(dst, text, lines)
		return
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(h.ttFont)
	ctx.SetFontSize(hudFontSize)
	ctx.SetClip(text)
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(HUDForeground))
	ctx.SetHinting(font.HintingFull)

	lineHeight := ctx.PointToFixed(hudFontSize * 1.25)
	pt := freetype.Pt(text.Min.X, text.Min.Y)
	pt.Y += ctx.PointToFixed(hudFontSize)
	for _, line := range lines {
		if _, err := ctx.DrawString(line, pt); err != nil {
			if h.Logger != nil {
				h.Logger.Errorf("hud", "draw string failed: %v", err)
			}
			return
		}
		pt.Y += lineHeight
	}
}

func (h *HUD) drawBasic(dst draw.Image, area image.Rectangle, lines []string) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(HUDForeground), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	lineHeight := face.Metrics().Height.Ceil() + 2
	for i, line := range lines {
		baseline := area.Min.Y + ascent + i*lineHeight
		if baseline > area.Max.Y {
			return
		}
		drawer.Dot = fixed.P(area.Min.X, baseline)
		drawer.DrawString(line)
	}
}
