package web

import (
	"image"
	"image/png"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/image/draw"

	"github.com/rook-computer/wanderspectrum/internal/field"
	"github.com/rook-computer/wanderspectrum/internal/render/layout"
	"github.com/rook-computer/wanderspectrum/internal/settings"
)

const (
	// Used before the animator has built a buffer for a real target.
	previewFallbackWidth  = 320
	previewFallbackHeight = 240

	previewMaxWidth  = 960
	previewMaxHeight = 720
	previewMaxScale  = 16
)

// previewCache holds the last buffer built for the preview. Builds are deterministic,
// so a buffer matching the animator's target, pixel size and offset shows the same window.
type previewCache struct {
	mu  sync.Mutex
	buf *field.Buffer
}

func (c *previewCache) buffer(width, height, pixelSize int) *field.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.Matches(width, height, pixelSize) {
		c.buf = field.Build(width, height, pixelSize)
	}
	return c.buf
}

// handlePreview renders the visible window one pixel per cell, scaled up by nearest neighbor.
func handlePreview(w http.ResponseWriter, r *http.Request, deps APIV1Deps, cache *previewCache) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	snap := deps.Status.Snapshot()
	width, height, pixelSize := snap.Grid.TargetWidth, snap.Grid.TargetHeight, snap.Grid.PixelSize
	offset := snap.Scroll.Offset
	if width <= 0 || height <= 0 || pixelSize <= 0 {
		cfg := settings.Load(deps.Settings, deps.Defaults)
		if err := cfg.Validate(); err != nil {
			writeAPIError(w, http.StatusConflict, "invalid_settings", err.Error())
			return
		}
		width, height, pixelSize, offset = previewFallbackWidth, previewFallbackHeight, cfg.PixelSize, 0
	}

	buf := cache.buffer(width, height, pixelSize)
	grid := buf.Grid()
	if grid.Width == 0 || grid.VisibleRows == 0 {
		writeAPIError(w, http.StatusConflict, "empty_grid", "pixel size is larger than the target")
		return
	}

	scale := layout.Scale(grid.Width, grid.VisibleRows, previewMaxWidth, previewMaxHeight)
	if raw := r.URL.Query().Get("scale"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > previewMaxScale {
			writeAPIError(w, http.StatusBadRequest, "invalid_scale", "scale must be an integer in [1,"+strconv.Itoa(previewMaxScale)+"]")
			return
		}
		scale = n
	}

	src := buf.Image(offset, grid.VisibleRows)
	dst := image.NewRGBA(image.Rect(0, 0, grid.Width*scale, grid.VisibleRows*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, dst); err != nil {
		deps.Logger.Errorf("web", "preview encode failed: %v", err)
	}
}
