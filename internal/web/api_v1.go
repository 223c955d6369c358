package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rook-computer/wanderspectrum/internal/render"
	"github.com/rook-computer/wanderspectrum/internal/settings"
)

const maxBodyBytes = 4 << 10

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

type visibilityResponse struct {
	Visible bool `json:"visible"`
}

type gridResponse struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	VisibleRows  int `json:"visibleRows"`
	PixelSize    int `json:"pixelSize"`
	TargetWidth  int `json:"targetWidth"`
	TargetHeight int `json:"targetHeight"`
}

type scrollResponse struct {
	Offset           int `json:"offset"`
	Velocity         int `json:"velocity"`
	TicksSinceSwitch int `json:"ticksSinceSwitch"`
	Flips            int `json:"flips"`
}

type framesResponse struct {
	Presented         int64  `json:"presented"`
	Skipped           int64  `json:"skipped"`
	CenterColor       string `json:"centerColor,omitempty"`
	TickMeanMicros    int64  `json:"tickMeanMicros"`
	TickP99Micros     int64  `json:"tickP99Micros"`
	Rebuilds          int64  `json:"rebuilds"`
	RebuildMeanMillis int64  `json:"rebuildMeanMillis"`
}

type statusResponse struct {
	Phase     string         `json:"phase"`
	LastError string         `json:"lastError,omitempty"`
	Visible   *bool          `json:"visible,omitempty"`
	Grid      gridResponse   `json:"grid"`
	Scroll    scrollResponse `json:"scroll"`
	Frames    framesResponse `json:"frames"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	preview := &previewCache{}
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) { handleSettings(w, r, deps) })
	mux.HandleFunc("/settings/reset", func(w http.ResponseWriter, r *http.Request) { handleSettingsReset(w, r, deps) })
	mux.HandleFunc("/settings/qr", handleSettingsQR)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/visibility", func(w http.ResponseWriter, r *http.Request) { handleVisibility(w, r, deps) })
	mux.HandleFunc("/preview.png", func(w http.ResponseWriter, r *http.Request) { handlePreview(w, r, deps, preview) })
	return mux
}

// handleSettings reads or replaces the stored settings. A PUT body may name only some
// fields; the rest keep their stored values. Changes apply on the next activation.
func handleSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settings.Load(deps.Settings, deps.Defaults))
	case http.MethodPut:
		next := settings.Load(deps.Settings, deps.Defaults)
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&next); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if err := next.Validate(); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
			return
		}
		if err := settings.Save(deps.Settings, next); err != nil {
			deps.Logger.Errorf("web", "settings save failed: %v", err)
			writeAPIError(w, http.StatusInternalServerError, "save_failed", err.Error())
			return
		}
		deps.Logger.Infof("web", "settings saved: %+v", next)
		writeJSON(w, http.StatusOK, next)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleSettingsReset(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	restored, err := settings.Reset(deps.Settings, deps.Defaults)
	if err != nil {
		deps.Logger.Errorf("web", "settings reset failed: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	deps.Logger.Infof("web", "settings reset to defaults")
	writeJSON(w, http.StatusOK, restored)
}

// handleSettingsQR encodes the settings page URL as seen by the requesting client.
func handleSettingsQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			writeAPIError(w, http.StatusBadRequest, "invalid_size", "size must be an integer in [64,1024]")
			return
		}
		size = n
	}
	if r.Host == "" {
		writeAPIError(w, http.StatusBadRequest, "no_host", "request has no Host header")
		return
	}

	data, err := render.GenerateQRCodePNG(pageURL(r), size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	snap := deps.Status.Snapshot()
	resp := statusResponse{
		Phase:     snap.Phase.String(),
		LastError: snap.Err,
		Grid: gridResponse{
			Width:        snap.Grid.Width,
			Height:       snap.Grid.Height,
			VisibleRows:  snap.Grid.VisibleRows,
			PixelSize:    snap.Grid.PixelSize,
			TargetWidth:  snap.Grid.TargetWidth,
			TargetHeight: snap.Grid.TargetHeight,
		},
		Scroll: scrollResponse{
			Offset:           snap.Scroll.Offset,
			Velocity:         snap.Scroll.Velocity,
			TicksSinceSwitch: snap.Scroll.TicksSinceSwitch,
			Flips:            snap.Scroll.Flips,
		},
		Frames: framesResponse{
			Presented:         snap.Frames.Presented,
			Skipped:           snap.Frames.Skipped,
			CenterColor:       snap.Frames.CenterColor,
			TickMeanMicros:    snap.Frames.TickMean.Microseconds(),
			TickP99Micros:     snap.Frames.TickP99.Microseconds(),
			Rebuilds:          snap.Frames.Rebuilds,
			RebuildMeanMillis: snap.Frames.RebuildMean.Milliseconds(),
		},
	}
	if deps.Visibility != nil {
		visible := deps.Visibility.Visible()
		resp.Visible = &visible
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleVisibility(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if deps.Visibility == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "visibility control not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, visibilityResponse{Visible: deps.Visibility.Visible()})
	case http.MethodPost:
		var req visibilityRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if req.Visible == nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", errMissingVisible.Error())
			return
		}
		deps.Visibility.Set(*req.Visible)
		deps.Logger.Infof("web", "visibility set to %v", *req.Visible)
		writeJSON(w, http.StatusOK, visibilityResponse{Visible: *req.Visible})
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

var errMissingVisible = errors.New(`body must contain "visible"`)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
