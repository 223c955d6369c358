package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvScrollVelocity                = "WANDERSPECTRUM_SCROLL_VELOCITY"
	EnvPixelSize                     = "WANDERSPECTRUM_PIXEL_SIZE"
	EnvFrameRate                     = "WANDERSPECTRUM_FRAME_RATE"
	EnvMinimumDirectionSwitchSeconds = "WANDERSPECTRUM_MINIMUM_DIRECTION_SWITCH_SECONDS"
)

// DefaultsFromEnv overrides fields of base with any of the WANDERSPECTRUM_* variables set.
// The result is what the stores fall back to for keys that were never saved.
func DefaultsFromEnv(base Settings) (Settings, error) {
	fields := []struct {
		env string
		dst *int
	}{
		{EnvScrollVelocity, &base.ScrollVelocity},
		{EnvPixelSize, &base.PixelSize},
		{EnvFrameRate, &base.FrameRate},
		{EnvMinimumDirectionSwitchSeconds, &base.MinimumDirectionSwitchSeconds},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(os.Getenv(f.env))
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%s must be an integer (got %q): %w", f.env, raw, err)
		}
		*f.dst = parsed
	}
	if err := base.Validate(); err != nil {
		return Settings{}, err
	}
	return base, nil
}
