package settings

import (
	"errors"
	"fmt"
)

// Store keys, shared with the settings page and the persisted JSON file.
const (
	KeyScrollVelocity                = "scroll_velocity"
	KeyPixelSize                     = "pixel_size"
	KeyFrameRate                     = "frame_rate"
	KeyMinimumDirectionSwitchSeconds = "minimum_direction_switch_seconds"
)

// MaxFrameRate keeps the tick interval (1000/frameRate ms) at one millisecond or more.
const MaxFrameRate = 1000

var ErrInvalid = errors.New("invalid settings")

// Store is the persistent key-value store holding the settings between sessions.
// SetAll commits every value or none of them, and GetAll returns one consistent copy.
type Store interface {
	Get(key string, def int) int
	Set(key string, value int) error
	GetAll() map[string]int
	SetAll(values map[string]int) error
}

// Settings are the four user-editable animation parameters.
type Settings struct {
	ScrollVelocity                int `json:"scrollVelocity"`
	PixelSize                     int `json:"pixelSize"`
	FrameRate                     int `json:"frameRate"`
	MinimumDirectionSwitchSeconds int `json:"minimumDirectionSwitchSeconds"`
}

// Defaults returns the built-in settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		ScrollVelocity:                1,
		PixelSize:                     8,
		FrameRate:                     30,
		MinimumDirectionSwitchSeconds: 3,
	}
}

// Validate rejects values the animation loop cannot run with.
func (s Settings) Validate() error {
	if s.PixelSize <= 0 {
		return fmt.Errorf("%s must be positive (got %d): %w", KeyPixelSize, s.PixelSize, ErrInvalid)
	}
	if s.FrameRate <= 0 || s.FrameRate > MaxFrameRate {
		return fmt.Errorf("%s must be in [1,%d] (got %d): %w", KeyFrameRate, MaxFrameRate, s.FrameRate, ErrInvalid)
	}
	if s.MinimumDirectionSwitchSeconds < 0 {
		return fmt.Errorf("%s must not be negative (got %d): %w", KeyMinimumDirectionSwitchSeconds, s.MinimumDirectionSwitchSeconds, ErrInvalid)
	}
	return nil
}

// SwitchGateTicks is the number of ticks that must pass before the direction may flip.
func (s Settings) SwitchGateTicks() int {
	return s.MinimumDirectionSwitchSeconds * s.FrameRate
}

// Load reads all four values from store, falling back to defaults per key.
func Load(store Store, defaults Settings) Settings {
	values := store.GetAll()
	get := func(key string, def int) int {
		if v, ok := values[key]; ok {
			return v
		}
		return def
	}
	return Settings{
		ScrollVelocity:                get(KeyScrollVelocity, defaults.ScrollVelocity),
		PixelSize:                     get(KeyPixelSize, defaults.PixelSize),
		FrameRate:                     get(KeyFrameRate, defaults.FrameRate),
		MinimumDirectionSwitchSeconds: get(KeyMinimumDirectionSwitchSeconds, defaults.MinimumDirectionSwitchSeconds),
	}
}

// Save writes all four values to store in one commit.
func Save(store Store, s Settings) error {
	if err := store.SetAll(map[string]int{
		KeyScrollVelocity:                s.ScrollVelocity,
		KeyPixelSize:                     s.PixelSize,
		KeyFrameRate:                     s.FrameRate,
		KeyMinimumDirectionSwitchSeconds: s.MinimumDirectionSwitchSeconds,
	}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reset overwrites the stored values with defaults and returns them.
func Reset(store Store, defaults Settings) (Settings, error) {
	if err := Save(store, defaults); err != nil {
		return Settings{}, err
	}
	return defaults, nil
}
