package web

import (
	"github.com/rook-computer/wanderspectrum/internal/settings"
	"github.com/rook-computer/wanderspectrum/internal/state"
)

// StatusSource abstracts the published animation status used by the API.
//
// The concrete implementation is the *state.Store shared with the animator.
type StatusSource interface {
	Snapshot() state.State
}

// VisibilityControl is the activation switch the API can flip.
type VisibilityControl interface {
	Visible() bool
	Set(visible bool)
}

// sysLogger matches the logging shape used across the module.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type APIV1Deps struct {
	Settings   settings.Store
	Defaults   settings.Settings
	Status     StatusSource
	Visibility VisibilityControl
	Logger     sysLogger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Settings == nil {
		out.Settings = settings.NewMemoryStore()
	}
	if out.Defaults == (settings.Settings{}) {
		out.Defaults = settings.Defaults()
	}
	if out.Status == nil {
		out.Status = state.NewStore()
	}
	if out.Logger == nil {
		out.Logger = noopSysLogger{}
	}
	return out
}

type noopSysLogger struct{}

func (noopSysLogger) Infof(string, string, ...interface{})  {}
func (noopSysLogger) Errorf(string, string, ...interface{}) {}
