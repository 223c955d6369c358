package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rook-computer/wanderspectrum/internal/render"
	"github.com/rook-computer/wanderspectrum/internal/scroll"
	"github.com/rook-computer/wanderspectrum/internal/settings"
	"github.com/rook-computer/wanderspectrum/internal/state"
	"github.com/rook-computer/wanderspectrum/internal/visibility"
	"github.com/rook-computer/wanderspectrum/internal/web"
)

// App ties the activation signal to the scroll loop. Settings are read from Settings on
// every Idle to Active transition; while active exactly one loop goroutine draws to Target.
type App struct {
	Settings   settings.Store
	Defaults   settings.Settings
	Target     render.Device
	Visibility visibility.Source
	Web        web.Server
	Status     *state.Store
	Logger     Logger
	// Metrics collects the animator's frame counters and tick timings across activations.
	Metrics metrics.Registry
	// Rand overrides the direction trial source, for tests.
	Rand scroll.Rand

	animator   *scroll.Animator
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store settings.Store, target render.Device, source visibility.Source, webServer web.Server) *App {
	return &App{
		Settings:   store,
		Defaults:   settings.Defaults(),
		Target:     target,
		Visibility: source,
		Web:        webServer,
		Status:     state.NewStore(),
		Logger:     NoopLogger{},
		Metrics:    metrics.NewRegistry(),
		exitCh:     make(chan error, 1),
	}
}

// Exit requests the app to stop running.
// Key handlers and the signal context both end up here.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Run starts the target, the web server and the activation source, then follows the
// activation events until ctx is done or Exit is called. Any running loop is stopped
// before Run returns.
func (app *App) Run(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Status == nil {
		app.Status = state.NewStore()
	}
	if app.Metrics == nil {
		app.Metrics = metrics.NewRegistry()
	}
	if app.Settings == nil {
		app.Settings = settings.NewMemoryStore()
	}
	if app.Target == nil {
		app.Target = render.NoopDevice{}
	}
	if app.Visibility == nil {
		app.Visibility = visibility.NewAlwaysVisible()
	}

	if err := app.Target.Start(ctx); err != nil {
		app.Logger.Errorf("app", "render target start error: %v", err)
		return err
	}
	defer app.Target.Stop()

	if app.Web != nil {
		if err := app.Web.Start(ctx); err != nil {
			app.Logger.Errorf("app", "web server start error: %v", err)
			return err
		}
		defer app.Web.Stop()
	}

	if err := app.Visibility.Start(ctx); err != nil {
		app.Logger.Errorf("app", "visibility source start error: %v", err)
		return err
	}
	defer app.Visibility.Stop()

	app.Status.SetPhase(state.IDLE)
	app.Logger.Infof("app", "waiting for activation")

	events := app.Visibility.Events()
	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case err = <-app.exitCh:
			break loop
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev {
			case visibility.Shown:
				app.activate(ctx)
			case visibility.Hidden:
				app.deactivate()
			}
		}
	}
	app.deactivate()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// activate is a no-op when already active.
func (app *App) activate(ctx context.Context) {
	if app.loopCancel != nil {
		return
	}
	cfg := settings.Load(app.Settings, app.Defaults)
	if err := cfg.Validate(); err != nil {
		app.Logger.Errorf("app", "activation refused: %v", err)
		app.Status.SetError(err)
		return
	}

	if app.animator == nil {
		opts := []scroll.Option{
			scroll.WithLogger(app.Logger),
			scroll.WithStatus(app.Status),
			scroll.WithRegistry(app.Metrics),
		}
		if app.Rand != nil {
			opts = append(opts, scroll.WithRand(app.Rand))
		}
		app.animator = scroll.New(cfg, app.Target, opts...)
	} else {
		app.animator.Reconfigure(cfg)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	app.loopCancel, app.loopDone = cancel, done
	animator := app.animator
	go func() {
		defer close(done)
		animator.Run(loopCtx)
	}()

	app.Status.SetPhase(state.ACTIVE)
	app.Logger.Infof("app", "active: velocity=%d pixel=%d fps=%d min-switch=%ds interval=%s",
		cfg.ScrollVelocity, cfg.PixelSize, cfg.FrameRate, cfg.MinimumDirectionSwitchSeconds, scroll.Interval(cfg.FrameRate))
}

// deactivate waits for the in-flight tick before returning. Without a running loop it
// only clears a refused activation back to IDLE.
func (app *App) deactivate() {
	if app.loopCancel == nil {
		if app.Status.Snapshot().Phase == state.ERROR {
			app.Status.SetPhase(state.IDLE)
		}
		return
	}
	app.loopCancel()
	<-app.loopDone
	app.loopCancel, app.loopDone = nil, nil
	app.Status.SetPhase(state.IDLE)
	app.Logger.Infof("app", "idle: %s", metricsSummary(app.Metrics))
}

// metricsSummary formats the animator's totals for the log.
func metricsSummary(registry metrics.Registry) string {
	count := func(name string) int64 {
		if c, ok := registry.Get(name).(metrics.Counter); ok {
			return c.Count()
		}
		return 0
	}
	summary := fmt.Sprintf("presented=%d skipped=%d flips=%d",
		count(scroll.MetricPresented), count(scroll.MetricSkipped), count(scroll.MetricFlips))
	if t, ok := registry.Get(scroll.MetricTick).(metrics.Timer); ok && t.Count() > 0 {
		snap := t.Snapshot()
		summary += fmt.Sprintf(" tick mean=%s p99=%s max=%s",
			time.Duration(snap.Mean()), time.Duration(snap.Percentile(0.99)), time.Duration(snap.Max()))
	}
	if t, ok := registry.Get(scroll.MetricRebuild).(metrics.Timer); ok && t.Count() > 0 {
		summary += fmt.Sprintf(" rebuilds=%d", t.Count())
	}
	return summary
}

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

type FileLogger struct{ w io.Writer }

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}
