package scroll

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rook-computer/wanderspectrum/internal/field"
	"github.com/rook-computer/wanderspectrum/internal/render"
	"github.com/rook-computer/wanderspectrum/internal/render/layout"
	"github.com/rook-computer/wanderspectrum/internal/settings"
	"github.com/rook-computer/wanderspectrum/internal/state"
)

// flipOdds is the denominator of the per-tick chance to reverse once the gate is open.
const flipOdds = 10

// Rand is the random source for the direction trial. *rand.Rand from math/rand/v2 fits.
type Rand interface {
	IntN(n int) int
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// State is the mutable part of the animation, advanced once per tick.
type State struct {
	Offset           int
	Velocity         int
	TicksSinceSwitch int
}

// Animator owns the color buffer and scroll state and draws one frame per Tick.
// It is not safe for concurrent use; Run is the only caller of Tick in production.
type Animator struct {
	cfg    settings.Settings
	target render.Target
	rng    Rand
	logger Logger
	status *state.Store

	buffer *field.Buffer
	stale  bool
	state  State

	registry    metrics.Registry
	presented   metrics.Counter
	skipped     metrics.Counter
	flips       metrics.Counter
	tickTime    metrics.Timer
	rebuildTime metrics.Timer
}

// Metric names registered by the animator.
const (
	MetricPresented = "scroll.frames.presented"
	MetricSkipped   = "scroll.frames.skipped"
	MetricFlips     = "scroll.flips"
	MetricTick      = "scroll.tick"
	MetricRebuild   = "scroll.rebuild"
)

type Option func(*Animator)

func WithRand(rng Rand) Option              { return func(a *Animator) { a.rng = rng } }
func WithLogger(logger Logger) Option       { return func(a *Animator) { a.logger = logger } }
func WithStatus(status *state.Store) Option { return func(a *Animator) { a.status = status } }

// WithRegistry registers the animator's counters and timers in registry instead of a
// private one.
func WithRegistry(registry metrics.Registry) Option {
	return func(a *Animator) { a.registry = registry }
}

// New creates an animator for validated settings. The buffer is built on the first tick,
// once the target size is known.
func New(cfg settings.Settings, target render.Target, opts ...Option) *Animator {
	a := &Animator{
		cfg:    cfg,
		target: target,
		rng:    globalRand{},
		stale:  true,
		state:  State{Velocity: cfg.ScrollVelocity},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = metrics.NewRegistry()
	}
	a.presented = metrics.GetOrRegisterCounter(MetricPresented, a.registry)
	a.skipped = metrics.GetOrRegisterCounter(MetricSkipped, a.registry)
	a.flips = metrics.GetOrRegisterCounter(MetricFlips, a.registry)
	a.tickTime = metrics.GetOrRegisterTimer(MetricTick, a.registry)
	a.rebuildTime = metrics.GetOrRegisterTimer(MetricRebuild, a.registry)
	return a
}

// Reconfigure applies settings loaded for a new activation. The offset is kept, the
// velocity restarts from the configured value and a pixel size change invalidates the buffer.
func (a *Animator) Reconfigure(cfg settings.Settings) {
	if cfg.PixelSize != a.cfg.PixelSize {
		a.stale = true
	}
	a.cfg = cfg
	a.state.Velocity = cfg.ScrollVelocity
}

func (a *Animator) State() State          { return a.state }
func (a *Animator) Buffer() *field.Buffer { return a.buffer }

// Tick runs one animation step: rebuild if stale, clear, maybe flip, advance, blit, present.
// When the target is not ready the whole step is skipped.
func (a *Animator) Tick() {
	started := time.Now()
	surface := a.target.Lock()
	if surface == nil {
		a.skipped.Inc(1)
		a.publish()
		return
	}

	width, height := surface.Size()
	if a.stale || !a.buffer.Matches(width, height, a.cfg.PixelSize) {
		a.rebuild(width, height)
	}

	surface.Clear(render.Background)

	if ShouldFlip(a.rng.IntN(flipOdds), a.state.TicksSinceSwitch, a.cfg.SwitchGateTicks()) {
		a.state.Velocity = -a.state.Velocity
		a.state.TicksSinceSwitch = 0
		a.flips.Inc(1)
	}

	a.state.Offset += a.state.Velocity
	a.state.TicksSinceSwitch++

	a.blit(surface)
	a.target.Present(surface)
	a.presented.Inc(1)
	a.tickTime.UpdateSince(started)
	a.publish()
}

// Run ticks until ctx is done, waiting Interval after each tick before the next one.
// Cancellation never interrupts a tick; it only stops the next one from being scheduled.
func (a *Animator) Run(ctx context.Context) {
	interval := Interval(a.cfg.FrameRate)
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		a.Tick()
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (a *Animator) rebuild(width, height int) {
	started := time.Now()
	a.buffer = field.Build(width, height, a.cfg.PixelSize)
	took := time.Since(started)
	a.rebuildTime.Update(took)
	a.stale = false

	grid := a.buffer.Grid()
	targetWidth, targetHeight := a.buffer.TargetSize()
	if a.logger != nil {
		a.logger.Infof("scroll", "buffer rebuilt: %dx%d cells, %d visible rows, pixel size %d, target %dx%d, took %s",
			grid.Width, grid.Height, grid.VisibleRows, a.buffer.PixelSize(), targetWidth, targetHeight, took)
	}
	if a.status != nil {
		a.status.UpdateGrid(state.GridInfo{
			Width:        grid.Width,
			Height:       grid.Height,
			VisibleRows:  grid.VisibleRows,
			PixelSize:    a.buffer.PixelSize(),
			TargetWidth:  targetWidth,
			TargetHeight: targetHeight,
		})
	}
}

func (a *Animator) blit(surface render.Surface) {
	grid := a.buffer.Grid()
	if grid.Width == 0 || grid.Height == 0 {
		return
	}
	size := a.cfg.PixelSize
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.VisibleRows; y++ {
			c := a.buffer.At(x, RowIndex(y, a.state.Offset, grid.Height))
			surface.FillRect(layout.Cell(x, y, size), c.RGBA())
		}
	}
}

func (a *Animator) publish() {
	if a.status == nil {
		return
	}
	frames := state.FrameInfo{
		Presented:   a.presented.Count(),
		Skipped:     a.skipped.Count(),
		TickMean:    time.Duration(a.tickTime.Mean()),
		TickP99:     time.Duration(a.tickTime.Percentile(0.99)),
		Rebuilds:    a.rebuildTime.Count(),
		RebuildMean: time.Duration(a.rebuildTime.Mean()),
	}
	if a.buffer != nil {
		if grid := a.buffer.Grid(); grid.Width > 0 && grid.Height > 0 {
			frames.CenterColor = a.buffer.At(grid.Width/2, RowIndex(0, a.state.Offset, grid.Height)).Hex()
		}
	}
	a.status.UpdateFrame(state.ScrollInfo{
		Offset:           a.state.Offset,
		Velocity:         a.state.Velocity,
		TicksSinceSwitch: a.state.TicksSinceSwitch,
		Flips:            int(a.flips.Count()),
	}, frames)
}

// ShouldFlip is the direction trial: the draw must hit 0 and more than gateTicks ticks
// must have passed since the last switch.
func ShouldFlip(draw, ticksSinceSwitch, gateTicks int) bool {
	return draw == 0 && ticksSinceSwitch > gateTicks
}

// RowIndex is the buffer row shown at visible row y for the given offset.
func RowIndex(y, offset, height int) int {
	return field.WrapRow(y+offset, height)
}

// Interval is the delay between ticks: 1000/frameRate milliseconds, truncated.
func Interval(frameRate int) time.Duration {
	return time.Duration(1000/frameRate) * time.Millisecond
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }
