package state

import (
	"sync"
	"time"
)

type Phase int

const (
	IDLE Phase = iota
	ACTIVE
	ERROR
)

func (p Phase) String() string {
	switch p {
	case IDLE:
		return "idle"
	case ACTIVE:
		return "active"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// GridInfo describes the buffer last built by the animator and the target it was built for.
type GridInfo struct {
	Width        int
	Height       int
	VisibleRows  int
	PixelSize    int
	TargetWidth  int
	TargetHeight int
}

type ScrollInfo struct {
	Offset           int
	Velocity         int
	TicksSinceSwitch int
	Flips            int
}

type FrameInfo struct {
	Presented   int64
	Skipped     int64
	CenterColor string // #rrggbb of the center column at the top visible row

	// Timings of presented ticks and buffer rebuilds, over a decaying sample.
	TickMean    time.Duration
	TickP99     time.Duration
	Rebuilds    int64
	RebuildMean time.Duration
}

// State is the published view of the animation; the animator owns the real state.
type State struct {
	Phase  Phase
	Err    string
	Grid   GridInfo
	Scroll ScrollInfo
	Frames FrameInfo
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: IDLE}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	if phase != ERROR {
		store.state.Err = ""
	}
	store.mu.Unlock()
}

// SetError moves to ERROR and records why.
func (store *Store) SetError(err error) {
	store.mu.Lock()
	store.state.Phase = ERROR
	store.state.Err = err.Error()
	store.mu.Unlock()
}

func (store *Store) UpdateGrid(grid GridInfo) {
	store.mu.Lock()
	store.state.Grid = grid
	store.mu.Unlock()
}

// UpdateFrame publishes the result of one tick.
func (store *Store) UpdateFrame(scroll ScrollInfo, frames FrameInfo) {
	store.mu.Lock()
	store.state.Scroll = scroll
	store.state.Frames = frames
	store.mu.Unlock()
}
