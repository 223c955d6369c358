package render

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// upperHalfBlock paints the top pixel with the foreground and the bottom one with the background.
const upperHalfBlock = '▀'

// TerminalRenderer draws into a terminal. Each character cell holds two vertically
// stacked pixels, so the surface is cols x 2*rows.
type TerminalRenderer struct {
	// OnToggle is called when the space bar is pressed.
	OnToggle func()
	// OnExit is called once on Esc, Ctrl-C or q.
	OnExit func()
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	screen   tcell.Screen
	canvas   *Canvas
	running  atomic.Bool
	exitOnce sync.Once
	done     chan struct{}
}

func NewTerminalRenderer() *TerminalRenderer { return &TerminalRenderer{} }

func (r *TerminalRenderer) Start(ctx context.Context) error {
	if r.screen != nil {
		return errors.New("terminal renderer already started")
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	return r.startWith(ctx, screen)
}

func (r *TerminalRenderer) startWith(ctx context.Context, screen tcell.Screen) error {
	if err := screen.Init(); err != nil {
		return err
	}
	screen.HideCursor()
	screen.Clear()
	r.screen = screen
	r.done = make(chan struct{})
	r.running.Store(true)

	go r.pollEvents()
	go func() {
		select {
		case <-ctx.Done():
			_ = r.Stop()
		case <-r.done:
		}
	}()
	if r.Logger != nil {
		cols, rows := screen.Size()
		r.Logger.Infof("term", "terminal open, %dx%d cells", cols, rows)
	}
	return nil
}

func (r *TerminalRenderer) Stop() error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	close(r.done)
	r.screen.Fini()
	return nil
}

func (r *TerminalRenderer) pollEvents() {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			r.handleKey(ev)
		case *tcell.EventResize:
			r.screen.Sync()
		}
	}
}

func (r *TerminalRenderer) handleKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC,
		ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
		r.exitOnce.Do(func() {
			if r.OnExit != nil {
				r.OnExit()
			}
		})
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		if r.OnToggle != nil {
			r.OnToggle()
		}
	}
}

// Lock returns a canvas sized to the current terminal; it is reallocated after a resize.
func (r *TerminalRenderer) Lock() Surface {
	if !r.running.Load() {
		return nil
	}
	cols, rows := r.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	width, height := cols, rows*2
	if r.canvas == nil {
		r.canvas = NewCanvas(width, height)
	} else if w, h := r.canvas.Size(); w != width || h != height {
		r.canvas = NewCanvas(width, height)
	}
	return r.canvas
}

func (r *TerminalRenderer) Present(s Surface) {
	if !r.running.Load() || r.canvas == nil {
		return
	}
	img := r.canvas.Image()
	width, height := r.canvas.Size()
	for row := 0; row*2 < height; row++ {
		for x := 0; x < width; x++ {
			top := img.RGBAAt(x, row*2)
			bottom := img.RGBAAt(x, row*2+1)
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
			r.screen.SetContent(x, row, upperHalfBlock, nil, style)
		}
	}
	r.screen.Show()
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
