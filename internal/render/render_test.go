package render

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 0xFF, A: 0xFF}
	blue = color.RGBA{B: 0xFF, A: 0xFF}
)

func TestCanvasFillRectClips(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Clear(Background)
	c.FillRect(image.Rect(8, 8, 20, 20), red)
	c.FillRect(image.Rect(-5, -5, -1, -1), blue)

	assert.Equal(t, red, c.Image().RGBAAt(9, 9))
	assert.Equal(t, Background, c.Image().RGBAAt(7, 7))
	assert.Equal(t, Background, c.Image().RGBAAt(0, 0))
}

func TestFBRendererCanvasSize(t *testing.T) {
	device := image.Rect(0, 0, 1920, 1080)

	r := NewFBRenderer()
	w, h := r.canvasSize(device)
	assert.Equal(t, []int{1920, 1080}, []int{w, h})

	r.LogicalWidth, r.LogicalHeight = 640, 360
	w, h = r.canvasSize(device)
	assert.Equal(t, []int{640, 360}, []int{w, h})

	// both dimensions are needed
	r.LogicalHeight = 0
	w, h = r.canvasSize(device)
	assert.Equal(t, []int{1920, 1080}, []int{w, h})
}

func TestBlitToFBScalesLogicalCanvas(t *testing.T) {
	canvas := NewCanvas(2, 2)
	canvas.FillRect(image.Rect(0, 0, 1, 2), red)
	canvas.FillRect(image.Rect(1, 0, 2, 2), blue)

	dst := image.NewRGBA(image.Rect(0, 0, 6, 4))
	blitToFB(dst, canvas.Image())
	for y := 0; y < 4; y++ {
		assert.Equal(t, red, dst.RGBAAt(0, y))
		assert.Equal(t, red, dst.RGBAAt(2, y))
		assert.Equal(t, blue, dst.RGBAAt(3, y))
		assert.Equal(t, blue, dst.RGBAAt(5, y))
	}
}

func TestCanvasTargetSkipsWhenNotReady(t *testing.T) {
	target := NewCanvasTarget(4, 4)
	require.NotNil(t, target.Lock())

	target.SetReady(false)
	assert.Nil(t, target.Lock())

	target.SetReady(true)
	s := target.Lock()
	s.Clear(red)
	target.Present(s)
	assert.Equal(t, 1, target.Frames())
	assert.Equal(t, red, target.LastFrame().RGBAAt(3, 3))

	// presented frames are copies
	s.Clear(blue)
	assert.Equal(t, red, target.LastFrame().RGBAAt(3, 3))
}

func TestHUDDrawsInsideItsBox(t *testing.T) {
	c := NewCanvas(640, 480)
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	c.Clear(white)

	hud := NewHUD(func() []string { return []string{"offset 12", "velocity -3"} })
	hud.Draw(c.Image())

	box := hud.Rect(c.Image().Bounds(), 2)
	require.False(t, box.Empty())
	assert.NotEqual(t, white, c.Image().RGBAAt(box.Min.X+1, box.Min.Y+1))
	assert.Equal(t, white, c.Image().RGBAAt(box.Max.X+1, box.Max.Y+1))
	assert.Equal(t, white, c.Image().RGBAAt(0, 0))
}

func TestHUDWithoutLinesDrawsNothing(t *testing.T) {
	c := NewCanvas(64, 64)
	c.Clear(red)
	NewHUD(func() []string { return nil }).Draw(c.Image())
	assert.Equal(t, red, c.Image().RGBAAt(20, 20))
}

func TestGenerateQRCodePNG(t *testing.T) {
	data, err := GenerateQRCodePNG("http://192.168.1.20/", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	_, err = GenerateQRCodePNG("", 128)
	assert.Error(t, err)
}

// mockScreen is a minimal tcell.Screen that records SetContent calls.
type mockScreen struct {
	tcell.Screen
	cols, rows int

	mu     sync.Mutex
	cells  map[image.Point]tcell.Style
	shows  int
	events chan tcell.Event
	once   sync.Once
}

func newMockScreen(cols, rows int) *mockScreen {
	return &mockScreen{cols: cols, rows: rows, cells: map[image.Point]tcell.Style{}, events: make(chan tcell.Event)}
}

func (m *mockScreen) Init() error      { return nil }
func (m *mockScreen) Fini()            { m.once.Do(func() { close(m.events) }) }
func (m *mockScreen) Clear()           {}
func (m *mockScreen) HideCursor()      {}
func (m *mockScreen) Sync()            {}
func (m *mockScreen) Size() (int, int) { return m.cols, m.rows }
func (m *mockScreen) PollEvent() tcell.Event {
	ev, ok := <-m.events
	if !ok {
		return nil
	}
	return ev
}
func (m *mockScreen) Show() {
	m.mu.Lock()
	m.shows++
	m.mu.Unlock()
}
func (m *mockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.mu.Lock()
	m.cells[image.Point{X: x, Y: y}] = style
	m.mu.Unlock()
}

func TestTerminalRendererPacksTwoPixelsPerCell(t *testing.T) {
	screen := newMockScreen(6, 3)
	r := NewTerminalRenderer()
	require.NoError(t, r.startWith(context.Background(), screen))
	defer r.Stop()

	s := r.Lock()
	require.NotNil(t, s)
	w, h := s.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 6, h)

	s.Clear(Background)
	s.FillRect(image.Rect(0, 0, 6, 1), red)
	s.FillRect(image.Rect(0, 1, 6, 2), blue)
	r.Present(s)

	screen.mu.Lock()
	defer screen.mu.Unlock()
	assert.Equal(t, 1, screen.shows)
	assert.Len(t, screen.cells, 18)
	want := tcell.StyleDefault.Foreground(tcellColor(red)).Background(tcellColor(blue))
	assert.Equal(t, want, screen.cells[image.Point{X: 2, Y: 0}])
}

func TestTerminalRendererLockAfterStop(t *testing.T) {
	r := NewTerminalRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.startWith(ctx, newMockScreen(4, 4)))
	require.NotNil(t, r.Lock())

	require.NoError(t, r.Stop())
	assert.Nil(t, r.Lock())
	assert.NoError(t, r.Stop())
	cancel()
}
