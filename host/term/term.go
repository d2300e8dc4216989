// Package term shows a compositor output in a terminal.
//
// The whole terminal is one host window. Every character cell shows two
// vertically stacked pixels using the upper half block glyph: the
// foreground color paints the upper pixel and the background the lower one.
// With a cell scale above one, frames are downscaled with
// golang.org/x/image/draw before they are mapped to cells.
package term

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/gputypes"

	xdraw "golang.org/x/image/draw"
)

// halfBlock is the glyph used for every cell.
const halfBlock = '▀'

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger of the terminal host. Pass nil to disable
// logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// SetLogger lets a session hand its logger to the host. It sets the
// package logger.
func (h *Host) SetLogger(l *slog.Logger) {
	SetLogger(l)
}

// Option configures a Host.
type Option func(*Host)

// WithScreen uses s instead of the process terminal. Tests pass a
// simulation screen.
func WithScreen(s tcell.Screen) Option {
	return func(h *Host) {
		h.screen = s
	}
}

// WithScale sets how many output pixels map to one cell column. A cell row
// covers twice as many pixels.
func WithScale(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.scale = n
		}
	}
}

// Host is a terminal host with a single window.
type Host struct {
	screen tcell.Screen
	scale  int
	queue  *host.Queue

	mu     sync.Mutex
	window *Window
	closed bool
}

// New initializes the terminal and starts reading its events.
func New(opts ...Option) (*Host, error) {
	h := &Host{scale: 1}
	for _, opt := range opts {
		opt(h)
	}
	if h.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("term: create screen: %w", err)
		}
		h.screen = s
	}
	if err := h.screen.Init(); err != nil {
		return nil, fmt.Errorf("term: init screen: %w", err)
	}
	h.screen.EnableMouse()
	h.screen.EnableFocus()
	h.screen.Clear()

	h.queue = host.NewQueue()
	go h.poll()
	return h, nil
}

// Name returns "terminal".
func (h *Host) Name() string {
	return "terminal"
}

// Events returns the event channel.
func (h *Host) Events() <-chan host.Event {
	return h.queue.Events()
}

// CreateWindow maps the terminal window. Only one window can exist.
func (h *Host) CreateWindow(title string) (host.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, host.ErrClosed
	}
	if h.window != nil {
		return nil, fmt.Errorf("%w: terminal has a single window", host.ErrWindowLimit)
	}
	h.window = &Window{host: h, id: 1, title: title, mapped: true}
	slogger().Debug("term: window mapped", "title", title, "size", h.pixelSize())
	return h.window, nil
}

// Close restores the terminal.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.queue.Close()
	h.screen.Fini()
	return nil
}

// pixelSize converts the terminal size to output pixels.
func (h *Host) pixelSize() output.Size {
	cols, rows := h.screen.Size()
	return output.Size{W: cols * h.scale, H: rows * 2 * h.scale}
}

func (h *Host) current() (*Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.window == nil || !h.window.mapped {
		return nil, false
	}
	return h.window, true
}

func (h *Host) poll() {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		if out := h.translate(ev); out != nil {
			h.queue.Push(out)
		}
	}
}

func (h *Host) translate(ev tcell.Event) host.Event {
	w, ok := h.current()
	if !ok {
		return nil
	}
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		return host.Resized{Window: w.id, Size: h.pixelSize()}

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
			return host.CloseRequested{Window: w.id}
		case tcell.KeyRune:
			return host.Input{Window: w.id, Kind: host.InputKeyboard, Key: ev.Rune(), Pressed: true}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		pos := image.Pt(x*h.scale, y*2*h.scale)
		if ev.Buttons()&tcell.Button1 != 0 {
			return host.Input{Window: w.id, Kind: host.InputPointerButton, Position: pos, Pressed: true}
		}
		return host.Input{Window: w.id, Kind: host.InputPointerMotionAbsolute, Position: pos}

	case *tcell.EventFocus:
		return host.Focus{Window: w.id, Focused: ev.Focused}
	}
	return nil
}

// Window is the terminal window.
type Window struct {
	host  *Host
	id    host.WindowID
	title string

	// Guarded by host.mu.
	mapped bool

	// scaled is reused across presents of the same size.
	scaled *image.RGBA
}

// ID returns the window id.
func (w *Window) ID() host.WindowID { return w.id }

// Size returns the terminal size in output pixels.
func (w *Window) Size() output.Size { return w.host.pixelSize() }

// Format returns RGBA8; cells take 24-bit colors.
func (w *Window) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Present draws buf into the terminal cells and completes immediately.
func (w *Window) Present(buf alloc.Buffer, damage []image.Rectangle) error {
	if _, ok := w.host.current(); !ok {
		return host.ErrClosed
	}

	cols, rows := w.host.screen.Size()
	cells := image.Rect(0, 0, cols, rows*2)
	img := buf.Image()
	full := len(damage) == 0
	if img.Bounds().Size() != cells.Size() {
		if w.scaled == nil || w.scaled.Bounds() != cells {
			w.scaled = image.NewRGBA(cells)
		}
		xdraw.ApproxBiLinear.Scale(w.scaled, cells, img, img.Bounds(), xdraw.Src, nil)
		img = w.scaled
		full = true
	}

	if full {
		w.drawCells(img, image.Rect(0, 0, cols, rows))
	} else {
		for _, r := range damage {
			w.drawCells(img, image.Rect(r.Min.X, r.Min.Y/2, r.Max.X, (r.Max.Y+1)/2))
		}
	}
	w.host.screen.Show()
	w.host.queue.Push(host.PresentCompleted{Window: w.id})
	return nil
}

// drawCells maps pixel pairs to the cells in r.
func (w *Window) drawCells(img *image.RGBA, r image.Rectangle) {
	cols, rows := w.host.screen.Size()
	r = r.Intersect(image.Rect(0, 0, cols, rows))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			top := img.RGBAAt(x, 2*y)
			bottom := img.RGBAAt(x, 2*y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			w.host.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

// Unmap clears the terminal. The terminal itself stays initialized until
// the host closes.
func (w *Window) Unmap() {
	w.host.mu.Lock()
	w.mapped = false
	w.host.mu.Unlock()

	w.host.screen.Clear()
	w.host.screen.Show()
}

var (
	_ host.Host   = (*Host)(nil)
	_ host.Window = (*Window)(nil)
)
