// Package headless implements host windows that live in memory.
//
// Presented buffers are copied and kept for inspection, the last one by
// default or a bounded number with WithHistory. The test or
// server driving the host injects resizes, close requests and completed
// presentations explicitly. Event delivery never blocks the caller: events
// are queued without bound and pumped to the Events channel.
package headless

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/gputypes"
)

// DefaultSize is the size of new windows.
var DefaultSize = output.Size{W: 1280, H: 800}

// Option configures a Host.
type Option func(*Host)

// WithSize sets the size of new windows.
func WithSize(s output.Size) Option {
	return func(h *Host) {
		h.size = s
	}
}

// WithFormat sets the scan-out format of new windows.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(h *Host) {
		h.format = f
	}
}

// WithAutoComplete makes every successful Present queue a PresentCompleted
// event, like a host that is always ready for the next frame.
func WithAutoComplete(enabled bool) Option {
	return func(h *Host) {
		h.autoComplete = enabled
	}
}

// WithHistory sets how many presented frames each window keeps. Older
// frames are dropped. Values below 1 keep only the last frame.
func WithHistory(n int) Option {
	return func(h *Host) {
		h.history = max(n, 1)
	}
}

// WithMaxWindows caps the number of windows. Zero means unlimited.
func WithMaxWindows(n int) Option {
	return func(h *Host) {
		h.maxWindows = n
	}
}

// Host is an in-memory host.
type Host struct {
	size         output.Size
	format       gputypes.TextureFormat
	autoComplete bool
	maxWindows   int
	history      int

	queue *host.Queue

	mu      sync.Mutex
	windows map[host.WindowID]*Window
	nextID  host.WindowID
	closed  bool
}

// New creates a host.
func New(opts ...Option) *Host {
	h := &Host{
		size:    DefaultSize,
		format:  gputypes.TextureFormatBGRA8Unorm,
		history: 1,
		queue:   host.NewQueue(),
		windows: make(map[host.WindowID]*Window),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns "headless".
func (h *Host) Name() string {
	return "headless"
}

// Events returns the event channel.
func (h *Host) Events() <-chan host.Event {
	return h.queue.Events()
}

// CreateWindow creates a mapped window of the configured size.
func (h *Host) CreateWindow(title string) (host.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, host.ErrClosed
	}
	if h.maxWindows > 0 && len(h.windows) >= h.maxWindows {
		return nil, fmt.Errorf("%w: %d", host.ErrWindowLimit, h.maxWindows)
	}
	h.nextID++
	w := &Window{
		host:   h,
		id:     h.nextID,
		title:  title,
		size:   h.size,
		format: h.format,
		mapped: true,
	}
	h.windows[w.id] = w
	return w, nil
}

// Window returns a window by id.
func (h *Host) Window(id host.WindowID) (*Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[id]
	return w, ok
}

// Inject queues an arbitrary event.
func (h *Host) Inject(ev host.Event) {
	h.queue.Push(ev)
}

// Close unmaps every window and closes the event channel.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, w := range h.windows {
		w.mapped = false
	}
	h.mu.Unlock()
	h.queue.Close()
	return nil
}

// Frame is a copy of one presented buffer.
type Frame struct {
	Image  *image.RGBA
	Damage []image.Rectangle
}

// Window is an in-memory window.
type Window struct {
	host   *Host
	id     host.WindowID
	title  string
	format gputypes.TextureFormat

	// Guarded by host.mu.
	size      output.Size
	mapped    bool
	frames    []Frame
	presented int
	failure   error
}

// ID returns the window id.
func (w *Window) ID() host.WindowID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Format returns the scan-out format.
func (w *Window) Format() gputypes.TextureFormat { return w.format }

// Size returns the window size.
func (w *Window) Size() output.Size {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.size
}

// Mapped reports whether the window is shown.
func (w *Window) Mapped() bool {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.mapped
}

// Present copies buf and records it as a frame.
func (w *Window) Present(buf alloc.Buffer, damage []image.Rectangle) error {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	if !w.mapped {
		return host.ErrClosed
	}
	if err := w.failure; err != nil {
		w.failure = nil
		return err
	}

	src := buf.Image()
	img := image.NewRGBA(src.Bounds())
	copy(img.Pix, src.Pix)
	w.frames = append(w.frames, Frame{Image: img, Damage: append([]image.Rectangle(nil), damage...)})
	if n := len(w.frames) - w.host.history; n > 0 {
		w.frames = slices.Delete(w.frames, 0, n)
	}
	w.presented++

	if w.host.autoComplete {
		w.host.queue.Push(host.PresentCompleted{Window: w.id})
	}
	return nil
}

// FailNextPresent makes the next Present return err.
func (w *Window) FailNextPresent(err error) {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	w.failure = err
}

// Unmap hides the window and forgets it.
func (w *Window) Unmap() {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	w.mapped = false
	delete(w.host.windows, w.id)
}

// Frames returns the number of presented frames, including dropped ones.
func (w *Window) Frames() int {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.presented
}

// History returns the kept frames, oldest first.
func (w *Window) History() []Frame {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return slices.Clone(w.frames)
}

// LastFrame returns the most recent presented frame.
func (w *Window) LastFrame() (Frame, bool) {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	if len(w.frames) == 0 {
		return Frame{}, false
	}
	return w.frames[len(w.frames)-1], true
}

// Resize changes the window size and queues a Resized event.
func (w *Window) Resize(s output.Size) {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	w.size = s
	w.host.queue.Push(host.Resized{Window: w.id, Size: s})
}

// RequestClose queues a CloseRequested event.
func (w *Window) RequestClose() {
	w.host.queue.Push(host.CloseRequested{Window: w.id})
}

// CompletePresent queues a PresentCompleted event.
func (w *Window) CompletePresent() {
	w.host.queue.Push(host.PresentCompleted{Window: w.id})
}

var (
	_ host.Host   = (*Host)(nil)
	_ host.Window = (*Window)(nil)
)
