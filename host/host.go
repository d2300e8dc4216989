// Package host abstracts the windowing system a compositor session runs
// inside.
//
// A nested compositor shows each of its outputs in a host window. The host
// creates windows, takes finished buffers for display and reports what
// happens to the windows (resize, close requests, completed presentations,
// input) as Events on a channel.
//
// Two hosts ship with the module: headless (in-memory windows for tests and
// servers) and term (a tcell terminal as a single window).
package host

import (
	"errors"
	"image"
	"time"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/gputypes"
)

// Common host errors.
var (
	// ErrClosed is returned by operations on a closed host or an unmapped
	// window.
	ErrClosed = errors.New("host: closed")

	// ErrWindowLimit is returned when the host cannot create more windows.
	ErrWindowLimit = errors.New("host: window limit reached")
)

// WindowID identifies a host window. Zero is never a valid id.
type WindowID uint64

// Host creates windows and delivers their events.
type Host interface {
	// Name is used as the output name prefix, e.g. "headless-1".
	Name() string

	// CreateWindow opens and maps a window.
	CreateWindow(title string) (Window, error)

	// Events returns the event channel. It is closed when the host closes.
	Events() <-chan Event

	// Close destroys every window and stops event delivery.
	Close() error
}

// Window is one host window showing an output.
type Window interface {
	ID() WindowID

	// Size returns the current window size in pixels.
	Size() output.Size

	// Format returns the pixel format the window scans out.
	Format() gputypes.TextureFormat

	// Present shows buf. Damage lists the rectangles that changed; hosts
	// may copy only those.
	Present(buf alloc.Buffer, damage []image.Rectangle) error

	// Unmap hides the window and releases it. Further presents fail.
	Unmap()
}

// Event is a host event. The concrete types are listed below.
type Event interface {
	isEvent()
}

// CloseRequested is sent when the user asks to close a window.
type CloseRequested struct {
	Window WindowID
}

// Resized is sent when a window changed size.
type Resized struct {
	Window WindowID
	Size   output.Size
}

// Refresh is sent when the host wants a window redrawn.
type Refresh struct {
	Window WindowID
}

// PresentCompleted is sent when a presented buffer reached the screen.
type PresentCompleted struct {
	Window WindowID
}

// Focus is sent when a window gains or loses input focus.
type Focus struct {
	Window  WindowID
	Focused bool
}

// InputKind classifies input events.
type InputKind uint8

// Input kinds.
const (
	InputPointerMotionAbsolute InputKind = iota
	InputPointerButton
	InputKeyboard
)

// String returns the kind name.
func (k InputKind) String() string {
	switch k {
	case InputPointerMotionAbsolute:
		return "pointer-motion-absolute"
	case InputPointerButton:
		return "pointer-button"
	case InputKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Input is a keyboard or pointer event. Window is zero when the event is
// not tied to a window.
type Input struct {
	Window   WindowID
	Kind     InputKind
	Position image.Point
	Key      rune
	Pressed  bool
	Time     time.Duration
}

func (CloseRequested) isEvent()   {}
func (Resized) isEvent()          {}
func (Refresh) isEvent()          {}
func (PresentCompleted) isEvent() {}
func (Focus) isEvent()            {}
func (Input) isEvent()            {}
