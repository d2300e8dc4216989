package compositor

import (
	"time"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
)

// Shell is the part of the compositor above the render core: the window
// manager and the client protocol state. The session reports output and
// frame events to it.
//
// Every method is called on the session's control goroutine. Outputs are
// passed for reading only; States are private copies.
type Shell interface {
	// OutputAdded is called after an output and its surface are registered.
	OutputAdded(o *output.Output)

	// OutputRemoved is called after an output was unregistered.
	OutputRemoved(o *output.Output)

	// OutputChanged is called after the mode of an output changed.
	OutputChanged(o *output.Output)

	// SendFrames tells clients shown on o that a frame was submitted.
	// Seq counts the frames committed on the output.
	SendFrames(o *output.Output, seq uint64)

	// UpdatePrimaryOutput lets the shell track the output each element is
	// mostly shown on.
	UpdatePrimaryOutput(o *output.Output, states render.States)

	// SendFormatFeedback advertises the scan-out format of o to the clients
	// shown on it.
	SendFormatFeedback(o *output.Output, states render.States, format alloc.Format)

	// TakePresentationFeedback collects the pending presentation feedback
	// of the elements in states. It returns nil when nobody asked.
	TakePresentationFeedback(o *output.Output, states render.States) PresentationFeedback

	// FrameFailed reports a frame of o that could not be rendered or
	// submitted. err is a *RenderError or an *AllocationError. The
	// surface was already reset and renders in full on the next
	// invalidation.
	FrameFailed(o *output.Output, err error)

	// ProcessInput handles an input event from the host.
	ProcessInput(ev host.Input)

	// SetActiveOutput makes o the output the seat interacts with.
	SetActiveOutput(o *output.Output)
}

// PresentationFeedback receives the presentation time of a frame.
type PresentationFeedback interface {
	Presented(now time.Duration, refresh Refresh, seq uint64, kind PresentKind)
}

// Refresh is the refresh cycle reported with a presentation.
type Refresh struct {
	// Interval is the duration of one refresh cycle, valid when Fixed.
	Interval time.Duration
	Fixed    bool
}

// RefreshUnknown is reported for outputs without a refresh rate.
var RefreshUnknown = Refresh{}

// PresentKind flags describe how a frame reached the screen.
type PresentKind uint8

// Presentation flags.
const (
	KindVsync PresentKind = 1 << iota
	KindHWClock
	KindHWCompletion
	KindZeroCopy
)

// NopShell implements Shell by doing nothing. Embed it to implement only
// some methods.
type NopShell struct{}

func (NopShell) OutputAdded(*output.Output)                                     {}
func (NopShell) OutputRemoved(*output.Output)                                   {}
func (NopShell) OutputChanged(*output.Output)                                   {}
func (NopShell) SendFrames(*output.Output, uint64)                              {}
func (NopShell) UpdatePrimaryOutput(*output.Output, render.States)              {}
func (NopShell) SendFormatFeedback(*output.Output, render.States, alloc.Format) {}
func (NopShell) FrameFailed(*output.Output, error)                              {}
func (NopShell) ProcessInput(host.Input)                                        {}
func (NopShell) SetActiveOutput(*output.Output)                                 {}

func (NopShell) TakePresentationFeedback(*output.Output, render.States) PresentationFeedback {
	return nil
}

var _ Shell = NopShell{}
