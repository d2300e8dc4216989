// Package fake provides deterministic stand-ins for the collaborators of a
// compositor session: a renderer, a shell and a clock.
package fake

import (
	"image"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/gputypes"
)

// RenderCall records one RenderOutput call.
type RenderCall struct {
	Output output.ID
	Age    int
	Region []image.Rectangle
	Filter render.ScreenFilter
}

// Renderer reports the frame region as damage without drawing anything.
type Renderer struct {
	// FormatList is returned by Formats. New sets both linear 8-bit formats.
	FormatList []alloc.Format

	// States is returned with every frame.
	States render.States

	// NoDamage makes every frame report empty damage.
	NoDamage bool

	Calls []RenderCall

	failures []error
}

// NewRenderer creates a renderer supporting linear BGRA8 and RGBA8.
func NewRenderer() *Renderer {
	return &Renderer{
		FormatList: []alloc.Format{
			{Code: gputypes.TextureFormatBGRA8Unorm, Modifier: alloc.ModifierLinear},
			{Code: gputypes.TextureFormatRGBA8Unorm, Modifier: alloc.ModifierLinear},
		},
		States: render.States{1: {Visible: true}},
	}
}

// Formats returns FormatList.
func (r *Renderer) Formats() []alloc.Format { return r.FormatList }

// FailNext makes the next RenderOutput return err. Calls queue up.
func (r *Renderer) FailNext(err error) {
	r.failures = append(r.failures, err)
}

// RenderOutput records the call.
func (r *Renderer) RenderOutput(f *render.Frame) (render.Result, error) {
	r.Calls = append(r.Calls, RenderCall{
		Output: f.Output.ID(),
		Age:    f.Age,
		Region: append([]image.Rectangle(nil), f.Region...),
		Filter: f.Filter,
	})
	if len(r.failures) > 0 {
		err := r.failures[0]
		r.failures = r.failures[1:]
		return render.Result{}, err
	}
	res := render.Result{States: r.States}
	if !r.NoDamage {
		res.Damage = append([]image.Rectangle(nil), f.Region...)
	}
	return res, nil
}

// Last returns the most recent call.
func (r *Renderer) Last() RenderCall {
	if len(r.Calls) == 0 {
		return RenderCall{}
	}
	return r.Calls[len(r.Calls)-1]
}

// Presentation records one Presented call.
type Presentation struct {
	Output  output.ID
	Time    time.Duration
	Refresh compositor.Refresh
	Seq     uint64
	Kind    compositor.PresentKind
}

// Failure records one FrameFailed call.
type Failure struct {
	Output output.ID
	Err    error
}

// Shell records every notification.
type Shell struct {
	Added     []*output.Output
	Removed   []*output.Output
	Changed   []*output.Output
	Frames    map[output.ID]uint64
	Primary   map[output.ID]int
	Feedback  map[output.ID]alloc.Format
	Presented []Presentation
	Failures  []Failure
	Inputs    []host.Input
	Active    *output.Output

	// NoFeedback makes TakePresentationFeedback return nil.
	NoFeedback bool
}

// NewShell creates an empty recording shell.
func NewShell() *Shell {
	return &Shell{
		Frames:   make(map[output.ID]uint64),
		Primary:  make(map[output.ID]int),
		Feedback: make(map[output.ID]alloc.Format),
	}
}

func (s *Shell) OutputAdded(o *output.Output)     { s.Added = append(s.Added, o) }
func (s *Shell) OutputRemoved(o *output.Output)   { s.Removed = append(s.Removed, o) }
func (s *Shell) OutputChanged(o *output.Output)   { s.Changed = append(s.Changed, o) }
func (s *Shell) ProcessInput(ev host.Input)       { s.Inputs = append(s.Inputs, ev) }
func (s *Shell) SetActiveOutput(o *output.Output) { s.Active = o }

func (s *Shell) FrameFailed(o *output.Output, err error) {
	s.Failures = append(s.Failures, Failure{Output: o.ID(), Err: err})
}

func (s *Shell) SendFrames(o *output.Output, seq uint64) {
	s.Frames[o.ID()] = seq
}

func (s *Shell) UpdatePrimaryOutput(o *output.Output, _ render.States) {
	s.Primary[o.ID()]++
}

func (s *Shell) SendFormatFeedback(o *output.Output, _ render.States, f alloc.Format) {
	s.Feedback[o.ID()] = f
}

func (s *Shell) TakePresentationFeedback(o *output.Output, _ render.States) compositor.PresentationFeedback {
	if s.NoFeedback {
		return nil
	}
	return feedback{shell: s, output: o.ID()}
}

// PresentedFor returns the presentations of one output.
func (s *Shell) PresentedFor(id output.ID) []Presentation {
	var out []Presentation
	for _, p := range s.Presented {
		if p.Output == id {
			out = append(out, p)
		}
	}
	return out
}

type feedback struct {
	shell  *Shell
	output output.ID
}

func (f feedback) Presented(now time.Duration, refresh compositor.Refresh, seq uint64, kind compositor.PresentKind) {
	f.shell.Presented = append(f.shell.Presented, Presentation{
		Output:  f.output,
		Time:    now,
		Refresh: refresh,
		Seq:     seq,
		Kind:    kind,
	})
}

// Clock is a manually advanced clock.
type Clock struct {
	now time.Duration
}

// Now returns the current time.
func (c *Clock) Now() time.Duration { return c.now }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.now += d }

var (
	_ render.Renderer  = (*Renderer)(nil)
	_ compositor.Shell = (*Shell)(nil)
	_ compositor.Clock = (*Clock)(nil)
)
