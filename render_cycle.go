package compositor

import (
	"fmt"
	"image"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
)

// renderOutput renders and submits one frame of surf.
//
// A failed buffer acquire leaves the damage history alone. A failed
// composition or submission resets the buffer chain and the damage history,
// so the next frame starts from age 0 and repaints the whole output.
func (s *Session) renderOutput(surf *Surface) error {
	buf, age, err := surf.chain.Acquire()
	if err != nil {
		return &AllocationError{Backend: s.allocator.Name(), Op: "acquire", Err: err}
	}

	region := surf.damage.Region(age)
	Logger().Debug("compositor: rendering", "output", surf.output.Name(), "age", age, "rects", len(region))

	res, err := s.renderer.RenderOutput(&render.Frame{
		Output: surf.output,
		Buffer: buf,
		Age:    age,
		Region: region,
		Filter: surf.filter,
		Time:   s.clock.Now(),
	})
	if err == nil {
		err = submit(surf, buf, res.Damage)
	}
	if err != nil {
		surf.chain.Reset()
		surf.damage.Reset()
		return &RenderError{Output: surf.output.Name(), Err: err}
	}
	surf.damage.Commit()

	o := surf.output
	states := res.States.Clone()
	s.shell.SendFrames(o, surf.damage.Frames())
	s.shell.UpdatePrimaryOutput(o, states)
	s.shell.SendFormatFeedback(o, states, surf.format)

	if len(res.Damage) > 0 {
		if fb := s.shell.TakePresentationFeedback(o, states); fb != nil {
			fb.Presented(s.clock.Now(), refreshOf(o), 0, KindVsync)
		}
	}
	return nil
}

// submit hands the rendered buffer to the host window.
func submit(surf *Surface, buf alloc.Buffer, damage []image.Rectangle) error {
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := surf.window.Present(buf, damage); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return surf.chain.Submit()
}

// refreshOf returns the refresh cycle of the current mode of o.
func refreshOf(o *output.Output) Refresh {
	mode, ok := o.CurrentMode()
	if !ok {
		return RefreshUnknown
	}
	d, ok := mode.RefreshInterval()
	if !ok {
		return RefreshUnknown
	}
	return Refresh{Interval: d, Fixed: true}
}
