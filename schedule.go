package compositor

import (
	"image"

	"github.com/gogpu/compositor/output"
)

// frameState is the render scheduling state of a surface.
//
//	dirty    a render is owed for changes not yet drawn
//	pending  a wake is signalled or a submitted frame has not completed
//
// Any number of invalidations between two renders coalesce into one frame,
// and an invalidation that arrives while a frame is in flight is picked up
// right after that frame completes.
type frameState struct {
	dirty   bool
	pending bool
}

// markDirty records that the surface needs a new frame.
func (s *Surface) markDirty() {
	s.frame.dirty = true
	if !s.frame.pending {
		s.frame.pending = true
		s.source.Ping()
	}
}

// presentationComplete is called when the last submitted frame reached the
// screen, or when a frame attempt ended without submitting anything.
func (s *Surface) presentationComplete() {
	if s.frame.dirty {
		s.source.Ping()
		return
	}
	s.frame.pending = false
}

// onWake is the wake callback of the surface with the given output id. A
// wake for an output that was closed in the meantime does nothing.
func (s *Session) onWake(id output.ID) error {
	surf, ok := s.surfaces[id]
	if !ok {
		return nil
	}

	err := s.renderOutput(surf)
	surf.frame.dirty = false
	if err != nil {
		Logger().Error("compositor: frame failed", "output", surf.output.Name(), "error", err)
		s.shell.FrameFailed(surf.output, err)
		// Nothing was submitted, so no presentation will complete.
		surf.presentationComplete()
	}
	return err
}

// ScheduleRender marks an output as needing a new frame.
func (s *Session) ScheduleRender(id output.ID) error {
	surf, err := s.lookup(id)
	if err != nil {
		return err
	}
	surf.markDirty()
	return nil
}

// Damage records damaged rectangles, in output pixels, and schedules a
// frame. Rectangles are clipped to the output.
func (s *Session) Damage(id output.ID, rects ...image.Rectangle) error {
	surf, err := s.lookup(id)
	if err != nil {
		return err
	}
	surf.damage.Add(rects...)
	surf.markDirty()
	return nil
}

// DamageAll damages the whole output and schedules a frame.
func (s *Session) DamageAll(id output.ID) error {
	surf, err := s.lookup(id)
	if err != nil {
		return err
	}
	surf.damage.AddAll()
	surf.markDirty()
	return nil
}
