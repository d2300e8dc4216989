package compositor

import "github.com/gogpu/compositor/output"

// FrameState exposes the scheduling flags of an output to tests.
func (s *Session) FrameState(id output.ID) (dirty, pending, signalled bool) {
	surf := s.surfaces[id]
	return surf.frame.dirty, surf.frame.pending, surf.source.Signalled()
}

// BufferCount returns the number of allocated buffers of an output.
func (s *Session) BufferCount(id output.ID) int {
	return s.surfaces[id].chain.Len()
}

// DamageFrames returns the number of committed frames of an output.
func (s *Session) DamageFrames(id output.ID) uint64 {
	return s.surfaces[id].damage.Frames()
}

// RenderNow runs the wake callback of an output directly and returns its
// error.
func (s *Session) RenderNow(id output.ID) error {
	return s.onWake(id)
}
