package compositor

import (
	"fmt"
	"slices"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/damage"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/swapchain"
	"github.com/gogpu/gputypes"
)

// defaultRefresh is the refresh rate of host windows, in millihertz, when
// the configuration does not set one.
const defaultRefresh = 60_000

// AddWindow opens a host window and registers an output shown in it.
//
// The output is named after the host ("headless-1", "terminal-1") and has a
// single mode at the window size, which is both current and preferred. Its
// first frame is already scheduled: the surface starts pending with its wake
// signalled, so it renders once without any damage being reported.
func (s *Session) AddWindow(title string) (*output.Output, error) {
	if s.shutdown {
		return nil, ErrShutdown
	}
	w, err := s.host.CreateWindow(title)
	if err != nil {
		return nil, fmt.Errorf("compositor: create window: %w", err)
	}

	format, err := s.negotiate(w.Format())
	if err != nil {
		w.Unmap()
		return nil, err
	}

	s.lastID++
	id := s.lastID
	name := fmt.Sprintf("%s-%d", s.host.Name(), id)
	o := output.New(id, name, output.PhysicalProperties{
		Subpixel: output.SubpixelUnknown,
		Make:     "gogpu",
		Model:    name,
	})

	size := w.Size()
	refresh := s.cfg.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	mode := output.Mode{Size: size, Refresh: refresh}
	transform := output.TransformNormal
	scale := 1.0
	pos := output.Point{}
	o.ChangeCurrentState(&mode, &transform, &scale, &pos)
	o.SetPreferred(mode)

	s.configs.Ensure(id, func() output.Config {
		return output.Config{Mode: size, Refresh: refresh, Scale: scale, Transform: transform, Enabled: true}
	})

	surf := &Surface{
		output: o,
		window: w,
		chain: swapchain.New(s.allocator, swapchain.Options{
			Width:     size.W,
			Height:    size.H,
			Format:    format.Code,
			Modifiers: format.modifiers,
		}),
		damage: damage.NewTracker(o.PixelBounds()),
		format: format.Format,
		filter: s.filter,
	}
	surf.source = s.loop.NewSource(func() { _ = s.onWake(id) })

	s.surfaces[id] = surf
	s.windows[w.ID()] = id
	s.order = append(s.order, id)
	s.hadOutputs = true

	// The first frame renders unconditionally.
	surf.frame.pending = true
	surf.source.Ping()

	s.shell.OutputAdded(o)
	Logger().Info("compositor: output added", "output", name, "size", size, "format", format.Format)
	return o, nil
}

// negotiated is the outcome of format negotiation: the format reported to
// clients and the modifiers buffers may be allocated with.
type negotiated struct {
	alloc.Format
	modifiers []alloc.Modifier
}

// negotiate picks the buffer format of a window scanning out code: the
// modifiers both the renderer and the allocator support for it.
func (s *Session) negotiate(code gputypes.TextureFormat) (negotiated, error) {
	formats := alloc.Intersect(s.renderer.Formats(), s.allocator.Formats())
	mods := alloc.Modifiers(formats, code)
	if len(mods) == 0 {
		return negotiated{}, &AllocationError{
			Backend: s.allocator.Name(),
			Op:      "negotiate format",
			Err:     fmt.Errorf("%w: %v", alloc.ErrUnsupportedFormat, code),
		}
	}
	return negotiated{Format: alloc.Format{Code: code, Modifier: mods[0]}, modifiers: mods}, nil
}

// Resize applies a new host window size to an output. A size equal to the
// current mode is a no-op. Otherwise the mode is replaced, the buffers and
// damage history are dropped and a frame is scheduled.
func (s *Session) Resize(id output.ID, size output.Size) error {
	surf, err := s.lookup(id)
	if err != nil {
		return err
	}
	o := surf.output
	cur, ok := o.CurrentMode()
	if ok && cur.Size == size {
		return nil
	}
	if size.Empty() {
		return fmt.Errorf("compositor: resize %s to %v: %w", o.Name(), size, alloc.ErrInvalidDimensions)
	}

	refresh := cur.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	mode := output.Mode{Size: size, Refresh: refresh}
	s.configs.Ensure(id, func() output.Config {
		return output.Config{Scale: o.Scale(), Transform: o.Transform(), Enabled: true}
	}).Mode = size

	if ok {
		o.DeleteMode(cur)
	}
	o.ChangeCurrentState(&mode, nil, nil, nil)
	o.SetPreferred(mode)

	surf.chain.Resize(size.W, size.H)
	surf.damage.Resize(o.PixelBounds())

	s.shell.OutputChanged(o)
	Logger().Debug("compositor: output resized", "output", o.Name(), "size", size)
	surf.markDirty()
	return nil
}

// Close unmaps the window of an output and unregisters both. The output is
// returned and reported to the shell. A wake that was already signalled for
// the output is dropped.
func (s *Session) Close(id output.ID) (*output.Output, error) {
	surf, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	surf.source.Close()
	surf.window.Unmap()
	surf.chain.Close()

	delete(s.surfaces, id)
	delete(s.windows, surf.window.ID())
	s.order = slices.DeleteFunc(s.order, func(x output.ID) bool { return x == id })
	s.configs.Delete(id)

	s.shell.OutputRemoved(surf.output)
	Logger().Info("compositor: output removed", "output", surf.output.Name())
	return surf.output, nil
}

// HandleEvent applies a host event.
//
//   - CloseRequested closes the output of the window.
//   - Resized resizes it.
//   - Refresh and PresentCompleted complete the frame in flight.
//   - Input goes to the shell; absolute pointer motion over a window makes
//     its output active first. Every output is then scheduled.
func (s *Session) HandleEvent(ev host.Event) error {
	switch ev := ev.(type) {
	case host.CloseRequested:
		surf, err := s.lookupWindow(ev.Window)
		if err != nil {
			return err
		}
		_, err = s.Close(surf.output.ID())
		return err

	case host.Resized:
		surf, err := s.lookupWindow(ev.Window)
		if err != nil {
			return err
		}
		return s.Resize(surf.output.ID(), ev.Size)

	case host.Refresh:
		return s.completeFrame(ev.Window)

	case host.PresentCompleted:
		return s.completeFrame(ev.Window)

	case host.Input:
		if ev.Time == 0 {
			ev.Time = s.clock.Now()
		}
		if ev.Kind == host.InputPointerMotionAbsolute && ev.Window != 0 {
			if surf, err := s.lookupWindow(ev.Window); err == nil {
				s.shell.SetActiveOutput(surf.output)
			}
		}
		s.shell.ProcessInput(ev)
		for _, id := range s.order {
			s.surfaces[id].markDirty()
		}
		return nil

	case host.Focus:
		Logger().Debug("compositor: focus changed", "window", ev.Window, "focused", ev.Focused)
		return nil
	}
	return fmt.Errorf("compositor: unhandled host event %T", ev)
}

func (s *Session) completeFrame(id host.WindowID) error {
	surf, err := s.lookupWindow(id)
	if err != nil {
		return err
	}
	surf.presentationComplete()
	return nil
}

// ApplyConfig checks the stored output configurations against the host
// windows. A nested output cannot be resized by configuration: if a stored
// mode differs from its window size ErrCannotSetSize is returned and, unless
// testOnly is set, the stored mode is reset to the window size.
func (s *Session) ApplyConfig(testOnly bool) error {
	for _, id := range s.order {
		surf := s.surfaces[id]
		cfg, ok := s.configs.Get(id)
		if !ok {
			continue
		}
		mode, _ := surf.output.CurrentMode()
		if cfg.Mode != mode.Size {
			if !testOnly {
				cfg.Mode = mode.Size
			}
			return fmt.Errorf("%w: %s", ErrCannotSetSize, surf.output.Name())
		}
	}
	return nil
}

// UpdateScreenFilter switches the screen filter of every output and
// repaints them in full.
func (s *Session) UpdateScreenFilter(f render.ScreenFilter) {
	s.filter = f
	for _, id := range s.order {
		surf := s.surfaces[id]
		surf.filter = f
		surf.damage.AddAll()
		surf.markDirty()
	}
}
