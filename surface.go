package compositor

import (
	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/damage"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/swapchain"
	"github.com/gogpu/compositor/wake"
)

// Surface binds an output to the host window it is shown in and to the
// buffers it renders into.
type Surface struct {
	output *output.Output
	window host.Window
	chain  *swapchain.Chain
	damage *damage.Tracker
	format alloc.Format
	filter render.ScreenFilter

	// source is the surface's wake. Its callback renders one frame.
	source *wake.Source
	frame  frameState
}

// Output returns the output shown by the surface.
func (s *Surface) Output() *output.Output { return s.output }

// Window returns the host window.
func (s *Surface) Window() host.Window { return s.window }

// Format returns the negotiated buffer format.
func (s *Surface) Format() alloc.Format { return s.format }
