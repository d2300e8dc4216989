// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"maps"
	"time"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/output"
)

// Renderer composes one output frame into a buffer.
//
// The compositor treats the renderer as an opaque capability: it hands over
// a buffer, the buffer's age and the region that has to be repainted, and
// receives the damage actually drawn plus the element states of the frame.
//
// Renderers are NOT thread-safe. They are driven from the compositor's
// control goroutine only.
type Renderer interface {
	// Formats returns the formats the renderer can draw into. Surfaces
	// only negotiate formats present here and in the allocator.
	Formats() []alloc.Format

	// RenderOutput draws the frame. The buffer contents outside
	// Frame.Region are left untouched.
	RenderOutput(f *Frame) (Result, error)
}

// Frame describes one render request.
type Frame struct {
	// Output is the output being rendered. Read-only.
	Output *output.Output

	// Buffer is the target buffer, acquired from the surface's chain.
	Buffer alloc.Buffer

	// Age is the buffer age; 0 means the contents are undefined.
	Age int

	// Region is the area to repaint, in buffer pixels. An empty region
	// means nothing changed since the buffer was last presented.
	Region []image.Rectangle

	// Filter is the screen filter applied after composition.
	Filter ScreenFilter

	// Time is the compositor clock at the start of the frame.
	Time time.Duration
}

// Result is what a successful RenderOutput produced.
type Result struct {
	// Damage is the area that changed in the buffer. It is empty when the
	// frame did not change anything.
	Damage []image.Rectangle

	// States records which elements ended up on the output.
	States States
}

// ElementID identifies a render element across frames.
type ElementID uint64

// ElementState is the per-frame state of one element.
type ElementState struct {
	// Visible reports whether any part of the element was on the output.
	Visible bool

	// Area is the visible part of the element, in output pixels.
	Area image.Rectangle
}

// States maps elements to their state in one rendered frame.
type States map[ElementID]ElementState

// Clone returns an independent copy. States handed to other components are
// always clones.
func (s States) Clone() States {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Visible reports whether the element was visible in the frame.
func (s States) Visible(id ElementID) bool {
	return s[id].Visible
}
