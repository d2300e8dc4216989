// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/output"

	xdraw "golang.org/x/image/draw"
)

// Element is one item composed onto an output.
type Element interface {
	// ID identifies the element across frames.
	ID() ElementID

	// Bounds returns the element area in output pixels.
	Bounds() image.Rectangle

	// Draw draws the element into dst. Pixels outside dst's bounds are
	// never touched; callers pass a sub-image to clip.
	Draw(dst *image.RGBA)
}

// Scene supplies the elements of an output, bottom to top.
type Scene interface {
	Elements(o *output.Output) []Element
}

// SceneFunc adapts a function to Scene.
type SceneFunc func(o *output.Output) []Element

// Elements calls f(o).
func (f SceneFunc) Elements(o *output.Output) []Element { return f(o) }

// Solid is a filled rectangle.
type Solid struct {
	Key   ElementID
	Rect  image.Rectangle
	Color color.Color
}

// ID returns the element id.
func (s *Solid) ID() ElementID { return s.Key }

// Bounds returns the rectangle.
func (s *Solid) Bounds() image.Rectangle { return s.Rect }

// Draw composites the rectangle over dst.
func (s *Solid) Draw(dst *image.RGBA) {
	xdraw.Draw(dst, s.Rect, image.NewUniform(s.Color), image.Point{}, xdraw.Over)
}

// Picture is an image scaled into a destination rectangle.
type Picture struct {
	Key ElementID
	Src image.Image
	Dst image.Rectangle
}

// ID returns the element id.
func (p *Picture) ID() ElementID { return p.Key }

// Bounds returns the destination rectangle.
func (p *Picture) Bounds() image.Rectangle { return p.Dst }

// Draw composites the picture over dst, scaling when the sizes differ.
func (p *Picture) Draw(dst *image.RGBA) {
	sr := p.Src.Bounds()
	if sr.Size() == p.Dst.Size() {
		xdraw.Draw(dst, p.Dst, p.Src, sr.Min, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, p.Dst, p.Src, sr, xdraw.Over, nil)
}

var (
	_ Element = (*Solid)(nil)
	_ Element = (*Picture)(nil)
)
