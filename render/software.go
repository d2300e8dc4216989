// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/gputypes"

	xdraw "golang.org/x/image/draw"
)

// Software is a CPU compositor.
//
// It repaints only the frame region: the background is cleared, every
// element overlapping the region is drawn bottom to top and the screen
// filter is applied. Pixels outside the region keep their previous
// contents, which is what makes buffer-age damage tracking pay off.
//
// Example:
//
//	scene := render.SceneFunc(func(o *output.Output) []render.Element {
//		return []render.Element{&render.Solid{Key: 1, Rect: image.Rect(10, 10, 50, 50), Color: color.White}}
//	})
//	r := render.NewSoftware(scene)
type Software struct {
	scene      Scene
	background color.RGBA
}

// SoftwareOption configures a Software renderer.
type SoftwareOption func(*Software)

// WithBackground sets the clear color.
func WithBackground(c color.RGBA) SoftwareOption {
	return func(s *Software) {
		s.background = c
	}
}

// NewSoftware creates a CPU compositor for scene. A nil scene renders only
// the background.
func NewSoftware(scene Scene, opts ...SoftwareOption) *Software {
	s := &Software{
		scene:      scene,
		background: color.RGBA{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Formats returns the linear 8-bit formats the CPU path draws into.
func (s *Software) Formats() []alloc.Format {
	return []alloc.Format{
		{Code: gputypes.TextureFormatBGRA8Unorm, Modifier: alloc.ModifierLinear},
		{Code: gputypes.TextureFormatRGBA8Unorm, Modifier: alloc.ModifierLinear},
	}
}

// RenderOutput composes the frame region into the frame buffer.
func (s *Software) RenderOutput(f *Frame) (Result, error) {
	if f == nil || f.Buffer == nil {
		return Result{}, errors.New("render: nil frame buffer")
	}
	img := f.Buffer.Image()
	if img == nil {
		return Result{}, errors.New("render: buffer has no CPU image")
	}

	var elements []Element
	if s.scene != nil && f.Output != nil {
		elements = s.scene.Elements(f.Output)
	}

	bounds := img.Bounds()
	states := make(States, len(elements))
	for _, e := range elements {
		area := e.Bounds().Intersect(bounds)
		states[e.ID()] = ElementState{Visible: !area.Empty(), Area: area}
	}

	var damage []image.Rectangle
	bg := image.NewUniform(s.background)
	for _, r := range f.Region {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		dst, ok := img.SubImage(r).(*image.RGBA)
		if !ok {
			return Result{}, errors.New("render: unexpected sub-image type")
		}
		xdraw.Draw(dst, r, bg, image.Point{}, xdraw.Src)
		for _, e := range elements {
			if e.Bounds().Overlaps(r) {
				e.Draw(dst)
			}
		}
		f.Filter.Apply(img, r)
		damage = append(damage, r)
	}

	return Result{Damage: damage, States: states}, nil
}

var _ Renderer = (*Software)(nil)
