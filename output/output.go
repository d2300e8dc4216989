// Package output describes logical display targets.
//
// An Output has an immutable identity (ID, name, physical properties) and a
// small mutable state: modes, current and preferred mode, scale, transform
// and logical position. The state is changed only by the component that
// owns the output's render surface, on the compositor's control goroutine.
package output

import (
	"fmt"
	"image"
	"slices"
	"time"
)

// ID identifies an output for the lifetime of a session.
type ID uint64

// Size is a width/height pair in pixels (or millimetres for physical sizes).
type Size struct {
	W, H int
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Point is a position in the global compositor space.
type Point struct {
	X, Y int
}

// Mode is a display mode. Refresh is in millihertz.
type Mode struct {
	Size    Size
	Refresh int
}

// RefreshInterval returns the duration of one refresh cycle.
// It returns false when the refresh rate is unknown.
func (m Mode) RefreshInterval() (time.Duration, bool) {
	if m.Refresh <= 0 {
		return 0, false
	}
	return time.Duration(float64(time.Second) * 1000 / float64(m.Refresh)), true
}

// Subpixel describes the subpixel layout of a physical display.
type Subpixel uint8

// Subpixel layouts.
const (
	SubpixelUnknown Subpixel = iota
	SubpixelNone
	SubpixelHorizontalRGB
	SubpixelHorizontalBGR
	SubpixelVerticalRGB
	SubpixelVerticalBGR
)

// PhysicalProperties are the fixed properties of the display hardware.
type PhysicalProperties struct {
	// Size is the physical size in millimetres, zero if unknown.
	Size     Size
	Subpixel Subpixel
	Make     string
	Model    string
}

// Transform is the output transform applied to buffer contents.
type Transform uint8

// Output transforms.
const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// Swaps reports whether the transform swaps width and height.
func (t Transform) Swaps() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// Output is a logical display target.
type Output struct {
	id       ID
	name     string
	physical PhysicalProperties

	modes     []Mode
	current   *Mode
	preferred *Mode
	scale     float64
	transform Transform
	position  Point
}

// New creates an output without modes, scale 1 and the normal transform.
func New(id ID, name string, physical PhysicalProperties) *Output {
	return &Output{
		id:       id,
		name:     name,
		physical: physical,
		scale:    1,
	}
}

// ID returns the stable output identity.
func (o *Output) ID() ID { return o.id }

// Name returns the output name.
func (o *Output) Name() string { return o.name }

// Physical returns the physical properties.
func (o *Output) Physical() PhysicalProperties { return o.physical }

// Modes returns a copy of the supported modes.
func (o *Output) Modes() []Mode { return slices.Clone(o.modes) }

// CurrentMode returns the current mode, if any.
func (o *Output) CurrentMode() (Mode, bool) {
	if o.current == nil {
		return Mode{}, false
	}
	return *o.current, true
}

// PreferredMode returns the preferred mode, if any.
func (o *Output) PreferredMode() (Mode, bool) {
	if o.preferred == nil {
		return Mode{}, false
	}
	return *o.preferred, true
}

// Scale returns the output scale factor.
func (o *Output) Scale() float64 { return o.scale }

// Transform returns the output transform.
func (o *Output) Transform() Transform { return o.transform }

// Position returns the logical position of the output.
func (o *Output) Position() Point { return o.position }

// PixelBounds returns the buffer-space rectangle of the current mode, with
// the transform applied. It is empty when no mode is set.
func (o *Output) PixelBounds() image.Rectangle {
	m, ok := o.CurrentMode()
	if !ok {
		return image.Rectangle{}
	}
	w, h := m.Size.W, m.Size.H
	if o.transform.Swaps() {
		w, h = h, w
	}
	return image.Rect(0, 0, w, h)
}

// String returns the output name.
func (o *Output) String() string { return o.name }

// AddMode adds a mode if it is not already present.
func (o *Output) AddMode(m Mode) {
	if !slices.Contains(o.modes, m) {
		o.modes = append(o.modes, m)
	}
}

// DeleteMode removes a mode. The current and preferred modes are cleared
// when they equal m.
func (o *Output) DeleteMode(m Mode) {
	o.modes = slices.DeleteFunc(o.modes, func(x Mode) bool { return x == m })
	if o.current != nil && *o.current == m {
		o.current = nil
	}
	if o.preferred != nil && *o.preferred == m {
		o.preferred = nil
	}
}

// SetPreferred marks m as the preferred mode, adding it if needed.
func (o *Output) SetPreferred(m Mode) {
	o.AddMode(m)
	o.preferred = &m
}

// ChangeCurrentState updates any non-nil part of the output state.
// A new current mode is added to the mode list.
func (o *Output) ChangeCurrentState(mode *Mode, transform *Transform, scale *float64, position *Point) {
	if mode != nil {
		m := *mode
		o.AddMode(m)
		o.current = &m
	}
	if transform != nil {
		o.transform = *transform
	}
	if scale != nil && *scale > 0 {
		o.scale = *scale
	}
	if position != nil {
		o.position = *position
	}
}
