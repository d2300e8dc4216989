package alloc

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// Modifier is a DRM format modifier describing the memory layout of a
// buffer.
type Modifier uint64

// Well-known modifiers.
const (
	// ModifierLinear is a plain row-major layout.
	ModifierLinear Modifier = 0

	// ModifierInvalid lets the driver pick an implicit layout.
	ModifierInvalid Modifier = 0x00ffffffffffffff
)

// String returns a short name for well-known modifiers and hex otherwise.
func (m Modifier) String() string {
	switch m {
	case ModifierLinear:
		return "linear"
	case ModifierInvalid:
		return "implicit"
	}
	return fmt.Sprintf("0x%016x", uint64(m))
}

// Format is a pixel format with a memory layout.
type Format struct {
	Code     gputypes.TextureFormat
	Modifier Modifier
}

// String returns "code/modifier".
func (f Format) String() string {
	return fmt.Sprintf("%v/%v", f.Code, f.Modifier)
}

// colorFormats are the pixel formats output buffers may use.
var colorFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatRGBA8Unorm,
}

// Modifiers returns the modifiers listed for code, in order.
func Modifiers(formats []Format, code gputypes.TextureFormat) []Modifier {
	var out []Modifier
	for _, f := range formats {
		if f.Code == code && !slices.Contains(out, f.Modifier) {
			out = append(out, f.Modifier)
		}
	}
	return out
}

// Intersect returns the formats present in both a and b, in the order of a.
func Intersect(a, b []Format) []Format {
	var out []Format
	for _, f := range a {
		if slices.Contains(b, f) {
			out = append(out, f)
		}
	}
	return out
}

// pickModifier returns the first requested modifier the allocator supports
// for code.
func pickModifier(supported []Format, code gputypes.TextureFormat, requested []Modifier) (Modifier, error) {
	for _, m := range requested {
		if slices.Contains(supported, Format{Code: code, Modifier: m}) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %v with modifiers %v", ErrUnsupportedFormat, code, requested)
}
