// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"
)

// ColorFilter is a whole-screen color transformation.
type ColorFilter string

// Supported color filters.
const (
	ColorFilterNone      ColorFilter = ""
	ColorFilterGreyscale ColorFilter = "greyscale"
)

// UnmarshalText accepts the filter names used in configuration files.
func (c *ColorFilter) UnmarshalText(text []byte) error {
	switch v := ColorFilter(text); v {
	case ColorFilterNone, ColorFilterGreyscale:
		*c = v
		return nil
	case "none":
		*c = ColorFilterNone
		return nil
	case "grayscale":
		*c = ColorFilterGreyscale
		return nil
	default:
		return fmt.Errorf("render: unknown color filter %q", v)
	}
}

// ScreenFilter is applied to every output after composition.
type ScreenFilter struct {
	Inverted bool        `toml:"inverted" yaml:"inverted"`
	Color    ColorFilter `toml:"color" yaml:"color"`
}

// IsZero reports whether the filter leaves pixels unchanged.
func (f ScreenFilter) IsZero() bool {
	return !f.Inverted && f.Color == ColorFilterNone
}

// Apply filters the pixels of img inside r.
func (f ScreenFilter) Apply(img *image.RGBA, r image.Rectangle) {
	if f.IsZero() {
		return
	}
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			red, green, blue, a := row[i], row[i+1], row[i+2], row[i+3]
			if f.Color == ColorFilterGreyscale {
				// Rec. 709 luma on premultiplied values.
				l := uint8((2126*uint32(red) + 7152*uint32(green) + 722*uint32(blue)) / 10000) //nolint:gosec // bounded by 255
				red, green, blue = l, l, l
			}
			if f.Inverted {
				// Premultiplied: invert within the alpha range.
				red, green, blue = a-red, a-green, a-blue
			}
			row[i], row[i+1], row[i+2] = red, green, blue
		}
	}
}
