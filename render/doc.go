// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines how the compositor turns a scene into the pixels of
// one output buffer.
//
// # Core Types
//
//   - Renderer: composes one Frame and reports its Result
//   - Frame: output, buffer, buffer age, region to repaint, screen filter
//   - Result: damage actually drawn plus per-element States
//   - Element / Scene: what gets drawn, bottom to top
//   - ScreenFilter: inversion and greyscale applied after composition
//
// # Renderer Implementations
//
//   - Software: CPU composition with golang.org/x/image/draw (Draw for
//     clears and fills, ApproxBiLinear for scaled pictures)
//
// The compositor never looks inside a renderer. It asks for the formats the
// renderer can target when a surface is created, and for each frame passes
// the region the damage tracker derived from the buffer age:
//
//	res, err := renderer.RenderOutput(&render.Frame{
//		Output: out,
//		Buffer: buf,
//		Age:    age,
//		Region: tracker.Region(age),
//	})
//
// An empty Result.Damage means the frame changed nothing; presentation
// feedback is only sent for frames with damage.
//
// # Thread Safety
//
// Renderers are NOT thread-safe. The compositor drives them from its control
// goroutine.
package render
