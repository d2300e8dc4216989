// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package damage tracks per-output damage history keyed by buffer age.
//
// A buffer of age N holds the frame presented N frames ago. To bring it up
// to date only the damage of the pending frame plus the damage of the last
// N-1 committed frames has to be repainted. Age 0 means the buffer contents
// are undefined and the whole output is repainted.
package damage

import (
	"image"
)

// maxRects is the threshold after which pending damage collapses into its
// bounding box.
const maxRects = 16

// maxHistory bounds how many committed frames are remembered. Buffers older
// than that are repainted in full.
const maxHistory = 8

// Tracker accumulates damage for one output.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	bounds  image.Rectangle
	pending []image.Rectangle
	full    bool

	// history holds committed frame damage, most recent first.
	history [][]image.Rectangle

	frames uint64
}

// NewTracker creates a tracker for an output of the given bounds.
// The first frame is fully damaged.
func NewTracker(bounds image.Rectangle) *Tracker {
	return &Tracker{bounds: bounds, full: true}
}

// Bounds returns the output bounds.
func (t *Tracker) Bounds() image.Rectangle {
	return t.bounds
}

// Frames returns the number of committed frames. It never decreases.
func (t *Tracker) Frames() uint64 {
	return t.frames
}

// Add records damaged rectangles for the pending frame. Rectangles are
// clipped to the output bounds; empty ones are ignored.
func (t *Tracker) Add(rects ...image.Rectangle) {
	if t.full {
		return
	}
	for _, r := range rects {
		r = r.Intersect(t.bounds)
		if r.Empty() {
			continue
		}
		t.pending = append(t.pending, r)
	}
	if len(t.pending) > maxRects {
		t.pending = []image.Rectangle{unionAll(t.pending)}
	}
}

// AddAll damages the whole output.
func (t *Tracker) AddAll() {
	t.full = true
	t.pending = t.pending[:0]
}

// HasPending reports whether any damage waits for the next frame.
func (t *Tracker) HasPending() bool {
	return t.full || len(t.pending) > 0
}

// Pending returns the damage of the pending frame.
func (t *Tracker) Pending() []image.Rectangle {
	if t.full {
		return []image.Rectangle{t.bounds}
	}
	out := make([]image.Rectangle, len(t.pending))
	copy(out, t.pending)
	return out
}

// Region returns the area that has to be repainted into a buffer of the
// given age. The result is empty when nothing changed since that buffer was
// last presented.
func (t *Tracker) Region(age int) []image.Rectangle {
	if t.full || age <= 0 || age-1 > len(t.history) {
		return []image.Rectangle{t.bounds}
	}

	region := t.Pending()
	for _, frame := range t.history[:age-1] {
		region = append(region, frame...)
	}
	if len(region) > maxRects {
		region = []image.Rectangle{unionAll(region)}
	}
	return region
}

// Commit records the pending damage as presented and starts a new frame.
func (t *Tracker) Commit() {
	frame := t.Pending()
	t.history = append([][]image.Rectangle{frame}, t.history...)
	if len(t.history) > maxHistory {
		t.history = t.history[:maxHistory]
	}
	t.pending = t.pending[:0]
	t.full = false
	t.frames++
}

// Reset forgets the damage history. Pending damage is kept and widened to
// the whole output because buffer contents can no longer be trusted.
func (t *Tracker) Reset() {
	t.history = nil
	t.full = true
	t.pending = t.pending[:0]
}

// Resize changes the output bounds and resets the tracker.
func (t *Tracker) Resize(bounds image.Rectangle) {
	t.bounds = bounds
	t.Reset()
}

func unionAll(rects []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for _, r := range rects {
		u = u.Union(r)
	}
	return u
}
