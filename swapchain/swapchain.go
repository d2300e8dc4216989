// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package swapchain manages the small ring of output buffers a render
// surface draws into.
//
// Buffers are created lazily from the session allocator. Every buffer
// carries an age: the number of frames since its contents were last
// presented. A freshly allocated buffer has age 0, meaning its contents are
// undefined. After a buffer is submitted its age is 1 and every other
// buffer that holds presented contents ages by one.
package swapchain

import (
	"errors"
	"fmt"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/gputypes"
)

// DefaultSlots is the default number of buffers in a chain.
const DefaultSlots = 3

// Errors returned by Chain.
var (
	// ErrNoFreeSlot is returned by Acquire when every buffer is in use.
	ErrNoFreeSlot = errors.New("swapchain: no free slot")

	// ErrNotAcquired is returned by Submit without a prior Acquire.
	ErrNotAcquired = errors.New("swapchain: no buffer acquired")
)

// Options configures a Chain.
type Options struct {
	Width, Height int
	Format        gputypes.TextureFormat
	// Modifiers lists acceptable layouts in preference order.
	Modifiers []alloc.Modifier
	// Slots caps the number of buffers. Zero means DefaultSlots.
	Slots int
}

type slot struct {
	buf alloc.Buffer
	age int
}

// Chain is a buffer ring bound to one allocator.
//
// Chain is not safe for concurrent use.
type Chain struct {
	allocator alloc.Allocator
	opts      Options

	slots    []*slot
	acquired *slot
	// front is the buffer shown by the host. It is not reused until the next
	// submit replaces it.
	front *slot
}

// New creates an empty chain. No buffer is allocated until Acquire.
func New(a alloc.Allocator, opts Options) *Chain {
	if opts.Slots <= 0 {
		opts.Slots = DefaultSlots
	}
	return &Chain{allocator: a, opts: opts}
}

// Size returns the buffer dimensions.
func (c *Chain) Size() (width, height int) {
	return c.opts.Width, c.opts.Height
}

// Format returns the pixel format buffers are allocated with.
func (c *Chain) Format() gputypes.TextureFormat {
	return c.opts.Format
}

// Len returns the number of allocated buffers.
func (c *Chain) Len() int {
	return len(c.slots)
}

// Acquire returns a buffer to render into and its age. Calling Acquire
// again before Submit returns the same buffer.
func (c *Chain) Acquire() (alloc.Buffer, int, error) {
	if c.acquired != nil {
		return c.acquired.buf, c.acquired.age, nil
	}

	var pick *slot
	for _, s := range c.slots {
		if s == c.front {
			continue
		}
		// Prefer the most recently presented contents.
		if pick == nil || (s.age > 0 && (pick.age == 0 || s.age < pick.age)) {
			pick = s
		}
	}

	if pick == nil {
		if len(c.slots) >= c.opts.Slots {
			return nil, 0, ErrNoFreeSlot
		}
		buf, err := c.allocator.Allocate(c.opts.Width, c.opts.Height, c.opts.Format, c.opts.Modifiers)
		if err != nil {
			return nil, 0, fmt.Errorf("swapchain: allocate %dx%d: %w", c.opts.Width, c.opts.Height, err)
		}
		pick = &slot{buf: buf}
		c.slots = append(c.slots, pick)
	}

	c.acquired = pick
	return pick.buf, pick.age, nil
}

// Submit marks the acquired buffer as presented.
func (c *Chain) Submit() error {
	if c.acquired == nil {
		return ErrNotAcquired
	}
	for _, s := range c.slots {
		if s.age > 0 {
			s.age++
		}
	}
	c.acquired.age = 1
	c.front = c.acquired
	c.acquired = nil
	return nil
}

// Reset releases every buffer. The next Acquire allocates a fresh buffer of
// age 0.
func (c *Chain) Reset() {
	for _, s := range c.slots {
		s.buf.Release()
	}
	c.slots = nil
	c.acquired = nil
	c.front = nil
}

// Resize changes the buffer dimensions and resets the chain.
func (c *Chain) Resize(width, height int) {
	c.opts.Width, c.opts.Height = width, height
	c.Reset()
}

// Close releases every buffer.
func (c *Chain) Close() {
	c.Reset()
}
