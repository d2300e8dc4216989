// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"testing"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T, slots int) (*Chain, *alloc.Software) {
	t.Helper()
	sw, err := alloc.TrySoftware("")
	require.NoError(t, err)
	t.Cleanup(sw.Close)
	return New(sw, Options{
		Width:     8,
		Height:    4,
		Format:    gputypes.TextureFormatBGRA8Unorm,
		Modifiers: []alloc.Modifier{alloc.ModifierLinear},
		Slots:     slots,
	}), sw
}

func acquireSubmit(t *testing.T, c *Chain) (alloc.Buffer, int) {
	t.Helper()
	buf, age, err := c.Acquire()
	require.NoError(t, err)
	require.NoError(t, c.Submit())
	return buf, age
}

func TestChainAges(t *testing.T) {
	c, _ := newChain(t, 0)

	first, age := acquireSubmit(t, c)
	assert.Equal(t, 0, age, "fresh buffer")

	second, age := acquireSubmit(t, c)
	assert.Equal(t, 0, age, "front buffer is not reused")
	assert.NotSame(t, first, second)

	buf, age := acquireSubmit(t, c)
	assert.Same(t, first, buf)
	assert.Equal(t, 2, age)

	buf, age = acquireSubmit(t, c)
	assert.Same(t, second, buf)
	assert.Equal(t, 2, age)

	assert.Equal(t, 2, c.Len(), "steady state double buffers")
}

func TestChainAcquireTwiceReturnsSameBuffer(t *testing.T) {
	c, _ := newChain(t, 0)

	a, _, err := c.Acquire()
	require.NoError(t, err)
	b, _, err := c.Acquire()
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
}

func TestChainNoFreeSlot(t *testing.T) {
	c, _ := newChain(t, 1)
	acquireSubmit(t, c)

	_, _, err := c.Acquire()
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestChainSubmitWithoutAcquire(t *testing.T) {
	c, _ := newChain(t, 0)
	assert.ErrorIs(t, c.Submit(), ErrNotAcquired)
}

func TestChainResetStartsOver(t *testing.T) {
	c, _ := newChain(t, 0)
	acquireSubmit(t, c)
	acquireSubmit(t, c)
	acquireSubmit(t, c)

	c.Reset()
	assert.Equal(t, 0, c.Len())

	_, age := acquireSubmit(t, c)
	assert.Equal(t, 0, age)
}

func TestChainResize(t *testing.T) {
	c, _ := newChain(t, 0)
	acquireSubmit(t, c)

	c.Resize(16, 9)
	w, h := c.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 9, h)

	buf, age, err := c.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 0, age)
	assert.Equal(t, 16, buf.Width())
	assert.Equal(t, 9, buf.Height())
}

func TestChainAllocationFailure(t *testing.T) {
	c, sw := newChain(t, 0)
	sw.Close()

	_, _, err := c.Acquire()
	assert.ErrorIs(t, err, alloc.ErrClosed)
	assert.Equal(t, 0, c.Len())
}
