package headless

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, h *Host) host.Event {
	t.Helper()
	select {
	case ev := <-h.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return nil
	}
}

func buffer(t *testing.T, s output.Size) alloc.Buffer {
	t.Helper()
	sw, err := alloc.TrySoftware("")
	require.NoError(t, err)
	buf, err := sw.Allocate(s.W, s.H, gputypes.TextureFormatBGRA8Unorm, []alloc.Modifier{alloc.ModifierLinear})
	require.NoError(t, err)
	return buf
}

func TestCreateWindow(t *testing.T) {
	h := New(WithSize(output.Size{W: 64, H: 48}), WithMaxWindows(1))
	defer h.Close()

	w, err := h.CreateWindow("one")
	require.NoError(t, err)
	assert.Equal(t, host.WindowID(1), w.ID())
	assert.Equal(t, output.Size{W: 64, H: 48}, w.Size())
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, w.Format())

	_, err = h.CreateWindow("two")
	assert.ErrorIs(t, err, host.ErrWindowLimit)
}

func TestEventsInOrder(t *testing.T) {
	h := New()
	defer h.Close()
	hw, err := h.CreateWindow("w")
	require.NoError(t, err)
	w := hw.(*Window)

	w.Resize(output.Size{W: 10, H: 10})
	w.CompletePresent()
	w.RequestClose()

	assert.Equal(t, host.Resized{Window: 1, Size: output.Size{W: 10, H: 10}}, next(t, h))
	assert.Equal(t, host.PresentCompleted{Window: 1}, next(t, h))
	assert.Equal(t, host.CloseRequested{Window: 1}, next(t, h))
	assert.Equal(t, output.Size{W: 10, H: 10}, w.Size())
}

func TestPresentRecordsFrames(t *testing.T) {
	size := output.Size{W: 4, H: 4}
	h := New(WithSize(size), WithAutoComplete(true))
	defer h.Close()
	hw, err := h.CreateWindow("w")
	require.NoError(t, err)
	w := hw.(*Window)

	buf := buffer(t, size)
	buf.Image().Pix[0] = 0xaa
	damage := []image.Rectangle{image.Rect(0, 0, 1, 1)}
	require.NoError(t, w.Present(buf, damage))

	buf.Image().Pix[0] = 0
	f, ok := w.LastFrame()
	require.True(t, ok)
	assert.Equal(t, uint8(0xaa), f.Image.Pix[0], "frames are copies")
	assert.Equal(t, damage, f.Damage)
	assert.Equal(t, host.PresentCompleted{Window: 1}, next(t, h))

	boom := errors.New("boom")
	w.FailNextPresent(boom)
	assert.ErrorIs(t, w.Present(buf, nil), boom)
	assert.NoError(t, w.Present(buf, nil))
	assert.Equal(t, 2, w.Frames())
}

func TestUnmap(t *testing.T) {
	h := New(WithSize(output.Size{W: 2, H: 2}))
	defer h.Close()
	hw, err := h.CreateWindow("w")
	require.NoError(t, err)
	w := hw.(*Window)

	w.Unmap()

	assert.False(t, w.Mapped())
	_, ok := h.Window(w.ID())
	assert.False(t, ok)
	assert.ErrorIs(t, w.Present(buffer(t, output.Size{W: 2, H: 2}), nil), host.ErrClosed)
}

func TestCloseClosesEvents(t *testing.T) {
	h := New()
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	select {
	case _, ok := <-h.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}

	_, err := h.CreateWindow("late")
	assert.ErrorIs(t, err, host.ErrClosed)
}

func TestHistoryIsBounded(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		keep int
	}{
		{"default keeps last", nil, 1},
		{"ring of three", []Option{WithHistory(3)}, 3},
		{"zero keeps last", []Option{WithHistory(0)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := output.Size{W: 8, H: 8}
			h := New(append([]Option{WithSize(size)}, tt.opts...)...)
			defer h.Close()
			hw, err := h.CreateWindow("w")
			require.NoError(t, err)
			w := hw.(*Window)

			buf := buffer(t, size)
			for i := range 300 {
				buf.Image().Pix[0] = uint8(i)
				require.NoError(t, w.Present(buf, nil))
			}

			assert.Equal(t, 300, w.Frames())
			history := w.History()
			require.Len(t, history, tt.keep)
			for i, f := range history {
				assert.Equal(t, uint8(300-tt.keep+i), f.Image.Pix[0])
			}
			last, ok := w.LastFrame()
			require.True(t, ok)
			assert.Equal(t, uint8(299%256), last.Image.Pix[0])
		})
	}
}
