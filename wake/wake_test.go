package wake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingCoalesces(t *testing.T) {
	loop := NewLoop()
	calls := 0
	src := loop.NewSource(func() { calls++ })

	assert.True(t, src.Ping(), "first ping schedules a dispatch")
	for i := 0; i < 10; i++ {
		assert.False(t, src.Ping(), "ping %d should be absorbed", i)
	}
	assert.True(t, src.Signalled())
	assert.Equal(t, 1, loop.Pending())

	select {
	case <-loop.Ready():
	default:
		t.Fatal("Ready() should be notified after Ping")
	}

	assert.Equal(t, 1, loop.Dispatch())
	assert.Equal(t, 1, calls)
	assert.False(t, src.Signalled())

	assert.Equal(t, 0, loop.Dispatch(), "nothing left to dispatch")
	assert.Equal(t, 1, calls)
}

func TestPingFromCallbackDefersToNextDispatch(t *testing.T) {
	loop := NewLoop()
	calls := 0
	var src *Source
	src = loop.NewSource(func() {
		calls++
		if calls == 1 {
			src.Ping()
		}
	})

	src.Ping()
	require.Equal(t, 1, loop.Dispatch())
	assert.Equal(t, 1, calls)
	assert.True(t, src.Signalled(), "re-ping inside callback stays queued")

	require.Equal(t, 1, loop.Dispatch())
	assert.Equal(t, 2, calls)
}

func TestClosedSourceIsNoop(t *testing.T) {
	loop := NewLoop()
	calls := 0
	src := loop.NewSource(func() { calls++ })

	src.Ping()
	src.Close()
	src.Close()

	assert.Equal(t, 0, loop.Dispatch(), "signal outstanding at close is dropped")
	assert.False(t, src.Ping())
	assert.True(t, src.Closed())
	assert.Equal(t, 0, calls)
}

func TestMultipleSources(t *testing.T) {
	loop := NewLoop()
	var order []string
	a := loop.NewSource(func() { order = append(order, "a") })
	b := loop.NewSource(func() { order = append(order, "b") })

	b.Ping()
	a.Ping()
	b.Ping()

	assert.Equal(t, 2, loop.Dispatch())
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestConcurrentPing(t *testing.T) {
	loop := NewLoop()
	calls := 0
	src := loop.NewSource(func() { calls++ })

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.Ping()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loop.Pending())
	assert.Equal(t, 1, loop.Dispatch())
	assert.Equal(t, 1, calls)
}
