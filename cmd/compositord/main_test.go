package main

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"testing"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/output"
	"github.com/stretchr/testify/assert"
)

func TestDemoStepStaysInBounds(t *testing.T) {
	d := newDemo()
	bounds := image.Rect(0, 0, 100, 80)
	for range 500 {
		damaged := d.step(bounds)
		r := d.rect()
		assert.True(t, r.In(bounds), "square %v left %v", r, bounds)
		assert.True(t, r.In(damaged))
	}
}

func TestDemoElements(t *testing.T) {
	d := newDemo()
	o := output.New(1, "headless-1", output.PhysicalProperties{})
	mode := output.Mode{Size: output.Size{W: 200, H: 100}, Refresh: 60000}
	o.ChangeCurrentState(&mode, nil, nil, nil)

	els := d.elements(o)
	assert.Len(t, els, 2)
	assert.Equal(t, d.rect(), els[1].Bounds())
	assert.Equal(t, image.Rect(0, 92, 200, 100), els[0].Bounds())
}

type recordDamage struct {
	fail map[output.ID]error
	got  map[output.ID][]image.Rectangle
}

func (r *recordDamage) Damage(id output.ID, rects ...image.Rectangle) error {
	if err := r.fail[id]; err != nil {
		return err
	}
	r.got[id] = append(r.got[id], rects...)
	return nil
}

func TestDamageOutputsLogsFailures(t *testing.T) {
	orig := compositor.Logger()
	t.Cleanup(func() { compositor.SetLogger(orig) })
	var buf bytes.Buffer
	compositor.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	gone := output.New(1, "headless-1", output.PhysicalProperties{})
	live := output.New(2, "headless-2", output.PhysicalProperties{})
	d := &recordDamage{
		fail: map[output.ID]error{1: errors.New("output removed")},
		got:  make(map[output.ID][]image.Rectangle),
	}
	r := image.Rect(4, 4, 20, 20)

	damageOutputs(d, []*output.Output{gone, live}, r)

	assert.Equal(t, []image.Rectangle{r}, d.got[2], "later outputs are still damaged")
	assert.Empty(t, d.got[1])
	assert.Contains(t, buf.String(), "compositord: damage failed")
	assert.Contains(t, buf.String(), "output=headless-1")
	assert.Contains(t, buf.String(), "output removed")
	assert.NotContains(t, buf.String(), "headless-2")
}
