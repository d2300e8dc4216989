package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/compositor/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"vulkan", "software"}, c.Backends)

	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
backends = ["software"]
device = "/dev/dri/renderD128"
outputs = 2
refresh = 144000
log_level = "debug"

[screen_filter]
inverted = true
color = "greyscale"
`)
	c, err := Parse("compositor.toml", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"software"}, c.Backends)
	assert.Equal(t, "/dev/dri/renderD128", c.Device)
	assert.Equal(t, 2, c.Outputs)
	assert.Equal(t, 144000, c.Refresh)
	assert.Equal(t, render.ScreenFilter{Inverted: true, Color: render.ColorFilterGreyscale}, c.ScreenFilter)
	assert.Equal(t, HostHeadless, c.Host, "defaults are kept")
	assert.Equal(t, 1280, c.Width)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
host: terminal
scale: 2
adapter_name: NVIDIA
screen_filter:
  color: grayscale
`)
	c, err := Parse("compositor.yml", data)
	require.NoError(t, err)

	assert.Equal(t, HostTerminal, c.Host)
	assert.Equal(t, 2, c.Scale)
	assert.Equal(t, "NVIDIA", c.AdapterName)
	assert.Equal(t, render.ColorFilterGreyscale, c.ScreenFilter.Color)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"unknown extension", "c.json", `{}`, ErrUnknownFormat},
		{"bad host", "c.toml", `host = "wayland"`, ErrInvalid},
		{"no outputs", "c.toml", `outputs = 0`, ErrInvalid},
		{"terminal outputs", "c.yaml", "host: terminal\noutputs: 2\n", ErrInvalid},
		{"empty backends", "c.toml", `backends = []`, ErrInvalid},
		{"bad level", "c.toml", `log_level = "loud"`, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, []byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse("c.toml", []byte(`screen_filter = { color = "sepia" }`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compositor.toml")
	require.NoError(t, os.WriteFile(path, []byte(`outputs = 1`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config, err error) {
			if err == nil {
				got <- c
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		// Keep writing until the watcher is registered and reports it.
		require.NoError(t, os.WriteFile(path, []byte(`outputs = 3`), 0o600))
		select {
		case c := <-got:
			if c.Outputs != 3 {
				continue
			}
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
