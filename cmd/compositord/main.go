// Command compositord runs a nested compositor session with a demo scene.
//
// Outputs are shown as in-memory windows (host "headless") or drawn into the
// terminal with half-block cells (host "terminal"). A configuration file in
// TOML or YAML can be given with -config; its screen filter is reapplied
// whenever the file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/config"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/host/headless"
	"github.com/gogpu/compositor/host/term"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "configuration file (.toml, .yaml)")
		hostName   = flag.String("host", "", "window host: headless or terminal")
		outputs    = flag.Int("outputs", 0, "number of outputs")
		logPath    = flag.String("log", "", "log file (default stderr, discarded for the terminal host)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("compositord: %v", err)
		}
	}
	if *hostName != "" {
		cfg.Host = *hostName
	}
	if *outputs > 0 {
		cfg.Outputs = *outputs
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("compositord: %v", err)
	}

	if err := run(cfg, *configPath, *logPath); err != nil {
		log.Fatalf("compositord: %v", err)
	}
}

func run(cfg config.Config, configPath, logPath string) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	var w io.Writer = os.Stderr
	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	case cfg.Host == config.HostTerminal:
		w = io.Discard
	}
	compositor.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))

	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDemo()
	sess, err := compositor.New(cfg, h, render.NewSoftware(render.SceneFunc(d.elements)))
	if err != nil {
		return err
	}
	defer sess.Shutdown()

	for i := range cfg.Outputs {
		if _, err := sess.AddWindow(fmt.Sprintf("compositord %d", i+1)); err != nil {
			return err
		}
	}

	go d.animate(ctx, sess)
	if configPath != "" {
		go watchConfig(ctx, sess, configPath)
	}

	err = sess.Run(ctx)
	if errors.Is(err, host.ErrClosed) {
		return nil
	}
	return err
}

func newHost(cfg config.Config) (host.Host, error) {
	switch cfg.Host {
	case config.HostTerminal:
		h, err := term.New(term.WithScale(cfg.Scale))
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return headless.New(
			headless.WithSize(output.Size{W: cfg.Width, H: cfg.Height}),
			headless.WithAutoComplete(true),
		), nil
	}
}

// watchConfig applies screen filter changes from the configuration file.
func watchConfig(ctx context.Context, sess *compositor.Session, path string) {
	err := config.Watch(ctx, path, func(cfg config.Config, err error) {
		if err != nil {
			compositor.Logger().Warn("compositord: config reload failed", "error", err)
			return
		}
		if err := sess.Post(func() { sess.UpdateScreenFilter(cfg.ScreenFilter) }); err != nil {
			return
		}
		compositor.Logger().Info("compositord: screen filter updated", "inverted", cfg.ScreenFilter.Inverted, "color", cfg.ScreenFilter.Color)
	})
	if err != nil {
		compositor.Logger().Warn("compositord: config watch stopped", "error", err)
	}
}

// demo bounces a square around every output. Its state is only touched on
// the session's control goroutine.
type demo struct {
	pos, vel image.Point
	size     int
}

func newDemo() *demo {
	return &demo{pos: image.Pt(16, 16), vel: image.Pt(3, 2), size: 48}
}

func (d *demo) rect() image.Rectangle {
	return image.Rectangle{Min: d.pos, Max: d.pos.Add(image.Pt(d.size, d.size))}
}

func (d *demo) elements(o *output.Output) []render.Element {
	b := o.PixelBounds()
	return []render.Element{
		&render.Solid{Key: 1, Rect: image.Rect(0, b.Dy()-8, b.Dx(), b.Dy()), Color: color.RGBA{R: 0x30, G: 0x60, B: 0x90, A: 0xff}},
		&render.Solid{Key: 2, Rect: d.rect(), Color: color.RGBA{R: 0xe0, G: 0x80, B: 0x20, A: 0xff}},
	}
}

// step moves the square inside bounds and returns the area it covered
// before and after the move.
func (d *demo) step(bounds image.Rectangle) image.Rectangle {
	old := d.rect()
	next := d.pos.Add(d.vel)
	if next.X < bounds.Min.X || next.X+d.size > bounds.Max.X {
		d.vel.X = -d.vel.X
	}
	if next.Y < bounds.Min.Y || next.Y+d.size > bounds.Max.Y {
		d.vel.Y = -d.vel.Y
	}
	d.pos = d.pos.Add(d.vel)
	return old.Union(d.rect())
}

func (d *demo) animate(ctx context.Context, sess *compositor.Session) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := sess.Post(func() {
				outputs := sess.AllOutputs()
				if len(outputs) == 0 {
					return
				}
				bounds := outputs[0].PixelBounds()
				for _, o := range outputs[1:] {
					bounds = bounds.Intersect(o.PixelBounds())
				}
				damageOutputs(sess, outputs, d.step(bounds))
			})
			if err != nil {
				return
			}
		}
	}
}

type damager interface {
	Damage(id output.ID, rects ...image.Rectangle) error
}

// damageOutputs marks r on every output. An output removed since the list
// was taken only fails its own damage.
func damageOutputs(sess damager, outputs []*output.Output, r image.Rectangle) {
	for _, o := range outputs {
		if err := sess.Damage(o.ID(), r); err != nil {
			compositor.Logger().Debug("compositord: damage failed", "output", o.Name(), "error", err)
		}
	}
}
