package compositor

import (
	"context"
	"fmt"
	"slices"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/config"
	"github.com/gogpu/compositor/host"
	"github.com/gogpu/compositor/output"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/wake"
)

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	registry *alloc.Registry
	shell    Shell
	clock    Clock
}

// WithRegistry replaces the built-in allocator registry. The configured
// backend order is resolved against it.
func WithRegistry(r *alloc.Registry) Option {
	return func(o *sessionOptions) {
		o.registry = r
	}
}

// WithShell sets the shell that receives output and frame events.
func WithShell(s Shell) Option {
	return func(o *sessionOptions) {
		o.shell = s
	}
}

// WithClock sets the compositor clock.
func WithClock(c Clock) Option {
	return func(o *sessionOptions) {
		o.clock = c
	}
}

// Session is the backend session of a nested compositor: one host, one
// buffer allocator, one renderer and the registry of outputs shown in host
// windows.
//
// A Session is driven by exactly one control goroutine. Every method except
// Post must be called from it; Run makes the calling goroutine the control
// goroutine.
type Session struct {
	cfg       config.Config
	host      host.Host
	allocator alloc.Allocator
	renderer  render.Renderer
	shell     Shell
	clock     Clock
	loop      *wake.Loop

	surfaces map[output.ID]*Surface
	windows  map[host.WindowID]output.ID
	order    []output.ID
	configs  *output.ConfigStore
	filter   render.ScreenFilter
	lastID   output.ID

	// hadOutputs is set once the first output exists. Run returns after
	// the last output is closed.
	hadOutputs bool

	calls    chan func()
	done     chan struct{}
	shutdown bool
}

// New creates a session. The allocator is selected once, here, by trying
// cfg.Backends in order; if none initializes the error is an
// *AllocationError wrapping alloc.ErrNoBackendAvailable and the caller
// should abort startup.
func New(cfg config.Config, h host.Host, r render.Renderer, opts ...Option) (*Session, error) {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = alloc.Builtin(alloc.Options{Device: cfg.Device, AdapterName: cfg.AdapterName})
	}
	if o.shell == nil {
		o.shell = NopShell{}
	}
	if o.clock == nil {
		o.clock = NewMonotonicClock()
	}

	candidates, err := o.registry.Candidates(cfg.Backends)
	if err != nil {
		return nil, &AllocationError{Op: "select", Err: err}
	}
	a, err := alloc.Select(candidates)
	if err != nil {
		return nil, &AllocationError{Op: "select", Err: err}
	}
	Logger().Info("compositor: allocator selected", "backend", a.Name())

	propagateLogger(h, Logger())

	return &Session{
		cfg:       cfg,
		host:      h,
		allocator: a,
		renderer:  r,
		shell:     o.shell,
		clock:     o.clock,
		loop:      wake.NewLoop(),
		surfaces:  make(map[output.ID]*Surface),
		windows:   make(map[host.WindowID]output.ID),
		configs:   output.NewConfigStore(),
		filter:    cfg.ScreenFilter,
		calls:     make(chan func(), 16),
		done:      make(chan struct{}),
	}, nil
}

// Allocator returns the allocator chosen at construction.
func (s *Session) Allocator() alloc.Allocator {
	return s.allocator
}

// Configs returns the per-output configuration store.
func (s *Session) Configs() *output.ConfigStore {
	return s.configs
}

// AllOutputs returns the registered outputs in creation order.
func (s *Session) AllOutputs() []*output.Output {
	out := make([]*output.Output, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.surfaces[id].output)
	}
	return out
}

// Output returns a registered output.
func (s *Session) Output(id output.ID) (*output.Output, bool) {
	surf, ok := s.surfaces[id]
	if !ok {
		return nil, false
	}
	return surf.output, true
}

// ScreenFilter returns the active screen filter.
func (s *Session) ScreenFilter() render.ScreenFilter {
	return s.filter
}

func (s *Session) lookup(id output.ID) (*Surface, error) {
	surf, ok := s.surfaces[id]
	if !ok {
		return nil, &LookupError{Kind: "output", ID: uint64(id)}
	}
	return surf, nil
}

func (s *Session) lookupWindow(id host.WindowID) (*Surface, error) {
	oid, ok := s.windows[id]
	if !ok {
		return nil, &LookupError{Kind: "window", ID: uint64(id)}
	}
	return s.lookup(oid)
}

// Dispatch runs every pending wake callback and returns how many ran. Run
// calls it whenever a wake is signalled; tests and custom loops call it
// directly.
func (s *Session) Dispatch() int {
	return s.loop.Dispatch()
}

// Post queues fn to run on the control goroutine. It is the only method
// that may be called from other goroutines. Post blocks while the queue is
// full and returns ErrShutdown once the session is shut down.
func (s *Session) Post(fn func()) error {
	select {
	case <-s.done:
		return ErrShutdown
	default:
	}
	select {
	case s.calls <- fn:
		return nil
	case <-s.done:
		return ErrShutdown
	}
}

// Run makes the calling goroutine the control goroutine. It handles host
// events, wake dispatch and posted calls until ctx is done, the host closes
// its event channel, or the last output is closed.
func (s *Session) Run(ctx context.Context) error {
	events := s.host.Events()
	for {
		if s.hadOutputs && len(s.surfaces) == 0 {
			Logger().Info("compositor: last output closed")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("compositor: host %s: %w", s.host.Name(), host.ErrClosed)
			}
			if err := s.HandleEvent(ev); err != nil {
				Logger().Warn("compositor: host event failed", "event", fmt.Sprintf("%T", ev), "error", err)
			}

		case <-s.loop.Ready():
			s.loop.Dispatch()

		case fn := <-s.calls:
			fn()
		}
	}
}

// Shutdown closes every output and the allocator. The host is left to the
// caller. Shutdown is idempotent.
func (s *Session) Shutdown() {
	if s.shutdown {
		return
	}
	s.shutdown = true
	close(s.done)

	for _, id := range slices.Clone(s.order) {
		if _, err := s.Close(id); err != nil {
			Logger().Warn("compositor: closing output failed", "id", id, "error", err)
		}
	}
	s.allocator.Close()
}
