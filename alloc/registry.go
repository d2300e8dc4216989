package alloc

import (
	"slices"

	"github.com/gogpu/gpucontext"
)

// Factory tries to create an allocator.
type Factory func() (Allocator, error)

// Candidate is a named allocator factory in a preference list.
type Candidate struct {
	Name string
	Try  Factory
}

// Registry maps backend names to factories.
//
// A Registry is a plain value owned by whoever builds the session; there is
// no process-wide registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Options configures the built-in allocators.
type Options struct {
	// Device is the device node the software allocator keeps open.
	Device string

	// AdapterName restricts the Vulkan adapter choice.
	AdapterName string

	// Provider optionally shares a host GPU device with the Vulkan allocator.
	Provider gpucontext.DeviceProvider
}

// Builtin returns a registry holding the vulkan and software allocators.
func Builtin(opts Options) *Registry {
	r := NewRegistry()
	r.Register(BackendVulkan, func() (Allocator, error) {
		v, err := TryVulkan(VulkanOptions{AdapterName: opts.AdapterName, Provider: opts.Provider})
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	r.Register(BackendSoftware, func() (Allocator, error) {
		s, err := TrySoftware(opts.Device)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Unregister removes a factory.
func (r *Registry) Unregister(name string) {
	delete(r.factories, name)
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Candidates resolves a preference order into candidates. Unknown names are
// an error so that a misconfigured order fails before any device is opened.
func (r *Registry) Candidates(order []string) ([]Candidate, error) {
	out := make([]Candidate, 0, len(order))
	for _, name := range order {
		f, ok := r.factories[name]
		if !ok {
			return nil, &UnknownBackendError{Name: name}
		}
		out = append(out, Candidate{Name: name, Try: f})
	}
	return out, nil
}
