// Package alloc selects and drives the buffer allocator of a compositor
// session.
//
// An Allocator is one of a closed set of variants:
//
//   - *Vulkan: GPU buffers created through gogpu/wgpu/hal on a Vulkan
//     adapter. It holds the opened device, its queue and the adapter's
//     capability record.
//   - *Software: CPU buffers in system memory. It optionally holds an open
//     device node handle used to identify the GPU the host renders with.
//
// # Selection
//
// Allocators are tried in a configured preference order and the first one
// that initializes wins:
//
//	reg := alloc.Builtin(alloc.Options{Device: "/dev/dri/renderD128"})
//	candidates, err := reg.Candidates([]string{alloc.BackendVulkan, alloc.BackendSoftware})
//	if err != nil {
//		return err
//	}
//	a, err := alloc.Select(candidates)
//	if errors.Is(err, alloc.ErrNoBackendAvailable) {
//		// abort startup
//	}
//
// A candidate that is simply not present on the machine fails with an error
// wrapping ErrUnavailable and is logged at debug level. Any other failure is
// logged as a warning. Selection happens once; the chosen variant never
// changes afterwards.
package alloc
