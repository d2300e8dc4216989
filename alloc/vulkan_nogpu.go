//go:build nogpu

package alloc

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// VulkanOptions configures how the hardware allocator picks a device.
type VulkanOptions struct {
	AdapterName string
	Provider    gpucontext.DeviceProvider
}

// Capabilities is the capability record of the device a Vulkan allocator
// allocates from.
type Capabilities struct {
	AdapterName string
	DeviceType  gputypes.DeviceType
	Preferred   gputypes.TextureFormat
	Shared      bool
}

// Vulkan is unavailable in builds tagged nogpu.
type Vulkan struct{}

// TryVulkan always fails in builds tagged nogpu.
func TryVulkan(VulkanOptions) (*Vulkan, error) {
	return nil, fmt.Errorf("%w: vulkan: built with nogpu", ErrUnavailable)
}

func (*Vulkan) Name() string               { return BackendVulkan }
func (*Vulkan) Capabilities() Capabilities { return Capabilities{} }
func (*Vulkan) Formats() []Format          { return nil }
func (*Vulkan) Close()                     {}
func (*Vulkan) isAllocator()               {}

func (*Vulkan) Allocate(int, int, gputypes.TextureFormat, []Modifier) (Buffer, error) {
	return nil, ErrClosed
}
