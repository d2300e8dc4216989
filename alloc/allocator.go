package alloc

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Backend name constants.
const (
	// BackendVulkan is the name of the hardware allocator.
	BackendVulkan = "vulkan"
	// BackendSoftware is the name of the system memory allocator.
	BackendSoftware = "software"
)

// Allocator creates output buffers.
//
// The interface is sealed: *Vulkan and *Software are its only
// implementations. Use a type switch to reach variant-specific data.
type Allocator interface {
	// Name returns the backend identifier (e.g., "vulkan", "software").
	Name() string

	// Formats returns every format/modifier pair the allocator can create.
	Formats() []Format

	// Allocate creates a width x height buffer of the given pixel format.
	// The first modifier in modifiers that the allocator supports is used.
	Allocate(width, height int, code gputypes.TextureFormat, modifiers []Modifier) (Buffer, error)

	// Close releases the allocator and its device. Buffers must be released
	// before Close.
	Close()

	isAllocator()
}

// Buffer is a single output buffer.
//
// Composition happens on the CPU-visible Image. Flush makes its contents
// visible to the device that scans the buffer out; for system memory
// buffers Flush is a no-op.
type Buffer interface {
	// Width returns the buffer width in pixels.
	Width() int

	// Height returns the buffer height in pixels.
	Height() int

	// Format returns the pixel format and modifier of the buffer.
	Format() Format

	// Image returns the CPU-visible pixels. Pixels are always stored in
	// RGBA order; hosts convert when the format code differs.
	Image() *image.RGBA

	// Flush uploads the CPU-visible pixels to the device.
	Flush() error

	// Release frees the buffer. Release is idempotent.
	Release()
}

func validSize(width, height int) bool {
	return width > 0 && height > 0
}
