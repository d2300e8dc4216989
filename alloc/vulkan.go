//go:build !nogpu

package alloc

import (
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// VulkanOptions configures how the hardware allocator picks a device.
type VulkanOptions struct {
	// AdapterName restricts selection to adapters whose name contains it.
	// Empty accepts any adapter.
	AdapterName string

	// Provider optionally shares the host application's GPU device. It must
	// expose HalDevice() any and HalQueue() any returning hal.Device and
	// hal.Queue; otherwise a standalone device is opened.
	Provider gpucontext.DeviceProvider
}

// Capabilities is the capability record of the device a Vulkan allocator
// allocates from.
type Capabilities struct {
	AdapterName string
	DeviceType  gputypes.DeviceType
	// Preferred is the host surface format, TextureFormatUndefined if the
	// device is not shared with a host.
	Preferred gputypes.TextureFormat
	Shared    bool
}

// Vulkan allocates output buffers as GPU textures on a Vulkan device.
type Vulkan struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	caps     Capabilities
	closed   bool
}

// TryVulkan opens a Vulkan device for buffer allocation.
//
// Failures that only mean "no usable Vulkan here" wrap ErrUnavailable.
// Failing to create an instance is reported as an unexpected error.
func TryVulkan(opts VulkanOptions) (*Vulkan, error) {
	if opts.Provider != nil {
		v, err := vulkanFromProvider(opts.Provider)
		if err == nil {
			return v, nil
		}
		slogger().Debug("alloc: host device not shareable, opening own device", "error", err)
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan: backend not compiled in", ErrUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("vulkan: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: vulkan: no adapters", ErrUnavailable)
	}

	candidates := make([]adapterCandidate, len(adapters))
	for i := range adapters {
		candidates[i] = adapterCandidate{
			name: adapters[i].Info.Name,
			preferred: adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
				adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU,
		}
	}
	idx := pickAdapter(candidates, opts.AdapterName)
	if idx < 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: vulkan: no adapter matching %q", ErrUnavailable, opts.AdapterName)
	}
	selected := &adapters[idx]

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("vulkan: open device %q: %w", selected.Info.Name, err)
	}

	slogger().Debug("alloc: vulkan device opened", "adapter", selected.Info.Name)
	return &Vulkan{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		caps: Capabilities{
			AdapterName: selected.Info.Name,
			DeviceType:  selected.Info.DeviceType,
			Preferred:   gputypes.TextureFormatUndefined,
		},
	}, nil
}

// vulkanFromProvider wraps a device shared by the host application.
func vulkanFromProvider(provider gpucontext.DeviceProvider) (*Vulkan, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("vulkan: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("vulkan: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("vulkan: provider HalQueue is not hal.Queue")
	}
	return &Vulkan{
		device: device,
		queue:  queue,
		caps: Capabilities{
			AdapterName: "shared",
			Preferred:   provider.SurfaceFormat(),
			Shared:      true,
		},
	}, nil
}

// adapterCandidate is the part of an enumerated adapter selection looks at.
type adapterCandidate struct {
	name      string
	preferred bool
}

// pickAdapter returns the index of the adapter to open, or -1. Among
// adapters matching name, discrete and integrated GPUs win over the rest.
func pickAdapter(adapters []adapterCandidate, name string) int {
	fallback := -1
	for i, a := range adapters {
		if name != "" && !strings.Contains(a.name, name) {
			continue
		}
		if a.preferred {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// Name returns the backend identifier.
func (v *Vulkan) Name() string {
	return BackendVulkan
}

// Capabilities returns the device capability record.
func (v *Vulkan) Capabilities() Capabilities {
	return v.caps
}

// Formats returns the supported formats. The host's preferred surface
// format is listed first when it is one of the 8-bit color formats the
// staging image can be uploaded to.
func (v *Vulkan) Formats() []Format {
	codes := colorFormats
	if p := v.caps.Preferred; slices.Contains(colorFormats, p) {
		codes = append([]gputypes.TextureFormat{p}, codes...)
	}
	var out []Format
	for _, code := range codes {
		for _, m := range []Modifier{ModifierInvalid, ModifierLinear} {
			f := Format{Code: code, Modifier: m}
			if !containsFormat(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Allocate creates a render-attachment texture plus a CPU staging image.
func (v *Vulkan) Allocate(width, height int, code gputypes.TextureFormat, modifiers []Modifier) (Buffer, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if !validSize(width, height) {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	mod, err := pickModifier(v.Formats(), code, modifiers)
	if err != nil {
		return nil, err
	}

	size := hal.Extent3D{
		Width:              uint32(width),  //nolint:gosec // validated positive
		Height:             uint32(height), //nolint:gosec // validated positive
		DepthOrArrayLayers: 1,
	}
	tex, err := v.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "output_buffer",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        code,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("vulkan: create output texture %dx%d: %w", width, height, err)
	}

	return &textureBuffer{
		device:  v.device,
		queue:   v.queue,
		texture: tex,
		size:    size,
		staging: image.NewRGBA(image.Rect(0, 0, width, height)),
		format:  Format{Code: code, Modifier: mod},
	}, nil
}

// Close destroys the device and instance unless they are shared.
func (v *Vulkan) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.caps.Shared {
		// Don't destroy shared resources, we don't own them.
		v.device = nil
		v.queue = nil
		return
	}
	if v.device != nil {
		v.device.Destroy()
		v.device = nil
	}
	if v.instance != nil {
		v.instance.Destroy()
		v.instance = nil
	}
	v.queue = nil
}

func (*Vulkan) isAllocator() {}

func containsFormat(list []Format, f Format) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// textureBuffer is a GPU texture with a CPU staging copy.
type textureBuffer struct {
	device  hal.Device
	queue   hal.Queue
	texture hal.Texture
	size    hal.Extent3D
	staging *image.RGBA
	format  Format

	// upload holds the BGRA copy of staging for BGRA textures.
	upload []byte
}

// DeviceBuffer is a Buffer backed by a GPU texture. Hosts sharing the
// allocator's device scan the texture out instead of the CPU image.
type DeviceBuffer interface {
	Buffer
	Texture() hal.Texture
}

// Texture returns the device texture, nil after Release.
func (b *textureBuffer) Texture() hal.Texture { return b.texture }

func (b *textureBuffer) Width() int         { return int(b.size.Width) }
func (b *textureBuffer) Height() int        { return int(b.size.Height) }
func (b *textureBuffer) Format() Format     { return b.format }
func (b *textureBuffer) Image() *image.RGBA { return b.staging }

// Flush uploads the staging image into the texture.
func (b *textureBuffer) Flush() error {
	if b.texture == nil {
		return fmt.Errorf("vulkan: flush of released buffer")
	}
	data := b.staging.Pix
	if b.format.Code == gputypes.TextureFormatBGRA8Unorm {
		b.upload = swizzleBGRA(b.upload, b.staging)
		data = b.upload
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  b.texture,
			MipLevel: 0,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(b.staging.Stride), //nolint:gosec // stride of a validated image
			RowsPerImage: b.size.Height,
		},
		&b.size,
	)
	return nil
}

// swizzleBGRA writes the pixels of src in BGRA order into dst, growing it
// as needed, and returns it.
func swizzleBGRA(dst []byte, src *image.RGBA) []byte {
	dst = slices.Grow(dst[:0], len(src.Pix))[:len(src.Pix)]
	for i := 0; i+3 < len(src.Pix); i += 4 {
		dst[i+0] = src.Pix[i+2]
		dst[i+1] = src.Pix[i+1]
		dst[i+2] = src.Pix[i+0]
		dst[i+3] = src.Pix[i+3]
	}
	return dst
}

// Release destroys the texture.
func (b *textureBuffer) Release() {
	if b.texture != nil {
		b.device.DestroyTexture(b.texture)
		b.texture = nil
	}
}

var (
	_ Allocator    = (*Vulkan)(nil)
	_ DeviceBuffer = (*textureBuffer)(nil)
)
