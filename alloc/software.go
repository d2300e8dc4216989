package alloc

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/gogpu/gputypes"
)

// Software allocates output buffers in system memory.
//
// It is the fallback when no hardware allocator initializes. When created
// with a device path it keeps the device node open for the lifetime of the
// session so the host can identify the GPU it renders with.
type Software struct {
	path   string
	device *os.File
	closed bool
}

// TrySoftware creates a system memory allocator. An empty path creates an
// allocator without a device handle.
func TrySoftware(path string) (*Software, error) {
	s := &Software{path: path}
	if path == "" {
		return s, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: software: device %s: %w", ErrUnavailable, path, err)
		}
		return nil, fmt.Errorf("software: open device %s: %w", path, err)
	}
	s.device = f
	return s, nil
}

// Name returns the backend identifier.
func (s *Software) Name() string {
	return BackendSoftware
}

// DevicePath returns the device node path, empty when none was opened.
func (s *Software) DevicePath() string {
	return s.path
}

// Device returns the open device handle, or nil.
func (s *Software) Device() *os.File {
	return s.device
}

// Formats returns the supported formats. System memory buffers are always
// linear.
func (s *Software) Formats() []Format {
	out := make([]Format, 0, len(colorFormats))
	for _, code := range colorFormats {
		out = append(out, Format{Code: code, Modifier: ModifierLinear})
	}
	return out
}

// Allocate creates a zeroed system memory buffer.
func (s *Software) Allocate(width, height int, code gputypes.TextureFormat, modifiers []Modifier) (Buffer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !validSize(width, height) {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	mod, err := pickModifier(s.Formats(), code, modifiers)
	if err != nil {
		return nil, err
	}
	return &memoryBuffer{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		format: Format{Code: code, Modifier: mod},
	}, nil
}

// Close releases the device handle.
func (s *Software) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			slogger().Warn("alloc: closing device failed", "path", s.path, "error", err)
		}
		s.device = nil
	}
}

func (*Software) isAllocator() {}

// memoryBuffer is a Buffer backed only by system memory.
type memoryBuffer struct {
	img      *image.RGBA
	format   Format
	released bool
}

func (b *memoryBuffer) Width() int         { return b.img.Bounds().Dx() }
func (b *memoryBuffer) Height() int        { return b.img.Bounds().Dy() }
func (b *memoryBuffer) Format() Format     { return b.format }
func (b *memoryBuffer) Image() *image.RGBA { return b.img }
func (b *memoryBuffer) Flush() error       { return nil }
func (b *memoryBuffer) Release()           { b.released = true }

var (
	_ Allocator = (*Software)(nil)
	_ Buffer    = (*memoryBuffer)(nil)
)
