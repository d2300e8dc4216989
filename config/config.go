// Package config holds the settings a compositor session is built from.
//
// The core never parses configuration itself: cmd/compositord loads a
// Config with Load, optionally keeps it current with Watch, and hands the
// decoded value to the session.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/compositor/alloc"
	"github.com/gogpu/compositor/render"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Host names.
const (
	HostHeadless = "headless"
	HostTerminal = "terminal"
)

// Errors returned by Load and Validate.
var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid")
)

// Config is the session configuration.
type Config struct {
	// Backends is the allocator preference order.
	Backends []string `toml:"backends" yaml:"backends"`

	// Device is the device node the software allocator keeps open.
	Device string `toml:"device" yaml:"device"`

	// AdapterName restricts the hardware adapter choice.
	AdapterName string `toml:"adapter_name" yaml:"adapter_name"`

	// Host selects the window host: "headless" or "terminal".
	Host string `toml:"host" yaml:"host"`

	// Outputs is the number of windows opened at startup.
	Outputs int `toml:"outputs" yaml:"outputs"`

	// Width and Height size headless windows.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Scale is the number of pixels per terminal cell column.
	Scale int `toml:"scale" yaml:"scale"`

	// Refresh is the nominal output refresh rate in millihertz.
	Refresh int `toml:"refresh" yaml:"refresh"`

	ScreenFilter render.ScreenFilter `toml:"screen_filter" yaml:"screen_filter"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backends: []string{alloc.BackendVulkan, alloc.BackendSoftware},
		Host:     HostHeadless,
		Outputs:  1,
		Width:    1280,
		Height:   800,
		Scale:    1,
		Refresh:  60000,
		LogLevel: "info",
	}
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	var errs []error
	if len(c.Backends) == 0 {
		errs = append(errs, errors.New("backends must not be empty"))
	}
	switch c.Host {
	case HostHeadless:
		if c.Width <= 0 || c.Height <= 0 {
			errs = append(errs, fmt.Errorf("window size %dx%d", c.Width, c.Height))
		}
	case HostTerminal:
		if c.Outputs > 1 {
			errs = append(errs, fmt.Errorf("terminal host supports one output, got %d", c.Outputs))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown host %q", c.Host))
	}
	if c.Outputs < 1 {
		errs = append(errs, fmt.Errorf("outputs must be at least 1, got %d", c.Outputs))
	}
	if c.Refresh < 0 {
		errs = append(errs, fmt.Errorf("refresh must not be negative, got %d", c.Refresh))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file. Fields missing from
// the file keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data in the format given by the extension of name.
func Parse(name string, data []byte) (Config, error) {
	c := Default()
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", name, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", name, err)
	}
	return c, nil
}
