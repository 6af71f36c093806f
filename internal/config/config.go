// Package config binds the declarative YAML configuration consumed by the
// sdmc CLI: bus line identifiers, bus width, clock, mount root, card backend,
// and logger settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/princespaghetti/sdmc/internal/sdmmc"
	"github.com/princespaghetti/sdmc/internal/storage"
)

// Backend selects which card driver the CLI runs against.
const (
	BackendSim = "sim" // in-memory simulated card
	BackendDir = "dir" // host-directory backed card
)

// StorageConfig holds the card and bus settings.
type StorageConfig struct {
	CLKLine   int `yaml:"clk_line"`
	CMDLine   int `yaml:"cmd_line"`
	Data0Line int `yaml:"data0_line"`
	Data1Line int `yaml:"data1_line"`
	Data2Line int `yaml:"data2_line"`
	Data3Line int `yaml:"data3_line"`

	BusWidth  int    `yaml:"bus_width"`  // 1 or 4
	ClockKHz  int    `yaml:"clock_khz"`  // default 20000
	MountRoot string `yaml:"mount_root"` // default /sdcard
	PullUp    bool   `yaml:"pull_up"`    // default true

	Backend    string `yaml:"backend"`     // "sim" or "dir"
	BackingDir string `yaml:"backing_dir"` // required for the dir backend
	CapacityMB int    `yaml:"capacity_mb"` // advertised card capacity
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// Config is the top-level configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// Default returns the configuration defaults. Line identifiers default to
// unset and must be supplied for hardware backends.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			CLKLine:    sdmmc.LineUnset,
			CMDLine:    sdmmc.LineUnset,
			Data0Line:  sdmmc.LineUnset,
			Data1Line:  sdmmc.LineUnset,
			Data2Line:  sdmmc.LineUnset,
			Data3Line:  sdmmc.LineUnset,
			BusWidth:   4,
			ClockKHz:   20000,
			MountRoot:  "/sdcard",
			PullUp:     true,
			Backend:    BackendSim,
			CapacityMB: 64,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads path, overlaying the file's values on the defaults so absent
// keys keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the storage core does not cover itself.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSim, BackendDir:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendDir && c.Storage.BackingDir == "" {
		return fmt.Errorf("config: dir backend requires backing_dir")
	}
	if c.Storage.CapacityMB <= 0 {
		return fmt.Errorf("config: capacity_mb must be positive, got %d", c.Storage.CapacityMB)
	}
	return nil
}

// StorageSettings converts the file representation into the core's Config.
func (c *Config) StorageSettings() storage.Config {
	s := c.Storage
	return storage.Config{
		CLKLine:   s.CLKLine,
		CMDLine:   s.CMDLine,
		Data0Line: s.Data0Line,
		Data1Line: s.Data1Line,
		Data2Line: s.Data2Line,
		Data3Line: s.Data3Line,
		BusWidth:  s.BusWidth,
		ClockKHz:  s.ClockKHz,
		MountRoot: s.MountRoot,
		PullUp:    s.PullUp,
	}
}
