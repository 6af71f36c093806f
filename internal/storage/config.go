package storage

import (
	"fmt"
	"strings"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

// Config is the storage core configuration. Line identifiers are
// already-resolved controller GPIO numbers; immutable after Setup.
type Config struct {
	CLKLine   int
	CMDLine   int
	Data0Line int
	Data1Line int // sdmmc.LineUnset in 1-bit mode
	Data2Line int // sdmmc.LineUnset in 1-bit mode
	Data3Line int // sdmmc.LineUnset in 1-bit mode

	BusWidth  int    // 1 or 4
	ClockKHz  int    // target bus clock
	MountRoot string // path prefix for all file operations
	PullUp    bool   // enable internal pull-ups on the signal lines
}

// DefaultConfig returns the defaults of the configuration surface: 4-bit bus,
// 20 MHz clock, mount root /sdcard, internal pull-ups on. Line identifiers
// still have to be supplied.
func DefaultConfig() Config {
	return Config{
		Data1Line: sdmmc.LineUnset,
		Data2Line: sdmmc.LineUnset,
		Data3Line: sdmmc.LineUnset,
		BusWidth:  4,
		ClockKHz:  20000,
		MountRoot: "/sdcard",
		PullUp:    true,
	}
}

// Validate checks the line/width combination before any hardware is touched.
// A width-4 bus requires all four data lines; width 1 validates only the
// three base lines.
func (c Config) Validate() error {
	if c.BusWidth != 1 && c.BusWidth != 4 {
		return fmt.Errorf("%w: bus width must be 1 or 4, got %d", sderrors.ErrInvalidConfig, c.BusWidth)
	}
	required := map[string]int{
		"clk":   c.CLKLine,
		"cmd":   c.CMDLine,
		"data0": c.Data0Line,
	}
	if c.BusWidth == 4 {
		required["data1"] = c.Data1Line
		required["data2"] = c.Data2Line
		required["data3"] = c.Data3Line
	}
	for name, line := range required {
		if line < 0 {
			return fmt.Errorf("%w: %s line is not set", sderrors.ErrInvalidConfig, name)
		}
	}
	if c.ClockKHz <= 0 {
		return fmt.Errorf("%w: clock must be positive, got %d kHz", sderrors.ErrInvalidConfig, c.ClockKHz)
	}
	if !strings.HasPrefix(c.MountRoot, "/") {
		return fmt.Errorf("%w: mount root %q must be absolute", sderrors.ErrInvalidConfig, c.MountRoot)
	}
	return nil
}

// bus converts the configuration into the driver's bus parameters.
func (c Config) bus() sdmmc.BusConfig {
	return sdmmc.BusConfig{
		CLK:      c.CLKLine,
		CMD:      c.CMDLine,
		D0:       c.Data0Line,
		D1:       c.Data1Line,
		D2:       c.Data2Line,
		D3:       c.Data3Line,
		Width:    c.BusWidth,
		ClockKHz: c.ClockKHz,
		PullUp:   c.PullUp,
	}
}
