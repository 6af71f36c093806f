package storage

import (
	"errors"
	"testing"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid 1-bit",
			mutate: func(c *Config) {},
		},
		{
			name: "valid 4-bit",
			mutate: func(c *Config) {
				c.BusWidth = 4
				c.Data1Line, c.Data2Line, c.Data3Line = 40, 41, 42
			},
		},
		{
			name:    "width 4 missing data1",
			wantErr: true,
			mutate: func(c *Config) {
				c.BusWidth = 4
				c.Data2Line, c.Data3Line = 41, 42
			},
		},
		{
			name:    "width 4 missing data2",
			wantErr: true,
			mutate: func(c *Config) {
				c.BusWidth = 4
				c.Data1Line, c.Data3Line = 40, 42
			},
		},
		{
			name:    "width 4 missing data3",
			wantErr: true,
			mutate: func(c *Config) {
				c.BusWidth = 4
				c.Data1Line, c.Data2Line = 40, 41
			},
		},
		{
			name: "width 1 ignores extra data lines",
			mutate: func(c *Config) {
				c.Data1Line = sdmmc.LineUnset
				c.Data2Line = sdmmc.LineUnset
				c.Data3Line = sdmmc.LineUnset
			},
		},
		{
			name:    "missing clk",
			wantErr: true,
			mutate:  func(c *Config) { c.CLKLine = sdmmc.LineUnset },
		},
		{
			name:    "missing cmd",
			wantErr: true,
			mutate:  func(c *Config) { c.CMDLine = sdmmc.LineUnset },
		},
		{
			name:    "missing data0",
			wantErr: true,
			mutate:  func(c *Config) { c.Data0Line = sdmmc.LineUnset },
		},
		{
			name:    "invalid width",
			wantErr: true,
			mutate:  func(c *Config) { c.BusWidth = 8 },
		},
		{
			name:    "zero clock",
			wantErr: true,
			mutate:  func(c *Config) { c.ClockKHz = 0 },
		},
		{
			name:    "relative mount root",
			wantErr: true,
			mutate:  func(c *Config) { c.MountRoot = "sdcard" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() should fail")
				}
				if !errors.Is(err, sderrors.ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() failed: %v", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ClockKHz != 20000 {
		t.Errorf("ClockKHz = %d, want 20000", cfg.ClockKHz)
	}
	if cfg.MountRoot != "/sdcard" {
		t.Errorf("MountRoot = %q, want /sdcard", cfg.MountRoot)
	}
	if cfg.BusWidth != 4 {
		t.Errorf("BusWidth = %d, want 4", cfg.BusWidth)
	}
	if !cfg.PullUp {
		t.Error("PullUp should default to true")
	}
	if cfg.Data1Line != sdmmc.LineUnset || cfg.Data2Line != sdmmc.LineUnset || cfg.Data3Line != sdmmc.LineUnset {
		t.Error("optional data lines should default to unset")
	}

	// Defaults alone are not mountable: lines must be supplied.
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail until lines are configured")
	}
}
